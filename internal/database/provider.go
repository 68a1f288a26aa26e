package database

import (
	"context"
	"fmt"
)

var (
	postgresConfigurationReader func() ConfigurationReader
	postgresConfigurationWriter func() ConfigurationWriter
	postgresInitialized         bool
)

// RegisterPostgresBackend registers PostgreSQL repository constructors.
// This is called by the postgres package to avoid import cycles.
func RegisterPostgresBackend(
	reader func() ConfigurationReader,
	writer func() ConfigurationWriter,
) {
	postgresConfigurationReader = reader
	postgresConfigurationWriter = writer
	postgresInitialized = true
}

// IsInitialized returns whether the PostgreSQL backend has been initialized.
func IsInitialized() bool {
	return postgresInitialized
}

// GetConfigurationReader returns a ConfigurationReader from the PostgreSQL backend
func GetConfigurationReader(ctx context.Context) (ConfigurationReader, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresConfigurationReader == nil {
		return nil, fmt.Errorf("PostgreSQL configuration reader not registered")
	}
	return postgresConfigurationReader(), nil
}

// GetConfigurationWriter returns a ConfigurationWriter from the PostgreSQL backend
func GetConfigurationWriter(ctx context.Context) (ConfigurationWriter, error) {
	if !postgresInitialized {
		return nil, fmt.Errorf("PostgreSQL backend not initialized: DATABASE_URL is required")
	}
	if postgresConfigurationWriter == nil {
		return nil, fmt.Errorf("PostgreSQL configuration writer not registered")
	}
	return postgresConfigurationWriter(), nil
}

// ResetForTesting clears the registered backend.
func ResetForTesting() {
	postgresConfigurationReader = nil
	postgresConfigurationWriter = nil
	postgresInitialized = false
}

package database

import (
	"context"
)

// ConfigurationReader provides read-only access to configuration records
type ConfigurationReader interface {
	// GetConfiguration retrieves a record by ID or short code, returns nil if not found
	GetConfiguration(ctx context.Context, idOrCode string) (*Configuration, error)
	// ShortCodeFor returns the human-readable reference code of a record
	ShortCodeFor(ctx context.Context, id string) (string, error)
}

// ConfigurationWriter provides write access to configuration records
type ConfigurationWriter interface {
	ConfigurationReader

	// CreateConfiguration stores a new record, assigning its ID, short code and creation time
	CreateConfiguration(ctx context.Context, c *Configuration) error
}

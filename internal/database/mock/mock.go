// Package mock provides mock implementations of database interfaces for testing.
package mock

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kozaktomas/wallproof/internal/database"
)

// MockConfigurationStore is an in-memory implementation of database.ConfigurationWriter
type MockConfigurationStore struct {
	mu      sync.RWMutex
	records map[string]*database.Configuration
	codes   map[string]string

	// Now stamps CreatedAt on new records; defaults to time.Now.
	Now func() time.Time

	// Error injection
	GetError       error
	ShortCodeError error
	CreateError    error
}

// NewMockConfigurationStore creates a new empty mock store
func NewMockConfigurationStore() *MockConfigurationStore {
	return &MockConfigurationStore{
		records: make(map[string]*database.Configuration),
		codes:   make(map[string]string),
		Now:     time.Now,
	}
}

// AddConfiguration stores a record as-is, assigning missing keys
func (m *MockConfigurationStore) AddConfiguration(c database.Configuration) *database.Configuration {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.ShortCode == "" {
		c.ShortCode = m.freeCodeLocked()
	}
	m.records[c.ID] = &c
	m.codes[c.ShortCode] = c.ID
	return &c
}

// Len returns the number of stored records
func (m *MockConfigurationStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}

// GetConfiguration retrieves a copy of a record by ID or short code
func (m *MockConfigurationStore) GetConfiguration(ctx context.Context, idOrCode string) (*database.Configuration, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[strings.ToLower(strings.TrimSpace(idOrCode))]
	if !ok {
		id, found := m.codes[database.NormalizeShortCode(idOrCode)]
		if !found {
			return nil, nil
		}
		rec = m.records[id]
	}
	c := *rec
	return &c, nil
}

// ShortCodeFor returns the short code of a record
func (m *MockConfigurationStore) ShortCodeFor(ctx context.Context, id string) (string, error) {
	if m.ShortCodeError != nil {
		return "", m.ShortCodeError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if rec, ok := m.records[id]; ok {
		return rec.ShortCode, nil
	}
	return "", nil
}

// CreateConfiguration validates and stores a record
func (m *MockConfigurationStore) CreateConfiguration(ctx context.Context, c *database.Configuration) error {
	if m.CreateError != nil {
		return m.CreateError
	}
	if err := c.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c.ID = uuid.NewString()
	c.ShortCode = m.freeCodeLocked()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.Now().UTC()
	}
	stored := *c
	m.records[c.ID] = &stored
	m.codes[c.ShortCode] = c.ID
	return nil
}

func (m *MockConfigurationStore) freeCodeLocked() string {
	for {
		code := database.NewShortCode()
		if _, taken := m.codes[code]; !taken {
			return code
		}
	}
}

var _ database.ConfigurationWriter = (*MockConfigurationStore)(nil)


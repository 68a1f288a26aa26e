package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/kozaktomas/wallproof/internal/database"
)

const (
	shortCodeConstraint   = "configurations_short_code_key"
	maxShortCodeAttempts  = 5
	pqUniqueViolationCode = "23505"
)

// ConfigurationRepository provides PostgreSQL-backed configuration storage
type ConfigurationRepository struct {
	pool *Pool
}

// NewConfigurationRepository creates a new PostgreSQL configuration repository
func NewConfigurationRepository(pool *Pool) *ConfigurationRepository {
	return &ConfigurationRepository{pool: pool}
}

// CreateConfiguration stores a record with a fresh ID and short code.
// A short code collision is retried with a new code.
func (r *ConfigurationRepository) CreateConfiguration(ctx context.Context, c *database.Configuration) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	c.ShortCode = ""

	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal configuration: %w", err)
	}

	query := `
		INSERT INTO configurations (id, short_code, payload, created_at)
		VALUES ($1, $2, $3, $4)
	`
	for range maxShortCodeAttempts {
		code := database.NewShortCode()
		_, err = r.pool.Exec(ctx, query, c.ID, code, payload, c.CreatedAt)
		if err == nil {
			c.ShortCode = code
			return nil
		}
		if !isUniqueViolation(err, shortCodeConstraint) {
			return fmt.Errorf("create configuration: %w", err)
		}
	}
	return fmt.Errorf("create configuration: no free short code after %d attempts", maxShortCodeAttempts)
}

// GetConfiguration retrieves a record by ID or short code, returns nil if not found
func (r *ConfigurationRepository) GetConfiguration(ctx context.Context, idOrCode string) (*database.Configuration, error) {
	query := `
		SELECT id, short_code, payload, created_at
		FROM configurations
		WHERE id::text = $1 OR short_code = $2
		LIMIT 1
	`

	var (
		id, code string
		payload  []byte
		created  time.Time
	)
	key := strings.ToLower(strings.TrimSpace(idOrCode))
	err := r.pool.QueryRow(ctx, query, key, database.NormalizeShortCode(idOrCode)).Scan(&id, &code, &payload, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get configuration: %w", err)
	}

	var c database.Configuration
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("decode configuration %s: %w", id, err)
	}
	c.ID = id
	c.ShortCode = code
	c.CreatedAt = created
	return &c, nil
}

// ShortCodeFor returns the short code of a record, empty if not found
func (r *ConfigurationRepository) ShortCodeFor(ctx context.Context, id string) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, "SELECT short_code FROM configurations WHERE id::text = $1",
		strings.ToLower(id)).Scan(&code)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get short code: %w", err)
	}
	return code, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return string(pqErr.Code) == pqUniqueViolationCode && pqErr.Constraint == constraint
}

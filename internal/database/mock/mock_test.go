package mock

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/wallproof/internal/database"
	"github.com/kozaktomas/wallproof/internal/geometry"
)

func TestMockConfigurationStore(t *testing.T) {
	ctx := context.Background()
	store := NewMockConfigurationStore()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.Now = func() time.Time { return created }

	rec := &database.Configuration{Wall: geometry.Size{WidthCm: 200, HeightCm: 100}}
	if err := store.CreateConfiguration(ctx, rec); err != nil {
		t.Fatalf("CreateConfiguration() error: %v", err)
	}
	if !database.IsShortCode(rec.ShortCode) || rec.ID == "" {
		t.Fatalf("keys not assigned: %+v", rec)
	}
	if !rec.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", rec.CreatedAt, created)
	}

	byCode, err := store.GetConfiguration(ctx, strings.ToLower(rec.ShortCode))
	if err != nil || byCode == nil || byCode.ID != rec.ID {
		t.Errorf("lookup by short code = %+v, %v", byCode, err)
	}
	byID, _ := store.GetConfiguration(ctx, rec.ID)
	if byID == nil || byID.ShortCode != rec.ShortCode {
		t.Errorf("lookup by ID = %+v", byID)
	}
	missing, err := store.GetConfiguration(ctx, "nothing")
	if err != nil || missing != nil {
		t.Errorf("expected nil, nil for unknown key, got %+v, %v", missing, err)
	}

	if err := store.CreateConfiguration(ctx, &database.Configuration{}); !errors.Is(err, database.ErrIncompleteConfiguration) {
		t.Errorf("expected ErrIncompleteConfiguration, got %v", err)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}

	store.GetError = errors.New("boom")
	if _, err := store.GetConfiguration(ctx, rec.ID); err == nil {
		t.Error("expected injected error")
	}
}

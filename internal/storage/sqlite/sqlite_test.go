package sqlite

import (
	"context"
	"testing"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

// TestConfigRoundTrip verifies config values can be stored and retrieved
func TestConfigRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, "retention_days", "30"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}

	value, err := store.GetConfig(ctx, "retention_days")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if value != "30" {
		t.Errorf("Expected value %q, got %q", "30", value)
	}
}

// TestConfigMissingKey verifies missing keys return empty string, not an error
func TestConfigMissingKey(t *testing.T) {
	store := newTestStorage(t)

	value, err := store.GetConfig(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if value != "" {
		t.Errorf("Expected empty value for missing key, got %q", value)
	}
}

// TestConfigOverwrite verifies SetConfig replaces an existing value
func TestConfigOverwrite(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, "log_level", "info"); err != nil {
		t.Fatalf("SetConfig failed: %v", err)
	}
	if err := store.SetConfig(ctx, "log_level", "debug"); err != nil {
		t.Fatalf("SetConfig overwrite failed: %v", err)
	}

	value, err := store.GetConfig(ctx, "log_level")
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if value != "debug" {
		t.Errorf("Expected %q after overwrite, got %q", "debug", value)
	}
}

// TestVacuumDatabase verifies vacuum runs without error
func TestVacuumDatabase(t *testing.T) {
	store := newTestStorage(t)

	if err := store.VacuumDatabase(context.Background()); err != nil {
		t.Errorf("VacuumDatabase failed: %v", err)
	}
}

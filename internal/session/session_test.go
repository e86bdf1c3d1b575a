package session

import (
	"context"
	"sync"
	"testing"

	"github.com/halcyonlab/twin/internal/events"
	"github.com/halcyonlab/twin/internal/profile"
	"github.com/halcyonlab/twin/internal/storage/sqlite"
)

// captureSink records emitted events in order.
type captureSink struct {
	mu     sync.Mutex
	events []*events.FormEvent
}

func (c *captureSink) Emit(event *events.FormEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureSink) types() []events.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]events.EventType, len(c.events))
	for i, e := range c.events {
		out[i] = e.Type
	}
	return out
}

func (c *captureSink) countType(t events.EventType) int {
	n := 0
	for _, et := range c.types() {
		if et == t {
			n++
		}
	}
	return n
}

func newTestStore(t *testing.T) *sqlite.SQLiteStorage {
	t.Helper()
	store, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("Failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func openTestSession(t *testing.T, store *sqlite.SQLiteStorage, sink events.Sink, section profile.Section) *FormSession {
	t.Helper()
	s, err := Open(context.Background(), Config{
		UserID:  "user-1",
		Section: section,
		Store:   store,
		Sink:    sink,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return s
}

func TestOpenFreshSectionStartsClean(t *testing.T) {
	store := newTestStore(t)
	sink := &captureSink{}

	s := openTestSession(t, store, sink, profile.SectionNutrition)

	status := s.Status()
	if !status.Dirty.IsInitialized {
		t.Error("Expected session tracker to be initialized")
	}
	if status.Dirty.IsDirty {
		t.Error("Fresh session should start clean")
	}
	if sink.countType(events.EventTypeSessionOpened) != 1 {
		t.Errorf("Expected one session_opened event, got types %v", sink.types())
	}
}

func TestOpenValidation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := Open(ctx, Config{Section: profile.SectionHealth, Store: store}); err == nil {
		t.Error("Expected error for missing user ID")
	}
	if _, err := Open(ctx, Config{UserID: "u", Section: "bogus", Store: store}); err == nil {
		t.Error("Expected error for invalid section")
	}
	if _, err := Open(ctx, Config{UserID: "u", Section: profile.SectionHealth}); err == nil {
		t.Error("Expected error for missing store")
	}
}

func TestSetFieldMarksDirtyAndRevertCleans(t *testing.T) {
	store := newTestStore(t)
	s := openTestSession(t, store, &captureSink{}, profile.SectionNutrition)

	report, err := s.SetField("allergies", []string{"peanuts"})
	if err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if !report.IsDirty {
		t.Error("Expected dirty after field change")
	}
	if len(report.ChangedFields) != 1 || report.ChangedFields[0] != "allergies" {
		t.Errorf("Expected changed fields [allergies], got %v", report.ChangedFields)
	}

	// Unsetting an unanswered-by-default field reverts to clean
	report, err = s.UnsetField("allergies")
	if err != nil {
		t.Fatalf("UnsetField failed: %v", err)
	}
	if report.IsDirty {
		t.Errorf("Expected clean after revert, changed: %v", report.ChangedFields)
	}

	// A zero numeric baseline is a real value; restoring it also cleans
	if report, err = s.SetField("meals_per_day", 3); err != nil || !report.IsDirty {
		t.Fatalf("Expected dirty after meals change, err=%v", err)
	}
	if report, err = s.SetField("meals_per_day", 0); err != nil || report.IsDirty {
		t.Fatalf("Expected clean after restoring zero, err=%v changed=%v", err, report.ChangedFields)
	}
}

func TestSetFieldRejectsUnknownName(t *testing.T) {
	store := newTestStore(t)
	s := openTestSession(t, store, &captureSink{}, profile.SectionNutrition)

	if _, err := s.SetField("mealz_per_day", 3); err == nil {
		t.Error("Expected error for unknown field name")
	}

	if s.Status().Dirty.IsDirty {
		t.Error("Rejected field must not dirty the session")
	}
}

func TestSetFieldsBatch(t *testing.T) {
	store := newTestStore(t)
	s := openTestSession(t, store, &captureSink{}, profile.SectionHealth)

	report, err := s.SetFields(map[string]interface{}{
		"sleep_hours": 7.5,
		"conditions":  []string{"asthma"},
	})
	if err != nil {
		t.Fatalf("SetFields failed: %v", err)
	}
	if report.ChangedFieldsCount() != 2 {
		t.Errorf("Expected 2 changed fields, got %v", report.ChangedFields)
	}

	// One bad name rejects the whole batch
	if _, err := s.SetFields(map[string]interface{}{
		"sleep_hours": 8,
		"nope":        true,
	}); err == nil {
		t.Error("Expected error for unknown field in batch")
	}
}

func TestSavePersistsAndRebaselines(t *testing.T) {
	store := newTestStore(t)
	sink := &captureSink{}
	ctx := context.Background()
	s := openTestSession(t, store, sink, profile.SectionNutrition)

	if _, err := s.SetField("diet_style", "vegan"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if _, err := s.SetField("calorie_target", 2000); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	if err := s.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if s.Status().Dirty.IsDirty {
		t.Error("Session should be clean after save")
	}

	// Persisted for real
	record, err := store.GetSection(ctx, "user-1", profile.SectionNutrition)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	nutrition := record.(*profile.Nutrition)
	if nutrition.DietStyle != profile.DietVegan {
		t.Errorf("Expected diet style vegan, got %q", nutrition.DietStyle)
	}
	if nutrition.CalorieTarget != 2000 {
		t.Errorf("Expected calorie target 2000, got %d", nutrition.CalorieTarget)
	}

	if sink.countType(events.EventTypeSessionSaved) != 1 {
		t.Errorf("Expected one session_saved event, got types %v", sink.types())
	}

	// The save event carries what was pending
	for _, e := range sink.events {
		if e.Type != events.EventTypeSessionSaved {
			continue
		}
		data, err := e.GetSaveData()
		if err != nil {
			t.Fatalf("GetSaveData failed: %v", err)
		}
		if data.Section != "nutrition" {
			t.Errorf("Expected section nutrition in save data, got %q", data.Section)
		}
		if len(data.ChangedFields) != 2 {
			t.Errorf("Expected 2 changed fields in save data, got %v", data.ChangedFields)
		}
	}
}

func TestSaveInvalidValuesFailsAndKeepsEdits(t *testing.T) {
	store := newTestStore(t)
	sink := &captureSink{}
	ctx := context.Background()
	s := openTestSession(t, store, sink, profile.SectionNutrition)

	if _, err := s.SetField("calorie_target", 100); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	if err := s.Save(ctx); err == nil {
		t.Fatal("Expected save to fail for out-of-range calorie target")
	}

	// Edits survive so the user can correct them
	if got := s.Fields()["calorie_target"]; got != 100 {
		t.Errorf("Expected live value 100 after failed save, got %v", got)
	}
	if !s.Status().Dirty.IsDirty {
		t.Error("Session should stay dirty after failed save")
	}
	if sink.countType(events.EventTypeSessionSaveFailed) != 1 {
		t.Errorf("Expected one session_save_failed event, got types %v", sink.types())
	}

	// Nothing persisted
	record, err := store.GetSection(ctx, "user-1", profile.SectionNutrition)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if record.(*profile.Nutrition).CalorieTarget != 0 {
		t.Error("Invalid value must not be persisted")
	}
}

func TestDiscardChanges(t *testing.T) {
	store := newTestStore(t)
	s := openTestSession(t, store, &captureSink{}, profile.SectionTraining)

	if _, err := s.SetField("days_per_week", 5); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if !s.Status().Dirty.IsDirty {
		t.Fatal("Expected dirty before discard")
	}

	report := s.DiscardChanges()
	if report.IsDirty {
		t.Errorf("Expected clean after discard, changed: %v", report.ChangedFields)
	}
	if got := s.Fields()["days_per_week"]; got == 5 {
		t.Error("Discard should revert the live value")
	}
}

func TestReloadPicksUpExternalSave(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	s := openTestSession(t, store, &captureSink{}, profile.SectionIdentity)

	if _, err := s.SetField("display_name", "draft"); err != nil {
		t.Fatalf("SetField failed: %v", err)
	}

	// Another writer persists a different name
	if err := store.SaveSection(ctx, "user-1", &profile.Identity{DisplayName: "Ada"}); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if s.Status().Dirty.IsDirty {
		t.Error("Session should be clean after reload")
	}
	if got := s.Fields()["display_name"]; got != "Ada" {
		t.Errorf("Expected reloaded display name Ada, got %v", got)
	}
}

func TestReadOnlySessionNeverDirty(t *testing.T) {
	store := newTestStore(t)
	s, err := Open(context.Background(), Config{
		UserID:   "user-1",
		Section:  profile.SectionHealth,
		Store:    store,
		ReadOnly: true,
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	report, err := s.SetField("sleep_hours", 9)
	if err != nil {
		t.Fatalf("SetField failed: %v", err)
	}
	if report.IsDirty {
		t.Error("Read-only session must not report dirty")
	}
}

func TestCloseEmitsOnce(t *testing.T) {
	store := newTestStore(t)
	sink := &captureSink{}
	s := openTestSession(t, store, sink, profile.SectionFasting)

	s.Close()
	s.Close()

	if sink.countType(events.EventTypeSessionClosed) != 1 {
		t.Errorf("Expected exactly one session_closed event, got types %v", sink.types())
	}
}

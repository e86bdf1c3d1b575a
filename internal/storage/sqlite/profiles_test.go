package sqlite

import (
	"context"
	"testing"

	"github.com/halcyonlab/twin/internal/profile"
)

// TestSaveAndGetSection verifies a section round-trips through storage
func TestSaveAndGetSection(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	nutrition := &profile.Nutrition{
		DietStyle:     profile.DietVegetarian,
		Allergies:     []string{"peanuts"},
		MealsPerDay:   3,
		CalorieTarget: 2200,
	}

	if err := store.SaveSection(ctx, "user-1", nutrition); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}

	got, err := store.GetSection(ctx, "user-1", profile.SectionNutrition)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}

	loaded, ok := got.(*profile.Nutrition)
	if !ok {
		t.Fatalf("Expected *profile.Nutrition, got %T", got)
	}
	if loaded.DietStyle != profile.DietVegetarian {
		t.Errorf("Expected diet style %q, got %q", profile.DietVegetarian, loaded.DietStyle)
	}
	if len(loaded.Allergies) != 1 || loaded.Allergies[0] != "peanuts" {
		t.Errorf("Expected allergies [peanuts], got %v", loaded.Allergies)
	}
	if loaded.CalorieTarget != 2200 {
		t.Errorf("Expected calorie target 2200, got %d", loaded.CalorieTarget)
	}
}

// TestGetSectionMissingReturnsEmptyRecord verifies a fresh section is an empty record
func TestGetSectionMissingReturnsEmptyRecord(t *testing.T) {
	store := newTestStorage(t)

	got, err := store.GetSection(context.Background(), "new-user", profile.SectionFasting)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}

	fasting, ok := got.(*profile.Fasting)
	if !ok {
		t.Fatalf("Expected *profile.Fasting, got %T", got)
	}
	if fasting.Protocol != profile.FastingUnspecified {
		t.Errorf("Expected unspecified protocol, got %q", fasting.Protocol)
	}
	if fasting.WindowHours != 0 {
		t.Errorf("Expected zero window hours, got %d", fasting.WindowHours)
	}
}

// TestSaveSectionValidates verifies invalid records are rejected before persisting
func TestSaveSectionValidates(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	bad := &profile.Identity{HeightCM: 500}
	if err := store.SaveSection(ctx, "user-1", bad); err == nil {
		t.Error("Expected validation error for out-of-range height")
	}

	// Nothing should have been written
	got, err := store.GetSection(ctx, "user-1", profile.SectionIdentity)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if got.(*profile.Identity).HeightCM != 0 {
		t.Error("Invalid record should not have been persisted")
	}
}

// TestSaveSectionRequiresUserID verifies empty user IDs are rejected
func TestSaveSectionRequiresUserID(t *testing.T) {
	store := newTestStorage(t)

	if err := store.SaveSection(context.Background(), "", &profile.Health{}); err == nil {
		t.Error("Expected error for empty user ID")
	}
}

// TestSaveSectionUpsert verifies a second save replaces the first
func TestSaveSectionUpsert(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveSection(ctx, "user-1", &profile.Health{SleepHours: 7}); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}
	if err := store.SaveSection(ctx, "user-1", &profile.Health{SleepHours: 8.5}); err != nil {
		t.Fatalf("Second SaveSection failed: %v", err)
	}

	got, err := store.GetSection(ctx, "user-1", profile.SectionHealth)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if got.(*profile.Health).SleepHours != 8.5 {
		t.Errorf("Expected sleep hours 8.5, got %v", got.(*profile.Health).SleepHours)
	}
}

// TestGetProfileAssemblesSections verifies GetProfile loads all saved sections
func TestGetProfileAssemblesSections(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveSection(ctx, "user-1", &profile.Identity{DisplayName: "Ada"}); err != nil {
		t.Fatalf("SaveSection identity failed: %v", err)
	}
	if err := store.SaveSection(ctx, "user-1", &profile.Training{
		Experience:  profile.ExperienceIntermediate,
		DaysPerWeek: 4,
	}); err != nil {
		t.Fatalf("SaveSection training failed: %v", err)
	}

	p, err := store.GetProfile(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetProfile failed: %v", err)
	}

	if p.UserID != "user-1" {
		t.Errorf("Expected user ID user-1, got %q", p.UserID)
	}
	if p.Identity.DisplayName != "Ada" {
		t.Errorf("Expected display name Ada, got %q", p.Identity.DisplayName)
	}
	if p.Training.DaysPerWeek != 4 {
		t.Errorf("Expected 4 training days, got %d", p.Training.DaysPerWeek)
	}
	// Unsaved sections come back zero-valued, not nil
	if p.Nutrition.MealsPerDay != 0 {
		t.Errorf("Expected empty nutrition section, got %+v", p.Nutrition)
	}
	if p.UpdatedAt.IsZero() {
		t.Error("Expected UpdatedAt to be set from stored sections")
	}
}

// TestSectionsIsolatedByUser verifies one user's data does not leak to another
func TestSectionsIsolatedByUser(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SaveSection(ctx, "user-a", &profile.Identity{DisplayName: "A"}); err != nil {
		t.Fatalf("SaveSection failed: %v", err)
	}

	got, err := store.GetSection(ctx, "user-b", profile.SectionIdentity)
	if err != nil {
		t.Fatalf("GetSection failed: %v", err)
	}
	if got.(*profile.Identity).DisplayName != "" {
		t.Error("user-b should not see user-a's identity section")
	}
}

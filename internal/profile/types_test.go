package profile

import (
	"strings"
	"testing"
)

func TestSectionIsValid(t *testing.T) {
	tests := []struct {
		name     string
		section  Section
		expected bool
	}{
		{"identity", SectionIdentity, true},
		{"nutrition", SectionNutrition, true},
		{"health", SectionHealth, true},
		{"fasting", SectionFasting, true},
		{"cycle", SectionCycle, true},
		{"training", SectionTraining, true},
		{"empty", Section(""), false},
		{"unknown", Section("astrology"), false},
		{"uppercase", Section("IDENTITY"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.section.IsValid(); got != tt.expected {
				t.Errorf("IsValid(%q) = %v, expected %v", tt.section, got, tt.expected)
			}
		})
	}
}

func TestIdentityValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      Identity
		wantErr string
	}{
		{"empty is valid", Identity{}, ""},
		{"full is valid", Identity{DisplayName: "Ada", BirthDate: "1990-04-01", Sex: SexFemale, HeightCM: 170, WeightKG: 62, Timezone: "Europe/Paris"}, ""},
		{"name too long", Identity{DisplayName: strings.Repeat("x", 101)}, "display_name"},
		{"bad birth date", Identity{BirthDate: "01/04/1990"}, "birth_date"},
		{"bad sex", Identity{Sex: Sex("unknown")}, "sex"},
		{"height too low", Identity{HeightCM: 30}, "height_cm"},
		{"weight too high", Identity{WeightKG: 900}, "weight_kg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.id.Validate()
			checkValidation(t, err, tt.wantErr)
		})
	}
}

func TestNutritionValidate(t *testing.T) {
	tests := []struct {
		name    string
		n       Nutrition
		wantErr string
	}{
		{"empty is valid", Nutrition{}, ""},
		{"full is valid", Nutrition{DietStyle: DietVegan, Allergies: []string{"peanuts"}, MealsPerDay: 3, CalorieTarget: 2000}, ""},
		{"bad diet", Nutrition{DietStyle: DietStyle("carnivore")}, "diet_style"},
		{"too many meals", Nutrition{MealsPerDay: 9}, "meals_per_day"},
		{"calorie target too low", Nutrition{CalorieTarget: 500}, "calorie_target"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, tt.n.Validate(), tt.wantErr)
		})
	}
}

func TestFastingValidate(t *testing.T) {
	tests := []struct {
		name    string
		f       Fasting
		wantErr string
	}{
		{"empty is valid", Fasting{}, ""},
		{"sixteen eight", Fasting{Protocol: Fasting16x8, WindowStart: "12:00", WindowHours: 8, Aggressiveness: AggressivenessModerate}, ""},
		{"bad protocol", Fasting{Protocol: FastingProtocol("12:12")}, "protocol"},
		{"bad aggressiveness", Fasting{Aggressiveness: FastingAggressiveness("brutal")}, "aggressiveness"},
		{"bad window start", Fasting{WindowStart: "noon"}, "window_start"},
		{"window too long", Fasting{WindowHours: 24}, "window_hours"},
		{"omad window too wide", Fasting{Protocol: FastingOMAD, WindowHours: 6}, "omad"},
		{"omad with tight window", Fasting{Protocol: FastingOMAD, WindowStart: "18:00", WindowHours: 1}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, tt.f.Validate(), tt.wantErr)
		})
	}
}

func TestCycleValidate(t *testing.T) {
	tests := []struct {
		name    string
		c       Cycle
		wantErr string
	}{
		{"empty is valid", Cycle{}, ""},
		{"tracking with lengths", Cycle{TrackingEnabled: true, CycleLengthDays: 28, PeriodLengthDays: 5, LastPeriodStart: "2026-08-01"}, ""},
		{"cycle too short", Cycle{CycleLengthDays: 10}, "cycle_length_days"},
		{"period too long", Cycle{PeriodLengthDays: 14}, "period_length_days"},
		{"bad date", Cycle{LastPeriodStart: "August 1st"}, "last_period_start"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, tt.c.Validate(), tt.wantErr)
		})
	}
}

func TestTrainingValidate(t *testing.T) {
	tests := []struct {
		name    string
		tr      Training
		wantErr string
	}{
		{"empty is valid", Training{}, ""},
		{"full is valid", Training{Experience: ExperienceIntermediate, DaysPerWeek: 4, FocusAreas: []string{"pull"}, Equipment: []string{"rings"}}, ""},
		{"bad experience", Training{Experience: ExperienceLevel("elite")}, "experience"},
		{"too many days", Training{DaysPerWeek: 8}, "days_per_week"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkValidation(t, tt.tr.Validate(), tt.wantErr)
		})
	}
}

func TestProfileRecordLookup(t *testing.T) {
	p := &Profile{UserID: "user-1"}
	for _, section := range AllSections() {
		record, err := p.Record(section)
		if err != nil {
			t.Fatalf("Record(%s) failed: %v", section, err)
		}
		if record.Section() != section {
			t.Errorf("Record(%s).Section() = %s", section, record.Section())
		}
	}

	if _, err := p.Record(Section("bogus")); err == nil {
		t.Error("expected error for unknown section")
	}
}

// checkValidation asserts err matches the expected substring (empty = no error).
func checkValidation(t *testing.T, err error, want string) {
	t.Helper()
	if want == "" {
		if err != nil {
			t.Errorf("unexpected validation error: %v", err)
		}
		return
	}
	if err == nil {
		t.Errorf("expected error containing %q, got nil", want)
		return
	}
	if !strings.Contains(err.Error(), want) {
		t.Errorf("expected error containing %q, got %q", want, err.Error())
	}
}

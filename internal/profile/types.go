// Package profile defines the typed records behind the product's profile tabs.
//
// Backend rows arrive as loosely-typed maps. Everything past the boundary
// operates on the validated types in this package; DecodeSection is the one
// place loose data is allowed in.
package profile

import (
	"fmt"
	"time"
)

// Section identifies one profile tab.
type Section string

const (
	SectionIdentity  Section = "identity"
	SectionNutrition Section = "nutrition"
	SectionHealth    Section = "health"
	SectionFasting   Section = "fasting"
	SectionCycle     Section = "cycle"
	SectionTraining  Section = "training"
)

// IsValid checks if the section value is valid.
func (s Section) IsValid() bool {
	switch s {
	case SectionIdentity, SectionNutrition, SectionHealth,
		SectionFasting, SectionCycle, SectionTraining:
		return true
	}
	return false
}

// AllSections returns every section in display order.
func AllSections() []Section {
	return []Section{
		SectionIdentity, SectionNutrition, SectionHealth,
		SectionFasting, SectionCycle, SectionTraining,
	}
}

// ParseSection converts a string to a Section.
func ParseSection(s string) (Section, error) {
	section := Section(s)
	if !section.IsValid() {
		return "", fmt.Errorf("unknown profile section: %q", s)
	}
	return section, nil
}

// Record is one profile section's typed form state.
type Record interface {
	// Section identifies which tab this record belongs to.
	Section() Section
	// Validate checks field values before persistence.
	Validate() error
	// Fields returns the tracked value object handed to the dirty tracker
	// and serialized for storage. Keys match the json tags.
	Fields() map[string]interface{}
}

// Profile is the full digital-twin profile for one user.
type Profile struct {
	UserID    string    `json:"user_id"`
	Identity  Identity  `json:"identity"`
	Nutrition Nutrition `json:"nutrition"`
	Health    Health    `json:"health"`
	Fasting   Fasting   `json:"fasting"`
	Cycle     Cycle     `json:"cycle"`
	Training  Training  `json:"training"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record returns the typed record for one of the profile's sections.
func (p *Profile) Record(section Section) (Record, error) {
	switch section {
	case SectionIdentity:
		return &p.Identity, nil
	case SectionNutrition:
		return &p.Nutrition, nil
	case SectionHealth:
		return &p.Health, nil
	case SectionFasting:
		return &p.Fasting, nil
	case SectionCycle:
		return &p.Cycle, nil
	case SectionTraining:
		return &p.Training, nil
	}
	return nil, fmt.Errorf("unknown profile section: %q", section)
}

// Sex is the biological sex used for calorie and cycle modeling.
type Sex string

const (
	SexFemale      Sex = "female"
	SexMale        Sex = "male"
	SexOther       Sex = "other"
	SexUnspecified Sex = ""
)

// IsValid checks if the sex value is valid.
func (s Sex) IsValid() bool {
	switch s {
	case SexFemale, SexMale, SexOther, SexUnspecified:
		return true
	}
	return false
}

// Identity is the who-am-I tab: name, birth date, body metrics.
type Identity struct {
	DisplayName string  `json:"display_name"`
	BirthDate   string  `json:"birth_date"` // YYYY-MM-DD, empty when unset
	Sex         Sex     `json:"sex"`
	HeightCM    float64 `json:"height_cm"`
	WeightKG    float64 `json:"weight_kg"`
	Timezone    string  `json:"timezone"`
}

// Section implements Record.
func (i *Identity) Section() Section { return SectionIdentity }

// Validate checks if the identity fields have valid values.
func (i *Identity) Validate() error {
	if len(i.DisplayName) > 100 {
		return fmt.Errorf("display_name must be 100 characters or less (got %d)", len(i.DisplayName))
	}
	if i.BirthDate != "" {
		if _, err := time.Parse("2006-01-02", i.BirthDate); err != nil {
			return fmt.Errorf("birth_date must be YYYY-MM-DD (got %q)", i.BirthDate)
		}
	}
	if !i.Sex.IsValid() {
		return fmt.Errorf("invalid sex: %q", i.Sex)
	}
	if i.HeightCM != 0 && (i.HeightCM < 50 || i.HeightCM > 260) {
		return fmt.Errorf("height_cm must be between 50 and 260 (got %g)", i.HeightCM)
	}
	if i.WeightKG != 0 && (i.WeightKG < 20 || i.WeightKG > 500) {
		return fmt.Errorf("weight_kg must be between 20 and 500 (got %g)", i.WeightKG)
	}
	return nil
}

// DietStyle categorizes the user's eating pattern.
type DietStyle string

const (
	DietOmnivore    DietStyle = "omnivore"
	DietVegetarian  DietStyle = "vegetarian"
	DietVegan       DietStyle = "vegan"
	DietPescatarian DietStyle = "pescatarian"
	DietKeto        DietStyle = "keto"
	DietUnspecified DietStyle = ""
)

// IsValid checks if the diet style value is valid.
func (d DietStyle) IsValid() bool {
	switch d {
	case DietOmnivore, DietVegetarian, DietVegan, DietPescatarian,
		DietKeto, DietUnspecified:
		return true
	}
	return false
}

// Nutrition is the nutrition tab: diet, allergies, targets.
type Nutrition struct {
	DietStyle     DietStyle `json:"diet_style"`
	Allergies     []string  `json:"allergies"`
	ExcludedFoods []string  `json:"excluded_foods"`
	MealsPerDay   int       `json:"meals_per_day"`
	CalorieTarget int       `json:"calorie_target"`
}

// Section implements Record.
func (n *Nutrition) Section() Section { return SectionNutrition }

// Validate checks if the nutrition fields have valid values.
func (n *Nutrition) Validate() error {
	if !n.DietStyle.IsValid() {
		return fmt.Errorf("invalid diet_style: %q", n.DietStyle)
	}
	if n.MealsPerDay != 0 && (n.MealsPerDay < 1 || n.MealsPerDay > 8) {
		return fmt.Errorf("meals_per_day must be between 1 and 8 (got %d)", n.MealsPerDay)
	}
	if n.CalorieTarget != 0 && (n.CalorieTarget < 800 || n.CalorieTarget > 6000) {
		return fmt.Errorf("calorie_target must be between 800 and 6000 (got %d)", n.CalorieTarget)
	}
	return nil
}

// StressLevel is the self-reported baseline stress.
type StressLevel string

const (
	StressLow         StressLevel = "low"
	StressModerate    StressLevel = "moderate"
	StressHigh        StressLevel = "high"
	StressUnspecified StressLevel = ""
)

// IsValid checks if the stress level value is valid.
func (s StressLevel) IsValid() bool {
	switch s {
	case StressLow, StressModerate, StressHigh, StressUnspecified:
		return true
	}
	return false
}

// Health is the health tab: conditions, medications, vitals.
type Health struct {
	Conditions  []string    `json:"conditions"`
	Medications []string    `json:"medications"`
	SleepHours  float64     `json:"sleep_hours"`
	RestingHR   int         `json:"resting_hr"`
	StressLevel StressLevel `json:"stress_level"`
}

// Section implements Record.
func (h *Health) Section() Section { return SectionHealth }

// Validate checks if the health fields have valid values.
func (h *Health) Validate() error {
	if h.SleepHours != 0 && (h.SleepHours < 2 || h.SleepHours > 14) {
		return fmt.Errorf("sleep_hours must be between 2 and 14 (got %g)", h.SleepHours)
	}
	if h.RestingHR != 0 && (h.RestingHR < 25 || h.RestingHR > 120) {
		return fmt.Errorf("resting_hr must be between 25 and 120 (got %d)", h.RestingHR)
	}
	if !h.StressLevel.IsValid() {
		return fmt.Errorf("invalid stress_level: %q", h.StressLevel)
	}
	return nil
}

// FastingProtocol identifies a fasting schedule.
type FastingProtocol string

const (
	Fasting16x8        FastingProtocol = "16:8"
	Fasting18x6        FastingProtocol = "18:6"
	Fasting20x4        FastingProtocol = "20:4"
	FastingOMAD        FastingProtocol = "omad"
	FastingCustom      FastingProtocol = "custom"
	FastingUnspecified FastingProtocol = ""
)

// IsValid checks if the fasting protocol value is valid.
func (p FastingProtocol) IsValid() bool {
	switch p {
	case Fasting16x8, Fasting18x6, Fasting20x4, FastingOMAD,
		FastingCustom, FastingUnspecified:
		return true
	}
	return false
}

// FastingAggressiveness is how hard the coach pushes the fasting schedule.
type FastingAggressiveness string

const (
	AggressivenessGentle      FastingAggressiveness = "gentle"
	AggressivenessModerate    FastingAggressiveness = "moderate"
	AggressivenessAggressive  FastingAggressiveness = "aggressive"
	AggressivenessUnspecified FastingAggressiveness = ""
)

// IsValid checks if the aggressiveness value is valid.
func (a FastingAggressiveness) IsValid() bool {
	switch a {
	case AggressivenessGentle, AggressivenessModerate,
		AggressivenessAggressive, AggressivenessUnspecified:
		return true
	}
	return false
}

// Fasting is the fasting tab: protocol, eating window and coaching intensity.
type Fasting struct {
	Protocol       FastingProtocol       `json:"protocol"`
	WindowStart    string                `json:"window_start"` // HH:MM, empty when unset
	WindowHours    int                   `json:"window_hours"`
	Aggressiveness FastingAggressiveness `json:"aggressiveness"`
}

// Section implements Record.
func (f *Fasting) Section() Section { return SectionFasting }

// Validate checks if the fasting fields have valid values.
func (f *Fasting) Validate() error {
	if !f.Protocol.IsValid() {
		return fmt.Errorf("invalid protocol: %q", f.Protocol)
	}
	if f.WindowStart != "" {
		if _, err := time.Parse("15:04", f.WindowStart); err != nil {
			return fmt.Errorf("window_start must be HH:MM (got %q)", f.WindowStart)
		}
	}
	if f.WindowHours != 0 && (f.WindowHours < 1 || f.WindowHours > 23) {
		return fmt.Errorf("window_hours must be between 1 and 23 (got %d)", f.WindowHours)
	}
	if f.Protocol == FastingOMAD && f.WindowHours > 2 {
		return fmt.Errorf("omad protocol allows a window of at most 2 hours (got %d)", f.WindowHours)
	}
	if !f.Aggressiveness.IsValid() {
		return fmt.Errorf("invalid aggressiveness: %q", f.Aggressiveness)
	}
	return nil
}

// Cycle is the menstrual/reproductive health tab.
type Cycle struct {
	TrackingEnabled  bool   `json:"tracking_enabled"`
	CycleLengthDays  int    `json:"cycle_length_days"`
	PeriodLengthDays int    `json:"period_length_days"`
	LastPeriodStart  string `json:"last_period_start"` // YYYY-MM-DD, empty when unset
}

// Section implements Record.
func (c *Cycle) Section() Section { return SectionCycle }

// Validate checks if the cycle fields have valid values.
func (c *Cycle) Validate() error {
	if c.CycleLengthDays != 0 && (c.CycleLengthDays < 20 || c.CycleLengthDays > 45) {
		return fmt.Errorf("cycle_length_days must be between 20 and 45 (got %d)", c.CycleLengthDays)
	}
	if c.PeriodLengthDays != 0 && (c.PeriodLengthDays < 1 || c.PeriodLengthDays > 10) {
		return fmt.Errorf("period_length_days must be between 1 and 10 (got %d)", c.PeriodLengthDays)
	}
	if c.LastPeriodStart != "" {
		if _, err := time.Parse("2006-01-02", c.LastPeriodStart); err != nil {
			return fmt.Errorf("last_period_start must be YYYY-MM-DD (got %q)", c.LastPeriodStart)
		}
	}
	return nil
}

// ExperienceLevel categorizes training experience.
type ExperienceLevel string

const (
	ExperienceBeginner     ExperienceLevel = "beginner"
	ExperienceIntermediate ExperienceLevel = "intermediate"
	ExperienceAdvanced     ExperienceLevel = "advanced"
	ExperienceUnspecified  ExperienceLevel = ""
)

// IsValid checks if the experience level value is valid.
func (e ExperienceLevel) IsValid() bool {
	switch e {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced,
		ExperienceUnspecified:
		return true
	}
	return false
}

// Training is the training tab: experience, cadence, focus.
type Training struct {
	Experience  ExperienceLevel `json:"experience"`
	DaysPerWeek int             `json:"days_per_week"`
	FocusAreas  []string        `json:"focus_areas"`
	Equipment   []string        `json:"equipment"`
}

// Section implements Record.
func (t *Training) Section() Section { return SectionTraining }

// Validate checks if the training fields have valid values.
func (t *Training) Validate() error {
	if !t.Experience.IsValid() {
		return fmt.Errorf("invalid experience: %q", t.Experience)
	}
	if t.DaysPerWeek < 0 || t.DaysPerWeek > 7 {
		return fmt.Errorf("days_per_week must be between 0 and 7 (got %d)", t.DaysPerWeek)
	}
	return nil
}

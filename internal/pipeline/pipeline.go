// Package pipeline holds the meal-plan/shopping-list flow state.
//
// In the product this was an ambient global store; here it is an explicit
// owned container passed to whatever needs it, with Reset as the teardown
// point at navigation or explicit clear. One writer drives the flow while
// any number of readers render it, hence the RWMutex.
package pipeline

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/halcyonlab/twin/internal/events"
)

// Stage represents where the meal-plan flow currently is.
type Stage string

const (
	// StageIdle means no plan is being built
	StageIdle Stage = "idle"
	// StagePlanning means plan generation is in progress
	StagePlanning Stage = "planning"
	// StagePlanReady means a plan exists and can be turned into a shopping list
	StagePlanReady Stage = "plan_ready"
	// StageShoppingList means the shopping list has been derived from the plan
	StageShoppingList Stage = "shopping_list"
)

// IsValid checks if the stage value is valid.
func (s Stage) IsValid() bool {
	switch s {
	case StageIdle, StagePlanning, StagePlanReady, StageShoppingList:
		return true
	}
	return false
}

// MealSlot identifies a meal within a day.
type MealSlot string

const (
	SlotBreakfast MealSlot = "breakfast"
	SlotLunch     MealSlot = "lunch"
	SlotDinner    MealSlot = "dinner"
	SlotSnack     MealSlot = "snack"
)

// IsValid checks if the meal slot value is valid.
func (m MealSlot) IsValid() bool {
	switch m {
	case SlotBreakfast, SlotLunch, SlotDinner, SlotSnack:
		return true
	}
	return false
}

// PlannedMeal is one entry in a weekly meal plan.
type PlannedMeal struct {
	// Day is the day offset within the plan week, 0-6
	Day int `json:"day"`
	// Slot is which meal of the day this is
	Slot MealSlot `json:"slot"`
	// Name is the dish name
	Name string `json:"name"`
	// Calories is the estimated energy for the meal (0 = unknown)
	Calories int `json:"calories"`
}

// Validate checks if the planned meal has valid field values.
func (m *PlannedMeal) Validate() error {
	if m.Day < 0 || m.Day > 6 {
		return fmt.Errorf("day must be between 0 and 6 (got %d)", m.Day)
	}
	if !m.Slot.IsValid() {
		return fmt.Errorf("invalid slot: %q", m.Slot)
	}
	if m.Name == "" {
		return fmt.Errorf("name is required")
	}
	if m.Calories < 0 {
		return fmt.Errorf("calories cannot be negative (got %d)", m.Calories)
	}
	return nil
}

// MealPlan is a week of planned meals.
type MealPlan struct {
	// ID is the unique identifier for this plan
	ID string `json:"id"`
	// WeekStart is the Monday the plan covers, YYYY-MM-DD
	WeekStart string `json:"week_start"`
	// Meals are the planned entries
	Meals []PlannedMeal `json:"meals"`
}

// Validate checks if the meal plan has valid field values.
func (p *MealPlan) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("id is required")
	}
	if p.WeekStart != "" {
		if _, err := time.Parse("2006-01-02", p.WeekStart); err != nil {
			return fmt.Errorf("week_start must be YYYY-MM-DD (got %q)", p.WeekStart)
		}
	}
	if len(p.Meals) == 0 {
		return fmt.Errorf("plan must contain at least one meal")
	}
	for i := range p.Meals {
		if err := p.Meals[i].Validate(); err != nil {
			return fmt.Errorf("meal %d: %w", i, err)
		}
	}
	return nil
}

// clone returns an independent copy so pipeline state cannot be mutated
// through handed-out plans.
func (p *MealPlan) clone() *MealPlan {
	if p == nil {
		return nil
	}
	out := *p
	out.Meals = append([]PlannedMeal(nil), p.Meals...)
	return &out
}

// ShoppingItem is one line of the derived shopping list.
type ShoppingItem struct {
	// Name is the ingredient name
	Name string `json:"name"`
	// Quantity is how much to buy, in Unit
	Quantity float64 `json:"quantity"`
	// Unit is the measurement unit ("g", "ml", "pcs", ...)
	Unit string `json:"unit"`
	// Checked marks the item as already picked up
	Checked bool `json:"checked"`
}

// Validate checks if the shopping item has valid field values.
func (s *ShoppingItem) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Quantity < 0 {
		return fmt.Errorf("quantity cannot be negative (got %g)", s.Quantity)
	}
	return nil
}

// Pipeline is the owned state container for one user's meal-plan flow.
type Pipeline struct {
	mu     sync.RWMutex
	stage  Stage
	plan   *MealPlan
	items  []ShoppingItem
	userID string
	sink   events.Sink
	logger *zap.Logger
}

// Config configures a Pipeline.
type Config struct {
	// UserID identifies the owner for emitted events.
	UserID string
	// Sink receives stage-change diagnostics; nil means none.
	Sink events.Sink
	// Logger receives transition logs; nil means no logging.
	Logger *zap.Logger
}

// New creates an idle pipeline.
func New(cfg Config) *Pipeline {
	sink := cfg.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		stage:  StageIdle,
		userID: cfg.UserID,
		sink:   sink,
		logger: logger,
	}
}

// Stage returns the current stage.
func (p *Pipeline) Stage() Stage {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.stage
}

// BeginPlanning moves Idle -> Planning.
func (p *Pipeline) BeginPlanning() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StageIdle {
		return fmt.Errorf("cannot begin planning from stage %q", p.stage)
	}
	p.setStage(StagePlanning)
	return nil
}

// SetPlan installs a validated plan, moving Planning -> PlanReady.
func (p *Pipeline) SetPlan(plan *MealPlan) error {
	if plan == nil {
		return fmt.Errorf("plan is required")
	}
	if err := plan.Validate(); err != nil {
		return fmt.Errorf("invalid meal plan: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StagePlanning {
		return fmt.Errorf("cannot install a plan from stage %q", p.stage)
	}
	p.plan = plan.clone()
	p.setStage(StagePlanReady)
	return nil
}

// Plan returns a copy of the installed plan, or nil before PlanReady.
func (p *Pipeline) Plan() *MealPlan {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.plan.clone()
}

// SetShoppingList installs the derived list, moving PlanReady -> ShoppingList.
// A list cannot exist before a plan does.
func (p *Pipeline) SetShoppingList(items []ShoppingItem) error {
	for i := range items {
		if err := items[i].Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage != StagePlanReady {
		return fmt.Errorf("cannot install a shopping list from stage %q", p.stage)
	}
	p.items = append([]ShoppingItem(nil), items...)
	p.setStage(StageShoppingList)
	return nil
}

// ShoppingList returns a copy of the derived list.
func (p *Pipeline) ShoppingList() []ShoppingItem {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return append([]ShoppingItem(nil), p.items...)
}

// Reset clears the flow back to Idle. Called on navigation away or explicit
// clear; safe to call at any stage.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stage == StageIdle && p.plan == nil && p.items == nil {
		return
	}
	p.stage = StageIdle
	p.plan = nil
	p.items = nil

	p.logger.Debug("pipeline reset", zap.String("user_id", p.userID))
	p.sink.Emit(events.NewSimpleEvent(
		events.EventTypePipelineReset,
		p.userID, "", "meal-plan-pipeline",
		events.SeverityInfo,
		"meal plan pipeline cleared"))
}

// setStage updates the stage and emits the transition. Callers hold p.mu.
func (p *Pipeline) setStage(next Stage) {
	from := p.stage
	p.stage = next

	p.logger.Debug("pipeline stage changed",
		zap.String("user_id", p.userID),
		zap.String("from", string(from)),
		zap.String("to", string(next)))

	event, err := events.NewStageChangeEvent(
		p.userID,
		fmt.Sprintf("meal plan pipeline: %s -> %s", from, next),
		events.StageChangeData{From: string(from), To: string(next)})
	if err != nil {
		return
	}
	p.sink.Emit(event)
}

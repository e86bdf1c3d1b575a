package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// NewRecord returns an empty typed record for a section.
func NewRecord(section Section) (Record, error) {
	switch section {
	case SectionIdentity:
		return &Identity{}, nil
	case SectionNutrition:
		return &Nutrition{}, nil
	case SectionHealth:
		return &Health{}, nil
	case SectionFasting:
		return &Fasting{}, nil
	case SectionCycle:
		return &Cycle{}, nil
	case SectionTraining:
		return &Training{}, nil
	}
	return nil, fmt.Errorf("unknown profile section: %q", section)
}

// DecodeSection validates a loosely-typed row into the section's typed record.
// Unknown keys are rejected and type mismatches produce field-qualified
// errors, so schema drift in the backend surfaces here instead of deep inside
// the form layer. The decoded record is also run through Validate.
func DecodeSection(section Section, row map[string]interface{}) (Record, error) {
	record, err := NewRecord(section)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(row)
	if err != nil {
		return nil, fmt.Errorf("section %s: row is not JSON-serializable: %w", section, err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(record); err != nil {
		return nil, decodeError(section, err)
	}

	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("section %s: %w", section, err)
	}
	return record, nil
}

// decodeError rewrites json decoding failures into boundary errors that name
// the offending field.
func decodeError(section Section, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Errorf("section %s: field %q: expected %s, got %s",
			section, typeErr.Field, typeErr.Type, typeErr.Value)
	}
	if msg := err.Error(); strings.Contains(msg, "unknown field") {
		return fmt.Errorf("section %s: %s", section, msg)
	}
	return fmt.Errorf("section %s: malformed row: %w", section, err)
}

// fieldsOf converts a record to its tracked value object via a JSON round
// trip, so keys always match the json tags used in storage.
func fieldsOf(record Record) map[string]interface{} {
	raw, err := json.Marshal(record)
	if err != nil {
		// Records are plain JSON structs; this is unreachable in practice.
		return map[string]interface{}{}
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}

// Fields implements Record.
func (i *Identity) Fields() map[string]interface{} { return fieldsOf(i) }

// Fields implements Record.
func (n *Nutrition) Fields() map[string]interface{} { return fieldsOf(n) }

// Fields implements Record.
func (h *Health) Fields() map[string]interface{} { return fieldsOf(h) }

// Fields implements Record.
func (f *Fasting) Fields() map[string]interface{} { return fieldsOf(f) }

// Fields implements Record.
func (c *Cycle) Fields() map[string]interface{} { return fieldsOf(c) }

// Fields implements Record.
func (t *Training) Fields() map[string]interface{} { return fieldsOf(t) }

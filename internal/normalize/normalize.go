// Package normalize canonicalizes JSON-like form values for change detection.
//
// Backends and form libraries disagree about how "no value" is spelled: a field
// the user never touched may come back as nil, "", [] or {} depending on which
// layer produced it. Comparing raw values therefore reports phantom edits.
// Normalize collapses all of those spellings into the single Absent marker so
// that equality checks only see meaningful differences.
package normalize

import (
	"reflect"
	"sort"
)

// AbsentValue is the canonical representation of a missing value.
// nil, empty strings, empty slices and empty maps all normalize to Absent.
type AbsentValue struct{}

// Absent is the singleton marker produced by Normalize for empty values.
var Absent = AbsentValue{}

// IsAbsent reports whether v is the Absent marker.
func IsAbsent(v interface{}) bool {
	_, ok := v.(AbsentValue)
	return ok
}

// Normalize returns the canonical representation of a JSON-like value.
//
// Rules:
//   - nil, "" and nil pointers become Absent
//   - empty slices and empty maps become Absent
//   - non-empty slices keep their length; elements are normalized in place
//   - maps keep only keys whose normalized value is present; a map with no
//     surviving keys becomes Absent
//   - booleans pass through untouched (false is a real answer, not a gap)
//   - numbers and non-empty strings pass through untouched
//
// Normalize never mutates its input and never fails. Cyclic structures are out
// of contract: form values are plain JSON trees.
func Normalize(v interface{}) interface{} {
	if v == nil {
		return Absent
	}

	switch val := v.(type) {
	case AbsentValue:
		return Absent
	case string:
		if val == "" {
			return Absent
		}
		return val
	case bool:
		return val
	case map[string]interface{}:
		return normalizeMap(val)
	case []interface{}:
		return normalizeSlice(val)
	}

	// Typed Go values ([]string, map[string]int, *T, ...) arrive when callers
	// build field maps by hand rather than through a JSON round-trip.
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return Absent
		}
		return Normalize(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		generic := make([]interface{}, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			generic[i] = rv.Index(i).Interface()
		}
		return normalizeSlice(generic)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		generic := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			generic[iter.Key().String()] = iter.Value().Interface()
		}
		return normalizeMap(generic)
	}

	return v
}

func normalizeSlice(s []interface{}) interface{} {
	if len(s) == 0 {
		return Absent
	}
	out := make([]interface{}, len(s))
	for i, elem := range s {
		out[i] = Normalize(elem)
	}
	return out
}

func normalizeMap(m map[string]interface{}) interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		nv := Normalize(v)
		if IsAbsent(nv) {
			continue
		}
		out[k] = nv
	}
	if len(out) == 0 {
		return Absent
	}
	return out
}

// Equal structurally compares two normalized values.
//
// Slices are order-sensitive and must match pairwise; maps must have the same
// key set with equal values per key. Numbers compare by value across int and
// float representations, since a trip through JSON turns every int into a
// float64. Inputs are assumed finite and acyclic.
func Equal(a, b interface{}) bool {
	if IsAbsent(a) || IsAbsent(b) {
		return IsAbsent(a) && IsAbsent(b)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	if an, aok := numericValue(a); aok {
		bn, bok := numericValue(b)
		return bok && an == bn
	}

	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []interface{}:
		bv, ok := b.([]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]interface{}:
		bv, ok := b.(map[string]interface{})
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			other, present := bv[k]
			if !present || !Equal(v, other) {
				return false
			}
		}
		return true
	}

	// Unrecognized scalar types (time.Time and friends) fall back to deep
	// equality on the raw values.
	return reflect.DeepEqual(a, b)
}

// numericValue converts int and float variants to float64 for comparison.
func numericValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// ChangedKeys returns the sorted top-level keys whose normalized values differ
// between snapshot and current. Keys present in only one map count as changed
// unless the present side normalizes to Absent.
func ChangedKeys(snapshot, current map[string]interface{}) []string {
	keys := make(map[string]struct{}, len(snapshot)+len(current))
	for k := range snapshot {
		keys[k] = struct{}{}
	}
	for k := range current {
		keys[k] = struct{}{}
	}

	var changed []string
	for k := range keys {
		var before, after interface{} = Absent, Absent
		if v, ok := snapshot[k]; ok {
			before = Normalize(v)
		}
		if v, ok := current[k]; ok {
			after = Normalize(v)
		}
		if !Equal(before, after) {
			changed = append(changed, k)
		}
	}
	sort.Strings(changed)
	return changed
}

package profile

import (
	"math"
	"sort"

	"github.com/halcyonlab/twin/internal/normalize"
)

// CompletionReport summarizes how much of the profile has been filled in.
// The product surfaces Overall as the "profile completeness" ring.
type CompletionReport struct {
	// Overall is the weighted completion percentage across sections, 0-100.
	Overall int
	// Sections is the per-section completion percentage, 0-100.
	Sections map[Section]int
	// MissingFields lists the unanswered fields per section, sorted.
	MissingFields map[Section][]string
}

// Completion scores a profile. Weights are per-section and default to equal
// when nil or when a section is omitted; a zero weight excludes a section
// (the cycle tab is commonly excluded for users who disable tracking).
func Completion(p *Profile, weights map[Section]float64) CompletionReport {
	report := CompletionReport{
		Sections:      make(map[Section]int, len(AllSections())),
		MissingFields: make(map[Section][]string, len(AllSections())),
	}

	var weightedSum, weightTotal float64
	for _, section := range AllSections() {
		record, err := p.Record(section)
		if err != nil {
			continue
		}
		percent, missing := sectionCompletion(record)
		report.Sections[section] = percent
		report.MissingFields[section] = missing

		weight := 1.0
		if weights != nil {
			w, ok := weights[section]
			if ok {
				weight = w
			}
			if ok && w == 0 {
				continue
			}
		}
		weightedSum += weight * float64(percent)
		weightTotal += weight
	}

	if weightTotal > 0 {
		report.Overall = int(math.Round(weightedSum / weightTotal))
	}
	return report
}

// sectionCompletion returns the percentage of answered fields and the names
// of the unanswered ones.
func sectionCompletion(record Record) (int, []string) {
	fields := record.Fields()
	if len(fields) == 0 {
		return 0, nil
	}

	var missing []string
	answered := 0
	for name, value := range fields {
		if fieldAnswered(value) {
			answered++
		} else {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)

	percent := int(math.Round(float64(answered) / float64(len(fields)) * 100))
	return percent, missing
}

// fieldAnswered reports whether a field holds a real answer. Empty values are
// unanswered per normalization; numeric zero is unanswered too, because these
// forms use 0 as "not set" for every numeric field. Boolean false is an
// answer.
func fieldAnswered(value interface{}) bool {
	nv := normalize.Normalize(value)
	if normalize.IsAbsent(nv) {
		return false
	}
	switch n := nv.(type) {
	case float64:
		return n != 0
	case int:
		return n != 0
	case int64:
		return n != 0
	}
	return true
}

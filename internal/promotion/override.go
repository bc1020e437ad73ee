package promotion

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownStudent         = errors.New("student not in results")
	ErrNotFailed              = errors.New("only failed students can be manually passed")
	ErrOverrideReasonRequired = errors.New("override reason required")
)

// ApplyOverrides marks the named failed students as manually passed. A student
// named more than once is overridden once. The ranking is kept as is; overridden students get rolls after the highest
// roll already assigned, in ranked order. The input slice is not modified.
func ApplyOverrides(results []PromotionResult, overrides []Override) ([]PromotionResult, error) {
	out := make([]PromotionResult, len(results))
	copy(out, results)

	index := make(map[string]int, len(out))
	maxRoll := 0
	for i := range out {
		index[out[i].StudentID] = i
		if out[i].NewRoll != nil && *out[i].NewRoll > maxRoll {
			maxRoll = *out[i].NewRoll
		}
	}

	applied := make(map[string]bool, len(overrides))
	for _, o := range overrides {
		i, ok := index[o.StudentID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStudent, o.StudentID)
		}
		if o.Reason == "" {
			return nil, fmt.Errorf("%w: %s", ErrOverrideReasonRequired, o.StudentID)
		}
		// repeated entries keep the first reason
		if applied[o.StudentID] {
			continue
		}
		applied[o.StudentID] = true
		if out[i].Status != StatusFailed {
			return nil, fmt.Errorf("%w: %s is %s", ErrNotFailed, o.StudentID, out[i].Status)
		}
		out[i].Status = StatusManualPassed
		out[i].OverrideReason = o.Reason
	}

	next := maxRoll + 1
	for i := range out {
		if out[i].Status != StatusManualPassed || out[i].NewRoll != nil {
			continue
		}
		roll := next
		out[i].NewRoll = &roll
		next++
	}
	return out, nil
}

// Promotable returns the passed and manually passed results, in rank order.
func Promotable(results []PromotionResult) []PromotionResult {
	var out []PromotionResult
	for _, r := range results {
		if r.Status.Promotable() {
			out = append(out, r)
		}
	}
	return out
}

// DisplayStatus is the label shown to operators. Students without any
// recorded subject are Pending whatever the engine status says.
func DisplayStatus(r PromotionResult) string {
	if r.SubjectCount == 0 {
		return "Pending"
	}
	switch r.Status {
	case StatusFailed:
		return "Failed"
	case StatusManualPassed:
		return "Manually Passed"
	default:
		return "Passed"
	}
}

// DuplicateStudentIDs lists external ids that occur more than once in the roster.
func DuplicateStudentIDs(students []StudentRecord) []string {
	seen := make(map[string]int, len(students))
	var dups []string
	for _, s := range students {
		seen[s.StudentID]++
		if seen[s.StudentID] == 2 {
			dups = append(dups, s.StudentID)
		}
	}
	return dups
}

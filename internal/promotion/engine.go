package promotion

import (
	"sort"

	"github.com/school-system/promotion/internal/grading"
)

// ComputePromotions evaluates a class roster against its exam marks and
// returns one result per roster row, ranked and with new rolls assigned to
// the passed students. It never fails: marks for unknown students are
// ignored and students without marks come back as passed with zero totals.
func ComputePromotions(students []StudentRecord, marks []MarkEntry, opts Options) []PromotionResult {
	results := make([]PromotionResult, len(students))
	byStudent := make(map[string][]int, len(students))

	for i, s := range students {
		results[i] = PromotionResult{
			ID:             s.ID,
			StudentID:      s.StudentID,
			Name:           s.Name,
			Roll:           s.Roll,
			ClassName:      s.ClassName,
			Status:         StatusPassed,
			FailedSubjects: []string{},
			SubjectMarks:   map[string]int{},
			order:          i,
			recorded:       map[string]int{},
		}
		// duplicate ids each keep their own row and see the same marks
		byStudent[s.StudentID] = append(byStudent[s.StudentID], i)
	}

	defaultPass := opts.passMarks()
	for _, m := range marks {
		idxs, ok := byStudent[m.StudentID]
		if !ok {
			continue
		}

		obtained := 0
		if m.MarksObtained != nil {
			obtained = *m.MarksObtained
		}
		threshold := defaultPass
		if m.PassMarks != nil {
			threshold = *m.PassMarks
		}

		for _, i := range idxs {
			r := &results[i]
			r.TotalMarks += obtained
			r.SubjectMarks[m.Subject] = obtained
			if m.MarksObtained != nil {
				r.recorded[m.Subject] = obtained
			} else {
				delete(r.recorded, m.Subject)
			}
			if obtained < threshold {
				r.Status = StatusFailed
				r.FailedSubjects = append(r.FailedSubjects, m.Subject)
			}
		}
	}

	grader := &grading.GPAGrader{}
	for i := range results {
		applyGPA(grader, &results[i])
	}

	rank(results)
	assignRolls(results)
	return results
}

func applyGPA(grader *grading.GPAGrader, r *PromotionResult) {
	gpa := grader.ComputeGPA(r.recorded)
	r.SubjectCount = gpa.SubjectCount
	r.GPA = gpa.GPA
	r.Grade = gpa.FinalGrade
	if r.Status == StatusFailed {
		r.GPA = 0
		r.Grade = "F"
	}
}

func statusRank(s Status) int {
	if s.Promotable() {
		return 0
	}
	return 1
}

// rank orders results by status, total marks, the subject priority groups
// and finally roster position.
func rank(results []PromotionResult) {
	scores := make(map[int][]int, len(results))
	for i := range results {
		scores[results[i].order] = groupScores(results[i].SubjectMarks)
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := &results[i], &results[j]
		if ra, rb := statusRank(a.Status), statusRank(b.Status); ra != rb {
			return ra < rb
		}
		if a.TotalMarks != b.TotalMarks {
			return a.TotalMarks > b.TotalMarks
		}
		sa, sb := scores[a.order], scores[b.order]
		for g := range sa {
			if sa[g] != sb[g] {
				return sa[g] > sb[g]
			}
		}
		return a.order < b.order
	})
}

// assignRolls numbers promotable results 1..k in their current order.
func assignRolls(results []PromotionResult) {
	next := 1
	for i := range results {
		if !results[i].Status.Promotable() {
			results[i].NewRoll = nil
			continue
		}
		roll := next
		results[i].NewRoll = &roll
		next++
	}
}

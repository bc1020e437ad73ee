package grading

import (
	"crypto/sha256"
	"fmt"
	"math"
	"sort"
	"strings"
)

const (
	RuleVersionGPA5 = "GPA5_V1"
)

// GradeResult holds computed grade information for a single subject
type GradeResult struct {
	Marks             int
	GradePoint        float64
	FinalGrade        string
	ComputationReason string
	RuleVersionHash   string
}

// GPAResult holds the aggregate over all recorded subjects of one student
type GPAResult struct {
	GPA               float64
	FinalGrade        string
	SubjectCount      int
	FailedSubjects    []string
	ComputationReason string
	RuleVersionHash   string
}

// GradePoint maps a 0-100 subject mark to its grade point and letter
func GradePoint(marks int) (float64, string) {
	switch {
	case marks >= 80:
		return 5.00, "A+"
	case marks >= 70:
		return 4.00, "A"
	case marks >= 60:
		return 3.50, "A-"
	case marks >= 50:
		return 3.00, "B"
	case marks >= 40:
		return 2.00, "C"
	case marks >= 33:
		return 1.00, "D"
	default:
		return 0.00, "F"
	}
}

// LetterForGPA maps an averaged grade point back to the letter scale.
func LetterForGPA(gpa float64) string {
	switch {
	case gpa >= 5.00:
		return "A+"
	case gpa >= 4.00:
		return "A"
	case gpa >= 3.50:
		return "A-"
	case gpa >= 3.00:
		return "B"
	case gpa >= 2.00:
		return "C"
	case gpa >= 1.00:
		return "D"
	default:
		return "F"
	}
}

// GPAGrader implements the five point secondary scale
type GPAGrader struct{}

func (g *GPAGrader) ComputeGrade(marks int) GradeResult {
	point, grade := GradePoint(marks)
	return GradeResult{
		Marks:             marks,
		GradePoint:        point,
		FinalGrade:        grade,
		ComputationReason: fmt.Sprintf("Marks: %d → Point %.2f → Grade %s", marks, point, grade),
		RuleVersionHash:   hashRuleVersion(RuleVersionGPA5),
	}
}

// ComputeGPA averages grade points over the subjects present in subjectMarks.
// Only subjects with a recorded mark belong in the map; a missing subject
// shrinks the denominator instead of counting as zero. A single F forces the
// whole result to 0.00 / F.
func (g *GPAGrader) ComputeGPA(subjectMarks map[string]int) GPAResult {
	if len(subjectMarks) == 0 {
		return GPAResult{
			ComputationReason: "No recorded marks",
			RuleVersionHash:   hashRuleVersion(RuleVersionGPA5),
		}
	}

	names := make([]string, 0, len(subjectMarks))
	for name := range subjectMarks {
		names = append(names, name)
	}
	sort.Strings(names)

	var sum float64
	var failed []string
	parts := make([]string, 0, len(names))
	for _, name := range names {
		point, grade := GradePoint(subjectMarks[name])
		if point == 0 {
			failed = append(failed, name)
		}
		sum += point
		parts = append(parts, fmt.Sprintf("%s=%s", name, grade))
	}

	result := GPAResult{
		SubjectCount:    len(names),
		FailedSubjects:  failed,
		RuleVersionHash: hashRuleVersion(RuleVersionGPA5),
	}

	if len(failed) > 0 {
		result.GPA = 0
		result.FinalGrade = "F"
		result.ComputationReason = fmt.Sprintf("%s → F in %s → GPA 0.00", strings.Join(parts, ", "), strings.Join(failed, ", "))
		return result
	}

	result.GPA = Round2(sum / float64(len(names)))
	result.FinalGrade = LetterForGPA(result.GPA)
	result.ComputationReason = fmt.Sprintf("%s → %.2f/%d = %.2f → Grade %s",
		strings.Join(parts, ", "), sum, len(names), result.GPA, result.FinalGrade)
	return result
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func hashRuleVersion(version string) string {
	hash := sha256.Sum256([]byte(version))
	return fmt.Sprintf("%x", hash[:8])
}

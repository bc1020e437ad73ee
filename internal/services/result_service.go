package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/grading"
	"github.com/school-system/promotion/internal/promotion"
)

// TabulationRow is one line of a class result sheet
type TabulationRow struct {
	Position      *int              `json:"position,omitempty"`
	StudentID     string            `json:"student_id"`
	Name          string            `json:"name"`
	Roll          string            `json:"roll"`
	SubjectMarks  map[string]int    `json:"subject_marks"`
	SubjectGrades map[string]string `json:"subject_grades"`
	TotalMarks    int               `json:"total_marks"`
	GPA           float64           `json:"gpa"`
	Grade         string            `json:"grade"`
	Status        string            `json:"status"`
}

type Tabulation struct {
	ClassName string          `json:"class_name"`
	ExamID    uuid.UUID       `json:"exam_id"`
	Rows      []TabulationRow `json:"rows"`
}

type ResultService struct {
	source           RosterSource
	defaultPassMarks int
}

func NewResultService(source RosterSource, defaultPassMarks int) *ResultService {
	return &ResultService{source: source, defaultPassMarks: defaultPassMarks}
}

// Tabulate builds the merit list of a class for one exam: GPA first, then
// total marks, then the promotion ranking. Pending students come last
// without a position.
func (s *ResultService) Tabulate(ctx context.Context, className string, examID uuid.UUID) (*Tabulation, error) {
	exam, err := s.source.FindExam(ctx, examID)
	if err != nil {
		return nil, ExamLookupError(examID, err)
	}
	if exam.ClassName != className {
		return nil, fmt.Errorf("%w: %s is for %s", ErrExamClassMismatch, exam.Name, exam.ClassName)
	}

	students, err := s.source.LoadRoster(ctx, className)
	if err != nil {
		return nil, err
	}
	marks, err := s.source.LoadMarks(ctx, className, examID)
	if err != nil {
		return nil, err
	}

	results := promotion.ComputePromotions(students, marks, promotion.Options{PassMarks: s.defaultPassMarks})

	rows := make([]TabulationRow, len(results))
	for i, r := range results {
		grades := make(map[string]string, len(r.SubjectMarks))
		for subject, m := range r.SubjectMarks {
			if !r.Recorded(subject) {
				continue
			}
			_, grades[subject] = grading.GradePoint(m)
		}
		rows[i] = TabulationRow{
			StudentID:     r.StudentID,
			Name:          r.Name,
			Roll:          r.Roll,
			SubjectMarks:  r.SubjectMarks,
			SubjectGrades: grades,
			TotalMarks:    r.TotalMarks,
			GPA:           r.GPA,
			Grade:         r.Grade,
			Status:        promotion.DisplayStatus(r),
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		pi, pj := rows[i].Status == "Pending", rows[j].Status == "Pending"
		if pi != pj {
			return !pi
		}
		if rows[i].GPA != rows[j].GPA {
			return rows[i].GPA > rows[j].GPA
		}
		return rows[i].TotalMarks > rows[j].TotalMarks
	})

	position := 1
	for i := range rows {
		if rows[i].Status == "Pending" {
			continue
		}
		p := position
		rows[i].Position = &p
		position++
	}

	return &Tabulation{ClassName: className, ExamID: examID, Rows: rows}, nil
}

package promotion

// DefaultPassMarks is used for subjects that carry no pass threshold of their own.
const DefaultPassMarks = 33

type Status string

const (
	StatusPassed       Status = "passed"
	StatusFailed       Status = "failed"
	StatusManualPassed Status = "manual_passed"
)

// Promotable reports whether a student in this status moves up a class.
func (s Status) Promotable() bool {
	return s == StatusPassed || s == StatusManualPassed
}

// StudentRecord is one row of the class roster
type StudentRecord struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Roll      string `json:"roll"`
	ClassName string `json:"class_name"`
}

// MarkEntry is one subject mark of one student. A nil MarksObtained means no
// mark was recorded; a nil PassMarks falls back to Options.PassMarks.
type MarkEntry struct {
	StudentID     string `json:"student_id"`
	Subject       string `json:"subject"`
	MarksObtained *int   `json:"marks_obtained"`
	PassMarks     *int   `json:"pass_marks,omitempty"`
}

// PromotionResult is the annotated, ranked outcome for one student
type PromotionResult struct {
	ID             string         `json:"id"`
	StudentID      string         `json:"student_id"`
	Name           string         `json:"name"`
	Roll           string         `json:"roll"`
	ClassName      string         `json:"class_name"`
	TotalMarks     int            `json:"total_marks"`
	GPA            float64        `json:"gpa"`
	Grade          string         `json:"grade"`
	Status         Status         `json:"status"`
	FailedSubjects []string       `json:"failed_subjects"`
	SubjectMarks   map[string]int `json:"subject_marks"`
	SubjectCount   int            `json:"subject_count"`
	NewRoll        *int           `json:"new_roll,omitempty"`
	OverrideReason string         `json:"override_reason,omitempty"`

	// position in the input roster, the last tie-break
	order int
	// recorded marks only, feeds the GPA denominator
	recorded map[string]int
}

// Recorded reports whether the student has an actual mark for subject. Null
// marks appear in SubjectMarks as 0 but are not recorded.
func (r PromotionResult) Recorded(subject string) bool {
	_, ok := r.recorded[subject]
	return ok
}

type Options struct {
	PassMarks int
}

func (o Options) passMarks() int {
	if o.PassMarks <= 0 {
		return DefaultPassMarks
	}
	return o.PassMarks
}

// Override turns a failed student into a promotable one
type Override struct {
	StudentID string `json:"student_id" validate:"required"`
	Reason    string `json:"reason" validate:"required"`
}

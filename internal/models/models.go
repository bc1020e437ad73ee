package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrImmutableRecord = errors.New("record is immutable")

// JSONB custom type for JSON fields
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSONB)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(bytes, j)
}

// Base model with UUID
type BaseModel struct {
	ID        uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// Class is a class/grade, e.g. "Class 6". NextClass names the class its
// students are promoted into.
type Class struct {
	BaseModel
	Name      string `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	Level     int    `gorm:"not null;default:0" json:"level"`
	NextClass string `gorm:"type:varchar(100)" json:"next_class"`
}

// Student represents a student. StudentCode is the external display id that
// marks are keyed by.
type Student struct {
	BaseModel
	StudentCode string `gorm:"type:varchar(50);not null;uniqueIndex" json:"student_id"`
	Name        string `gorm:"type:varchar(255);not null" json:"name"`
	Roll        string `gorm:"type:varchar(20)" json:"roll"`
	ClassName   string `gorm:"type:varchar(100);not null;index" json:"class_name"`
	Gender      string `gorm:"type:varchar(10)" json:"gender"`
	IsActive    bool   `gorm:"default:true" json:"is_active"`
}

// Subject is taught in one class. A nil PassMarks means the global pass mark applies.
type Subject struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null;uniqueIndex:idx_subject_class_name" json:"name"`
	Code      string `gorm:"type:varchar(50)" json:"code"`
	ClassName string `gorm:"type:varchar(100);not null;uniqueIndex:idx_subject_class_name" json:"class_name"`
	FullMarks int    `gorm:"default:100" json:"full_marks"`
	PassMarks *int   `json:"pass_marks"`
}

// Exam represents a term or annual examination of one class
type Exam struct {
	BaseModel
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	ClassName string `gorm:"type:varchar(100);not null;index" json:"class_name"`
	Year      int    `gorm:"not null;index" json:"year"`
	IsFinal   bool   `gorm:"default:false" json:"is_final"`
}

// Mark represents one student's marks in one subject of an exam. A nil
// MarksObtained is a placeholder row with no mark recorded.
type Mark struct {
	BaseModel
	ExamID        uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_mark_exam_student_subject" json:"exam_id"`
	StudentID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_mark_exam_student_subject" json:"student_id"`
	SubjectID     uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_mark_exam_student_subject" json:"subject_id"`
	MarksObtained *int      `json:"marks_obtained"`
	EnteredBy     string    `gorm:"type:varchar(255)" json:"entered_by"`
	Exam          *Exam     `gorm:"foreignKey:ExamID" json:"exam,omitempty"`
	Student       *Student  `gorm:"foreignKey:StudentID" json:"student,omitempty"`
	Subject       *Subject  `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
}

// PromotionLog is the immutable record of one accepted promotion run.
// Entries holds the promoted students as they were ranked.
type PromotionLog struct {
	ID            uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	FromClass     string         `gorm:"type:varchar(100);not null;index" json:"from_class"`
	ToClass       string         `gorm:"type:varchar(100);not null" json:"to_class"`
	ExamID        uuid.UUID      `gorm:"type:char(36);not null;index" json:"exam_id"`
	PassMarks     int            `gorm:"not null" json:"pass_marks"`
	PromotedCount int            `gorm:"not null" json:"promoted_count"`
	ManualCount   int            `gorm:"not null;default:0" json:"manual_count"`
	PerformedBy   string         `gorm:"type:varchar(255);not null" json:"performed_by"`
	Notes         string         `gorm:"type:text" json:"notes"`
	Entries       datatypes.JSON `json:"entries"`
	CreatedAt     time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
}

// PromotionLogEntry is one element of PromotionLog.Entries
type PromotionLogEntry struct {
	StudentID      string   `json:"student_id"`
	Name           string   `json:"name"`
	OldRoll        string   `json:"old_roll"`
	NewRoll        int      `json:"new_roll"`
	Status         string   `json:"status"`
	TotalMarks     int      `json:"total_marks"`
	GPA            float64  `json:"gpa"`
	FailedSubjects []string `json:"failed_subjects,omitempty"`
	OverrideReason string   `json:"override_reason,omitempty"`
}

func (p *PromotionLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p *PromotionLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrImmutableRecord
}

func (p *PromotionLog) BeforeDelete(tx *gorm.DB) error {
	return ErrImmutableRecord
}

// AuditLog tracks all data changes
type AuditLog struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	Actor        string    `gorm:"type:varchar(255);index" json:"actor"`
	Action       string    `gorm:"type:varchar(50);not null" json:"action"`
	ResourceType string    `gorm:"type:varchar(50);not null;index" json:"resource_type"`
	ResourceID   uuid.UUID `gorm:"type:char(36);index" json:"resource_id"`
	Before       JSONB     `gorm:"type:json" json:"before"`
	After        JSONB     `gorm:"type:json" json:"after"`
	Timestamp    time.Time `gorm:"autoCreateTime;index" json:"timestamp"`
	IP           string    `gorm:"type:varchar(45)" json:"ip"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// StudentMove is one student's new class and roll after promotion
type StudentMove struct {
	StudentCode string
	ToClass     string
	NewRoll     string
}

package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/promotion"
	"gorm.io/gorm"
)

// memStore is an in-memory PromotionStore and AuditStore for tests.
type memStore struct {
	classes  map[string]*models.Class
	exams    map[uuid.UUID]*models.Exam
	rosters  map[string][]promotion.StudentRecord
	marks    map[uuid.UUID][]promotion.MarkEntry
	logs     []models.PromotionLog
	moves    []models.StudentMove
	audits   []models.AuditLog
	saveErr  error
	auditErr error
}

func newMemStore() *memStore {
	return &memStore{
		classes: map[string]*models.Class{},
		exams:   map[uuid.UUID]*models.Exam{},
		rosters: map[string][]promotion.StudentRecord{},
		marks:   map[uuid.UUID][]promotion.MarkEntry{},
	}
}

func (m *memStore) addExam(className string) uuid.UUID {
	id := uuid.New()
	exam := &models.Exam{Name: "Annual", ClassName: className, Year: 2026}
	exam.ID = id
	m.exams[id] = exam
	return id
}

func (m *memStore) FindClass(ctx context.Context, name string) (*models.Class, error) {
	if c, ok := m.classes[name]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) FindExam(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	if e, ok := m.exams[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *memStore) LoadRoster(ctx context.Context, className string) ([]promotion.StudentRecord, error) {
	return m.rosters[className], nil
}

func (m *memStore) LoadMarks(ctx context.Context, className string, examID uuid.UUID) ([]promotion.MarkEntry, error) {
	return m.marks[examID], nil
}

func (m *memStore) SavePromotion(ctx context.Context, log *models.PromotionLog, moves []models.StudentMove) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	m.logs = append(m.logs, *log)
	m.moves = append(m.moves, moves...)
	return nil
}

func (m *memStore) ListPromotionLogs(ctx context.Context, className string, limit int) ([]models.PromotionLog, error) {
	var out []models.PromotionLog
	for i := len(m.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if className == "" || m.logs[i].FromClass == className {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

func (m *memStore) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	if m.auditErr != nil {
		return m.auditErr
	}
	m.audits = append(m.audits, *entry)
	return nil
}

func (m *memStore) ListAuditLogs(ctx context.Context, resourceType string, limit int) ([]models.AuditLog, error) {
	var out []models.AuditLog
	for i := len(m.audits) - 1; i >= 0 && len(out) < limit; i-- {
		if resourceType == "" || m.audits[i].ResourceType == resourceType {
			out = append(out, m.audits[i])
		}
	}
	return out, nil
}

var errBoom = errors.New("boom")

func intp(v int) *int { return &v }

func rec(id, name, roll, class string) promotion.StudentRecord {
	return promotion.StudentRecord{ID: "uuid-" + id, StudentID: id, Name: name, Roll: roll, ClassName: class}
}

func entry(studentID, subject string, marks int) promotion.MarkEntry {
	return promotion.MarkEntry{StudentID: studentID, Subject: subject, MarksObtained: intp(marks)}
}

// seedClass6 sets up a class with two passing students, one failing
// student and one student without marks.
func seedClass6(m *memStore) uuid.UUID {
	m.classes["Class 6"] = &models.Class{Name: "Class 6", Level: 6, NextClass: "Class 7"}
	m.rosters["Class 6"] = []promotion.StudentRecord{
		rec("S001", "Arif", "1", "Class 6"),
		rec("S002", "Bina", "2", "Class 6"),
		rec("S003", "Chaity", "3", "Class 6"),
		rec("S004", "Dipu", "4", "Class 6"),
	}
	examID := m.addExam("Class 6")
	m.marks[examID] = []promotion.MarkEntry{
		entry("S001", "English", 80), entry("S001", "Math", 70),
		entry("S002", "English", 30), entry("S002", "Math", 95),
		entry("S003", "English", 85), entry("S003", "Math", 75),
	}
	return examID
}

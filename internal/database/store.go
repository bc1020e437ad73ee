package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/promotion"
	"gorm.io/gorm"
)

// Store is the gorm backed data access used by the promotion and audit services.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) FindClass(ctx context.Context, name string) (*models.Class, error) {
	var class models.Class
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&class).Error; err != nil {
		return nil, err
	}
	return &class, nil
}

func (s *Store) FindExam(ctx context.Context, id uuid.UUID) (*models.Exam, error) {
	var exam models.Exam
	if err := s.db.WithContext(ctx).First(&exam, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &exam, nil
}

// LoadRoster returns the active students of a class in roll order.
func (s *Store) LoadRoster(ctx context.Context, className string) ([]promotion.StudentRecord, error) {
	var students []models.Student
	err := s.db.WithContext(ctx).
		Where("class_name = ? AND is_active = ?", className, true).
		Order("LENGTH(roll), roll, student_code").
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("load roster for %s: %w", className, err)
	}

	records := make([]promotion.StudentRecord, len(students))
	for i, st := range students {
		records[i] = promotion.StudentRecord{
			ID:        st.ID.String(),
			StudentID: st.StudentCode,
			Name:      st.Name,
			Roll:      st.Roll,
			ClassName: st.ClassName,
		}
	}
	return records, nil
}

// LoadMarks flattens an exam's marks for one class into engine entries.
func (s *Store) LoadMarks(ctx context.Context, className string, examID uuid.UUID) ([]promotion.MarkEntry, error) {
	type row struct {
		StudentID     string
		Subject       string
		MarksObtained *int
		PassMarks     *int
	}

	var rows []row
	err := s.db.WithContext(ctx).Table("marks").
		Select("students.student_code AS student_id, subjects.name AS subject, marks.marks_obtained, subjects.pass_marks").
		Joins("JOIN students ON marks.student_id = students.id").
		Joins("JOIN subjects ON marks.subject_id = subjects.id").
		Where("marks.exam_id = ? AND students.class_name = ?", examID, className).
		Where("marks.deleted_at IS NULL AND students.deleted_at IS NULL AND subjects.deleted_at IS NULL").
		Order("subjects.created_at, subjects.name").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load marks for %s: %w", className, err)
	}

	entries := make([]promotion.MarkEntry, len(rows))
	for i, r := range rows {
		entries[i] = promotion.MarkEntry{
			StudentID:     r.StudentID,
			Subject:       r.Subject,
			MarksObtained: r.MarksObtained,
			PassMarks:     r.PassMarks,
		}
	}
	return entries, nil
}

// SavePromotion writes the log and moves every promoted student in one transaction.
func (s *Store) SavePromotion(ctx context.Context, log *models.PromotionLog, moves []models.StudentMove) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(log).Error; err != nil {
			return fmt.Errorf("create promotion log: %w", err)
		}

		for _, m := range moves {
			res := tx.Model(&models.Student{}).
				Where("student_code = ? AND class_name = ?", m.StudentCode, log.FromClass).
				Updates(map[string]interface{}{"class_name": m.ToClass, "roll": m.NewRoll})
			if res.Error != nil {
				return fmt.Errorf("move student %s: %w", m.StudentCode, res.Error)
			}
			if res.RowsAffected != 1 {
				return fmt.Errorf("move student %s: %w", m.StudentCode, gorm.ErrRecordNotFound)
			}
		}
		return nil
	})
}

func (s *Store) ListPromotionLogs(ctx context.Context, className string, limit int) ([]models.PromotionLog, error) {
	var logs []models.PromotionLog
	query := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if className != "" {
		query = query.Where("from_class = ?", className)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *Store) ListAuditLogs(ctx context.Context, resourceType string, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := s.db.WithContext(ctx).Order("timestamp DESC").Limit(limit)
	if resourceType != "" {
		query = query.Where("resource_type = ?", resourceType)
	}
	if err := query.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

// PruneAuditLogs deletes audit entries older than before. Promotion logs are
// never pruned.
func (s *Store) PruneAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("timestamp < ?", before).Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}

package services

import (
	"errors"
	"fmt"

	"github.com/school-system/promotion/internal/models"
	"gorm.io/gorm"
)

// DefaultCurriculum is seeded into a class that has no subjects yet. Pass
// marks left nil fall back to the configured global pass mark.
var DefaultCurriculum = []models.Subject{
	{Name: "Bangla 1st Paper", Code: "101", FullMarks: 100},
	{Name: "Bangla 2nd Paper", Code: "102", FullMarks: 100},
	{Name: "English 1st Paper", Code: "107", FullMarks: 100},
	{Name: "English 2nd Paper", Code: "108", FullMarks: 100},
	{Name: "Mathematics", Code: "109", FullMarks: 100},
	{Name: "General Science", Code: "127", FullMarks: 100},
	{Name: "Bangladesh & Global Studies", Code: "150", FullMarks: 100},
	{Name: "Information & Communication Technology", Code: "154", FullMarks: 50, PassMarks: intPtr(17)},
	{Name: "Religion & Moral Education", Code: "111", FullMarks: 100},
}

func intPtr(v int) *int { return &v }

type SubjectService struct {
	db *gorm.DB
}

func NewSubjectService(db *gorm.DB) *SubjectService {
	return &SubjectService{db: db}
}

// GetSubjectsForClass returns the subjects taught in a class
func (s *SubjectService) GetSubjectsForClass(className string) ([]models.Subject, error) {
	var subjects []models.Subject
	err := s.db.Where("class_name = ?", className).Order("code, name").Find(&subjects).Error
	return subjects, err
}

// SeedDefaultSubjects creates the default curriculum for each class, skipping
// subjects the class already has. It returns how many subjects were created.
func (s *SubjectService) SeedDefaultSubjects(classNames []string) (int, error) {
	created := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, className := range classNames {
			for _, std := range DefaultCurriculum {
				var existing models.Subject
				err := tx.Where("class_name = ? AND name = ?", className, std.Name).First(&existing).Error
				if err == nil {
					continue
				}
				if !errors.Is(err, gorm.ErrRecordNotFound) {
					return err
				}

				subject := std
				subject.ClassName = className
				if err := tx.Create(&subject).Error; err != nil {
					return fmt.Errorf("failed to create %s for %s: %w", std.Name, className, err)
				}
				created++
			}
		}
		return nil
	})
	return created, err
}

// GetAllClassNames returns every class name known to the system
func (s *SubjectService) GetAllClassNames() ([]string, error) {
	var names []string
	err := s.db.Model(&models.Class{}).Order("level, name").Pluck("name", &names).Error
	return names, err
}

package handlers

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/services"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FlexibleMark accepts a mark as a JSON number, a numeric string or null.
// Anything else is read as 0.
type FlexibleMark struct {
	Value *int
}

func (m *FlexibleMark) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		zero := 0
		m.Value = &zero
		return nil
	}

	var v int
	switch t := raw.(type) {
	case nil:
		m.Value = nil
		return nil
	case float64:
		v = int(math.Round(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			m.Value = nil
			return nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v = int(math.Round(f))
		}
	}
	m.Value = &v
	return nil
}

func (m FlexibleMark) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Value)
}

type markInput struct {
	StudentID     string       `json:"student_id" binding:"required"`
	Subject       string       `json:"subject" binding:"required"`
	MarksObtained FlexibleMark `json:"marks_obtained"`
}

type bulkMarksRequest struct {
	ExamID    uuid.UUID   `json:"exam_id" binding:"required"`
	EnteredBy string      `json:"entered_by"`
	Marks     []markInput `json:"marks" binding:"required,min=1,dive"`
}

type ResultHandler struct {
	db      *gorm.DB
	results *services.ResultService
	audit   *services.AuditService
}

func NewResultHandler(db *gorm.DB, results *services.ResultService, audit *services.AuditService) *ResultHandler {
	return &ResultHandler{db: db, results: results, audit: audit}
}

// Tabulation godoc
// @Summary Class result sheet
// @Description Merit list of a class for one exam with per subject grades
// @Tags results
// @Produce json
// @Param class_name query string true "Class"
// @Param exam_id query string true "Exam ID"
// @Success 200 {object} services.Tabulation
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/results/tabulation [get]
func (h *ResultHandler) Tabulation(c *gin.Context) {
	className := c.Query("class_name")
	examID, err := uuid.Parse(c.Query("exam_id"))
	if className == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "class_name and a valid exam_id are required"})
		return
	}

	tab, err := h.results.Tabulate(c.Request.Context(), className, examID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tab)
}

// UpsertMarks godoc
// @Summary Enter marks
// @Description Creates or replaces marks of one exam, keyed by student id and subject name
// @Tags results
// @Accept json
// @Produce json
// @Param request body bulkMarksRequest true "Marks"
// @Success 200 {object} map[string]int
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/v1/marks [post]
func (h *ResultHandler) UpsertMarks(c *gin.Context) {
	var req bulkMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	var exam models.Exam
	if err := h.db.WithContext(ctx).First(&exam, "id = ?", req.ExamID).Error; err != nil {
		respondError(c, services.ExamLookupError(req.ExamID, err))
		return
	}

	var students []models.Student
	if err := h.db.WithContext(ctx).Where("class_name = ?", exam.ClassName).Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	studentIDs := make(map[string]uuid.UUID, len(students))
	for _, s := range students {
		studentIDs[s.StudentCode] = s.ID
	}

	var subjects []models.Subject
	if err := h.db.WithContext(ctx).Where("class_name = ?", exam.ClassName).Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	subjectIDs := make(map[string]uuid.UUID, len(subjects))
	for _, s := range subjects {
		subjectIDs[s.Name] = s.ID
	}

	marks := make([]models.Mark, 0, len(req.Marks))
	for _, in := range req.Marks {
		studentID, ok := studentIDs[in.StudentID]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("student %s is not in %s", in.StudentID, exam.ClassName)})
			return
		}
		subjectID, ok := subjectIDs[in.Subject]
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("subject %s is not taught in %s", in.Subject, exam.ClassName)})
			return
		}
		marks = append(marks, models.Mark{
			ExamID:        exam.ID,
			StudentID:     studentID,
			SubjectID:     subjectID,
			MarksObtained: in.MarksObtained.Value,
			EnteredBy:     req.EnteredBy,
		})
	}

	err := h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "exam_id"}, {Name: "student_id"}, {Name: "subject_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"marks_obtained", "entered_by", "updated_at"}),
	}).CreateInBatches(&marks, 100).Error
	if err != nil {
		respondError(c, err)
		return
	}

	// audit failures are logged by AuditService and do not fail the upload
	_ = h.audit.Log(ctx, req.EnteredBy, "UPSERT", "marks", exam.ID, nil,
		models.JSONB{"class_name": exam.ClassName, "count": len(marks)}, c.ClientIP())

	c.JSON(http.StatusOK, gin.H{"saved": len(marks)})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/models"
	"gorm.io/gorm"
)

type ExamHandler struct {
	db *gorm.DB
}

func NewExamHandler(db *gorm.DB) *ExamHandler {
	return &ExamHandler{db: db}
}

// List godoc
// @Summary List exams
// @Tags exams
// @Produce json
// @Param class_name query string false "Class"
// @Param year query int false "Year"
// @Success 200 {array} models.Exam
// @Router /api/v1/exams [get]
func (h *ExamHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Exam{})
	if className := c.Query("class_name"); className != "" {
		query = query.Where("class_name = ?", className)
	}
	if year := c.Query("year"); year != "" {
		query = query.Where("year = ?", year)
	}

	var exams []models.Exam
	if err := query.Order("year DESC, created_at DESC").Find(&exams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, exams)
}

// Create godoc
// @Summary Create an exam
// @Tags exams
// @Accept json
// @Produce json
// @Success 201 {object} models.Exam
// @Router /api/v1/exams [post]
func (h *ExamHandler) Create(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		ClassName string `json:"class_name" binding:"required"`
		Year      int    `json:"year" binding:"required,min=2000"`
		IsFinal   bool   `json:"is_final"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var class models.Class
	if err := h.db.WithContext(c.Request.Context()).Where("name = ?", req.ClassName).First(&class).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class not found"})
		return
	}

	exam := models.Exam{Name: req.Name, ClassName: class.Name, Year: req.Year, IsFinal: req.IsFinal}
	if err := h.db.WithContext(c.Request.Context()).Create(&exam).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, exam)
}

func (h *ExamHandler) Get(c *gin.Context) {
	var exam models.Exam
	if err := h.db.WithContext(c.Request.Context()).First(&exam, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Exam not found"})
		return
	}
	c.JSON(http.StatusOK, exam)
}

// Delete removes an exam together with its marks.
func (h *ExamHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	err := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("exam_id = ?", id).Delete(&models.Mark{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Exam{}, "id = ?", id).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Exam deleted"})
}

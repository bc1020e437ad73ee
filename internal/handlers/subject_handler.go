package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/models"
	"github.com/school-system/promotion/internal/services"
	"gorm.io/gorm"
)

type SubjectHandler struct {
	db             *gorm.DB
	subjectService *services.SubjectService
}

func NewSubjectHandler(db *gorm.DB, subjectService *services.SubjectService) *SubjectHandler {
	return &SubjectHandler{db: db, subjectService: subjectService}
}

// List godoc
// @Summary List subjects
// @Tags subjects
// @Produce json
// @Param class_name query string false "Class"
// @Success 200 {array} models.Subject
// @Router /api/v1/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	if className := c.Query("class_name"); className != "" {
		subjects, err := h.subjectService.GetSubjectsForClass(className)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, subjects)
		return
	}

	var subjects []models.Subject
	if err := h.db.WithContext(c.Request.Context()).Order("class_name, code, name").Find(&subjects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// Create godoc
// @Summary Add a subject to a class
// @Tags subjects
// @Accept json
// @Produce json
// @Param subject body models.Subject true "Subject"
// @Success 201 {object} models.Subject
// @Failure 409 {object} map[string]string
// @Router /api/v1/subjects [post]
func (h *SubjectHandler) Create(c *gin.Context) {
	var subject models.Subject
	if err := c.ShouldBindJSON(&subject); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if subject.Name == "" || subject.ClassName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and class_name are required"})
		return
	}

	var existing models.Subject
	err := h.db.WithContext(c.Request.Context()).Where("name = ? AND class_name = ?", subject.Name, subject.ClassName).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Subject already exists for this class"})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, subject)
}

func (h *SubjectHandler) Update(c *gin.Context) {
	var subject models.Subject
	if err := h.db.WithContext(c.Request.Context()).First(&subject, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subject not found"})
		return
	}

	var req struct {
		Code      *string `json:"code"`
		FullMarks *int    `json:"full_marks"`
		PassMarks *int    `json:"pass_marks"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Code != nil {
		subject.Code = *req.Code
	}
	if req.FullMarks != nil {
		subject.FullMarks = *req.FullMarks
	}
	if req.PassMarks != nil {
		subject.PassMarks = req.PassMarks
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&subject).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subject)
}

func (h *SubjectHandler) Delete(c *gin.Context) {
	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Subject{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subject deleted"})
}

// SeedDefaults godoc
// @Summary Seed the default curriculum
// @Description Adds missing default subjects to the given classes, or to every class when none are given
// @Tags subjects
// @Accept json
// @Produce json
// @Success 200 {object} map[string]int
// @Router /api/v1/subjects/seed [post]
func (h *SubjectHandler) SeedDefaults(c *gin.Context) {
	var req struct {
		ClassNames []string `json:"class_names"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	classNames := req.ClassNames
	if len(classNames) == 0 {
		names, err := h.subjectService.GetAllClassNames()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		classNames = names
	}

	created, err := h.subjectService.SeedDefaultSubjects(classNames)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"created": created})
}

package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/models"
	"gorm.io/gorm"
)

type StudentHandler struct {
	db *gorm.DB
}

func NewStudentHandler(db *gorm.DB) *StudentHandler {
	return &StudentHandler{db: db}
}

// List godoc
// @Summary List students
// @Tags students
// @Produce json
// @Param class_name query string false "Class"
// @Param active query bool false "Only active students"
// @Success 200 {array} models.Student
// @Router /api/v1/students [get]
func (h *StudentHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Student{})
	if className := c.Query("class_name"); className != "" {
		query = query.Where("class_name = ?", className)
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		query = query.Where("is_active = ?", active)
	}

	var students []models.Student
	if err := query.Order("class_name, LENGTH(roll), roll").Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

// Create godoc
// @Summary Admit a student
// @Description Roll defaults to the next free roll of the class
// @Tags students
// @Accept json
// @Produce json
// @Success 201 {object} models.Student
// @Router /api/v1/students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id" binding:"required"`
		Name      string `json:"name" binding:"required"`
		ClassName string `json:"class_name" binding:"required"`
		Roll      string `json:"roll"`
		Gender    string `json:"gender"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	var class models.Class
	if err := h.db.WithContext(ctx).Where("name = ?", req.ClassName).First(&class).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Class not found"})
		return
	}

	if req.Roll == "" {
		var count int64
		h.db.WithContext(ctx).Model(&models.Student{}).Where("class_name = ?", class.Name).Count(&count)
		req.Roll = fmt.Sprintf("%d", count+1)
	}

	student := models.Student{
		StudentCode: req.StudentID,
		Name:        req.Name,
		Roll:        req.Roll,
		ClassName:   class.Name,
		Gender:      req.Gender,
		IsActive:    true,
	}
	if err := h.db.WithContext(ctx).Create(&student).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, student)
}

func (h *StudentHandler) Get(c *gin.Context) {
	var student models.Student
	if err := h.db.WithContext(c.Request.Context()).First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}
	c.JSON(http.StatusOK, student)
}

// Update edits a student's profile. Class and roll change only through promotion.
func (h *StudentHandler) Update(c *gin.Context) {
	var student models.Student
	if err := h.db.WithContext(c.Request.Context()).First(&student, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
		return
	}

	var req struct {
		Name     *string `json:"name"`
		Gender   *string `json:"gender"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Gender != nil {
		student.Gender = *req.Gender
	}
	if req.IsActive != nil {
		student.IsActive = *req.IsActive
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&student).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, student)
}

func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.db.WithContext(c.Request.Context()).Delete(&models.Student{}, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student deleted"})
}

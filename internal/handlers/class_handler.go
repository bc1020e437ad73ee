package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/models"
	"gorm.io/gorm"
)

type ClassHandler struct {
	db *gorm.DB
}

func NewClassHandler(db *gorm.DB) *ClassHandler {
	return &ClassHandler{db: db}
}

// List godoc
// @Summary List classes
// @Tags classes
// @Produce json
// @Success 200 {array} models.Class
// @Router /api/v1/classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	var classes []models.Class
	if err := h.db.WithContext(c.Request.Context()).Order("level, name").Find(&classes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, classes)
}

// Create godoc
// @Summary Create a class
// @Tags classes
// @Accept json
// @Produce json
// @Param class body models.Class true "Class"
// @Success 201 {object} models.Class
// @Router /api/v1/classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var class models.Class
	if err := c.ShouldBindJSON(&class); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if class.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Create(&class).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, class)
}

func (h *ClassHandler) Get(c *gin.Context) {
	var class models.Class
	if err := h.db.WithContext(c.Request.Context()).First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}
	c.JSON(http.StatusOK, class)
}

// Update changes the level or the next class. Renaming a class is not
// allowed because students reference it by name.
func (h *ClassHandler) Update(c *gin.Context) {
	var class models.Class
	if err := h.db.WithContext(c.Request.Context()).First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	var req struct {
		Level     *int    `json:"level"`
		NextClass *string `json:"next_class"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Level != nil {
		class.Level = *req.Level
	}
	if req.NextClass != nil {
		class.NextClass = *req.NextClass
	}

	if err := h.db.WithContext(c.Request.Context()).Save(&class).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, class)
}

// GetStudents godoc
// @Summary Students of a class in roll order
// @Tags classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {array} models.Student
// @Router /api/v1/classes/{id}/students [get]
func (h *ClassHandler) GetStudents(c *gin.Context) {
	var class models.Class
	if err := h.db.WithContext(c.Request.Context()).First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	var students []models.Student
	if err := h.db.WithContext(c.Request.Context()).
		Where("class_name = ?", class.Name).
		Order("LENGTH(roll), roll, student_code").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *ClassHandler) Delete(c *gin.Context) {
	var class models.Class
	if err := h.db.WithContext(c.Request.Context()).First(&class, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Class not found"})
		return
	}

	var count int64
	h.db.WithContext(c.Request.Context()).Model(&models.Student{}).Where("class_name = ?", class.Name).Count(&count)
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Class still has students"})
		return
	}

	if err := h.db.WithContext(c.Request.Context()).Delete(&class).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Class deleted"})
}

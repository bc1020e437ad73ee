package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/services"
)

type AuditHandler struct {
	svc *services.AuditService
}

func NewAuditHandler(svc *services.AuditService) *AuditHandler {
	return &AuditHandler{svc: svc}
}

// GetRecentActivity godoc
// @Summary Recent audit activity
// @Tags audit
// @Produce json
// @Param resource_type query string false "Resource type filter"
// @Param limit query int false "Maximum entries (default 20)"
// @Success 200 {array} models.AuditLog
// @Router /api/v1/audit/recent [get]
func (h *AuditHandler) GetRecentActivity(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		limit = 20
	}

	activities, err := h.svc.Recent(c.Request.Context(), c.Query("resource_type"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, activities)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/school-system/promotion/internal/services"
)

type PromotionHandler struct {
	svc      *services.PromotionService
	logLimit int
}

func NewPromotionHandler(svc *services.PromotionService, logLimit int) *PromotionHandler {
	return &PromotionHandler{svc: svc, logLimit: logLimit}
}

// Preview godoc
// @Summary Preview a class promotion
// @Description Ranks a class on one exam and returns the proposed new rolls without changing anything
// @Tags promotions
// @Accept json
// @Produce json
// @Param request body services.PreviewRequest true "Class and exam"
// @Success 200 {object} services.Preview
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/promotions/preview [post]
func (h *PromotionHandler) Preview(c *gin.Context) {
	var req services.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	preview, err := h.svc.Preview(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, preview)
}

// Commit godoc
// @Summary Promote a class
// @Description Applies manual passes, moves every promoted student to the target class and records a promotion log
// @Tags promotions
// @Accept json
// @Produce json
// @Param request body services.CommitRequest true "Promotion"
// @Success 201 {object} models.PromotionLog
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /api/v1/promotions/commit [post]
func (h *PromotionHandler) Commit(c *gin.Context) {
	var req services.CommitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.ClientIP = c.ClientIP()

	entry, err := h.svc.Commit(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Logs godoc
// @Summary List promotion logs
// @Tags promotions
// @Produce json
// @Param class_name query string false "Source class"
// @Param limit query int false "Maximum entries"
// @Success 200 {array} models.PromotionLog
// @Router /api/v1/promotions/logs [get]
func (h *PromotionHandler) Logs(c *gin.Context) {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		limit = h.logLimit
	}

	logs, err := h.svc.Logs(c.Request.Context(), c.Query("class_name"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

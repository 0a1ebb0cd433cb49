package handler

import (
	"context"
	"net/http"
	"strconv"

	"pricepredictor/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PredictionHistory is the stored prediction log
type PredictionHistory interface {
	GetPrediction(ctx context.Context, id string) (*model.PredictionRecord, error)
	RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error)
	SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error)
	RecordFeedback(ctx context.Context, id string, actualPrice float64) (bool, error)
}

// HistoryHandler serves the prediction log. history may be nil when
// storage is disabled; every endpoint then answers 503.
type HistoryHandler struct {
	history      PredictionHistory
	defaultLimit int
	maxLimit     int
}

// NewHistoryHandler creates a new history handler
func NewHistoryHandler(history PredictionHistory, defaultLimit, maxLimit int) *HistoryHandler {
	return &HistoryHandler{
		history:      history,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// Recent handles GET /api/v1/predictions/recent
func (h *HistoryHandler) Recent(c *gin.Context) {
	if !h.available(c) {
		return
	}

	records, err := h.history.RecentPredictions(c.Request.Context(), h.limit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get predictions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": records, "total": len(records)})
}

// Similar handles GET /api/v1/predictions/:id/similar
func (h *HistoryHandler) Similar(c *gin.Context) {
	if !h.available(c) {
		return
	}

	id, ok := predictionID(c, c.Param("id"))
	if !ok {
		return
	}

	ctx := c.Request.Context()
	rec, err := h.history.GetPrediction(ctx, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get prediction: " + err.Error()})
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
		return
	}

	records, err := h.history.SimilarPredictions(ctx, id, h.limit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get similar predictions: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"prediction": rec, "similar": records})
}

func (h *HistoryHandler) available(c *gin.Context) bool {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prediction storage is disabled"})
		return false
	}
	return true
}

// limit reads ?limit=, falling back to the default and capping at the max
func (h *HistoryHandler) limit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit <= 0 {
		return h.defaultLimit
	}
	if limit > h.maxLimit {
		return h.maxLimit
	}
	return limit
}

func predictionID(c *gin.Context, raw string) (string, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid prediction ID"})
		return "", false
	}
	return id.String(), true
}

package handler

import (
	"net/http"

	"pricepredictor/internal/model"

	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles feedback-related HTTP requests
type FeedbackHandler struct {
	history PredictionHistory
}

// NewFeedbackHandler creates a new feedback handler. history may be nil.
func NewFeedbackHandler(history PredictionHistory) *FeedbackHandler {
	return &FeedbackHandler{
		history: history,
	}
}

// Submit handles POST /api/v1/feedback
func (h *FeedbackHandler) Submit(c *gin.Context) {
	if h.history == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Prediction storage is disabled"})
		return
	}

	var req model.FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	id, ok := predictionID(c, req.PredictionID)
	if !ok {
		return
	}

	found, err := h.history.RecordFeedback(c.Request.Context(), id, req.ActualPrice)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record feedback: " + err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
		return
	}

	response := model.FeedbackResponse{
		Success: true,
		Message: "Feedback recorded successfully",
	}

	c.JSON(http.StatusOK, response)
}

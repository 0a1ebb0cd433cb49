package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"pricepredictor/internal/model"
	"pricepredictor/internal/presenter"
	"pricepredictor/internal/pricing"
	"pricepredictor/internal/service"

	"github.com/gin-gonic/gin"
)

// PredictHandler handles prediction-related HTTP requests
type PredictHandler struct {
	predictor *service.Predictor
	presenter *presenter.Presenter
}

// NewPredictHandler creates a new prediction handler
func NewPredictHandler(predictor *service.Predictor, presenter *presenter.Presenter) *PredictHandler {
	return &PredictHandler{
		predictor: predictor,
		presenter: presenter,
	}
}

// Predict handles POST /api/v1/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	prediction := h.predictor.Predict(c.Request.Context(), req.Input())

	c.JSON(http.StatusOK, h.respond(prediction))
}

// PredictStream handles POST /api/v1/predict/stream - SSE loading message, then the result
func (h *PredictHandler) PredictStream(c *gin.Context) {
	var req model.PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// Create flusher for SSE
	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Streaming not supported"})
		return
	}

	// Set SSE headers
	c.Header("Content-Type", "text/event-stream; charset=utf-8")
	c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	prediction, err := h.predictor.PredictStream(c.Request.Context(), req.Input(), func(event string, data any) error {
		sendSSE(c, event, data)
		flusher.Flush()
		return nil
	})
	if err != nil {
		sendSSE(c, "error", map[string]any{"error": err.Error()})
		flusher.Flush()
		return
	}

	sendSSE(c, "result", h.respond(prediction))
	flusher.Flush()

	sendSSE(c, "done", nil)
	flusher.Flush()
}

// Basic handles POST /api/v1/predict/basic
func (h *PredictHandler) Basic(c *gin.Context) {
	var req model.BasicPredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, pricing.EstimateBasic(req))
}

// Categories handles GET /api/v1/categories
func (h *PredictHandler) Categories(c *gin.Context) {
	profiles := pricing.Profiles()
	categories := make([]model.CategoryInfo, 0, len(profiles))
	for _, p := range profiles {
		categories = append(categories, model.CategoryInfo{
			Name:        p.Category,
			Description: p.Description,
			BasePrice:   p.BasePrice,
			Attributes:  p.Attributes,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"default":    pricing.DefaultCategory,
	})
}

// respond renders the prediction for the result panel. Each response
// carries a fresh chart; the page replaces the previous one.
func (h *PredictHandler) respond(p *service.Prediction) model.PredictResponse {
	view, chart := h.presenter.Render(p.Result, nil)
	spec := chart.Spec()

	return model.PredictResponse{
		ID:     p.ID,
		Result: p.Result,
		View:   view,
		Chart:  &spec,
		Took:   p.Took,
	}
}

// sendSSE sends a Server-Sent Event
func sendSSE(c *gin.Context, event string, data any) {
	if data != nil {
		jsonData, err := json.Marshal(data)
		if err != nil {
			fmt.Fprintf(c.Writer, "event: error\ndata: {\"error\": \"JSON marshal failed\"}\n\n")
			return
		}
		fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(jsonData))
	} else {
		fmt.Fprintf(c.Writer, "event: %s\ndata: {}\n\n", event)
	}
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricepredictor/internal/config"
	"pricepredictor/internal/model"
	"pricepredictor/internal/presenter"
	"pricepredictor/internal/pricing"
	"pricepredictor/internal/service"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const knownID = "2f1b7c1e-6d0a-4a57-9c5e-0a5f3f1d9b11"

// fakeHistory knows a single prediction
type fakeHistory struct {
	feedback map[string]float64
}

func (f *fakeHistory) GetPrediction(ctx context.Context, id string) (*model.PredictionRecord, error) {
	if id != knownID {
		return nil, nil
	}
	return &model.PredictionRecord{ID: id, Category: "books", PredictedPrice: "₹800"}, nil
}

func (f *fakeHistory) RecentPredictions(ctx context.Context, limit int) ([]model.PredictionRecord, error) {
	out := make([]model.PredictionRecord, limit)
	for i := range out {
		out[i] = model.PredictionRecord{Category: "toys"}
	}
	return out, nil
}

func (f *fakeHistory) SimilarPredictions(ctx context.Context, id string, limit int) ([]model.PredictionRecord, error) {
	d := 0.25
	return []model.PredictionRecord{{Category: "books", Distance: &d}}, nil
}

func (f *fakeHistory) RecordFeedback(ctx context.Context, id string, actualPrice float64) (bool, error) {
	if id != knownID {
		return false, nil
	}
	f.feedback[id] = actualPrice
	return true, nil
}

func newRouter(history PredictionHistory) *gin.Engine {
	app := config.AppConfig{DefaultConfidence: 0.7, LoadingMessage: "🤖 Analyzing with AI...", Currency: "₹", CurrencyLocale: "en"}
	fallback := pricing.NewEstimator(app.DefaultConfidence, pricing.NewPriceFormatter(app.Currency, app.CurrencyLocale))
	predictor := service.NewPredictor(nil, fallback, nil, app)

	predictHandler := NewPredictHandler(predictor, presenter.New())
	historyHandler := NewHistoryHandler(history, 10, 50)
	feedbackHandler := NewFeedbackHandler(history)

	router := gin.New()
	api := router.Group("/api/v1")
	api.GET("/categories", predictHandler.Categories)
	api.POST("/predict", predictHandler.Predict)
	api.POST("/predict/stream", predictHandler.PredictStream)
	api.POST("/predict/basic", predictHandler.Basic)
	api.GET("/predictions/recent", historyHandler.Recent)
	api.GET("/predictions/:id/similar", historyHandler.Similar)
	api.POST("/feedback", feedbackHandler.Submit)
	return router
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredict(t *testing.T) {
	w := do(newRouter(nil), http.MethodPost, "/api/v1/predict",
		`{"category": "electronics", "brand_rating": 3, "seller_rating": 3, "competition": "medium"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp model.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Result.PredictedPrice != "₹15,000" || resp.Result.Source != model.SourceFallback {
		t.Errorf("result = %+v", resp.Result)
	}
	if resp.View.PredictedPrice != "₹15,000" || resp.View.AnomalyVisible {
		t.Errorf("view = %+v", resp.View)
	}
	if resp.Chart == nil || len(resp.Chart.Segments) != 2 || resp.Chart.Title != "Confidence: 70.0%" {
		t.Errorf("chart = %+v", resp.Chart)
	}
	if resp.ID == "" {
		t.Error("missing prediction ID")
	}
}

func TestPredict_MixedCaseCompetition(t *testing.T) {
	w := do(newRouter(nil), http.MethodPost, "/api/v1/predict",
		`{"category": "toys", "brand_rating": 3, "seller_rating": 3, "competition": "High"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp model.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Result.PredictedPrice != "₹960" {
		t.Errorf("price = %q, want ₹960", resp.Result.PredictedPrice)
	}
}

func TestPredict_AnomalyView(t *testing.T) {
	w := do(newRouter(nil), http.MethodPost, "/api/v1/predict",
		`{"category": "clothing", "brand_rating": 2, "seller_rating": 4, "attributes": {"material": "silk", "size": "M"}}`)

	var resp model.PredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if !resp.View.AnomalyVisible || resp.View.AnomalyText != "⚠️ Premium material with low brand rating" {
		t.Errorf("view = %+v", resp.View)
	}
}

func TestPredict_BadRequests(t *testing.T) {
	bodies := map[string]string{
		"missing category":    `{"brand_rating": 3, "seller_rating": 3}`,
		"rating above five":   `{"category": "toys", "brand_rating": 7, "seller_rating": 3}`,
		"negative rating":     `{"category": "toys", "brand_rating": 3, "seller_rating": -1}`,
		"unknown competition": `{"category": "toys", "brand_rating": 3, "seller_rating": 3, "competition": "fierce"}`,
		"nested attribute":    `{"category": "toys", "attributes": {"age_range": {"min": 0}}}`,
		"not json":            `category=toys`,
	}

	router := newRouter(nil)
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			w := do(router, http.MethodPost, "/api/v1/predict", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestPredictStream(t *testing.T) {
	w := do(newRouter(nil), http.MethodPost, "/api/v1/predict/stream",
		`{"category": "books", "brand_rating": 3, "seller_rating": 3}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	body := w.Body.String()

	loading := strings.Index(body, "event: loading")
	result := strings.Index(body, "event: result")
	done := strings.Index(body, "event: done")
	if loading < 0 || result < loading || done < result {
		t.Fatalf("events out of order:\n%s", body)
	}
	if !strings.Contains(body, "Analyzing with AI") || !strings.Contains(body, "₹800") {
		t.Errorf("unexpected stream:\n%s", body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestBasic(t *testing.T) {
	w := do(newRouter(nil), http.MethodPost, "/api/v1/predict/basic",
		`{"brand_rating": 4, "seller_rating": 4, "weight": 2, "dimensions": 1000, "warranty": 12}`)

	var resp model.BasicPredictResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.PredictedPrice != 256 || resp.Confidence != 0.85 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestCategories(t *testing.T) {
	w := do(newRouter(nil), http.MethodGet, "/api/v1/categories", "")

	var resp struct {
		Categories []model.CategoryInfo `json:"categories"`
		Default    string               `json:"default"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Categories) != len(model.Categories) || resp.Default != "electronics" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.Categories[0].Name != model.CategoryElectronics || resp.Categories[0].BasePrice != 15000 {
		t.Errorf("first category = %+v", resp.Categories[0])
	}
}

func TestHistory_StorageDisabled(t *testing.T) {
	router := newRouter(nil)
	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/v1/predictions/recent", ""},
		{http.MethodGet, "/api/v1/predictions/" + knownID + "/similar", ""},
		{http.MethodPost, "/api/v1/feedback", `{"prediction_id": "` + knownID + `", "actual_price": 900}`},
	} {
		if w := do(router, tc.method, tc.path, tc.body); w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s %s: status = %d, want 503", tc.method, tc.path, w.Code)
		}
	}
}

func TestHistory_Recent(t *testing.T) {
	router := newRouter(&fakeHistory{})

	tests := map[string]int{
		"/api/v1/predictions/recent":           10,
		"/api/v1/predictions/recent?limit=3":   3,
		"/api/v1/predictions/recent?limit=500": 50,
		"/api/v1/predictions/recent?limit=abc": 10,
	}
	for path, want := range tests {
		w := do(router, http.MethodGet, path, "")
		var resp struct {
			Total int `json:"total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad response: %v", err)
		}
		if resp.Total != want {
			t.Errorf("%s: total = %d, want %d", path, resp.Total, want)
		}
	}
}

func TestHistory_Similar(t *testing.T) {
	router := newRouter(&fakeHistory{})

	if w := do(router, http.MethodGet, "/api/v1/predictions/not-a-uuid/similar", ""); w.Code != http.StatusBadRequest {
		t.Errorf("invalid id: status = %d", w.Code)
	}
	if w := do(router, http.MethodGet, "/api/v1/predictions/00000000-0000-0000-0000-000000000000/similar", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d", w.Code)
	}

	w := do(router, http.MethodGet, "/api/v1/predictions/"+knownID+"/similar", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"distance":0.25`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestFeedback(t *testing.T) {
	history := &fakeHistory{feedback: map[string]float64{}}
	router := newRouter(history)

	w := do(router, http.MethodPost, "/api/v1/feedback", `{"prediction_id": "`+knownID+`", "actual_price": 1200}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if history.feedback[knownID] != 1200 {
		t.Errorf("feedback = %v", history.feedback)
	}

	w = do(router, http.MethodPost, "/api/v1/feedback", `{"prediction_id": "00000000-0000-0000-0000-000000000000", "actual_price": 1200}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown prediction: status = %d", w.Code)
	}

	w = do(router, http.MethodPost, "/api/v1/feedback", `{"prediction_id": "`+knownID+`", "actual_price": 0}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("zero price: status = %d", w.Code)
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"pricepredictor/internal/config"
	"pricepredictor/internal/model"
	"pricepredictor/internal/pricing"
)

// stubRemote returns a fixed outcome and records the prompt it was given
type stubRemote struct {
	outcome RemoteOutcome
	prompt  string
	calls   int
}

func (s *stubRemote) Estimate(ctx context.Context, prompt string) RemoteOutcome {
	s.calls++
	s.prompt = prompt
	return s.outcome
}

func (s *stubRemote) IsEnabled() bool { return true }

// memoryStore hands saved records to the test
type memoryStore struct {
	saved chan *model.PredictionRecord
	err   error
}

func (m *memoryStore) SavePrediction(ctx context.Context, rec *model.PredictionRecord) error {
	m.saved <- rec
	return m.err
}

var testApp = config.AppConfig{
	DefaultConfidence: 0.7,
	LoadingMessage:    "🤖 Analyzing with AI...",
	Currency:          "₹",
	CurrencyLocale:    "en",
}

func newTestPredictor(remote RemoteEstimator, store PredictionStore) (*Predictor, *pricing.Estimator) {
	fallback := pricing.NewEstimator(testApp.DefaultConfidence, pricing.NewPriceFormatter(testApp.Currency, testApp.CurrencyLocale))
	return NewPredictor(remote, fallback, store, testApp), fallback
}

var clothingInput = model.PredictionInput{
	Category:     model.CategoryClothing,
	BrandRating:  2,
	SellerRating: 4,
	Competition:  "low",
	Attributes:   model.Attributes{"material": "silk", "size": "m"},
}

func TestPredict_RemoteFailureEqualsFallback(t *testing.T) {
	failures := []error{
		&TransportError{StatusCode: 503, Body: "unavailable"},
		&FormatError{Content: "not json", Err: errors.New("invalid JSON")},
		ErrRemoteDisabled,
	}

	for _, remoteErr := range failures {
		t.Run(remoteErr.Error(), func(t *testing.T) {
			predictor, fallback := newTestPredictor(&stubRemote{outcome: RemoteFailure{Err: remoteErr}}, nil)

			got := predictor.Predict(context.Background(), clothingInput)
			want := fallback.Estimate(clothingInput)

			if got.Result != want {
				t.Errorf("Result = %+v, want fallback %+v", got.Result, want)
			}
			if !errors.Is(got.RemoteErr, remoteErr) {
				t.Errorf("RemoteErr = %v, want %v", got.RemoteErr, remoteErr)
			}
			if got.Result.AnomalyReason != "Premium material with low brand rating" {
				t.Errorf("AnomalyReason = %q", got.Result.AnomalyReason)
			}
		})
	}
}

func TestPredict_RemoteSuccess(t *testing.T) {
	remote := &stubRemote{outcome: RemoteSuccess{Estimate: RemoteEstimate{
		PredictedPrice: RemotePrice{Text: "₹4,499.60"},
		Confidence:     0.82,
		Explanation:    "Silk commands a premium",
		IsAnomaly:      true,
		AnomalyReason:  "Brand rating is low for silk",
	}}}
	predictor, _ := newTestPredictor(remote, nil)

	got := predictor.Predict(context.Background(), clothingInput)

	want := model.PredictionResult{
		PredictedPrice: "₹4,500",
		Confidence:     0.82,
		IsAnomaly:      true,
		AnomalyReason:  "Brand rating is low for silk",
		Explanation:    "Silk commands a premium",
		Source:         model.SourceRemote,
	}
	if got.Result != want {
		t.Errorf("Result = %+v, want %+v", got.Result, want)
	}
	if got.RemoteErr != nil {
		t.Errorf("RemoteErr = %v", got.RemoteErr)
	}
	if !strings.Contains(remote.prompt, "- MATERIAL: silk") {
		t.Errorf("prompt was not built from the input:\n%s", remote.prompt)
	}
	if got.ID == "" {
		t.Error("expected a prediction ID")
	}
}

func TestPredict_RemoteConfidence(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       float64
	}{
		{"missing uses default", 0, 0.7},
		{"above cap is clamped", 1.3, pricing.MaxConfidence},
		{"negative uses default", -0.5, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := &stubRemote{outcome: RemoteSuccess{Estimate: RemoteEstimate{
				PredictedPrice: RemotePrice{Amount: 15000.4, Numeric: true},
				Confidence:     tt.confidence,
			}}}
			predictor, _ := newTestPredictor(remote, nil)

			got := predictor.Predict(context.Background(), clothingInput).Result
			if got.Confidence != tt.want {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.want)
			}
			if got.PredictedPrice != "₹15,000" {
				t.Errorf("PredictedPrice = %q", got.PredictedPrice)
			}
		})
	}
}

func TestPredict_AnomalyReasonDroppedWhenNotAnomalous(t *testing.T) {
	remote := &stubRemote{outcome: RemoteSuccess{Estimate: RemoteEstimate{
		PredictedPrice: RemotePrice{Text: "₹100"},
		AnomalyReason:  "If anomaly detected, explain why",
	}}}
	predictor, _ := newTestPredictor(remote, nil)

	if got := predictor.Predict(context.Background(), clothingInput).Result; got.AnomalyReason != "" {
		t.Errorf("AnomalyReason = %q, want empty", got.AnomalyReason)
	}
}

func TestPredict_NilRemoteUsesFallback(t *testing.T) {
	predictor, fallback := newTestPredictor(nil, nil)

	got := predictor.Predict(context.Background(), clothingInput)
	if got.Result != fallback.Estimate(clothingInput) {
		t.Errorf("Result = %+v", got.Result)
	}
	if !errors.Is(got.RemoteErr, ErrRemoteDisabled) {
		t.Errorf("RemoteErr = %v", got.RemoteErr)
	}
}

func TestPredict_NormalizesInput(t *testing.T) {
	remote := &stubRemote{outcome: RemoteFailure{Err: ErrRemoteDisabled}}
	predictor, _ := newTestPredictor(remote, nil)

	got := predictor.Predict(context.Background(), model.PredictionInput{
		Category:     "Apparel",
		BrandRating:  3,
		SellerRating: 3,
		Competition:  "Medium",
		Attributes:   model.Attributes{"Brand Tier": "Designer"},
	})

	if got.Input.Category != model.CategoryClothing {
		t.Errorf("Category = %q", got.Input.Category)
	}
	if got.Input.Attributes["brand_tier"] != "luxury" {
		t.Errorf("Attributes = %v", got.Input.Attributes)
	}
	// 2500 * 2.5 for a luxury brand tier
	if got.Result.PredictedPrice != "₹6,250" {
		t.Errorf("PredictedPrice = %q, want ₹6,250", got.Result.PredictedPrice)
	}
}

func TestPredict_SavesRecord(t *testing.T) {
	store := &memoryStore{saved: make(chan *model.PredictionRecord, 1), err: errors.New("db down")}
	remote := &stubRemote{outcome: RemoteFailure{Err: &TransportError{StatusCode: 500}}}
	predictor, _ := newTestPredictor(remote, store)

	got := predictor.Predict(context.Background(), clothingInput)

	select {
	case rec := <-store.saved:
		if rec.ID != got.ID {
			t.Errorf("record ID = %q, want %q", rec.ID, got.ID)
		}
		if rec.Source != model.SourceFallback || rec.RemoteError == nil {
			t.Errorf("record = %+v", rec)
		}
		if rec.PriceValue == nil || *rec.PriceValue != pricing.Round(predictorPrice(clothingInput)) {
			t.Errorf("PriceValue = %v", rec.PriceValue)
		}
		if len(rec.Features.Slice()) != pricing.FeatureDimensions {
			t.Errorf("features = %v", rec.Features.Slice())
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prediction was not saved")
	}
}

func TestRecord_NoAttributesStoresEmptyObject(t *testing.T) {
	predictor, _ := newTestPredictor(&stubRemote{outcome: RemoteFailure{Err: ErrRemoteDisabled}}, nil)

	p := predictor.Predict(context.Background(), model.PredictionInput{
		Category: model.CategoryElectronics, BrandRating: 3, SellerRating: 3, Competition: "medium",
	})
	v, err := p.Record().Attributes.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if b, ok := v.([]byte); !ok || string(b) != "{}" {
		t.Errorf("attributes = %v, want {}", v)
	}
}

func TestPredictStream_SendsLoadingFirst(t *testing.T) {
	predictor, _ := newTestPredictor(&stubRemote{outcome: RemoteFailure{Err: ErrRemoteDisabled}}, nil)

	var events []string
	p, err := predictor.PredictStream(context.Background(), clothingInput, func(event string, data any) error {
		events = append(events, event)
		if data.(map[string]any)["message"] != "🤖 Analyzing with AI..." {
			t.Errorf("loading data = %v", data)
		}
		return nil
	})
	if err != nil || p == nil {
		t.Fatalf("PredictStream() = %v, %v", p, err)
	}
	if len(events) != 1 || events[0] != "loading" {
		t.Errorf("events = %v", events)
	}

	stop := errors.New("client gone")
	if _, err := predictor.PredictStream(context.Background(), clothingInput, func(string, any) error { return stop }); !errors.Is(err, stop) {
		t.Errorf("err = %v, want callback error", err)
	}
}

func predictorPrice(in model.PredictionInput) float64 {
	return pricing.NewEstimator(0.7, pricing.NewPriceFormatter("₹", "en")).Price(in)
}

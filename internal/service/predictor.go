package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"pricepredictor/internal/config"
	"pricepredictor/internal/model"
	"pricepredictor/internal/pricing"
	"pricepredictor/internal/utils"
)

// PredictionStore persists predictions for the audit log
type PredictionStore interface {
	SavePrediction(ctx context.Context, rec *model.PredictionRecord) error
}

// Prediction is the outcome of one prediction run
type Prediction struct {
	ID        string
	Input     model.PredictionInput
	Result    model.PredictionResult
	RemoteErr error // why the fallback was used, nil for remote results
	Took      int64 // milliseconds
}

// EventCallback is called for streaming prediction events
type EventCallback func(event string, data any) error

// Predictor asks the remote model first and falls back to the heuristic
// estimator whenever the remote answer is unavailable or unusable
type Predictor struct {
	remote            RemoteEstimator
	fallback          *pricing.Estimator
	store             PredictionStore
	defaultConfidence float64
	loadingMessage    string
	saveTimeout       time.Duration
}

// NewPredictor creates a new predictor. remote and store may be nil.
func NewPredictor(remote RemoteEstimator, fallback *pricing.Estimator, store PredictionStore, app config.AppConfig) *Predictor {
	return &Predictor{
		remote:            remote,
		fallback:          fallback,
		store:             store,
		defaultConfidence: app.DefaultConfidence,
		loadingMessage:    app.LoadingMessage,
		saveTimeout:       5 * time.Second,
	}
}

// LoadingMessage is shown while a prediction is in flight
func (s *Predictor) LoadingMessage() string {
	return s.loadingMessage
}

// Predict runs one prediction. It always produces a result.
func (s *Predictor) Predict(ctx context.Context, in model.PredictionInput) *Prediction {
	startTime := time.Now()
	in = NormalizeInput(in)

	result, remoteErr := s.estimate(ctx, in)

	p := &Prediction{
		ID:        uuid.NewString(),
		Input:     in,
		Result:    result,
		RemoteErr: remoteErr,
		Took:      time.Since(startTime).Milliseconds(),
	}

	// Log prediction (non-blocking)
	if s.store != nil {
		rec := p.Record()
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
			defer cancel()
			if err := s.store.SavePrediction(ctx, rec); err != nil {
				log.Printf("⚠️  Failed to log prediction %s: %v", rec.ID, err)
			}
		}()
	}

	return p
}

// PredictStream announces the loading state, then predicts
func (s *Predictor) PredictStream(ctx context.Context, in model.PredictionInput, callback EventCallback) (*Prediction, error) {
	if err := callback("loading", map[string]any{
		"message": s.loadingMessage,
	}); err != nil {
		return nil, err
	}

	return s.Predict(ctx, in), nil
}

// estimate picks the remote result or the fallback, never a mix of both
func (s *Predictor) estimate(ctx context.Context, in model.PredictionInput) (model.PredictionResult, error) {
	if s.remote == nil {
		return s.fallback.Estimate(in), ErrRemoteDisabled
	}

	var remoteErr error
	switch outcome := s.remote.Estimate(ctx, BuildPrompt(in)).(type) {
	case RemoteSuccess:
		return s.fromRemote(outcome.Estimate), nil
	case RemoteFailure:
		remoteErr = outcome.Err
	default:
		remoteErr = errors.New("remote estimator returned no outcome")
	}

	if errors.Is(remoteErr, ErrRemoteDisabled) {
		log.Printf("[DEBUG] Remote prediction disabled, using fallback estimator")
	} else {
		log.Printf("⚠️  Remote prediction failed, using fallback estimator: %v", remoteErr)
	}
	return s.fallback.Estimate(in), remoteErr
}

// fromRemote converts a parsed remote estimate. The price is re-rounded and
// re-formatted; a zero or missing confidence becomes the default.
func (s *Predictor) fromRemote(est RemoteEstimate) model.PredictionResult {
	amount, _ := est.PredictedPrice.Value()

	confidence := est.Confidence
	if confidence <= 0 || math.IsNaN(confidence) {
		confidence = s.defaultConfidence
	}

	result := model.PredictionResult{
		PredictedPrice: s.fallback.Formatter().Format(amount),
		Confidence:     pricing.ClampConfidence(confidence),
		IsAnomaly:      est.IsAnomaly,
		Explanation:    est.Explanation,
		Source:         model.SourceRemote,
	}
	if est.IsAnomaly {
		result.AnomalyReason = est.AnomalyReason
	}
	return result
}

// Record converts the prediction into its audit log row
func (p *Prediction) Record() *model.PredictionRecord {
	rec := &model.PredictionRecord{
		ID:             p.ID,
		Category:       string(p.Input.Category),
		BrandRating:    p.Input.BrandRating,
		SellerRating:   p.Input.SellerRating,
		Competition:    p.Input.Competition,
		Attributes:     p.Input.Attributes,
		Source:         p.Result.Source,
		PredictedPrice: p.Result.PredictedPrice,
		Confidence:     p.Result.Confidence,
		IsAnomaly:      p.Result.IsAnomaly,
		AnomalyReason:  p.Result.AnomalyReason,
		Explanation:    p.Result.Explanation,
		Features:       pgvector.NewVector(pricing.Features(p.Input)),
		CreatedAt:      time.Now(),
	}
	if v, ok := pricing.ParsePrice(p.Result.PredictedPrice); ok {
		rec.PriceValue = &v
	}
	if p.RemoteErr != nil {
		msg := p.RemoteErr.Error()
		rec.RemoteError = &msg
	}
	return rec
}

// NormalizeInput canonicalizes category names and attribute spellings
func NormalizeInput(in model.PredictionInput) model.PredictionInput {
	in.Category = model.Category(utils.NormalizeCategory(string(in.Category)))
	in.Competition = utils.NormalizeAttributeValue("competition", in.Competition)
	if in.Attributes != nil {
		in.Attributes = model.Attributes(utils.NormalizeAttributes(in.Attributes))
	}
	return in
}

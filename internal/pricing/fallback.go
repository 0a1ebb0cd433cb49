package pricing

import (
	"math"
	"strings"

	"pricepredictor/internal/model"
)

// LowRatingsReason is reported when both ratings are very low, regardless of category
const LowRatingsReason = "Very low ratings - consider alternatives"

// MaxConfidence caps every confidence the service reports
const MaxConfidence = 0.95

// Estimator is the deterministic fallback price estimator. It is safe for
// concurrent use and never fails.
type Estimator struct {
	defaultConfidence float64
	formatter         PriceFormatter
}

// NewEstimator creates a fallback estimator
func NewEstimator(defaultConfidence float64, formatter PriceFormatter) *Estimator {
	return &Estimator{
		defaultConfidence: defaultConfidence,
		formatter:         formatter,
	}
}

// Formatter returns the price formatter used by the estimator
func (e *Estimator) Formatter() PriceFormatter {
	return e.formatter
}

// Estimate computes a price, confidence and anomaly flag from the input
func (e *Estimator) Estimate(in model.PredictionInput) model.PredictionResult {
	price := e.Price(in)

	reason, anomalous := DetectAnomaly(in)

	return model.PredictionResult{
		PredictedPrice: e.formatter.Format(price),
		Confidence:     e.Confidence(in),
		IsAnomaly:      anomalous,
		AnomalyReason:  reason,
		Source:         model.SourceFallback,
	}
}

// Price returns the unrounded heuristic price. A zero rating zeroes the price.
func (e *Estimator) Price(in model.PredictionInput) float64 {
	profile, _ := Lookup(in.Category)

	price := profile.BasePrice
	price *= in.BrandRating / 3
	price *= in.SellerRating / 3
	price *= CompetitionFactor(in.Competition)

	for _, name := range profile.Attributes {
		value, ok := in.Attributes[name]
		if !ok || value == "" {
			continue
		}
		factor, ok := profile.Multiplier(name)(value)
		if !ok {
			continue
		}
		price *= factor
	}

	return price
}

// Confidence starts at the default and rises with good ratings
func (e *Estimator) Confidence(in model.PredictionInput) float64 {
	confidence := e.defaultConfidence
	if in.BrandRating >= 4 {
		confidence += 0.1
	}
	if in.SellerRating >= 4 {
		confidence += 0.1
	}
	return ClampConfidence(confidence)
}

// DetectAnomaly evaluates the category checks in order, then the
// low-ratings rule, which wins over any category reason.
func DetectAnomaly(in model.PredictionInput) (string, bool) {
	profile, _ := Lookup(in.Category)

	reason, anomalous := profile.Anomaly(in)

	if in.BrandRating < 2 && in.SellerRating < 2 {
		return LowRatingsReason, true
	}
	return reason, anomalous
}

// CompetitionFactor maps the market competition level to a price factor
func CompetitionFactor(level string) float64 {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case model.CompetitionLow:
		return 1.2
	case model.CompetitionHigh:
		return 0.8
	default:
		return 1.0
	}
}

// ClampConfidence keeps a confidence within [0, MaxConfidence]
func ClampConfidence(c float64) float64 {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return math.Min(c, MaxConfidence)
}

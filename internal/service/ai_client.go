package service

import (
	"context"
)

// RemoteEstimator asks a remote model for a price estimate
type RemoteEstimator interface {
	// Estimate sends the prompt and reports either a usable estimate or why
	// there is none. It never panics on bad model output.
	Estimate(ctx context.Context, prompt string) RemoteOutcome

	// IsEnabled returns whether the estimator is configured and ready
	IsEnabled() bool
}

// RemoteOutcome is either RemoteSuccess or RemoteFailure
type RemoteOutcome interface {
	remoteOutcome()
}

// RemoteSuccess carries the estimate parsed from the model's answer
type RemoteSuccess struct {
	Estimate RemoteEstimate
	Content  string // raw model answer
}

// RemoteFailure carries the reason the remote estimate is unusable:
// ErrRemoteDisabled, a *TransportError or a *FormatError
type RemoteFailure struct {
	Err error
}

func (RemoteSuccess) remoteOutcome() {}
func (RemoteFailure) remoteOutcome() {}

// RemoteEstimate is the JSON object the model is asked to answer with
type RemoteEstimate struct {
	PredictedPrice RemotePrice `json:"predicted_price"`
	Confidence     float64     `json:"confidence"`
	Explanation    string      `json:"explanation"`
	IsAnomaly      bool        `json:"is_anomaly"`
	AnomalyReason  string      `json:"anomaly_reason"`
}

// Ensure OpenAIClient implements RemoteEstimator
var _ RemoteEstimator = (*OpenAIClient)(nil)

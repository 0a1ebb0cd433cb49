package service

import (
	"encoding/json"
	"errors"
	"fmt"

	"pricepredictor/internal/pricing"
	"pricepredictor/internal/utils"
)

// ErrRemoteDisabled is reported when no API key is configured
var ErrRemoteDisabled = errors.New("prediction API is not enabled (missing API key)")

// TransportError means the remote call did not produce a 2xx response
type TransportError struct {
	StatusCode int    // 0 when no response arrived
	Body       string // response body, truncated
	Err        error  // network error, if any
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("prediction API request failed: %v", e.Err)
	}
	return fmt.Sprintf("prediction API request failed with status %d: %s", e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FormatError means the remote answer could not be used as an estimate
type FormatError struct {
	Content string
	Err     error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unusable prediction API response: %v", e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// IsTransportError reports whether err is, or wraps, a *TransportError
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// RemotePrice is the predicted_price field. Models send it as text
// ("₹12,499") or as a bare number.
type RemotePrice struct {
	Text    string
	Amount  float64
	Numeric bool
}

// UnmarshalJSON accepts a string or a number
func (p *RemotePrice) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*p = RemotePrice{Text: s}
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("predicted_price must be a string or a number")
	}
	*p = RemotePrice{Amount: f, Numeric: true}
	return nil
}

// Value returns the numeric amount of the price
func (p RemotePrice) Value() (float64, bool) {
	if p.Numeric {
		return p.Amount, true
	}
	return pricing.ParsePrice(p.Text)
}

// parseEstimate decodes the model's answer. Strict mode wants a bare JSON
// document; lenient mode also digs it out of markdown or prose.
func parseEstimate(content string, lenient bool) (RemoteEstimate, error) {
	var est RemoteEstimate

	parse := utils.ParseStrictJSON
	if lenient {
		parse = utils.ParseAIJSON
	}
	if err := parse(content, &est); err != nil {
		return est, &FormatError{Content: content, Err: err}
	}
	if _, ok := est.PredictedPrice.Value(); !ok {
		return est, &FormatError{Content: content, Err: errors.New("missing or non-numeric predicted_price")}
	}
	return est, nil
}

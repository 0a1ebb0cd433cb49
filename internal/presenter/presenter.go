// Package presenter turns prediction results into what the result panel
// shows: the price line, the anomaly warning and a confidence doughnut.
package presenter

import (
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"pricepredictor/internal/model"
)

// Doughnut colours
const (
	ConfidenceColor  = "#ff6f61"
	UncertaintyColor = "#f0f0f0"
)

// AnomalyPrefix is shown before anomaly reasons
const AnomalyPrefix = "⚠️ "

// Chart is a drawn confidence chart. The caller owns it and hands it back
// to Render on the next draw so it can be disposed.
type Chart struct {
	spec model.ChartSpec

	mu       sync.Mutex
	disposed bool
}

// Spec returns the chart description, including its SVG
func (c *Chart) Spec() model.ChartSpec {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spec
}

// Dispose releases the chart. It is safe to call more than once.
func (c *Chart) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disposed = true
	c.spec.SVG = ""
}

// Disposed reports whether Dispose has been called
func (c *Chart) Disposed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disposed
}

// Presenter renders prediction results
type Presenter struct{}

// New creates a presenter
func New() *Presenter {
	return &Presenter{}
}

// Render builds the result view and a fresh chart, disposing prev first
func (p *Presenter) Render(result model.PredictionResult, prev *Chart) (model.ResultView, *Chart) {
	if prev != nil {
		prev.Dispose()
	}

	view := model.ResultView{PredictedPrice: result.PredictedPrice}
	if result.IsAnomaly && result.AnomalyReason != "" {
		view.AnomalyVisible = true
		view.AnomalyText = AnomalyPrefix + result.AnomalyReason
	}

	return view, p.Draw(result.Confidence)
}

// Draw creates a doughnut chart for a confidence in [0,1]
func (p *Presenter) Draw(confidence float64) *Chart {
	if math.IsNaN(confidence) {
		confidence = 0
	}
	confidence = math.Max(0, math.Min(1, confidence))

	pct := confidence * 100
	spec := model.ChartSpec{
		ID:    uuid.NewString(),
		Type:  "doughnut",
		Title: fmt.Sprintf("Confidence: %.1f%%", pct),
		Segments: []model.ChartSegment{
			{Label: "Confidence", Value: pct, Color: ConfidenceColor},
			{Label: "Uncertainty", Value: 100 - pct, Color: UncertaintyColor},
		},
	}
	spec.SVG = doughnutSVG(spec)

	return &Chart{spec: spec}
}

// circumference 100 makes dash lengths equal to percentages
const ringRadius = 15.91549430918954

// doughnutSVG draws the segments as dashed strokes of one circle,
// starting at twelve o'clock and running clockwise
func doughnutSVG(spec model.ChartSpec) string {
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 42 48" width="210" height="240" role="img" aria-label="%s" id="chart-%s">`, spec.Title, spec.ID)
	fmt.Fprintf(&b, `<text x="21" y="4" text-anchor="middle" font-size="3" font-family="sans-serif">%s</text>`, spec.Title)

	offset := 25.0
	for _, seg := range spec.Segments {
		fmt.Fprintf(&b,
			`<circle cx="21" cy="27" r="%.5f" fill="transparent" stroke="%s" stroke-width="6" stroke-dasharray="%.2f %.2f" stroke-dashoffset="%.2f"><title>%s</title></circle>`,
			ringRadius, seg.Color, seg.Value, 100-seg.Value, offset, seg.Label)
		offset -= seg.Value
	}

	b.WriteString(`</svg>`)
	return b.String()
}

package model

// PredictRequest represents a price prediction request
type PredictRequest struct {
	Category     string     `json:"category" binding:"required"`
	BrandRating  float64    `json:"brand_rating" binding:"gte=0,lte=5"`
	SellerRating float64    `json:"seller_rating" binding:"gte=0,lte=5"`
	Competition  string     `json:"competition" binding:"omitempty,competition"`
	Attributes   Attributes `json:"attributes,omitempty"`
}

// Input converts the request into estimator input
func (r *PredictRequest) Input() PredictionInput {
	return PredictionInput{
		Category:     Category(r.Category),
		BrandRating:  r.BrandRating,
		SellerRating: r.SellerRating,
		Competition:  r.Competition,
		Attributes:   r.Attributes,
	}
}

// PredictResponse represents a prediction with its presentation
type PredictResponse struct {
	ID     string           `json:"id"`
	Result PredictionResult `json:"result"`
	View   ResultView       `json:"view"`
	Chart  *ChartSpec       `json:"chart"`
	Took   int64            `json:"took_ms"`
}

// ResultView is what the result panel displays
type ResultView struct {
	PredictedPrice string `json:"predicted_price"`
	AnomalyVisible bool   `json:"anomaly_visible"`
	AnomalyText    string `json:"anomaly_text,omitempty"`
}

// ChartSpec describes a drawn confidence chart
type ChartSpec struct {
	ID       string         `json:"id"`
	Type     string         `json:"type"`
	Title    string         `json:"title"`
	Segments []ChartSegment `json:"segments"`
	SVG      string         `json:"svg"`
}

// ChartSegment is one slice of the doughnut
type ChartSegment struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// BasicPredictRequest is the input of the basic linear estimator
type BasicPredictRequest struct {
	BrandRating  float64 `json:"brand_rating" binding:"gte=0,lte=5"`
	SellerRating float64 `json:"seller_rating" binding:"gte=0,lte=5"`
	Weight       float64 `json:"weight" binding:"gte=0"`
	Dimensions   float64 `json:"dimensions" binding:"gte=0"`
	Warranty     int     `json:"warranty" binding:"gte=0"`
}

// BasicPredictResponse is the output of the basic linear estimator
type BasicPredictResponse struct {
	PredictedPrice float64 `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	IsAnomaly      bool    `json:"is_anomaly"`
	Explanation    string  `json:"explanation"`
}

// CategoryInfo describes a supported category profile
type CategoryInfo struct {
	Name        Category `json:"name"`
	Description string   `json:"description"`
	BasePrice   float64  `json:"base_price"`
	Attributes  []string `json:"attributes"`
}

// FeedbackRequest records the price a product actually sold for
type FeedbackRequest struct {
	PredictionID string  `json:"prediction_id" binding:"required"`
	ActualPrice  float64 `json:"actual_price" binding:"gt=0"`
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"
)

// Category identifies a product category profile
type Category string

// Supported categories
const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryBooks       Category = "books"
	CategorySports      Category = "sports"
	CategoryAutomotive  Category = "automotive"
	CategoryBeauty      Category = "beauty"
	CategoryToys        Category = "toys"
)

// Categories lists the supported categories in display order
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryHome,
	CategoryBooks,
	CategorySports,
	CategoryAutomotive,
	CategoryBeauty,
	CategoryToys,
}

// Competition levels
const (
	CompetitionLow    = "low"
	CompetitionMedium = "medium"
	CompetitionHigh   = "high"
)

// Prediction sources
const (
	SourceRemote   = "remote"
	SourceFallback = "fallback"
)

// PredictionInput is everything the estimators look at
type PredictionInput struct {
	Category     Category   `json:"category"`
	BrandRating  float64    `json:"brand_rating"`
	SellerRating float64    `json:"seller_rating"`
	Competition  string     `json:"competition"`
	Attributes   Attributes `json:"attributes,omitempty"`
}

// PredictionResult is the estimate shown to the user
type PredictionResult struct {
	PredictedPrice string  `json:"predicted_price"`
	Confidence     float64 `json:"confidence"`
	IsAnomaly      bool    `json:"is_anomaly"`
	AnomalyReason  string  `json:"anomaly_reason"`
	Explanation    string  `json:"explanation,omitempty"`
	Source         string  `json:"source"`
}

// PredictionRecord is a stored prediction
type PredictionRecord struct {
	ID             string          `json:"id" db:"id"`
	Category       string          `json:"category" db:"category"`
	BrandRating    float64         `json:"brand_rating" db:"brand_rating"`
	SellerRating   float64         `json:"seller_rating" db:"seller_rating"`
	Competition    string          `json:"competition" db:"competition"`
	Attributes     Attributes      `json:"attributes,omitempty" db:"attributes"`
	Source         string          `json:"source" db:"source"`
	PredictedPrice string          `json:"predicted_price" db:"predicted_price"`
	PriceValue     *float64        `json:"price_value,omitempty" db:"price_value"`
	Confidence     float64         `json:"confidence" db:"confidence"`
	IsAnomaly      bool            `json:"is_anomaly" db:"is_anomaly"`
	AnomalyReason  string          `json:"anomaly_reason" db:"anomaly_reason"`
	Explanation    string          `json:"explanation,omitempty" db:"explanation"`
	RemoteError    *string         `json:"remote_error,omitempty" db:"remote_error"`
	ActualPrice    *float64        `json:"actual_price,omitempty" db:"actual_price"`
	Features       pgvector.Vector `json:"-" db:"features"`
	Distance       *float64        `json:"distance,omitempty" db:"distance"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// Attributes holds category-specific inputs. Values arrive as JSON strings,
// numbers or booleans and are kept in their string form; empty values are dropped.
type Attributes map[string]string

// UnmarshalJSON accepts string, number and boolean values
func (a *Attributes) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*a = nil
		return nil
	}

	out := make(Attributes, len(raw))
	for key, value := range raw {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		switch v := value.(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				out[key] = s
			}
		case float64:
			out[key] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			out[key] = strconv.FormatBool(v)
		default:
			return fmt.Errorf("attribute %q: unsupported value type %T", key, value)
		}
	}
	*a = out
	return nil
}

// Float returns the numeric value of an attribute. NaN and infinities
// count as unparseable.
func (a Attributes) Float(name string) (float64, bool) {
	s, ok := a[name]
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Value implements driver.Valuer interface. A nil map is stored as {}
// because the column is NOT NULL.
func (a Attributes) Value() (driver.Value, error) {
	if a == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(map[string]string(a))
}

// Scan implements sql.Scanner interface
func (a *Attributes) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Attributes", value)
	}
}

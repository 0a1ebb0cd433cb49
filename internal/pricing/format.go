package pricing

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PriceFormatter renders whole-unit prices with a currency symbol and
// locale-aware digit grouping
type PriceFormatter struct {
	Symbol string
	tag    language.Tag
}

// NewPriceFormatter creates a formatter. An unparseable locale falls back to English.
func NewPriceFormatter(symbol, locale string) PriceFormatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return PriceFormatter{Symbol: symbol, tag: tag}
}

// Format rounds the price to the nearest whole unit and formats it.
// Prices beyond the int64 range keep their digits.
func (f PriceFormatter) Format(price float64) string {
	p := message.NewPrinter(f.tag)
	return f.Symbol + p.Sprintf("%.0f", Round(price))
}

// Round rounds half up, the way the page rounded prices
func Round(price float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0
	}
	return math.Floor(price + 0.5)
}

var priceNumber = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// ParsePrice extracts the numeric amount from a formatted price like "₹12,499"
func ParsePrice(s string) (float64, bool) {
	m := priceNumber.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

package pricing

import (
	"math"
	"strconv"
	"strings"

	"pricepredictor/internal/model"
)

// Multiplier turns a raw attribute value into a price factor.
// ok=false means the value is unusable and the attribute is skipped.
type Multiplier func(value string) (factor float64, ok bool)

// AnomalyCheck flags an unusual listing
type AnomalyCheck struct {
	Reason  string
	Applies func(in model.PredictionInput) bool
}

// CategoryProfile is the static pricing configuration of one category
type CategoryProfile struct {
	Category    model.Category
	Description string
	BasePrice   float64
	Attributes  []string
	Multipliers map[string]Multiplier
	Checks      []AnomalyCheck
}

// Multiplier returns the profile's multiplier for an attribute, identity if none
func (p *CategoryProfile) Multiplier(name string) Multiplier {
	if m, ok := p.Multipliers[name]; ok {
		return m
	}
	return identity
}

// Anomaly returns the reason of the first check that applies
func (p *CategoryProfile) Anomaly(in model.PredictionInput) (string, bool) {
	for _, check := range p.Checks {
		if check.Applies(in) {
			return check.Reason, true
		}
	}
	return "", false
}

// Attribute multipliers. Anything not listed here has no effect on price.
var multipliers = map[string]Multiplier{
	"weight": numeric(func(v float64) float64 { return v*0.8 + 0.6 }),
	"dimensions": numeric(func(v float64) float64 {
		return v/1000*0.5 + 0.8
	}),
	// warranty is in whole months
	"warranty": numeric(func(v float64) float64 {
		return float64(int64(v))/12*0.3 + 0.9
	}),
	"brand_tier": lookup(map[string]float64{
		"budget":    0.7,
		"mid-range": 1.0,
		"premium":   1.5,
		"luxury":    2.5,
	}),
	"material": lookup(map[string]float64{
		"silk":      1.8,
		"leather":   1.6,
		"wool":      1.4,
		"cotton":    1.0,
		"polyester": 0.8,
	}),
	"format": lookup(map[string]float64{
		"hardcover": 1.4,
		"paperback": 1.0,
		"ebook":     0.6,
		"audiobook": 1.2,
	}),
}

// MultiplierFor returns the multiplier registered for an attribute name,
// or identity when none is registered.
func MultiplierFor(name string) Multiplier {
	if m, ok := multipliers[name]; ok {
		return m
	}
	return identity
}

func identity(string) (float64, bool) { return 1.0, true }

func numeric(fn func(float64) float64) Multiplier {
	return func(value string) (float64, bool) {
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		f := fn(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
}

func lookup(table map[string]float64) Multiplier {
	return func(value string) (float64, bool) {
		if f, ok := table[value]; ok {
			return f, true
		}
		return 1.0, true
	}
}

var profiles = map[model.Category]*CategoryProfile{
	model.CategoryElectronics: {
		Category:    model.CategoryElectronics,
		Description: "electronic devices and gadgets",
		BasePrice:   15000,
		Attributes:  []string{"weight", "dimensions", "warranty", "condition"},
		Checks: []AnomalyCheck{
			{Reason: "Unusually heavy electronics item", Applies: attrAbove("weight", 20)},
			{Reason: "Extremely large electronics", Applies: attrAbove("dimensions", 100000)},
			{Reason: "Very low brand rating", Applies: brandBelow(2)},
		},
	},
	model.CategoryClothing: {
		Category:    model.CategoryClothing,
		Description: "clothing, fashion items, and accessories",
		BasePrice:   2500,
		Attributes:  []string{"size", "material", "season", "brand_tier"},
		Checks: []AnomalyCheck{
			{Reason: "Premium material with low brand rating", Applies: all(attrIs("material", "silk"), brandBelow(3))},
			{Reason: "Luxury item from low-rated seller", Applies: all(attrIs("brand_tier", "luxury"), sellerBelow(3))},
		},
	},
	model.CategoryHome: {
		Category:    model.CategoryHome,
		Description: "home decor, furniture, and garden items",
		BasePrice:   8000,
		Attributes:  []string{"weight", "dimensions", "material", "room_type"},
		Checks: []AnomalyCheck{
			{Reason: "Very heavy home item", Applies: attrAbove("weight", 50)},
			{Reason: "Heavy glass item - safety concern", Applies: all(attrIs("material", "glass"), attrAbove("weight", 10))},
		},
	},
	model.CategoryBooks: {
		Category:    model.CategoryBooks,
		Description: "books, magazines, and media content",
		BasePrice:   800,
		Attributes:  []string{"pages", "format", "genre", "publication_year"},
		Checks: []AnomalyCheck{
			{Reason: "Extremely long book", Applies: attrAbove("pages", 1500)},
			{Reason: "Very old publication", Applies: attrBelow("publication_year", 1950)},
		},
	},
	model.CategorySports: {
		Category:    model.CategorySports,
		Description: "sports equipment, fitness gear, and athletic wear",
		BasePrice:   5000,
		Attributes:  []string{"weight", "sport_type", "skill_level", "age_group"},
		Checks: []AnomalyCheck{
			{Reason: "Very heavy sports equipment", Applies: attrAbove("weight", 15)},
			{Reason: "Professional equipment from low-rated brand", Applies: all(attrIs("skill_level", "professional"), brandBelow(4))},
		},
	},
	model.CategoryAutomotive: {
		Category:    model.CategoryAutomotive,
		Description: "automotive parts, accessories, and vehicles",
		BasePrice:   25000,
		Attributes:  []string{"year", "mileage", "fuel_type", "transmission"},
		Checks: []AnomalyCheck{
			{Reason: "Very old vehicle", Applies: attrBelow("year", 2000)},
			{Reason: "Very high mileage", Applies: attrAbove("mileage", 300000)},
		},
	},
	model.CategoryBeauty: {
		Category:    model.CategoryBeauty,
		Description: "beauty products, skincare, and health items",
		BasePrice:   1500,
		Attributes:  []string{"volume", "skin_type", "brand_tier", "cruelty_free"},
		Checks: []AnomalyCheck{
			{Reason: "Very large volume beauty product", Applies: attrAbove("volume", 500)},
			{Reason: "Very small luxury beauty product", Applies: all(attrIs("brand_tier", "luxury"), attrBelow("volume", 30))},
		},
	},
	model.CategoryToys: {
		Category:    model.CategoryToys,
		Description: "toys, games, and children's entertainment",
		BasePrice:   1200,
		Attributes:  []string{"age_range", "battery_required", "educational", "brand_tier"},
		Checks: []AnomalyCheck{
			{Reason: "Battery-operated toy for very young children", Applies: all(attrIs("age_range", "0-2"), attrIs("battery_required", "yes"))},
			{Reason: "High educational value from budget brand", Applies: all(attrIs("educational", "high"), attrIs("brand_tier", "budget"))},
		},
	},
}

func init() {
	for _, p := range profiles {
		p.Multipliers = make(map[string]Multiplier, len(p.Attributes))
		for _, name := range p.Attributes {
			p.Multipliers[name] = MultiplierFor(name)
		}
	}
}

// DefaultCategory is used for categories without a profile
const DefaultCategory = model.CategoryElectronics

// Lookup returns the profile for a category and whether it was found.
// Unknown categories get the default profile.
func Lookup(category model.Category) (*CategoryProfile, bool) {
	if p, ok := profiles[category]; ok {
		return p, true
	}
	return profiles[DefaultCategory], false
}

// Profiles returns all profiles in display order
func Profiles() []*CategoryProfile {
	out := make([]*CategoryProfile, 0, len(model.Categories))
	for _, c := range model.Categories {
		out = append(out, profiles[c])
	}
	return out
}

// predicate helpers; numeric comparisons on absent or unparseable values are false

func attrAbove(name string, limit float64) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool {
		v, ok := in.Attributes.Float(name)
		return ok && v > limit
	}
}

func attrBelow(name string, limit float64) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool {
		v, ok := in.Attributes.Float(name)
		return ok && v < limit
	}
}

func attrIs(name, want string) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool {
		return in.Attributes[name] == want
	}
}

func brandBelow(limit float64) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool { return in.BrandRating < limit }
}

func sellerBelow(limit float64) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool { return in.SellerRating < limit }
}

func all(preds ...func(model.PredictionInput) bool) func(model.PredictionInput) bool {
	return func(in model.PredictionInput) bool {
		for _, p := range preds {
			if !p(in) {
				return false
			}
		}
		return true
	}
}

package utils

import (
	"strings"
)

// categoryAliases lists the loose names users type for each category
var categoryAliases = map[string][]string{
	"electronics": {"electronic", "gadget", "gadgets", "phone", "laptop"},
	"clothing":    {"clothes", "fashion", "apparel", "garment"},
	"home":        {"home decor", "furniture", "kitchen", "household"},
	"books":       {"book", "novel", "textbook"},
	"sports":      {"sport", "fitness", "outdoor"},
	"automotive":  {"auto", "car", "vehicle", "vehicles"},
	"beauty":      {"cosmetics", "skincare", "makeup"},
	"toys":        {"toy", "games", "kids"},
}

// valueAliases maps loose attribute values to the spelling the price
// tables expect, per attribute
var valueAliases = map[string]map[string]string{
	"brand_tier": {
		"mid range": "mid-range",
		"midrange":  "mid-range",
		"mid":       "mid-range",
		"cheap":     "budget",
		"economy":   "budget",
		"high-end":  "premium",
		"high end":  "premium",
		"designer":  "luxury",
	},
	"format": {
		"hard cover": "hardcover",
		"hardback":   "hardcover",
		"paper back": "paperback",
		"softcover":  "paperback",
		"e-book":     "ebook",
		"kindle":     "ebook",
		"audio book": "audiobook",
		"audio":      "audiobook",
	},
	"material": {
		"genuine leather": "leather",
		"merino":          "wool",
		"cashmere":        "wool",
		"poly":            "polyester",
	},
	"battery_required": {
		"true":  "yes",
		"y":     "yes",
		"false": "no",
		"n":     "no",
	},
}

// FuzzyMatchCategory reports whether a user-typed term refers to the
// given canonical category
func FuzzyMatchCategory(term, category string) bool {
	termLower := strings.ToLower(strings.TrimSpace(term))
	categoryLower := strings.ToLower(strings.TrimSpace(category))

	if termLower == "" {
		return false
	}
	if termLower == categoryLower {
		return true
	}

	for _, alias := range categoryAliases[categoryLower] {
		if termLower == alias {
			return true
		}
	}

	return false
}

// NormalizeCategory lowercases a category name and resolves aliases.
// Unknown names come back lowercased so the caller can still fall back.
func NormalizeCategory(category string) string {
	c := strings.ToLower(strings.TrimSpace(category))
	if _, ok := categoryAliases[c]; ok {
		return c
	}
	for canonical := range categoryAliases {
		if FuzzyMatchCategory(c, canonical) {
			return canonical
		}
	}
	return c
}

// NormalizeAttributeName turns "Brand Tier" or "brand-tier" into "brand_tier"
func NormalizeAttributeName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(n)
}

// NormalizeAttributeValue lowercases a value and resolves aliases for the
// given attribute
func NormalizeAttributeValue(name, value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	if canonical, ok := valueAliases[name][v]; ok {
		return canonical
	}
	return v
}

// NormalizeAttributes normalizes every name and value, dropping entries
// that end up empty
func NormalizeAttributes(attrs map[string]string) map[string]string {
	if attrs == nil {
		return nil
	}
	out := make(map[string]string, len(attrs))
	for name, value := range attrs {
		n := NormalizeAttributeName(name)
		v := NormalizeAttributeValue(n, value)
		if n == "" || v == "" {
			continue
		}
		out[n] = v
	}
	return out
}

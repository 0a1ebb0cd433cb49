package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"pricepredictor/internal/model"
	"pricepredictor/internal/pricing"
)

// BuildPrompt renders the input into the request sent to the remote model.
// Attributes appear in profile order, then any others alphabetically;
// absent attributes are left out.
func BuildPrompt(in model.PredictionInput) string {
	category := string(in.Category)
	description := category
	if profile, ok := pricing.Lookup(in.Category); ok {
		description = profile.Description
	}

	names := attributeOrder(in)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert e-commerce price analyst specializing in %s. \n\n", description)
	b.WriteString("Based on the following product details, provide a realistic price prediction in Indian Rupees (₹):\n\n")
	fmt.Fprintf(&b, "**Product Category:** %s\n", category)
	fmt.Fprintf(&b, "**Brand Rating:** %s/5\n", formatRating(in.BrandRating))
	fmt.Fprintf(&b, "**Seller Rating:** %s/5\n", formatRating(in.SellerRating))
	fmt.Fprintf(&b, "**Market Competition:** %s\n\n", in.Competition)
	b.WriteString("**Category-Specific Details:**\n")

	for _, name := range names {
		label := strings.ToUpper(strings.ReplaceAll(name, "_", " "))
		fmt.Fprintf(&b, "- %s: %s\n", label, in.Attributes[name])
	}

	b.WriteString(`

Please provide your response in this exact JSON format:
{
  "predicted_price": "₹X,XXX",
  "confidence": 0.XX,
`)
	fmt.Fprintf(&b, "  \"explanation\": \"Brief explanation considering %s market factors\",\n", category)
	b.WriteString(`  "is_anomaly": false,
  "anomaly_reason": "If anomaly detected, explain why"
}

Consider:
`)
	fmt.Fprintf(&b, "- Current market trends for %s in India\n", category)
	b.WriteString("- Brand value and reputation impact\n")
	fmt.Fprintf(&b, "- Category-specific factors (%s)\n", strings.Join(names, ", "))
	b.WriteString(`- Competition level effects
- Seasonal or market timing factors
- Quality indicators and condition

Be realistic and provide confidence based on data completeness and market knowledge.`)

	return b.String()
}

// attributeOrder lists the non-empty attributes, profile attributes first
func attributeOrder(in model.PredictionInput) []string {
	names := make([]string, 0, len(in.Attributes))
	seen := make(map[string]bool, len(in.Attributes))

	if profile, ok := pricing.Lookup(in.Category); ok {
		for _, name := range profile.Attributes {
			if in.Attributes[name] != "" {
				names = append(names, name)
				seen[name] = true
			}
		}
	}

	var rest []string
	for name, value := range in.Attributes {
		if !seen[name] && value != "" {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)

	return append(names, rest...)
}

func formatRating(r float64) string {
	return strconv.FormatFloat(r, 'f', -1, 64)
}

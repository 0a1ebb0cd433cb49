package pricing

import "pricepredictor/internal/model"

// FeatureDimensions is the length of the vector returned by Features
var FeatureDimensions = len(model.Categories) + 3

// Features encodes an input as a fixed-length vector for similarity lookups:
// one-hot category, ratings scaled to [0,1], then competition (low 0, high 1).
// Unknown categories are encoded as the default category.
func Features(in model.PredictionInput) []float32 {
	vec := make([]float32, FeatureDimensions)

	profile, _ := Lookup(in.Category)
	for i, c := range model.Categories {
		if c == profile.Category {
			vec[i] = 1
			break
		}
	}

	n := len(model.Categories)
	vec[n] = float32(in.BrandRating / 5)
	vec[n+1] = float32(in.SellerRating / 5)
	switch CompetitionFactor(in.Competition) {
	case 1.2:
		vec[n+2] = 0
	case 0.8:
		vec[n+2] = 1
	default:
		vec[n+2] = 0.5
	}
	return vec
}

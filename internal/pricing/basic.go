package pricing

import (
	"math"

	"pricepredictor/internal/model"
)

const (
	basicBasePrice  = 100
	basicConfidence = 0.85
	basicMinPrice   = 50
	basicMaxPrice   = 10000
)

// BasicUnusualExplanation accompanies basic estimates outside the plausible range
const BasicUnusualExplanation = "Predicted price seems unusual."

// EstimateBasic is the linear estimator served by the first version of the
// demo backend. Prices are rounded to two decimals.
func EstimateBasic(req model.BasicPredictRequest) model.BasicPredictResponse {
	price := basicBasePrice +
		req.BrandRating*10 +
		req.Weight*5 +
		req.Dimensions*0.05 +
		float64(req.Warranty)*2 +
		req.SellerRating*8

	resp := model.BasicPredictResponse{
		PredictedPrice: math.Round(price*100) / 100,
		Confidence:     basicConfidence,
	}
	if price < basicMinPrice || price > basicMaxPrice {
		resp.IsAnomaly = true
		resp.Explanation = BasicUnusualExplanation
	}
	return resp
}

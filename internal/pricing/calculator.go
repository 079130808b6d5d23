package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/ecofinds/ecofinds-backend/pkg/enums"
)

// MinPrice is the floor applied to every derived resale price.
var MinPrice = decimal.NewFromFloat(0.01)

var one = decimal.NewFromInt(1)

var conditionFactors = map[enums.ListingCondition]decimal.Decimal{
	enums.ListingConditionExcellent: decimal.NewFromFloat(1.0),
	enums.ListingConditionGood:      decimal.NewFromFloat(0.8),
	enums.ListingConditionFair:      decimal.NewFromFloat(0.6),
	enums.ListingConditionPoor:      decimal.NewFromFloat(0.4),
}

// defaultConditionFactor covers unrecognized conditions.
var defaultConditionFactor = decimal.NewFromFloat(0.8)

// ConditionFactor resolves the multiplier applied for the given wear grade.
func ConditionFactor(condition enums.ListingCondition) decimal.Decimal {
	if factor, ok := conditionFactors[condition]; ok {
		return factor
	}
	return defaultConditionFactor
}

// ResalePrice derives the listing price from the original retail price:
//
//	resale = original × (1 − depreciationRate) × conditionFactor
//
// floored at MinPrice and rounded to cents.
func ResalePrice(original, depreciationRate decimal.Decimal, condition enums.ListingCondition) decimal.Decimal {
	price := original.
		Mul(one.Sub(depreciationRate)).
		Mul(ConditionFactor(condition)).
		Round(2)
	if price.LessThan(MinPrice) {
		return MinPrice
	}
	return price
}

// CO2Saved estimates the avoided emissions for a reused item, in kg.
func CO2Saved(weightKg, avgCO2PerKg decimal.Decimal) decimal.Decimal {
	if weightKg.IsNegative() || avgCO2PerKg.IsNegative() {
		return decimal.Zero
	}
	return weightKg.Mul(avgCO2PerKg).Round(2)
}

var conditionScores = map[enums.ListingCondition]int{
	enums.ListingConditionExcellent: 60,
	enums.ListingConditionGood:      50,
	enums.ListingConditionFair:      40,
	enums.ListingConditionPoor:      30,
}

// SustainabilityScore grades a listing 0-100 from its condition and the
// CO2 it avoids. Each avoided kg adds one point, capped at 40.
func SustainabilityScore(condition enums.ListingCondition, co2SavedKg decimal.Decimal) int {
	score, ok := conditionScores[condition]
	if !ok {
		score = conditionScores[enums.ListingConditionGood]
	}

	bonus := int(co2SavedKg.IntPart())
	if bonus < 0 {
		bonus = 0
	}
	if bonus > 40 {
		bonus = 40
	}
	return score + bonus
}

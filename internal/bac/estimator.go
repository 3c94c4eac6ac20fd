package bac

// Formula constants.
const (
	BottleLiters     = 0.33
	GramsPerLiter    = 8.0
	StrengthFactor   = 4.5
	BurnDivisor      = 10.0
	MaleWaterRatio   = 0.7
	FemaleWaterRatio = 0.6
)

// Estimate computes the simplified Widmark estimate
//
//	liters = drinks * 0.33
//	grams  = liters * 8 * 4.5
//	left   = grams - (weight / 10) * hours
//	bac    = left / (weight * ratio)
//
// No clamping or range checks are applied. A zero weight yields the IEEE-754
// division result: +Inf or -Inf depending on the sign of left, NaN when left is zero.
func Estimate(in Input) Result {
	liters := float64(in.DrinkCount) * BottleLiters
	grams := liters * GramsPerLiter * StrengthFactor
	burnPerHour := float64(in.WeightKg) / BurnDivisor
	gramsLeft := grams - burnPerHour*float64(in.ElapsedHours)

	return Result{BAC: gramsLeft / (float64(in.WeightKg) * waterRatio(in.Sex))}
}

// waterRatio returns the male constant for anything that is not Female,
// matching the two-way choice of the input form.
func waterRatio(sex Sex) float64 {
	if sex == Female {
		return FemaleWaterRatio
	}
	return MaleWaterRatio
}

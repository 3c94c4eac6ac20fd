package bac

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Sex selects the body water distribution constant of the formula
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// Sexes lists the accepted values in display order
func Sexes() []Sex {
	return []Sex{Male, Female}
}

// ParseSex accepts "male"/"female" (and m/f), case-insensitive
func ParseSex(s string) (Sex, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return Male, nil
	case "female", "f":
		return Female, nil
	default:
		return "", fmt.Errorf("unknown sex: %q", s)
	}
}

// Input holds everything a single estimation needs.
type Input struct {
	Sex          Sex `json:"sex" yaml:"sex"`
	WeightKg     int `json:"weightKg" yaml:"weightKg"`
	DrinkCount   int `json:"drinkCount" yaml:"drinkCount"`
	ElapsedHours int `json:"elapsedHours" yaml:"elapsedHours"`
}

// Outcome describes the numeric class of an estimated value
type Outcome string

const (
	OutcomeFinite      Outcome = "finite"
	OutcomePosInfinity Outcome = "positive_infinity"
	OutcomeNegInfinity Outcome = "negative_infinity"
	OutcomeNaN         Outcome = "nan"
)

// Result is the estimated blood alcohol value. Negative values mean no measurable
// alcohol is left and are kept as-is.
type Result struct {
	BAC float64
}

// IsFinite reports whether the value is neither infinite nor NaN.
func (r Result) IsFinite() bool {
	return !math.IsInf(r.BAC, 0) && !math.IsNaN(r.BAC)
}

// Outcome classifies the value; only a zero weight produces anything but OutcomeFinite.
func (r Result) Outcome() Outcome {
	switch {
	case math.IsNaN(r.BAC):
		return OutcomeNaN
	case math.IsInf(r.BAC, 1):
		return OutcomePosInfinity
	case math.IsInf(r.BAC, -1):
		return OutcomeNegInfinity
	default:
		return OutcomeFinite
	}
}

// String renders the raw value without rounding or unit.
func (r Result) String() string {
	return strconv.FormatFloat(r.BAC, 'g', -1, 64)
}

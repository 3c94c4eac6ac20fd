package bac

import (
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
)

const (
	MinBottles   = 0
	MaxBottles   = 10
	MinHours     = 1
	MaxHours     = 24
	DefaultHours = MinHours
)

var validate = validator.New()

// Form is what a user fills in before asking for an estimate: free-text weight and
// three discrete selections.
type Form struct {
	WeightText string `json:"weight"`
	Sex        Sex    `json:"sex" validate:"oneof=male female"`
	Bottles    int    `json:"bottles" validate:"gte=0,lte=10"`
	Hours      int    `json:"hours" validate:"gte=1,lte=24"`
}

// DefaultForm is the state of a fresh form
func DefaultForm() Form {
	return Form{
		Sex:     Male,
		Bottles: MinBottles,
		Hours:   DefaultHours,
	}
}

// Validate checks the selector ranges. An unparseable weight is not an error.
func (f Form) Validate() error {
	if err := validate.Struct(f); err != nil {
		return fmt.Errorf("invalid form: %w", err)
	}
	return nil
}

// Input converts the form into estimator input, coercing the weight text.
func (f Form) Input() Input {
	return Input{
		Sex:          f.Sex,
		WeightKg:     ParseWeight(f.WeightText),
		DrinkCount:   f.Bottles,
		ElapsedHours: f.Hours,
	}
}

// ParseWeight parses a 32-bit decimal integer and returns 0 for anything else,
// including text with surrounding whitespace.
func ParseWeight(text string) int {
	return parseIntOr(text, 0)
}

// ParseBottles parses a bottle selection label, falling back to 0.
func ParseBottles(label string) int {
	return parseIntOr(label, MinBottles)
}

// ParseHours parses an hour selection label, falling back to 1.
func ParseHours(label string) int {
	return parseIntOr(label, DefaultHours)
}

func parseIntOr(text string, fallback int) int {
	v, err := strconv.ParseInt(text, 10, 32)
	if err != nil {
		return fallback
	}
	return int(v)
}

// BottleChoices returns the selectable bottle counts, 0 through 10.
func BottleChoices() []int {
	return choices(MinBottles, MaxBottles)
}

// HourChoices returns the selectable elapsed hours, 1 through 24.
func HourChoices() []int {
	return choices(MinHours, MaxHours)
}

func choices(from, to int) []int {
	out := make([]int, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

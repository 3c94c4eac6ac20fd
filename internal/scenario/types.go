package scenario

import (
	"fmt"

	"github.com/samijaber1/alcometer/internal/bac"
)

// Scenario represents a parsed scenario document
type Scenario struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata contains scenario metadata
type Metadata struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description,omitempty"`
}

// Spec contains the estimation inputs and the optional expectation
type Spec struct {
	Sex      string       `yaml:"sex"`
	WeightKg int          `yaml:"weightKg"`
	Bottles  int          `yaml:"bottles"`
	Elapsed  string       `yaml:"elapsed"`
	Expect   *Expectation `yaml:"expect,omitempty"`
}

// Expectation describes what the estimate must look like
type Expectation struct {
	BAC       *float64 `yaml:"bac,omitempty"`
	Tolerance float64  `yaml:"tolerance,omitempty"`
	Outcome   string   `yaml:"outcome,omitempty"`
	Level     string   `yaml:"level,omitempty"`
}

// Input converts the spec into estimator input
func (s *Scenario) Input() (bac.Input, error) {
	sex, err := bac.ParseSex(s.Spec.Sex)
	if err != nil {
		return bac.Input{}, err
	}

	hours, err := ParseElapsedHours(s.Spec.Elapsed)
	if err != nil {
		return bac.Input{}, fmt.Errorf("spec.elapsed: %w", err)
	}

	return bac.Input{
		Sex:          sex,
		WeightKg:     s.Spec.WeightKg,
		DrinkCount:   s.Spec.Bottles,
		ElapsedHours: hours,
	}, nil
}

// ScenarioWithFile pairs a scenario with its source file path and the raw
// decoded document used for schema validation
type ScenarioWithFile struct {
	Scenario *Scenario
	File     string
	Raw      interface{}
}

// ValidationError represents a validation error for a specific file
type ValidationError struct {
	File    string
	Path    string
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	if e.Path != "" {
		return e.File + ": " + e.Path + ": " + e.Message
	}
	return e.File + ": " + e.Message
}

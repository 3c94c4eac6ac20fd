package scenario

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

//go:embed schema/scenario_v1.json
var schemaJSON []byte

const schemaURL = "https://alcometer.dev/schemas/scenario_v1.json"

// Validator handles scenario validation
type Validator struct {
	schema *jsonschema.Schema
}

// NewValidator compiles the embedded scenario schema
func NewValidator() (*Validator, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("failed to add schema: %w", err)
	}

	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &Validator{schema: schema}, nil
}

// ValidateDirectory loads and validates all scenario files in a directory
func (v *Validator) ValidateDirectory(dirPath string) ([]ScenarioWithFile, []ValidationError) {
	scenarios, loadErrors := LoadFromDirectory(dirPath)

	var allErrors []ValidationError
	allErrors = append(allErrors, loadErrors...)
	allErrors = append(allErrors, v.Validate(scenarios)...)

	return scenarios, allErrors
}

// Validate checks loaded scenarios against the schema and the extra rules
func (v *Validator) Validate(scenarios []ScenarioWithFile) []ValidationError {
	var allErrors []ValidationError

	for _, sc := range scenarios {
		allErrors = append(allErrors, v.validateSchema(sc.File, sc.Raw)...)
	}

	allErrors = append(allErrors, v.validateExtraRules(scenarios)...)
	return allErrors
}

// validateSchema validates a single raw document against the JSON schema
func (v *Validator) validateSchema(file string, raw interface{}) []ValidationError {
	var errors []ValidationError

	if err := v.schema.Validate(raw); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			errors = append(errors, extractSchemaErrors(file, validationErr)...)
		} else {
			errors = append(errors, ValidationError{
				File:    file,
				Message: err.Error(),
			})
		}
	}

	return errors
}

// extractSchemaErrors flattens the leaves of a schema error tree
func extractSchemaErrors(file string, err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		path := strings.Join(err.InstanceLocation, ".")
		if path == "" {
			path = "(root)"
		}
		return []ValidationError{{
			File:    file,
			Path:    path,
			Message: err.Error(),
		}}
	}

	var errors []ValidationError
	for _, cause := range err.Causes {
		errors = append(errors, extractSchemaErrors(file, cause)...)
	}
	return errors
}

// validateExtraRules applies rules the schema cannot express
func (v *Validator) validateExtraRules(scenarios []ScenarioWithFile) []ValidationError {
	var errors []ValidationError

	idSeen := make(map[string]string)
	for _, sc := range scenarios {
		id := sc.Scenario.Metadata.ID
		if prevFile, exists := idSeen[id]; exists {
			errors = append(errors, ValidationError{
				File:    sc.File,
				Path:    "metadata.id",
				Message: fmt.Sprintf("duplicate ID %q (also in %s)", id, filepath.Base(prevFile)),
			})
		} else {
			idSeen[id] = sc.File
		}

		if sc.Scenario.Spec.Elapsed != "" {
			if _, err := ParseElapsedHours(sc.Scenario.Spec.Elapsed); err != nil {
				errors = append(errors, ValidationError{
					File:    sc.File,
					Path:    "spec.elapsed",
					Message: err.Error(),
				})
			}
		}

		if exp := sc.Scenario.Spec.Expect; exp != nil && exp.BAC != nil && exp.Outcome != "" && exp.Outcome != "finite" {
			errors = append(errors, ValidationError{
				File:    sc.File,
				Path:    "spec.expect",
				Message: fmt.Sprintf("bac expectation conflicts with outcome %q", exp.Outcome),
			})
		}
	}

	return errors
}

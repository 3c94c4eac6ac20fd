package scenario

import (
	"path/filepath"
	"strings"
	"testing"
)

func mustNewValidator(t *testing.T) *Validator {
	t.Helper()

	validator, err := NewValidator()
	if err != nil {
		t.Fatalf("failed to create validator: %v", err)
	}
	return validator
}

func TestValidator_ValidateDirectory_ValidFiles(t *testing.T) {
	validator := mustNewValidator(t)

	scenarios, errors := validator.ValidateDirectory("../../fixtures/scenarios/valid")

	if len(errors) != 0 {
		t.Errorf("expected no errors, got %d:", len(errors))
		for _, err := range errors {
			t.Logf("  %v", err)
		}
	}

	if len(scenarios) != 6 {
		t.Errorf("expected 6 scenarios, got %d", len(scenarios))
	}
}

func TestValidator_ValidateDirectory_InvalidFiles(t *testing.T) {
	validator := mustNewValidator(t)

	_, errors := validator.ValidateDirectory("../../fixtures/scenarios/invalid")

	if len(errors) == 0 {
		t.Fatal("expected validation errors, got none")
	}

	// Group errors by file
	errorsByFile := make(map[string][]ValidationError)
	for _, err := range errors {
		t.Logf("Error: %s: %s: %s", filepath.Base(err.File), err.Path, err.Message)
		base := filepath.Base(err.File)
		errorsByFile[base] = append(errorsByFile[base], err)
	}

	tests := []struct {
		file   string
		needle string
		inPath bool
	}{
		{"missing-fields.yaml", "weightKg", false},
		{"bad-sex.yaml", "spec.sex", true},
		{"bad-elapsed.yaml", "whole number of hours", false},
		{"dup-b.yaml", "duplicate ID", false},
		{"conflicting-expect.yaml", "conflicts with outcome", false},
	}

	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			errs, ok := errorsByFile[tt.file]
			if !ok {
				t.Fatalf("expected errors for %s", tt.file)
			}

			found := false
			for _, err := range errs {
				haystack := err.Message
				if tt.inPath {
					haystack = err.Path
				}
				if strings.Contains(haystack, tt.needle) {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected an error mentioning %q for %s", tt.needle, tt.file)
			}
		})
	}

	if _, ok := errorsByFile["dup-a.yaml"]; ok {
		t.Error("first occurrence of a duplicate ID should not be reported")
	}
}

func TestValidator_MissingDirectory(t *testing.T) {
	validator := mustNewValidator(t)

	_, errors := validator.ValidateDirectory("../../fixtures/scenarios/does-not-exist")
	if len(errors) != 1 {
		t.Fatalf("expected 1 error, got %d", len(errors))
	}
	if !strings.Contains(errors[0].Message, "failed to read directory") {
		t.Errorf("unexpected message: %s", errors[0].Message)
	}
}

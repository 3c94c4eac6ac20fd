package scenario

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadFromDirectory discovers and loads all scenario files from a directory
func LoadFromDirectory(dirPath string) ([]ScenarioWithFile, []ValidationError) {
	var scenarios []ScenarioWithFile
	var errors []ValidationError

	// Discover YAML files
	files, err := discoverYAMLFiles(dirPath)
	if err != nil {
		errors = append(errors, ValidationError{
			File:    dirPath,
			Message: fmt.Sprintf("failed to read directory: %v", err),
		})
		return nil, errors
	}

	// Parse each file
	for _, file := range files {
		sc, raw, err := parseYAMLFile(file)
		if err != nil {
			errors = append(errors, ValidationError{
				File:    file,
				Message: fmt.Sprintf("failed to parse YAML: %v", err),
			})
			continue
		}
		scenarios = append(scenarios, ScenarioWithFile{
			Scenario: sc,
			File:     file,
			Raw:      raw,
		})
	}

	return scenarios, errors
}

// discoverYAMLFiles finds all *.yaml and *.yml files in a directory
func discoverYAMLFiles(dirPath string) ([]string, error) {
	var files []string

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := filepath.Ext(path)
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, err
}

// parseYAMLFile parses a single YAML file into a Scenario and its raw document
func parseYAMLFile(filePath string) (*Scenario, interface{}, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, nil, err
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, nil, err
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, err
	}

	return &sc, raw, nil
}

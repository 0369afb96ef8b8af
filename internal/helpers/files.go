package helpers

import (
	"encoding/json"
	"fmt"
	"os"
)

// SaveJSON saves data as JSON to a file
func SaveJSON(data interface{}, filepath string) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if err := os.WriteFile(filepath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// FileExists checks if a file exists
func FileExists(filepath string) bool {
	_, err := os.Stat(filepath)
	return !os.IsNotExist(err)
}

// ReadContent returns inline content, or the contents of path when inline
// is empty. Exactly one of them must be set.
func ReadContent(inline, path string) (string, error) {
	if inline != "" && path != "" {
		return "", fmt.Errorf("content and file are mutually exclusive")
	}

	if path == "" {
		return inline, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return string(data), nil
}

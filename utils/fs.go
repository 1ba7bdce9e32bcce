package utils

import (
	"fmt"
	"os"
)

// CreateFolder creates the folder at path if it does not already exist.
func CreateFolder(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.MkdirAll(path, 0755); err != nil {
			return fmt.Errorf("failed to create folder %s: %w", path, err)
		}
	}
	return nil
}

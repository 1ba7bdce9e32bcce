package utils

import "os"

// GetEnv reads an environment variable, falling back to the provided
// default when the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// internal/utils/env.go
package utils

import (
	"os"
	"strconv"
)

// GetEnv returns the environment variable value or a default. Used to seed
// flag defaults so the service can be configured either way.
func GetEnv(key, defaultVal string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return defaultVal
}

func GetEnvAsInt(key string, defaultVal int) int {
	valStr, ok := os.LookupEnv(key)
	if !ok {
		return defaultVal
	}
	i, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return i
}

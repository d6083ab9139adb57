package config

import (
	"os"
	"time"
)

const (
	apiBaseURLVar = "QUICKDASH_API_BASE_URL"
	wsBaseURLVar  = "QUICKDASH_WS_BASE_URL"
	loginRouteVar = "QUICKDASH_LOGIN_ROUTE"

	defaultAPIBaseURL     = "https://quickdash-front-back.onrender.com/api/v1"
	defaultLoginRoute     = "/auth"
	defaultFallbackPath   = "config.local.yaml"
	defaultRequestTimeout = 15 * time.Second
)

// GetEnv returns the value of envVar, or defaultValue when it is unset or empty.
func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

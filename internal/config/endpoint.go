package config

import (
	"context"

	"foodrec/internal/log"
)

// SettingAPIURL is the persisted setting and environment variable holding
// the endpoint URL.
const SettingAPIURL = "APP_API_URL"

// DefaultEndpoint is the Hugging Face Space used when nothing else is set.
const DefaultEndpoint = "Priyanshu161/food-recommender"

// envEndpointKeys are consulted in order after the persisted value.
var envEndpointKeys = []string{"REACT_APP_API_URL", "NEXT_PUBLIC_API_URL", "VITE_API_URL"}

// SettingReader reads one persisted setting.
type SettingReader interface {
	GetSetting(ctx context.Context, key string) (string, error)
}

// ResolveEndpoint picks the endpoint URL: the injected override, then the
// persisted value, then environment defaults, then DefaultEndpoint.
// Store failures are logged and skipped.
func ResolveEndpoint(ctx context.Context, override string, store SettingReader, getenv func(string) string) string {
	if override != "" {
		return override
	}
	if store != nil {
		stored, err := store.GetSetting(ctx, SettingAPIURL)
		if err != nil {
			logger := log.WithComponent("config")
			logger.Warn().Err(err).Msg("failed to read persisted endpoint")
		} else if len(stored) > 5 {
			return stored
		}
	}
	if getenv != nil {
		for _, key := range envEndpointKeys {
			if v := getenv(key); v != "" {
				return v
			}
		}
	}
	return DefaultEndpoint
}

package config

import (
	"github.com/NissesSenap/gridplane/internal/plane"
	"github.com/NissesSenap/gridplane/internal/storage"
)

func DefaultConfig() *Config {
	return &Config{
		Server: Server{
			Addr:                   ":8080",
			MaxSessions:            256,
			ShutdownTimeoutSeconds: 5,
		},
		Storage: Storage{
			Path: storage.DefaultPath(),
		},
		RateLimits: Limits{
			EventsPerSecond:  50,
			Burst:            100,
			RendersPerSecond: 10,
			MaxConcurrent:    5,
		},
		Graph: plane.DefaultConfig(),
	}
}

package server

import (
	"os"
	"time"
)

// Config controls the generation service.
type Config struct {
	// Addr is the listen address.
	Addr string

	// MaxUploadBytes bounds the multipart body kept in memory.
	MaxUploadBytes int64

	// MaxQuestions caps num_questions per request.
	MaxQuestions int

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the standard service settings.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8000",
		MaxUploadBytes:  32 << 20,
		MaxQuestions:    100,
		ShutdownTimeout: 5 * time.Second,
	}
}

// ConfigFromEnv returns DefaultConfig with SIMTAI_LISTEN applied.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("SIMTAI_LISTEN"); v != "" {
		cfg.Addr = v
	}
	return cfg
}

package callService

import (
	"os"
	"strconv"
	"time"
)

// DialogConfig holds the dialog engine budgets. Everything has a sane
// default and can be overridden from the environment.
type DialogConfig struct {
	MaxFieldAttempts   int
	MaxNoInput         int
	MaxUploadPolls     int
	SessionIdleTimeout time.Duration
	JanitorInterval    time.Duration
}

func NewDialogConfig() DialogConfig {
	return DialogConfig{
		MaxFieldAttempts:   envInt("DIALOG_MAX_FIELD_ATTEMPTS", 3),
		MaxNoInput:         envInt("DIALOG_MAX_NO_INPUT", 3),
		MaxUploadPolls:     envInt("DIALOG_MAX_UPLOAD_POLLS", 18),
		SessionIdleTimeout: time.Duration(envInt("DIALOG_SESSION_IDLE_MINUTES", 30)) * time.Minute,
		JanitorInterval:    time.Duration(envInt("DIALOG_JANITOR_INTERVAL_MINUTES", 5)) * time.Minute,
	}
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

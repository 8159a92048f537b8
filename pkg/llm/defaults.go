package llm

import "time"

// Default values for structured generation
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
	DefaultTimeout     = 60 * time.Second
)

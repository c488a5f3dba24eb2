package llm

import "time"

// Config controls queue behavior
type Config struct {
	MaxConcurrent int

	CriticalQueueSize   int
	BackgroundQueueSize int

	CriticalTimeout   time.Duration
	BackgroundTimeout time.Duration
}

// DefaultConfig matches the hosted endpoint's per-call budget.
func DefaultConfig() *Config {
	return &Config{
		MaxConcurrent:       2,
		CriticalQueueSize:   20,
		BackgroundQueueSize: 50,
		CriticalTimeout:     20 * time.Second,
		BackgroundTimeout:   20 * time.Second,
	}
}

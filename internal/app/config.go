package app

import "fmt"

// Config holds everything an App instance needs to run.
type Config struct {
	// FlowPath points at the flow definition file (.hcl, .yaml, .yml or
	// .json).
	FlowPath string
	// SessionID tags the run for session-aware vertices.
	SessionID string
	// StartID and StopID bound the executed frontier; mutually exclusive.
	StartID string
	StopID  string
	// Outputs filters which vertices' results are printed; empty prints
	// every output vertex.
	Outputs []string
	LogFormat string
	LogLevel  string
}

// NewConfig validates a Config and applies defaults.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.FlowPath == "" {
		return nil, fmt.Errorf("flow path is required")
	}
	if cfg.StartID != "" && cfg.StopID != "" {
		return nil, fmt.Errorf("start and stop vertices are mutually exclusive")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "json"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return &cfg, nil
}

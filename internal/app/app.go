package app

import (
	"io"
	"log/slog"

	"github.com/weftlabs/weft/internal/component"
)

// App encapsulates the application's dependencies, configuration and
// lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *component.Registry
	config   *Config
}

// New is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger and registry.
func New(outW io.Writer, cfg *Config, modules ...component.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := component.NewRegistry()
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All component modules registered.", "kinds", reg.Kinds())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfg,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *component.Registry {
	return a.registry
}

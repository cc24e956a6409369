package tasklet

import "github.com/flowcore/tasklet/logging"

// config holds Tasklet construction parameters.
type config struct {
	// VertexName identifies the operator instance in diagnostics and the
	// String() surface. Default: "tasklet".
	VertexName string

	// Guarantee selects the processing-guarantee level. Default:
	// GuaranteeNone.
	Guarantee Guarantee

	// Logger receives diagnostic output. Default: a no-op logger.
	Logger logging.Logger
}

// defaultConfig centralizes default values for config. Applied as the base
// that options.go's functional options build on.
func defaultConfig() config {
	return config{
		VertexName: "tasklet",
		Guarantee:  GuaranteeNone,
		Logger:     logging.Noop(),
	}
}

// validateConfig performs lightweight invariant checks on an assembled
// config.
func validateConfig(cfg *config) error {
	if cfg.VertexName == "" {
		return ErrInvalidConfig
	}
	return nil
}

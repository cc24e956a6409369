package tasklet

import "github.com/flowcore/tasklet/logging"

// Option configures a Tasklet. Use New(processor, edges, outbox, snapCtx, opts...) to
// construct one via options.
type Option func(*configOptions)

// internal builder state for options assembly.
type configOptions struct {
	cfg               config
	guaranteeSelected bool
}

// WithVertexName sets the name this tasklet reports in diagnostics.
func WithVertexName(name string) Option {
	return func(co *configOptions) { co.cfg.VertexName = name }
}

// WithExactlyOnce selects EXACTLY_ONCE processing guarantee: barriers align
// across all active inbound edges before the local snapshot is saved.
func WithExactlyOnce() Option {
	return func(co *configOptions) {
		if co.guaranteeSelected && co.cfg.Guarantee != GuaranteeExactlyOnce {
			panic("conflicting guarantee options: WithExactlyOnce and WithAtLeastOnce both specified")
		}
		co.guaranteeSelected = true
		co.cfg.Guarantee = GuaranteeExactlyOnce
	}
}

// WithAtLeastOnce selects AT_LEAST_ONCE processing guarantee: barriers are
// forwarded immediately without cross-edge alignment.
func WithAtLeastOnce() Option {
	return func(co *configOptions) {
		if co.guaranteeSelected && co.cfg.Guarantee != GuaranteeAtLeastOnce {
			panic("conflicting guarantee options: WithExactlyOnce and WithAtLeastOnce both specified")
		}
		co.guaranteeSelected = true
		co.cfg.Guarantee = GuaranteeAtLeastOnce
	}
}

// WithLogger sets the diagnostic logger. Default is a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(co *configOptions) { co.cfg.Logger = l }
}

func buildConfig(opts []Option) (config, error) {
	co := configOptions{cfg: defaultConfig()}
	for _, opt := range opts {
		if opt == nil {
			panic("nil tasklet option")
		}
		opt(&co)
	}
	if err := validateConfig(&co.cfg); err != nil {
		return config{}, err
	}
	return co.cfg, nil
}

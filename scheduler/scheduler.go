// Package scheduler is a minimal demonstration of the external worker-pool
// collaborator a Tasklet expects but never depends on directly: something
// that repeatedly calls Tasklet.Call, requeues it on NO_PROGRESS/MADE_PROGRESS,
// and retires it on DONE. It is explicitly not a claim of production
// scheduling fairness beyond cooperative round-robin.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/flowcore/tasklet"
	"github.com/flowcore/tasklet/logging"
	"github.com/flowcore/tasklet/metrics"
	"github.com/flowcore/tasklet/pool"
)

// ErrAlreadyStarted is returned by Start when called more than once.
var ErrAlreadyStarted = errors.New("scheduler: already started")

// ErrDuplicateName is returned by Register when name collides with an
// already-registered tasklet.
var ErrDuplicateName = errors.New("scheduler: duplicate tasklet name")

// Config holds Scheduler construction parameters.
type Config struct {
	// MaxWorkers bounds how many goroutines execute Tasklet.Call
	// concurrently. Zero (default) means the pool grows dynamically with
	// contention instead of being pinned.
	MaxWorkers uint

	// ReadyBufferSize bounds how many tasklets can be queued for their next
	// turn without blocking the dispatcher or a caller of Register. Must be
	// at least the number of tasklets ever registered.
	ReadyBufferSize uint

	// ErrorsBufferSize bounds the outward Errors() channel so a slow or
	// absent reader does not stall the forwarder's synchronous send path.
	ErrorsBufferSize uint

	Metrics metrics.Provider
	Logger  logging.Logger
}

func defaultConfig() Config {
	return Config{
		ReadyBufferSize:  1024,
		ErrorsBufferSize: 16,
		Metrics:          metrics.NewNoopProvider(),
		Logger:           logging.Noop(),
	}
}

// Option configures a Scheduler.
type Option func(*Config)

// WithWorkerCount pins the scheduler to a fixed-size worker pool.
func WithWorkerCount(n uint) Option {
	return func(c *Config) { c.MaxWorkers = n }
}

// WithReadyBufferSize overrides the ready-queue buffer size.
func WithReadyBufferSize(n uint) Option {
	return func(c *Config) { c.ReadyBufferSize = n }
}

// WithErrorsBufferSize overrides the outward errors channel buffer size.
func WithErrorsBufferSize(n uint) Option {
	return func(c *Config) { c.ErrorsBufferSize = n }
}

// WithMetrics sets the metrics.Provider the scheduler records scheduling
// cadence and stall counts to. Default: a no-op provider.
func WithMetrics(m metrics.Provider) Option {
	return func(c *Config) { c.Metrics = m }
}

// WithLogger sets the diagnostic logger. Default: a no-op logger.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// Scheduler drives a fixed set of registered Tasklets cooperatively: each
// gets a turn via a pooled worker goroutine, is requeued unless it reports
// DONE, and any fatal error it returns ends the job.
type Scheduler struct {
	cfg Config

	mu      sync.Mutex
	started bool
	names   map[string]struct{}

	ready     chan *entry
	errorsIn  chan error
	errorsOut chan error
	closeCh   chan struct{}

	inflight    sync.WaitGroup
	forwarderWG sync.WaitGroup
	sendWG      sync.WaitGroup

	pool       pool.Pool
	dispatcher *dispatcher
	forwarder  *errorForwarder
	lifecycle  *lifecycleCoordinator

	cancel    context.CancelFunc
	closeOnce sync.Once
}

// New constructs a Scheduler. Register tasklets with Register before or
// after Start; call Start exactly once to begin dispatching.
func New(opts ...Option) *Scheduler {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Scheduler{
		cfg:       cfg,
		names:     make(map[string]struct{}),
		ready:     make(chan *entry, cfg.ReadyBufferSize),
		errorsIn:  make(chan error),
		errorsOut: make(chan error, cfg.ErrorsBufferSize),
		closeCh:   make(chan struct{}),
	}
}

// Register enqueues tl for its first turn under name. name must be unique
// across the Scheduler's lifetime; it is used to correlate fatal errors back
// to the tasklet that raised them. The caller must have already called
// tl.Init with the job's cancellation context — the Scheduler only calls
// Call, the same division of responsibility Tasklet itself draws between
// one-time setup and the repeated per-cycle invocation.
func (s *Scheduler) Register(name string, tl *tasklet.Tasklet) error {
	s.mu.Lock()
	if _, dup := s.names[name]; dup {
		s.mu.Unlock()
		return ErrDuplicateName
	}
	s.names[name] = struct{}{}
	s.mu.Unlock()

	s.ready <- &entry{name: name, task: tl}
	return nil
}

// Start launches the dispatch loop and error forwarder. It returns
// immediately; the dispatch loop runs until ctx is canceled or Close is
// called. Start may be called only once.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.mu.Unlock()

	var newWorkerFn = func() interface{} { return newWorker() }
	if s.cfg.MaxWorkers > 0 {
		s.pool = pool.NewFixed(s.cfg.MaxWorkers, newWorkerFn)
	} else {
		s.pool = pool.NewDynamic(newWorkerFn)
	}

	derivedCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.dispatcher = newDispatcher(s.ready, &s.inflight, s.pool, s.errorsIn, s.cfg.Metrics, s.cfg.Logger)
	go s.dispatcher.run(derivedCtx)

	s.forwarder = newErrorForwarder(s.errorsIn, s.errorsOut, s.closeCh, cancel, &s.sendWG, s.cfg.Logger)
	s.forwarderWG.Add(1)
	go func() {
		defer s.forwarderWG.Done()
		s.forwarder.run()
	}()

	s.lifecycle = newLifecycleCoordinator(cancel, &s.inflight, s.closeCh, &s.forwarderWG, &s.sendWG, func() {
		close(s.errorsOut)
	})

	return nil
}

// Errors returns the channel a caller reads fatal tasklet failures from. At
// most one error is ever forwarded: the first fatal error cancels the whole
// job, since a cooperative dataflow graph cannot keep one tasklet running
// without its peers.
func (s *Scheduler) Errors() <-chan error { return s.errorsOut }

// Close cancels the dispatch loop, waits for in-flight Tasklet.Call
// invocations to return, and closes the Errors() channel. Safe to call more
// than once or before Start.
func (s *Scheduler) Close() {
	s.closeOnce.Do(func() {
		if s.lifecycle == nil {
			close(s.errorsOut)
			return
		}
		s.lifecycle.Close()
	})
}

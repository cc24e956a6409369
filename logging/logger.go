// Package logging is the ambient diagnostic logging surface used by the
// tasklet and scheduler packages. It stays narrow by design: callers depend
// on the Logger interface, never on a concrete backend, so the tasklet core
// never imports logrus directly.
package logging

// Logger is the small slice of structured logging the tasklet core and its
// scheduler actually need.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// WithField returns a Logger that attaches field=value to every
	// subsequent entry it logs.
	WithField(field string, value interface{}) Logger
}

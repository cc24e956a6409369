package logging

// noopLogger discards everything. It is the default so library consumers
// pay nothing unless they opt into a real backend.
type noopLogger struct{}

// Noop returns the default no-op Logger.
func Noop() Logger { return noopLogger{} }

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Warnf(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

func (l noopLogger) WithField(string, interface{}) Logger { return l }

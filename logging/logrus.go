package logging

import "github.com/sirupsen/logrus"

// logrusLogger adapts a *logrus.Entry to the Logger interface. Entry (not
// the bare Logger) is the backing type because WithField must return a new
// Logger carrying the extra field without mutating the caller's.
type logrusLogger struct {
	entry *logrus.Entry
}

// NewLogrus wraps l as a Logger. Passing nil wraps logrus's standard
// logger.
func NewLogrus(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.StandardLogger()
	}
	return logrusLogger{entry: logrus.NewEntry(l)}
}

func (l logrusLogger) Debugf(format string, args ...interface{}) { l.entry.Debugf(format, args...) }
func (l logrusLogger) Warnf(format string, args ...interface{})  { l.entry.Warnf(format, args...) }
func (l logrusLogger) Errorf(format string, args ...interface{}) { l.entry.Errorf(format, args...) }

func (l logrusLogger) WithField(field string, value interface{}) Logger {
	return logrusLogger{entry: l.entry.WithField(field, value)}
}

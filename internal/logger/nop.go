package logger

// nopLogger discards all log entries. Used in tests.
type nopLogger struct{}

// NewNop creates a logger that does nothing.
func NewNop() Logger {
	return &nopLogger{}
}

func (l *nopLogger) Debug(msg string, fields ...Field) {}
func (l *nopLogger) Info(msg string, fields ...Field)  {}
func (l *nopLogger) Warn(msg string, fields ...Field)  {}
func (l *nopLogger) Error(msg string, fields ...Field) {}

func (l *nopLogger) With(fields ...Field) Logger { return l }
func (l *nopLogger) Sync() error                 { return nil }

package core

// Logger logs application messages with increasing severity.
// Implementations may forward errors and extra args to an error
// reporting service (see services/logger).
// LogUser identifies the acting user in a log call; error reporting
// implementations attach it as the person context.
type LogUser struct {
	ID       string
	Username string
	Email    string
}

type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

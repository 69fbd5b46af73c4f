// Package dialog holds the shared contracts of the dialog state engine.
package dialog

// Logger is the structured logging surface the dialog components write to.
// internal/pkg/logger.ZapLogger satisfies it.
type Logger interface {
	Debug(module, message string, details map[string]interface{})
	Info(module, message string, details map[string]interface{})
	Warn(module, message string, details map[string]interface{})
	Error(module, message string, details map[string]interface{})
}

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}

// NopLogger discards everything
func NopLogger() Logger {
	return nopLogger{}
}

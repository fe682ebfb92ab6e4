package port

// Fields - structured data attached to a log record.
type Fields map[string]interface{}

// LoggerPort is the logging contract of the core.
type LoggerPort interface {
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	// Error records a failure together with the error value.
	Error(msg string, err error, fields Fields)
	Debug(msg string, fields Fields)

	// WithFields returns a child logger that adds fields to every record.
	WithFields(fields Fields) LoggerPort
}

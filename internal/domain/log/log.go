package log

type Field struct {
	Key   string
	Value any
}

type Logger interface {
	Debug(message string, fields ...Field)
	Info(message string, fields ...Field)
	Warn(message string, fields ...Field)
	Error(message string, fields ...Field)
}

// Err is a shorthand for the "err" field used across the service.
func Err(err error) Field {
	return Field{Key: "err", Value: err}
}

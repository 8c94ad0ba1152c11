package logger

// SetupLogger builds the process logger from the runtime settings and makes it the default.
func SetupLogger(logLevel string, logJSON, logSource bool) Logger {
	l := NewLogger(&Config{
		Level:      ParseLevel(logLevel),
		JSON:       logJSON,
		AddSource:  logSource,
		TimeFormat: "15:04:05",
	})
	defaultOnce.Do(func() {})
	defaultLogger = l
	return l
}

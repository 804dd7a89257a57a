// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with a runtime-adjustable level and request-scoped loggers carried in contexts.
package logger

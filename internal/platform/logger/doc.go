// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Attribute values are passed through masq so
// passwords, tokens and connection credentials never reach the output.
//
// Loggers travel through request and worker contexts:
//
//	ctx = logger.WithLogger(ctx, log.With("trace_id", id))
//	logger.FromContext(ctx).Info("project created")
package logger

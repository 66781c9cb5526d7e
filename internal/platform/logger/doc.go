// Package logger provides structured logging for the application.
//
// It builds on log/slog: Setup installs a JSON logger at the configured
// level, and WithLogger/FromContext carry request-scoped loggers (tagged
// with a trace id by the API middleware) through context.Context.
package logger

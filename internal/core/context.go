package core

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	ctxKeyLogger contextKey = "logger"
	ctxKeyClient contextKey = "client"
)

// ClientInfo identifies who started an import.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// ContextWithLogger attaches a request-scoped logger used by the importer.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyLogger, logger)
}

// ContextWithClient attaches the caller's address and user agent.
func ContextWithClient(ctx context.Context, client ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClient, client)
}

// LoggerFromContext returns the attached logger, or fallback.
func LoggerFromContext(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}

// ClientFromContext returns the attached client info, if any.
func ClientFromContext(ctx context.Context) (ClientInfo, bool) {
	c, ok := ctx.Value(ctxKeyClient).(ClientInfo)
	return c, ok
}

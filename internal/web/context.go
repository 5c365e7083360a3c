package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/employees/internal/core"
	"github.com/JonMunkholm/employees/internal/logging"
)

// withRequestMetadata hands the request logger and client identity to core,
// so import logs carry request_id, ip and user agent.
func withRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ctx = core.ContextWithLogger(ctx, logging.FromContext(ctx))
	return core.ContextWithClient(ctx, core.ClientInfo{
		IP:        r.RemoteAddr, // already resolved by TrustedRealIP
		UserAgent: r.UserAgent(),
	})
}

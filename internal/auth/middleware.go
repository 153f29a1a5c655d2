package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/newsdesk-cms/newsdesk/internal/platform/httpx"
	"github.com/newsdesk-cms/newsdesk/internal/shared"
)

// Middleware verifies the bearer token on each request and attaches the
// re-resolved identity to the context for the authorization gate.
type Middleware struct {
	Logger  *slog.Logger
	Service *Service
}

// Authenticate rejects requests without a valid token. Missing, malformed,
// and expired tokens all map to 401; 403 is reserved for the gate's
// authenticated-but-forbidden verdicts.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.Fail(w, http.StatusUnauthorized, "access token is required")
			return
		}
		account, err := m.Service.ResolveToken(r.Context(), raw)
		if err != nil {
			if m.Logger != nil {
				m.Logger.Debug("token rejected", slog.String("path", r.URL.Path), slog.Any("error", err))
			}
			httpx.Error(w, err)
			return
		}
		ctx := shared.ContextWithIdentity(r.Context(), account.Identity())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

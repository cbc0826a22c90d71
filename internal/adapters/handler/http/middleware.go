package http

import (
	"context"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vncsmyrnk/featurevote/internal/core/domain"
	"github.com/vncsmyrnk/featurevote/internal/core/ports"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserKey   contextKey = "user"
	loggerKey contextKey = "logger"

	accessTokenCookie = "access_token"
	requesterEmail    = "X-Requester-Email"
	requesterName     = "X-Requester-Name"
)

func currentUser(r *http.Request) (domain.User, bool) {
	user, ok := r.Context().Value(UserKey).(domain.User)
	return user, ok
}

func loggerFrom(ctx context.Context) *zap.Logger {
	if log, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}

// RequestLogger logs one entry per request and exposes a request scoped
// logger to the handlers.
func RequestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ctx := context.WithValue(r.Context(), loggerKey, reqLog)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			reqLog.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("route", route),
				zap.Int("status", ww.Status()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
		})
	}
}

// CORS allows the configured origins. A "*" entry allows any origin.
func CORS(origins []string) func(http.Handler) http.Handler {
	anyOrigin := slices.Contains(origins, "*")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || slices.Contains(origins, origin)) {
				h := w.Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID, "+requesterEmail+", "+requesterName)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticate resolves the acting user from a bearer token, taken from
// the Authorization header or the access_token cookie. When allowEmail is
// set and no token is present, the X-Requester-Email header is trusted.
func Authenticate(identity ports.IdentityService, allowEmail bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				user *domain.User
				err  error
			)
			if token := bearerToken(r); token != "" {
				user, err = identity.ResolveBearer(r.Context(), token)
			} else if email := r.Header.Get(requesterEmail); allowEmail && email != "" {
				user, err = identity.ResolveEmail(r.Context(), email, r.Header.Get(requesterName))
			} else {
				err = domain.ErrUnauthenticated
			}
			if err != nil {
				respondError(w, r, err)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, *user)
			ctx = context.WithValue(ctx, loggerKey, loggerFrom(ctx).With(zap.String("user_id", user.ID.String())))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
	}
	if cookie, err := r.Cookie(accessTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

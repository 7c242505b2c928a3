package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

type contextKey int

const userInfoKey contextKey = iota

// UserInfo identifies the caller for history and usage-log attribution.
type UserInfo struct {
	Login       string `json:"login"`
	DisplayName string `json:"display_name"`
}

var devUser = UserInfo{Login: "local", DisplayName: "Local Dev User"}

// userInfoFromContext returns the identity stored by middleware, or the
// dev fallback when none is present.
func userInfoFromContext(r *http.Request) UserInfo {
	if info, ok := r.Context().Value(userInfoKey).(UserInfo); ok {
		return info
	}
	return devUser
}

// DevIdentity stores the local dev identity for all requests, enabling
// development without Tailscale.
func DevIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), userInfoKey, devUser)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// identity resolves the caller. With tsnet active it asks the local API
// who owns the remote address; otherwise every caller is the dev user.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := devUser
		if s.ts != nil {
			who, err := s.ts.WhoIs(r.Context(), r.RemoteAddr)
			if err != nil {
				s.log.Warn("whois failed", "remote", r.RemoteAddr, "error", err)
				http.Error(w, `{"error":"identity lookup failed"}`, http.StatusForbidden)
				return
			}
			info = UserInfo{
				Login:       who.UserProfile.LoginName,
				DisplayName: who.UserProfile.DisplayName,
			}
		}
		ctx := context.WithValue(r.Context(), userInfoKey, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// APIKeyAuth returns middleware that validates the X-API-Key header.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-API-Key")
			if key == "" {
				http.Error(w, `{"error":"missing API key"}`, http.StatusUnauthorized)
				return
			}
			if key != apiKey {
				http.Error(w, `{"error":"invalid API key"}`, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogging returns middleware that logs each request.
func RequestLogging(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			log.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sw.status,
				"duration", time.Since(start).String(),
			)
		})
	}
}

// CORS adds permissive CORS headers for local development.
func CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-API-Key")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

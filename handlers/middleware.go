package handlers

import (
	"crypto/sha256"
	"net/http"
	"slices"
	"strings"
	"time"

	"cityguard/auth"
	"cityguard/common"
	"cityguard/config"
	"cityguard/i18n"

	"github.com/apex/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/csrf"
)

func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-XSS-Protection", "1; mode=block")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		h.Set("Content-Security-Policy", "default-src 'self'; img-src 'self' data:; frame-ancestors 'self'")

		// The captcha server sets its own cache headers.
		if !strings.HasPrefix(r.URL.Path, "/captcha/") {
			h.Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}

// corsMiddleware only allows credentials for an explicit origin list; a
// wildcard would reflect every origin along with its cookies.
func corsMiddleware() func(http.Handler) http.Handler {
	origins := config.AppConfig.AllowedOrigins
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: !slices.Contains(origins, "*"),
		MaxAge:           300,
	})
}

// RequestLogger writes one access log line per request.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		log.WithFields(log.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"bytes":      ww.BytesWritten(),
			"duration":   time.Since(start).String(),
			"remote":     r.RemoteAddr,
			"request_id": middleware.GetReqID(r.Context()),
		}).Info("request")
	})
}

// CSRFMiddleware protects requests authenticated by the session cookie.
// Bearer-token and anonymous requests carry no ambient credential and skip
// the check.
func CSRFMiddleware() func(http.Handler) http.Handler {
	key := sha256.Sum256([]byte(config.AppConfig.SessionKey + "csrf"))
	secure := config.AppConfig.SecureCookies

	protect := csrf.Protect(
		key[:],
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailureHandler)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			if hasBearerToken(r) || !auth.HasSessionCookie(r) {
				r = csrf.UnsafeSkipCheck(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfFailureHandler(w http.ResponseWriter, r *http.Request) {
	log.WithFields(log.Fields{"path": r.URL.Path, "reason": csrf.FailureReason(r)}).Warn("csrf check failed")
	sendError(w, http.StatusForbidden, i18n.DetectLanguage(r), "Forbidden")
}

func hasBearerToken(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	return len(h) > 7 && strings.EqualFold(h[:7], "bearer ")
}

// RequireUser resolves the caller and stores it in the request context.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := auth.Authenticate(r)
		if err != nil {
			status := common.HTTPStatusFromError(err)
			if status == http.StatusInternalServerError {
				log.WithError(err).Error("authenticating request")
				sendError(w, status, i18n.DetectLanguage(r), "InternalServerError")
				return
			}
			sendError(w, status, i18n.DetectLanguage(r), "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), id)))
	})
}

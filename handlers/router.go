package handlers

import (
	"net/http"

	"cityguard/auth"
	"cityguard/config"

	"github.com/dchest/captcha"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

// NewRouter wires the API. auth.InitStore and auth.InitJWT must run first.
func NewRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	// Forwarding headers are client-controlled unless a proxy rewrites them.
	if config.AppConfig.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware())
	r.Use(SecurityHeadersMiddleware)
	r.Use(CSRFMiddleware())
	r.Use(jwtauth.Verifier(auth.TokenAuth))

	r.Get("/health", HealthHandler)
	r.Handle("/captcha/*", captcha.Server(captcha.StdWidth, captcha.StdHeight))

	// Paths used by existing mobile clients.
	r.Post("/register.php", RegisterHandler)
	r.Post("/login.php", LoginHandler)
	r.With(RequireUser).Post("/submit_report.php", SubmitReportHandler)
	r.Get("/get_reports.php", GetReportsHandler)
	r.Get("/categories_list.php", CategoriesListHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", RegisterHandler)
		r.Post("/login", LoginHandler)
		r.Get("/reports", GetReportsHandler)
		r.Get("/categories", CategoriesListHandler)
		r.Post("/captcha", NewCaptchaHandler)
		r.Get("/csrf", CSRFTokenHandler)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser)
			r.Post("/reports", SubmitReportHandler)
			r.Post("/logout", LogoutHandler)
		})
	})

	return r
}

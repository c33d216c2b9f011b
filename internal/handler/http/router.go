package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/teams-worktime/internal/handler/http/middleware"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/jwt"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/metrics"
)

func NewRouter(
	logger *slog.Logger,
	allowedOrigins []string,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	settingsHandler SettingsHandler,
	proxyHandler ProxyHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition"},
		MaxAge:           300,
	}))

	// Event streams may carry the JWT in ?token=; keep it out of the access log
	r.Use(middleware.StripQueryToken("token"))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	// Same contract as the standalone proxy binary
	r.Route(proxyPath, func(r chi.Router) {
		r.MethodNotAllowed(proxyHandler.MethodNotAllowed)
		r.Get("/", proxyHandler.Forward)
		r.Options("/", proxyHandler.Preflight)
	})

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers, so the token may come from the query
		r.With(
			jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, middleware.QueryToken),
			middleware.AuthRequired(JWTService.JWTAuth()),
		).Get("/events", eventsHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/settings", func(r chi.Router) {
				r.Get("/", settingsHandler.Get)
				r.Put("/credentials", settingsHandler.UpdateCredentials)
				r.Put("/threshold", settingsHandler.UpdateThreshold)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/sync", attendanceHandler.Sync)
				r.Get("/records", attendanceHandler.ListRecords)
				r.Get("/summary", attendanceHandler.Summary)
				r.Get("/export", attendanceHandler.Export)

				r.Route("/charts", func(r chi.Router) {
					r.Get("/monthly", attendanceHandler.MonthlyChart)
					r.Get("/daily", attendanceHandler.DailyChart)
				})
			})
		})
	})

	return r
}

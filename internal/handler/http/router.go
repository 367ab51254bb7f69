package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	LogLevel       slog.Level
}

type Handlers struct {
	Attendance   AttendanceHandler
	Leave        LeaveHandler
	Salary       SalaryHandler
	Dashboard    DashboardHandler
	Notification NotificationHandler
	Stream       StreamHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrms-core"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream authenticates with ?token=
		r.Get("/stream", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/stream/token", h.Stream.Token)

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/", h.Attendance.Action)
				r.Get("/my", h.Attendance.GetMyAttendance)
				r.Get("/summary", h.Attendance.Summary)
				r.Get("/{id}", h.Attendance.Get)

				// Admin only
				r.With(middleware.AdminOnly).Get("/", h.Attendance.List)
			})

			r.Route("/leaves", func(r chi.Router) {
				r.Post("/", h.Leave.Action)
				r.Get("/my", h.Leave.GetMyRequests)
				r.Get("/{id}", h.Leave.Get)

				r.With(middleware.AdminOnly).Get("/", h.Leave.List)
			})

			r.Route("/leave-balances", func(r chi.Router) {
				r.Get("/", h.Leave.GetBalance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Put("/", h.Leave.SetBalance)
					r.Post("/initialize", h.Leave.InitializeBalances)
					r.Post("/rollover", h.Leave.Rollover)
				})
			})

			r.Route("/leave-policies", func(r chi.Router) {
				r.Get("/", h.Leave.ListPolicies)
				r.Get("/{id}", h.Leave.GetPolicy)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Post("/", h.Leave.CreatePolicy)
					r.Put("/{id}", h.Leave.UpdatePolicy)
					r.Delete("/{id}", h.Leave.DeletePolicy)
				})
			})

			r.Route("/salary-configs", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/{userId}", h.Salary.GetConfig)
				r.Put("/{userId}", h.Salary.UpsertConfig)
			})

			r.Route("/salaries", func(r chi.Router) {
				r.Get("/my", h.Salary.GetMySalaries)
				r.Get("/{id}", h.Salary.Get)
				r.Get("/{id}/payslip", h.Salary.Payslip)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/", h.Salary.List)
					r.Get("/export", h.Salary.Export)
					r.Post("/generate", h.Salary.Generate)
					r.Post("/recalculate", h.Salary.Recalculate)
					r.Patch("/{id}/payment-status", h.Salary.UpdatePaymentStatus)
				})
			})

			r.With(middleware.AdminOnly).Get("/dashboard", h.Dashboard.Get)

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Get("/unread-count", h.Notification.UnreadCount)
				r.Post("/read", h.Notification.MarkAsRead)
				r.Post("/read-all", h.Notification.MarkAllAsRead)
				r.Patch("/{id}/read", h.Notification.MarkOneAsRead)
				r.Delete("/{id}", h.Notification.Delete)
				r.Get("/preferences", h.Notification.GetPreferences)
				r.Put("/preferences", h.Notification.UpdatePreference)
			})
		})
	})
	return r
}

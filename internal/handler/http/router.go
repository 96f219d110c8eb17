package http

import (
	"log/slog"
	"net/http"
	"net/netip"
	"os"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterConfig carries the settings the router needs from the app config.
type RouterConfig struct {
	AppName        string
	Version        string
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// TrustedProxies may set the client address through forwarded headers.
	TrustedProxies []netip.Prefix
	// UploadDir is served under /uploads when set.
	UploadDir string
}

type Handlers struct {
	Auth        AuthHandler
	Employee    EmployeeHandler
	Attendance  AttendanceHandler
	Leave       LeaveHandler
	Payroll     PayrollHandler
	Finance     FinanceHandler
	Performance PerformanceHandler
	Network     NetworkHandler
	Report      ReportHandler
	Realtime    RealtimeHandler
	Functions   FunctionsHandler
	Guard       GuardHandler
}

func NewRouter(
	cfg RouterConfig,
	JWTService jwt.Service,
	resolver middleware.ActorResolver,
	networkChecker middleware.NetworkChecker,
	h Handlers,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", cfg.AppName),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(middleware.TrustedRealIP(cfg.TrustedProxies))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if cfg.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadDir))))
	}

	verifier := jwtauth.Verifier(JWTService.JWTAuth())
	managers := []user.Role{user.RoleAdmin, user.RoleHR}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowCredentials: true,
			AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
			ExposedHeaders:   []string{"Link", "Content-Disposition"},
			MaxAge:           300,
		}))
		r.Use(chiMiddleware.AllowContentEncoding("application/json"))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", h.Auth.Login)
			r.Post("/signup", h.Auth.Signup)
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Route("/oauth", func(r chi.Router) {
				r.Get("/google", h.Auth.LoginWithGoogle)
				r.Get("/callback/google", h.Auth.OAuthCallbackGoogle)
			})

			r.Group(func(r chi.Router) {
				r.Use(verifier)
				r.Use(middleware.Authenticate(resolver))
				r.Get("/me", h.Auth.Me)
				r.Post("/logout", h.Auth.Logout)
			})
		})

		// EventSource carries its token in the query string
		r.Get("/realtime/stream", h.Realtime.Stream)

		r.Group(func(r chi.Router) {
			r.Use(verifier)
			r.Use(middleware.Identify(resolver))
			r.Get("/guard", h.Guard.Check)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(verifier)
			r.Use(middleware.Authenticate(resolver))

			r.Get("/realtime/token", h.Realtime.GetToken)

			// Any approved account
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireActive)

				r.Route("/attendance", func(r chi.Router) {
					r.Get("/", h.Attendance.ListAttendance)
					r.Get("/today", h.Attendance.TodaySummary)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireAllowedNetwork(networkChecker))
						r.Post("/check-in", h.Attendance.CheckIn)
						r.Post("/check-out", h.Attendance.CheckOut)
					})
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
						r.Post("/", h.Attendance.CreateAttendance)
						r.Put("/{id}", h.Attendance.UpdateAttendance)
					})
				})

				r.Route("/leave", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/counts", h.Leave.StatusCounts)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionLeaveApprove))
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})
			})

			// Admin and HR
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRoles(managers...))

				r.Route("/employees", func(r chi.Router) {
					r.Get("/", h.Employee.ListEmployees)
					r.Post("/", h.Employee.CreateEmployee)
					r.Get("/departments", h.Employee.ListDepartments)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", h.Employee.GetEmployee)
						r.Put("/", h.Employee.UpdateEmployee)
						r.With(middleware.RequirePermission(user.PermissionEmployeeDelete)).Delete("/", h.Employee.DeleteEmployee)

						r.Get("/documents", h.Employee.ListDocuments)
						r.Post("/documents", h.Employee.UploadDocument)
						r.Delete("/documents/{documentID}", h.Employee.DeleteDocument)
					})
				})

				r.Route("/payroll", func(r chi.Router) {
					r.Get("/", h.Payroll.List)
					r.Get("/{id}", h.Payroll.Get)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionPayrollGenerate))
						r.Post("/generate", h.Payroll.Generate)
						r.Patch("/{id}/status", h.Payroll.UpdateStatus)
					})
				})

				r.Route("/finance", func(r chi.Router) {
					r.Get("/", h.Finance.List)
					r.Get("/totals", h.Finance.Totals)
					r.Get("/{id}", h.Finance.Get)
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionFinanceManage))
						r.Post("/", h.Finance.Create)
						r.Put("/{id}", h.Finance.Update)
						r.Delete("/{id}", h.Finance.Delete)
					})
				})

				r.Route("/performance", func(r chi.Router) {
					r.Get("/", h.Performance.List)
					r.Post("/", h.Performance.Create)
					r.Get("/summary", h.Performance.Summary)
					r.Get("/{id}", h.Performance.Get)
					r.Put("/{id}", h.Performance.Update)
					r.Delete("/{id}", h.Performance.Delete)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.With(middleware.RequireActive).Get("/dashboard", h.Report.GetDashboard)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRoles(managers...))
					r.Get("/analytics", h.Report.GetAnalytics)
					r.Get("/export/summary.pdf", h.Report.ExportPDF)
					r.Get("/export/{dataset}.csv", h.Report.ExportCSV)
				})
			})
		})

		r.Route("/network", func(r chi.Router) {
			r.Get("/check", h.Network.Check)
			r.Group(func(r chi.Router) {
				r.Use(verifier)
				r.Use(middleware.Authenticate(resolver))
				r.Use(middleware.RequireRoles(managers...))
				r.Use(middleware.RequirePermission(user.PermissionNetworkManage))
				r.Get("/", h.Network.List)
				r.Post("/", h.Network.Create)
				r.Put("/{id}", h.Network.Update)
				r.Delete("/{id}", h.Network.Delete)
			})
		})
	})

	// Callable functions answer any origin and authenticate themselves
	r.Route("/functions/v1", func(r chi.Router) {
		r.Use(cors.AllowAll().Handler)
		r.Use(verifier)
		r.Use(middleware.Identify(resolver))

		r.Post("/attendance-action", h.Functions.AttendanceAction)
		r.Post("/employee-approval", h.Functions.EmployeeApproval)
		r.Post("/employee-register", h.Functions.EmployeeRegister)
	})

	return r
}

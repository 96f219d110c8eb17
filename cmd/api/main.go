package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/datastore"
	appHTTP "github.com/cmlabs-hris/hrms-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/email"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/kvstore"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/netpolicy"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/oauth"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/storage"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	serviceAuth "github.com/cmlabs-hris/hrms-backend-go/internal/service/auth"
	employeeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/employee"
	financeService "github.com/cmlabs-hris/hrms-backend-go/internal/service/finance"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	networkService "github.com/cmlabs-hris/hrms-backend-go/internal/service/network"
	payrollService "github.com/cmlabs-hris/hrms-backend-go/internal/service/payroll"
	performanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/performance"
	reportService "github.com/cmlabs-hris/hrms-backend-go/internal/service/report"
	"github.com/juju/clock"
)

const emailQueueSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Error loading config: ", err)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel()})).With(
		slog.String("app", cfg.App.Name),
		slog.String("env", cfg.App.Env),
	))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to open store: ", err)
	}
	defer closeStore()

	clk := clock.WallClock
	provider := datastore.NewProvider(store, sse.NewHub(), datastore.Options{Clock: clk, Seed: cfg.Seed})
	if err := provider.Load(ctx); err != nil {
		log.Fatal("Failed to load collections: ", err)
	}
	if err := provider.Watch(ctx); err != nil {
		log.Fatal("Failed to watch store: ", err)
	}

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.IsProduction())
	if err != nil {
		log.Fatal("Failed to initialize JWT service: ", err)
	}
	var googleProvider oauth.Provider
	if cfg.OAuth2Google.Enabled() {
		googleProvider = oauth.NewGoogleProvider(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Storage.UploadBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage: ", err)
	}
	smtpService, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		log.Fatal("Failed to initialize email service: ", err)
	}
	emailService := email.NewOutbox(smtpService, emailQueueSize)
	networkSvc, err := networkService.NewNetworkService(provider.IPWhitelist(), cfg.Attendance.AllowedNetworks, clk)
	if err != nil {
		log.Fatal("Failed to initialize network policy: ", err)
	}

	loginURL := cfg.App.FrontendURL + "/auth"
	authService := serviceAuth.NewAuthService(provider.Users(), provider.Sessions(), provider.Employees(), JWTService, clk, cfg.OAuth2Google.Enabled())
	attendanceSvc := attendanceService.NewAttendanceService(provider.Attendance(), provider.Employees(), clk, cfg.Attendance.StandardHours)
	employeeSvc := employeeService.NewEmployeeService(provider.Employees(), provider.Documents(), provider.Users(), fileStorage, emailService, clk, loginURL)
	leaveSvc := leaveService.NewLeaveService(provider.Leaves(), provider.Employees(), emailService, clk)
	payrollSvc := payrollService.NewPayrollService(provider.Payroll(), provider.Employees(), clk)
	financeSvc := financeService.NewFinanceService(provider.ReceiptPayments(), clk)
	performanceSvc := performanceService.NewPerformanceService(provider.PerformanceReviews(), provider.Employees(), clk)
	reportSvc := reportService.NewReportService(reportService.Sources{
		Directory:   provider.Employees(),
		Employees:   employeeSvc,
		Attendance:  attendanceSvc,
		Leaves:      leaveSvc,
		Payroll:     provider.Payroll(),
		Reviews:     provider.PerformanceReviews(),
		Performance: performanceSvc,
	}, clk)

	trustedProxies, err := netpolicy.ParsePrefixes(cfg.App.TrustedProxies)
	if err != nil {
		log.Fatal("Invalid trusted proxies: ", err)
	}

	scheduler := cron.NewScheduler(clk)
	cron.NewMaintenanceJobs(authService, provider).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		AppName:        cfg.App.Name,
		Version:        cfg.App.Version,
		Env:            cfg.App.Env,
		LogLevel:       cfg.LogLevel(),
		AllowedOrigins: cfg.App.CORSOrigins,
		TrustedProxies: trustedProxies,
		UploadDir:      cfg.Storage.UploadDir,
	}, JWTService, authService, networkSvc, appHTTP.Handlers{
		Auth:        appHTTP.NewAuthHandler(JWTService, authService, googleProvider, cfg.App.FrontendURL),
		Employee:    appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:  appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:       appHTTP.NewLeaveHandler(leaveSvc),
		Payroll:     appHTTP.NewPayrollHandler(payrollSvc),
		Finance:     appHTTP.NewFinanceHandler(financeSvc),
		Performance: appHTTP.NewPerformanceHandler(performanceSvc),
		Network:     appHTTP.NewNetworkHandler(networkSvc),
		Report:      appHTTP.NewReportHandler(reportSvc),
		Realtime:    appHTTP.NewRealtimeHandler(JWTService, provider),
		Functions:   appHTTP.NewFunctionsHandler(attendanceSvc, employeeSvc, networkSvc),
		Guard:       appHTTP.NewGuardHandler(),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server running", "addr", "http://localhost"+server.Addr, "storage", cfg.Storage.Backend)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
	if err := emailService.Close(shutdownCtx); err != nil {
		slog.Warn("Pending emails were not delivered", "error", err)
	}
}

// openStore selects the collection backend named by STORAGE_BACKEND.
func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, func(), error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		s := kvstore.NewMemoryStore()
		return s, func() { s.Close() }, nil

	case config.BackendFile:
		s, err := kvstore.NewFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { s.Close() }, nil

	case config.BackendPostgres:
		db, err := database.Connect(ctx, cfg.DatabaseURL(), database.PoolOptions{})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		s, err := kvstore.NewPostgresStore(ctx, db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return s, func() {
			s.Close()
			db.Close()
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

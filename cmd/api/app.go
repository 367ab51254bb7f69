package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hrms-backend-go/internal/config"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/dashboard"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/salary"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cache"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/realtime"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/cached"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hrms-backend-go/internal/service/attendance"
	dashboardService "github.com/cmlabs-hris/hrms-backend-go/internal/service/dashboard"
	leaveService "github.com/cmlabs-hris/hrms-backend-go/internal/service/leave"
	notificationService "github.com/cmlabs-hris/hrms-backend-go/internal/service/notification"
	salaryService "github.com/cmlabs-hris/hrms-backend-go/internal/service/salary"
)

// app holds every wired service. Commands build it once and call Close on exit.
type app struct {
	cfg *config.Config
	db  *database.DB
	hub *realtime.Hub
	jwt jwt.Service

	attendance    attendance.AttendanceService
	balances      leave.BalanceService
	requests      leave.RequestService
	policies      leave.PolicyService
	salaries      salary.SalaryService
	notifications notification.Service
	dashboard     dashboard.DashboardService
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	})).With(slog.String("app", "hrms-core"), slog.String("env", cfg.App.Env)))

	return cfg, nil
}

func connect(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := connect(ctx, cfg)
	if err != nil {
		return nil, err
	}

	jwtService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("invalid JWT_ACCESS_EXPIRATION_TIME: %w", err)
	}

	rules, err := attendanceService.RulesFromConfig(cfg.Attendance)
	if err != nil {
		db.Close()
		return nil, err
	}

	retrier := postgresql.NewRetrier(postgresql.RetryPolicy{
		Attempts: cfg.Retry.Attempts,
		Base:     cfg.Retry.Base,
		Cap:      cfg.Retry.Cap,
		Ceiling:  cfg.Retry.Ceiling,
	})
	store := cache.NewMemory(cfg.Cache.TTL)

	attendanceRepo := postgresql.NewAttendanceRepository(db, retrier)
	balanceRepo := postgresql.NewLeaveBalanceRepository(db, retrier)
	policyRepo := cached.NewLeavePolicyRepository(postgresql.NewLeavePolicyRepository(db, retrier), store)
	requestRepo := postgresql.NewLeaveRequestRepository(db, retrier)
	salaryRepo := postgresql.NewSalaryRepository(db, retrier)
	salaryConfigRepo := cached.NewSalaryConfigRepository(postgresql.NewSalaryConfigRepository(db, retrier), store)
	notificationRepo := postgresql.NewNotificationRepository(db, retrier)

	hub := realtime.NewHub()

	notifications := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{Retention: cfg.Notification.Retention})
	attendances := attendanceService.NewAttendanceService(attendanceRepo, hub, rules)
	salaries := salaryService.NewSalaryService(salaryRepo, salaryConfigRepo, attendances, notifications, hub, cfg.Salary.OverdueAfterDays)

	return &app{
		cfg:           cfg,
		db:            db,
		hub:           hub,
		jwt:           jwtService,
		attendance:    attendances,
		balances:      leaveService.NewBalanceService(balanceRepo, policyRepo, postgresql.NewTransactor(db)),
		requests:      leaveService.NewRequestService(requestRepo, balanceRepo, policyRepo, salaries, notifications, hub),
		policies:      leaveService.NewPolicyService(policyRepo),
		salaries:      salaries,
		notifications: notifications,
		dashboard:     dashboardService.NewDashboardService(requestRepo, attendanceRepo, salaryRepo, hub, rules.Location),
	}, nil
}

// Close flushes queued notifications before the pool goes away.
func (a *app) Close() {
	a.notifications.Stop()
	a.db.Close()
}

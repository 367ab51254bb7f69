package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	appHTTP "github.com/cmlabs-hris/hrms-backend-go/internal/handler/http"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/database"
)

var (
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "run the HTTP API and the scheduled jobs",
		RunE:  runServe,
	}
	serveMigrate bool
)

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply pending migrations before serving")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if serveMigrate {
		if err := database.Migrate(ctx, a.db, false); err != nil {
			return err
		}
	}

	scheduler := cron.NewScheduler(ctx)
	salaryJobs := cron.NewSalaryJobs(a.salaries)
	scheduler.AddJob("mark-overdue-salaries", cfg.Salary.OverdueInterval, time.Minute, salaryJobs.MarkOverdueSalaries)
	notificationJobs := cron.NewNotificationJobs(a.notifications)
	scheduler.AddJob("prune-read-notifications", cfg.Notification.PruneInterval, 5*time.Minute, notificationJobs.PruneReadNotifications)
	scheduler.Start()
	defer scheduler.Stop()

	router := appHTTP.NewRouter(appHTTP.RouterOptions{
		AllowedOrigins: cfg.App.AllowedOrigins,
		Env:            cfg.App.Env,
		Version:        version,
		LogLevel:       cfg.SlogLevel(),
	}, a.jwt, appHTTP.Handlers{
		Attendance:   appHTTP.NewAttendanceHandler(a.attendance),
		Leave:        appHTTP.NewLeaveHandler(a.requests, a.balances, a.policies),
		Salary:       appHTTP.NewSalaryHandler(a.salaries),
		Dashboard:    appHTTP.NewDashboardHandler(a.dashboard),
		Notification: appHTTP.NewNotificationHandler(a.notifications),
		Stream:       appHTTP.NewStreamHandler(a.hub, a.jwt),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "version", version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// open streams never finish on their own; Shutdown gives up on them at the deadline
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("Server shutdown incomplete", "error", err)
	}
	return nil
}

package main

import (
	"context"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/fastygo/tasktracker/api/handler"
	"github.com/fastygo/tasktracker/api/view"
	"github.com/fastygo/tasktracker/internal/infrastructure/monitor"
	"github.com/fastygo/tasktracker/internal/middleware"
	"github.com/fastygo/tasktracker/internal/router"
	"github.com/fastygo/tasktracker/internal/services"
	"github.com/fastygo/tasktracker/internal/services/lifecycle"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	authUC "github.com/fastygo/tasktracker/usecase/auth"
	categoryUC "github.com/fastygo/tasktracker/usecase/category"
	dashboardUC "github.com/fastygo/tasktracker/usecase/dashboard"
	settingsUC "github.com/fastygo/tasktracker/usecase/settings"
	todoUC "github.com/fastygo/tasktracker/usecase/todo"
)

const sessionSweepInterval = time.Hour

func runServe(parent context.Context) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.logger.Sync()
	cfg, zapLogger := a.cfg, a.logger

	if parent == nil {
		parent = context.Background()
	}
	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	appCtx, cancel := manager.Context(parent)
	defer cancel()

	store, err := a.openStore(appCtx, cfg.Migrations.Enabled)
	if err != nil {
		return err
	}
	manager.Register("database", lifecycle.Closer(store.Close))

	sessions, err := a.openSessions(appCtx)
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}
	manager.Register("sessions", lifecycle.Closer(sessions.Close))

	mon := monitor.New(store.Ping, sessions.Ping, 10*time.Second, zapLogger.Named("monitor"))
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	authUseCase, err := authUC.New(sessions, authUC.Config{
		Password: cfg.Auth.Password,
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		TTL:      cfg.Session.TTL,
	}, a.clock, zapLogger.Named("auth"))
	if err != nil {
		_ = manager.Shutdown(context.Background())
		return err
	}
	todoUseCase := todoUC.New(store, a.clock, zapLogger.Named("todo"))
	categoryUseCase := categoryUC.New(store.Categories, a.clock, zapLogger.Named("category"))
	dashboardUseCase := dashboardUC.New(store, a.clock, zapLogger.Named("dashboard"))
	settingsUseCase := settingsUC.New(store.Settings, zapLogger.Named("settings"))
	notifyUseCase := a.notifier(store)

	loc, _ := cfg.Location()
	scheduler := services.NewScheduler(notifyUseCase, services.SchedulerConfig{
		CheckInterval: cfg.Notify.CheckInterval,
		ScanTimeout:   cfg.SMTP.Timeout + time.Minute,
		Policy: services.Policy{
			Interval:   cfg.Notify.ScanInterval,
			AnchorHour: cfg.Notify.AnchorHour,
			Location:   loc,
		},
	}, a.clock, zapLogger.Named("scheduler"))
	if sessions.cleanup != nil {
		if err := scheduler.Every("session_cleanup", sessionSweepInterval, sessions.cleanup); err != nil {
			zapLogger.Warn("session cleanup not scheduled", zap.Error(err))
		}
	}
	if cfg.Notify.Enabled {
		scheduler.Start()
		manager.Register("scheduler", scheduler.Stop)
	} else {
		zapLogger.Info("automatic reminders disabled")
	}

	views := view.MustNew()
	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:     apiHandler.NewAuthHandler(authUseCase, ctxAdapter, views, zapLogger),
		Todo:     apiHandler.NewTodoHandler(todoUseCase, dashboardUseCase, categoryUseCase, ctxAdapter, views, zapLogger),
		Category: apiHandler.NewCategoryHandler(categoryUseCase, ctxAdapter, views, zapLogger),
		Settings: apiHandler.NewSettingsHandler(settingsUseCase, notifyUseCase, scheduler, ctxAdapter, views, zapLogger),
		Stats:    apiHandler.NewStatsHandler(dashboardUseCase, ctxAdapter, zapLogger),
		Health:   apiHandler.NewHealthHandler(mon, scheduler, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(authUseCase, apiHandler.SessionCookie, cfg.Context.RequestTimeout, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      middleware.AccessLog(zapLogger.Named("http"))(r.Handler),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		serveErr <- server.ListenAndServe(cfg.Address())
	}()
	manager.Register("http_server", func(ctx context.Context) error {
		return server.ShutdownWithContext(ctx)
	})

	select {
	case <-appCtx.Done():
	case err = <-serveErr:
		zapLogger.Error("server stopped", zap.Error(err))
	}

	if shutdownErr := manager.Shutdown(context.Background()); shutdownErr != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(shutdownErr))
	}
	return err
}

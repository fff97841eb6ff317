package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"mailtrack-bridge/internal/config"
	"mailtrack-bridge/internal/drive"
	"mailtrack-bridge/internal/failover"
	"mailtrack-bridge/internal/handler"
	"mailtrack-bridge/internal/legacy"
	"mailtrack-bridge/internal/lock"
	"mailtrack-bridge/internal/logger"
	"mailtrack-bridge/internal/router"
	"mailtrack-bridge/internal/scheduler"
	"mailtrack-bridge/internal/service"
	fstore "mailtrack-bridge/internal/store/firestore"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatal("Config validation failed:", err)
	}

	// The lock must be held before touching any shared state. A second
	// bridge writing to the same store would double-sync and corrupt
	// the backup snapshot.
	listener, err := lock.Acquire(cfg.LockPort)
	if err != nil {
		log.Fatal("Startup failed: ", err)
	}
	defer listener.Close()

	// Initialize logger
	appLogger := logger.NewWithFile(cfg.LogFile)
	appLogger.Info("Acquired single-instance lock on port", cfg.LockPort)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize document store
	st, err := fstore.New(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Firestore:", err)
		os.Exit(1)
	}
	defer st.Close()
	appLogger.Info("Firestore client initialized for project", cfg.FirebaseProjectID)

	// Initialize Drive uploader
	uploader, err := drive.NewDriveClient(ctx, cfg.CredentialsFile, appLogger)
	if err != nil {
		appLogger.Error("Failed to initialize Google Drive:", err)
		os.Exit(1)
	}

	// Initialize services
	reporter := service.NewReporter(st, st, appLogger)
	connector := legacy.NewConnector(appLogger)
	syncService := service.NewSyncService(connector, st, st, reporter, uploader, appLogger, cfg.BatchSize, cfg.BackupFileID)

	// Watch remote config and manual sync triggers
	configCh, err := st.Watch(ctx)
	if err != nil {
		appLogger.Error("Failed to watch system config:", err)
		os.Exit(1)
	}
	manualCh, err := st.WatchManualSync(ctx)
	if err != nil {
		appLogger.Error("Failed to watch manual sync trigger:", err)
		os.Exit(1)
	}

	// Failover reader backs the local read API when the store is down
	notifier := failover.NewNotifier()
	reader := failover.NewReader(st, st, notifier, cfg.BackupJSONURL, cfg.ProbeTimeout, appLogger)

	// Local API served on the lock listener
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	statusHandler := handler.NewStatusHandler(st, notifier, cfg.LogFile, appLogger)
	mailHandler := handler.NewMailHandler(reader, appLogger)
	router.SetupRoutes(e, statusHandler, mailHandler)

	e.Listener = listener
	go func() {
		if err := e.Start(""); err != nil && err != http.ErrServerClosed {
			appLogger.Error("Status server stopped:", err)
		}
	}()

	sched := scheduler.New(
		syncService.RunPass,
		scheduler.SystemClock(),
		scheduler.DefaultOptions(cfg.OffPeakInterval, cfg.BusyInterval, cfg.IdleInterval),
		manualCh,
		configCh,
		appLogger,
	)

	appLogger.Info("Bridge is running, press Ctrl+C to stop")
	sched.Run(ctx)

	// Scheduler never interrupts a pass mid-batch, so by the time Run
	// returns any in-flight commit has either landed or failed whole.
	appLogger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Status server shutdown:", err)
	}
	appLogger.Info("Bridge stopped")
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nexthealth/careplatform/internal"
	"github.com/nexthealth/careplatform/internal/auth"
	authpg "github.com/nexthealth/careplatform/internal/auth/postgres"
	"github.com/nexthealth/careplatform/internal/core/events"
	"github.com/nexthealth/careplatform/internal/employment"
	employmentpg "github.com/nexthealth/careplatform/internal/employment/postgres"
	"github.com/nexthealth/careplatform/internal/metrics"
	"github.com/nexthealth/careplatform/internal/notification"
	notificationpg "github.com/nexthealth/careplatform/internal/notification/postgres"
	"github.com/nexthealth/careplatform/internal/tenant"
	tenantpg "github.com/nexthealth/careplatform/internal/tenant/postgres"
	"github.com/nexthealth/careplatform/internal/transport/rest"
	"github.com/nexthealth/careplatform/internal/user"
	userpg "github.com/nexthealth/careplatform/internal/user/postgres"
	"github.com/nexthealth/careplatform/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	Bus      *events.EventBus
	Guard    *auth.Guard
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, deps.Guard, deps.Handlers, deps.Logger)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		// let in-flight notification handlers land before closing the pool
		deps.Bus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Environment)
	log := logger.L()
	metrics.Init()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// gorm rides on the already-pooled pgx connection
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	bus := events.NewEventBus(log)

	authRepo := authpg.NewRepository(gormDB)
	tenantRepo := tenantpg.NewTenantRepository(gormDB)
	employmentRepo := employmentpg.NewEmploymentRepository(gormDB)
	userRepo := userpg.NewRepository(gormDB)
	notificationRepo := notificationpg.NewRepository(gormDB)

	tokens := auth.NewTokenIssuer(config.Auth.JWTSecret, config.Auth.TokenDuration)
	tenantService := tenant.NewService(tenantRepo, log)
	authService := auth.NewService(authRepo, authRepo, tenantService, tokens, bus, config.Auth, log)
	employmentService := employment.NewService(employmentRepo, bus, log)
	userService := user.NewService(userRepo, log)
	notificationService := notification.NewService(notificationRepo, log)
	notificationService.RegisterHandlers(bus)

	return &Dependencies{
		Config: config,
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
		Bus:    bus,
		Guard:  auth.NewGuard(tokens, log),
		Handlers: rest.Handlers{
			Auth:         auth.NewHandler(authService),
			Employment:   employment.NewHandler(employmentService),
			User:         user.NewHandler(userService),
			Notification: notification.NewHandler(notificationService),
		},
		Logger: log,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

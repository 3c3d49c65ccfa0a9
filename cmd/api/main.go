package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"

	"github.com/juakali/walletd/internal/adapter/handler"
	"github.com/juakali/walletd/internal/adapter/middleware"
	"github.com/juakali/walletd/internal/adapter/storage"
	"github.com/juakali/walletd/internal/core/config"
	"github.com/juakali/walletd/internal/core/domain"
	"github.com/juakali/walletd/internal/core/ledger"
	"github.com/juakali/walletd/internal/core/logging"
	"github.com/juakali/walletd/internal/core/user"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	dbPool, err := storage.ConnectDB(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatal("database connection failed", zap.Error(err))
	}

	ledgerStore := storage.NewLedgerStore(dbPool)
	userStore := storage.NewUserStore(dbPool)

	ledgerSvc := ledger.NewService(ledgerStore, log)
	userSvc := user.NewService(userStore, []byte(cfg.JWTSecret), cfg.JWTExpiresIn, log)

	accountHandler := &handler.AccountHandler{Ledger: ledgerSvc, Log: log}
	transactionHandler := &handler.TransactionHandler{Ledger: ledgerSvc, Log: log}
	userHandler := &handler.UserHandler{Users: userSvc, Log: log}
	healthHandler := handler.NewHealthHandler(dbPool, cfg.Env)

	app := newApp(cfg, accountHandler, transactionHandler, userHandler, healthHandler)

	// Serve until SIGINT/SIGTERM, then drain connections before closing
	// the pool.
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()
	log.Info("server started", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
	dbPool.Close()
	log.Info("goodbye")
}

// newApp wires the fiber application and its routes.
func newApp(cfg *config.Config, accounts *handler.AccountHandler, transactions *handler.TransactionHandler, users *handler.UserHandler, health *handler.HealthHandler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "walletd",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New())
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 15 * time.Minute,
	}))

	app.Get("/health", health.Check)

	protected := middleware.Protected([]byte(cfg.JWTSecret))

	api := app.Group("/api/v1")

	api.Post("/users", users.Register)
	api.Post("/users/login", users.Login)
	api.Get("/users/me", protected, users.Me)
	api.Delete("/users/:id", protected, middleware.RequireRole(domain.RoleAdmin), users.Delete)

	acc := api.Group("/accounts", protected)
	acc.Post("/", accounts.CreateAccount)
	acc.Get("/", accounts.ListAccounts)
	acc.Get("/:accountId", accounts.GetAccount)
	acc.Delete("/:accountId", accounts.CloseAccount)
	acc.Post("/:accountId/transactions", transactions.CreateTransaction)

	return app
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/knassar/mc-wallet-ledger/internal/handlers"
	"github.com/knassar/mc-wallet-ledger/internal/jwt"
	"github.com/knassar/mc-wallet-ledger/internal/logger"
	"github.com/knassar/mc-wallet-ledger/internal/middlewares"
	"github.com/knassar/mc-wallet-ledger/internal/notify"
	"github.com/knassar/mc-wallet-ledger/internal/repositories"
	"github.com/knassar/mc-wallet-ledger/internal/services"
	"github.com/knassar/mc-wallet-ledger/migrations"

	_ "github.com/jackc/pgx/v5/stdlib"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

// @title mc-wallet-ledger API
// @version 1.0.0
// @description Multi-currency wallet ledger: transfers, exchanges, and admin credits
// @host localhost:8080
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	printBuildInfo()
	configPath := parseFlags()

	appHost, appPort, pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaBrokers, kafkaTransactionsTopic, kafkaNotificationsTopic,
		logLevel, jwtSecret, jwtExp,
		lockTimeoutMS, rateCacheTTL,
		err := parseConfig(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(),
		appHost, appPort,
		pgHost, pgPort, pgUser, pgPassword, pgDB,
		pgMaxOpenConns, pgMaxIdleConns,
		redisHost, redisPort, redisDB, redisPassword,
		kafkaBrokers, kafkaTransactionsTopic, kafkaNotificationsTopic,
		logLevel,
		jwtSecret, jwtExp,
		lockTimeoutMS, rateCacheTTL,
	); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service version %s, commit %s, build %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// parseConfig loads environment variables from a file and returns all
// application, database, Redis, Kafka, logging, JWT, and ledger
// configuration.
func parseConfig(path string) (
	appHost, appPort string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort int, redisDB int, redisPassword string,
	kafkaBrokers []string, kafkaTransactionsTopic, kafkaNotificationsTopic string,
	logLevel string,
	jwtSecretKey string, jwtExpSecond int,
	lockTimeoutMS int, rateCacheTTL time.Duration,
	err error,
) {
	_ = godotenv.Load(path)

	getEnv := func(key, defaultValue string) string {
		if val, ok := os.LookupEnv(key); ok && val != "" {
			return val
		}
		return defaultValue
	}

	// Application config
	appHost = getEnv("APP_HOST", "localhost")
	appPort = getEnv("APP_PORT", "8080")
	logLevel = getEnv("APP_LOG_LEVEL", "info")

	// PostgreSQL config
	pgHost = getEnv("POSTGRES_HOST", "localhost")
	pgUser = getEnv("POSTGRES_USER", "user")
	pgPassword = getEnv("POSTGRES_PASSWORD", "password")
	pgDB = getEnv("POSTGRES_DB", "wallet")
	if pgPort, err = strconv.Atoi(getEnv("POSTGRES_PORT", "5432")); err != nil {
		return
	}
	if pgMaxOpenConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_OPEN_CONNS", "16")); err != nil {
		return
	}
	if pgMaxIdleConns, err = strconv.Atoi(getEnv("POSTGRES_MAX_IDLE_CONNS", "8")); err != nil {
		return
	}

	// Redis config
	redisHost = getEnv("REDIS_HOST", "localhost")
	if redisPort, err = strconv.Atoi(getEnv("REDIS_PORT", "6379")); err != nil {
		return
	}
	if redisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0")); err != nil {
		return
	}
	redisPassword = getEnv("REDIS_PASSWORD", "")

	// Kafka config
	kafkaBrokers = strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")
	kafkaTransactionsTopic = getEnv("KAFKA_TRANSACTIONS_TOPIC", "wallet.transactions")
	kafkaNotificationsTopic = getEnv("KAFKA_NOTIFICATIONS_TOPIC", "wallet.notifications")

	// JWT config
	jwtSecretKey = getEnv("JWT_SECRET_KEY", "my_super_secret_key")
	if jwtExpSecond, err = strconv.Atoi(getEnv("JWT_EXP_SECOND", "3600")); err != nil {
		return
	}

	// Ledger config
	if lockTimeoutMS, err = strconv.Atoi(getEnv("LEDGER_LOCK_TIMEOUT_MS", "3000")); err != nil {
		return
	}
	var ttlSecond int
	if ttlSecond, err = strconv.Atoi(getEnv("RATE_CACHE_TTL_SECOND", "30")); err != nil {
		return
	}
	rateCacheTTL = time.Duration(ttlSecond) * time.Second

	return
}

// run initializes the logger, database, Redis, Kafka writers, and HTTP
// server. It applies migrations, sets up routes and middleware, and handles
// graceful shutdown.
func run(ctx context.Context,
	appHost, appPort string,
	pgHost string, pgPort int, pgUser, pgPassword, pgDB string,
	pgMaxOpenConns, pgMaxIdleConns int,
	redisHost string, redisPort, redisDB int, redisPassword string,
	kafkaBrokers []string, kafkaTransactionsTopic, kafkaNotificationsTopic string,
	logLevel string,
	jwtSecretKey string, jwtExpSecond int,
	lockTimeoutMS int, rateCacheTTL time.Duration,
) error {
	// Initialize logger
	log, err := logger.New(logLevel)
	if err != nil {
		fmt.Println("failed to initialize logger:", err)
		return err
	}
	defer log.Sync()
	log.Infof("Logger initialized with level %s", logLevel)

	// Connect to PostgreSQL
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		pgUser, pgPassword, pgHost, pgPort, pgDB)
	log.Infof("Connecting to PostgreSQL at %s:%d/%s", pgHost, pgPort, pgDB)

	db, err := sqlx.ConnectContext(ctx, "pgx", dsn)
	if err != nil {
		log.Fatal("PostgreSQL connection error:", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(pgMaxOpenConns)
	db.SetMaxIdleConns(pgMaxIdleConns)

	// Apply migrations
	if err := migrations.Up(db); err != nil {
		log.Fatal("migration error:", err)
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", redisHost, redisPort),
		Password: redisPassword,
		DB:       redisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("Redis connection error:", err)
	}
	defer rdb.Close()

	// Kafka writers: one topic for committed transactions, one for user
	// notifications.
	transactionsWriter := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBrokers...),
		Topic:    kafkaTransactionsTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer transactionsWriter.Close()

	notificationsWriter := &kafka.Writer{
		Addr:     kafka.TCP(kafkaBrokers...),
		Topic:    kafkaNotificationsTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer notificationsWriter.Close()

	// Initialize JWT service
	jwtSvc := jwt.New(jwtSecretKey, time.Duration(jwtExpSecond)*time.Second)

	// Initialize repositories
	userReadRepo := repositories.NewUserReaderRepository(db)
	userWriteRepo := repositories.NewUserWriterRepository(db)
	walletWriteRepo := repositories.NewWalletWriterRepository(db)
	walletReadRepo := repositories.NewWalletReaderRepository(db)
	txnWriteRepo := repositories.NewTransactionWriterRepository(db)
	txnReadRepo := repositories.NewTransactionReaderRepository(db)
	rateRepo := repositories.NewExchangeRateReaderRepository(db)
	rateCache := repositories.NewExchangeRateCacheRepository(rdb, rateCacheTTL)
	txRunner := repositories.NewTxRunner(db, lockTimeoutMS)

	// Initialize services
	authService := services.NewAuthService(userReadRepo, userWriteRepo, jwtSvc)
	rateService := services.NewRateService(rateRepo, rateCache)
	walletService := services.NewWalletService(walletReadRepo)
	notifier := notify.NewKafkaNotifier(notificationsWriter)
	ledgerService := services.NewLedgerService(
		walletWriteRepo, txnWriteRepo, txnReadRepo, userReadRepo,
		rateService, txRunner, notifier, transactionsWriter,
	)

	// Initialize handlers
	registerHandler := handlers.NewRegisterHandler(authService)
	loginHandler := handlers.NewLoginHandler(authService)
	balanceHandler := handlers.NewBalanceHandler(walletService, jwtSvc)
	topUpHandler := handlers.NewTopUpHandler(ledgerService, jwtSvc)
	transferHandler := handlers.NewTransferHandler(ledgerService, jwtSvc)
	exchangeHandler := handlers.NewExchangeHandler(ledgerService, jwtSvc)
	ratesHandler := handlers.NewRatesHandler(rateService, jwtSvc)
	transactionsHandler := handlers.NewTransactionsHandler(ledgerService, jwtSvc)
	adminCreditHandler := handlers.NewAdminCreditHandler(ledgerService, jwtSvc)

	// Setup router
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(log))

	r.Route("/api/v1", func(r chi.Router) {
		// Public routes
		r.Post("/register", registerHandler)
		r.Post("/login", loginHandler)

		// Protected routes with JWT middleware
		r.Group(func(r chi.Router) {
			r.Use(middlewares.AuthMiddleware(jwtSvc))
			r.Get("/balance", balanceHandler)
			r.Post("/wallet/topup", topUpHandler)
			r.Post("/wallet/transfer", transferHandler)
			r.Post("/exchange", exchangeHandler)
			r.Get("/exchange/rates", ratesHandler)
			r.Get("/transactions", transactionsHandler)
			r.Post("/admin/credit", adminCreditHandler)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://%s:%s/swagger/doc.json", appHost, appPort)),
	))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", appHost, appPort),
		Handler: r,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		log.Infof("HTTP server listening on %s:%s", appHost, appPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorw("HTTP server shutdown error", "error", err)
	}

	log.Info("HTTP server stopped gracefully")
	return nil
}

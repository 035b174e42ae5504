package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/init-51/FinInsight/internal/client"
	"github.com/init-51/FinInsight/internal/config"
	"github.com/init-51/FinInsight/internal/engine"
	"github.com/init-51/FinInsight/internal/executor"
	"github.com/init-51/FinInsight/internal/handler"
	"github.com/init-51/FinInsight/internal/kafka"
	"github.com/init-51/FinInsight/internal/middleware"
	"github.com/init-51/FinInsight/internal/repository"
	"github.com/init-51/FinInsight/internal/service"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Set up logger
	logger, err := createLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	// Connect to database
	db, err := connectToDB(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories and clients
	resultRepo := repository.NewBacktestResultRepository(db, logger)
	marketDataClient := client.NewMarketDataClient(
		cfg.MarketData.BaseURL,
		cfg.MarketData.Timeout,
		cfg.MarketData.MaxRetries,
		logger,
	)

	// Initialize the backtest engine
	backtestEngine := engine.NewEngine(
		marketDataClient,
		resultRepo,
		cfg.Backtest.RiskFreeRate,
		logger,
	)

	// Initialize the optional job event producer
	var events executor.EventPublisher
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(
			strings.Split(cfg.Kafka.Brokers, ","),
			cfg.Kafka.Topic,
			cfg.Kafka.ClientID,
			logger,
		)
		defer producer.Close()
		events = producer
	}

	// Initialize the job executor and start its worker pool
	jobExecutor := executor.New(
		backtestEngine,
		cfg.Backtest.Workers,
		cfg.Backtest.QueueSize,
		events,
		logger,
	)
	jobExecutor.Start()

	// Initialize services and handlers
	backtestService := service.NewBacktestService(jobExecutor, resultRepo, cfg.Backtest.HistoryLimit, logger)
	jobHandler := handler.NewJobHandler(backtestService, logger)
	dataHandler := handler.NewDataHandler(marketDataClient, logger)

	// Set up HTTP server with Gin
	router := setupRouter(jobHandler, dataHandler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start the server in a goroutine
	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Create a deadline for server shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Drain the job queue so in-flight backtests finish and persist
	jobExecutor.Stop()

	logger.Info("Server exited properly")
}

func createLogger(level string) (*zap.Logger, error) {
	// Parse log level
	var zapLevel zap.AtomicLevel
	switch level {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	// Create logger config
	config := zap.Config{
		Level:            zapLevel,
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

func connectToDB(dbConfig config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		dbConfig.Host,
		dbConfig.Port,
		dbConfig.User,
		dbConfig.Password,
		dbConfig.DBName,
		dbConfig.SSLMode,
	)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

func setupRouter(jobHandler *handler.JobHandler, dataHandler *handler.DataHandler, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	// Use middlewares
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	// API routes
	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("/backtest", jobHandler.SubmitBacktest)
			jobs.GET("/status/:id", jobHandler.GetJobStatus)
			jobs.GET("/results/:id", jobHandler.GetJobResults)
			jobs.GET("/history", jobHandler.GetHistory)
		}

		data := v1.Group("/data")
		{
			data.GET("/price/:ticker", dataHandler.GetStockPrices)
		}
	}

	return router
}

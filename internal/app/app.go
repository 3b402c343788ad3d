package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/SHMoney2021/myquote/api"
	"github.com/SHMoney2021/myquote/internal/config"
	"github.com/SHMoney2021/myquote/internal/history"
	"github.com/SHMoney2021/myquote/internal/infrastructure"
	"github.com/SHMoney2021/myquote/internal/processor"
	"github.com/SHMoney2021/myquote/internal/push"
	"github.com/SHMoney2021/myquote/internal/quote"
	"github.com/SHMoney2021/myquote/internal/store"
)

// App defines the application structure and its dependencies
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	DB         *pgxpool.Pool
	NC         *nats.Conn
	JS         nats.JetStreamContext
	Quotes     *quote.Router
	Daily      *history.DailySource
	Adjusted   *history.AdjustedSource
	Snapshot   *history.SnapshotSource
	Bars       *store.BarStore
	Gateway    *push.Gateway
	HTTPServer *http.Server
}

// NewApp creates a new application instance
func NewApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	infrastructure.Init()
	logger := infrastructure.Logger

	return &App{
		Config: &cfg,
		Logger: logger,
	}, nil
}

// Init initializes all application components
func (a *App) Init(ctx context.Context) error {
	// 1. Database
	dbPool, err := pgxpool.Connect(ctx, a.Config.DB_DSN)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.DB = dbPool

	a.Bars = store.NewBarStore(dbPool, a.Logger)
	if err := a.Bars.Init(ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	// 2. NATS
	nc, js, err := infrastructure.InitNATS(a.Config.NatsURL, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	a.NC = nc
	a.JS = js

	// 3. Services
	a.Quotes = quote.NewRouter(quote.NewHTTPFetcher(a.Logger), a.Logger)

	historyClient := history.NewTushareClient(a.Config.TushareURL, a.Config.TushareToken, a.Logger)
	a.Daily = history.NewDailySource(historyClient, a.Logger)
	a.Adjusted = history.NewAdjustedSource(historyClient, a.Logger)
	a.Snapshot = history.NewSnapshotSource(historyClient, a.Logger)

	a.Gateway = push.NewGateway(js, a.Logger)

	return nil
}

// Run starts the application services and the HTTP server
func (a *App) Run(ctx context.Context) error {
	// Start stream processor: raw quotes -> daily bars
	barProcessor := processor.NewBarProcessor(a.JS, a.Logger)
	if err := barProcessor.Run(ctx); err != nil {
		return fmt.Errorf("failed to start bar processor: %w", err)
	}

	// Start the watch-list poller
	poller := NewPoller(a.Quotes, a.JS, a.Config.Symbols(), a.Config.QuoteSource,
		time.Duration(a.Config.PollSeconds)*time.Second, a.Logger)
	go poller.Run(ctx)

	// Setup HTTP Server
	a.HTTPServer = &http.Server{
		Addr:    ":" + a.Config.Port,
		Handler: a.setupRouter(),
	}

	go func() {
		a.Logger.Info("starting http server", zap.String("port", a.Config.Port))
		if err := a.HTTPServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	return a.waitForShutdown()
}

// waitForShutdown handles graceful shutdown signals
func (a *App) waitForShutdown() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	a.Logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.NC.Close()
	a.DB.Close()

	return nil
}

// setupRouter configures the Gin router and its routes
func (a *App) setupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	apiHandler := api.NewHandler(a.Quotes, a.Daily, a.Adjusted, a.Snapshot, a.Bars, a.Logger)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/quote/:code", apiHandler.GetQuote)
		v1.GET("/daily/:code", apiHandler.GetDaily)
		v1.GET("/snapshot", apiHandler.GetSnapshot)
		v1.POST("/backtest", apiHandler.RunBacktest)
		v1.POST("/backtest/batch", apiHandler.RunBatchBacktest)
	}

	r.GET("/ws", func(c *gin.Context) {
		a.Gateway.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	_ "go.uber.org/automaxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"onearmedbandit/internal/bandit"
)

func main() {
	_ = godotenv.Load()

	isProduction := os.Getenv("GIN_MODE") == "release" || os.Getenv("ENV") == "production"
	logger := newLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE"), isProduction)
	defer func() { _ = logger.Sync() }()
	setLogger(logger)

	logInfo("Starting One-Arm Bandit in %s mode", map[bool]string{true: "production", false: "development"}[isProduction])

	rules, err := loadRules(os.Getenv("MACHINE_CONFIG"))
	if err != nil {
		logFatal("Failed to load machine rules: %v", err)
	}
	logInfo("Machine rules: stake %d, payout %d, starting credits %d, spin delay %v, %d symbols",
		rules.Stake, rules.Payout, rules.StartingCredits, rules.SpinDelay, len(rules.Symbols))

	app, err := newApp(rules, isProduction, logger)
	if err != nil {
		logFatal("Failed to create machine: %v", err)
	}

	router := app.newRouter()
	if isProduction && dirExists("dist") {
		logInfo("Serving assets from dist/ directory")
		router.LoadHTMLGlob("dist/templates/*.html")
		router.Static("/static", "./dist/static")
	} else {
		logInfo("Serving development assets from source directories")
		router.LoadHTMLGlob("templates/*.html")
		router.Static("/static", "./static")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := app.run(ctx, router); err != nil {
		logFatal("Server failed: %v", err)
	}
	logInfo("Server shutdown complete")
}

// loadRules returns the default rules, or the rules in path when set.
func loadRules(path string) (bandit.Rules, error) {
	if path == "" {
		return bandit.DefaultRules(), nil
	}
	logInfo("Loading machine rules from %s", path)
	return bandit.LoadRules(path)
}

// newApp wires the machine loop, metrics and environment settings.
func newApp(rules bandit.Rules, isProduction bool, logger *zap.Logger) (*App, error) {
	metrics := NewMetrics(rules)
	machine, err := bandit.NewMachine(rules,
		bandit.WithObserver(metrics),
		bandit.WithLogger(logger.Named("machine")),
	)
	if err != nil {
		return nil, err
	}
	return &App{
		Machine:        machine,
		Rules:          rules,
		Metrics:        metrics,
		IsProduction:   isProduction,
		CookieMaxAge:   getEnvDuration("COOKIE_MAX_AGE", 2*time.Hour),
		SessionTimeout: getEnvDuration("SESSION_TIMEOUT", 2*time.Hour),
		SweepInterval:  getEnvDuration("SESSION_SWEEP_INTERVAL", 5*time.Minute),
		StaticCacheAge: getEnvDuration("STATIC_CACHE_AGE", 5*time.Minute),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
		LimiterMap:     make(map[string]*clientLimiter),
		StartTime:      time.Now(),
	}, nil
}

// newRouter registers middleware and routes. Templates and static files are
// attached by the caller.
func (app *App) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), requestIDMiddleware())

	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression,
		ginGzip.WithExcludedExtensions([]string{".ico", ".png", ".jpg", ".jpeg", ".gif"}),
		ginGzip.WithExcludedPaths([]string{RouteMetrics})))

	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logWarn("Failed to set trusted proxies: %v", err)
	}

	router.Use(func(c *gin.Context) {
		app.applyCacheHeaders(c)
	})

	router.GET(RouteHome, app.homeHandler)
	router.POST(RouteSpin, app.rateLimitMiddleware(), app.spinHandler)
	router.POST(RouteDismiss, app.rateLimitMiddleware(), app.dismissHandler)
	router.GET(RouteMachineState, app.machineStateHandler)
	router.GET(RouteAPIState, app.apiStateHandler)
	router.GET(RouteNewGame, app.newGameHandler)
	router.POST(RouteNewGame, app.rateLimitMiddleware(), app.newGameHandler)
	router.GET(RouteHealthz, app.healthzHandler)
	router.GET(RouteMetrics, gin.WrapH(promhttp.HandlerFor(app.Metrics.Registry, promhttp.HandlerOpts{})))
	return router
}

// run serves HTTP alongside the machine loop and the session sweeper until
// ctx is cancelled or one of them fails.
func (app *App) run(ctx context.Context, handler http.Handler) error {
	port := getEnvString("PORT", "8080")
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Machine.Run(gctx) })
	g.Go(func() error { return app.runSessionSweeper(gctx) })
	g.Go(func() error {
		logInfo("Server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logWarn("HTTP server Shutdown: %v", err)
		}
		return nil
	})
	return g.Wait()
}

func (app *App) applyCacheHeaders(c *gin.Context) {
	if app.IsProduction && strings.HasPrefix(c.Request.URL.Path, "/static/") {
		cachecontrol.New(cachecontrol.Config{
			Public: true,
			MaxAge: cachecontrol.Duration(app.StaticCacheAge),
		})(c)
		c.Header("Vary", "Accept-Encoding")
		return
	}
	cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	})(c)
}

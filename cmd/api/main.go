package main

import (
	"expvar"
	"flag"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/triill/shelf/config"
	"github.com/triill/shelf/handler"
	"github.com/triill/shelf/internal/jsonlog"
	"github.com/triill/shelf/repository"
	"github.com/triill/shelf/repository/postgres"
	"github.com/triill/shelf/service"
)

const version = "1.0.0"

// app defines the application's layers and shared resources.
type app struct {
	config  config.Config
	handler *handler.Handler
}

func main() {
	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	// A local .env file is a development convenience; absence is fine.
	_ = godotenv.Load()

	// Initialize configuration: optional YAML file and environment
	// first, command line flags override.
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	flag.IntVar(&cfg.Server.Port, "port", cfg.Server.Port, "API server port")
	flag.StringVar(&cfg.Server.Env, "env", cfg.Server.Env, "Environment(development|staging|production)")

	// Read the database connection pool settings into the config
	flag.StringVar(&cfg.Database.DSN, "db-dsn", cfg.Database.DSN, "PostgreSQL DSN")
	flag.IntVar(&cfg.Database.MaxOpenConns, "db-max-open-conns", cfg.Database.MaxOpenConns, "PostgreSQL max open connections")
	flag.IntVar(&cfg.Database.MaxIdleConns, "db-max-idle-conns", cfg.Database.MaxIdleConns, "PostgreSQL max idle connections")
	flag.StringVar(&cfg.Database.MaxIdleTime, "db-max-idle-time", cfg.Database.MaxIdleTime, "PostgreSQL max connection idle time")

	// Read the rate limiter settings into the config
	flag.Float64Var(&cfg.Limiter.RPS, "limiter-rps", cfg.Limiter.RPS, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.Limiter.Burst, "limiter-burst", cfg.Limiter.Burst, "Rate limiter maximum burst")
	flag.BoolVar(&cfg.Limiter.Enabled, "limiter-enabled", cfg.Limiter.Enabled, "Enable rate limiter")

	// Process the -cors-trusted-origin command line flag
	flag.Func("cors-trusted-origin", "Trusted CORS origin (space separated)", func(s string) error {
		cfg.Cors.TrustedOrigins = strings.Fields(s)
		return nil
	})

	// Read the metrics settings and the basic auth credentials for the
	// metrics endpoint
	flag.BoolVar(&cfg.Metrics.Enabled, "metrics-enabled", cfg.Metrics.Enabled, "Enable request metrics")
	flag.StringVar(&cfg.BasicAuth.Username, "basic-auth-username", cfg.BasicAuth.Username, "Basic auth username")
	flag.StringVar(&cfg.BasicAuth.Password, "basic-auth-password", cfg.BasicAuth.Password, "Basic auth password")

	flag.Parse()

	// Initialize database connection
	db, err := postgres.OpenDBConn(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer db.Close()
	logger.PrintInfo("database connection pool established", nil)

	// Publish runtime information in the expvar handler
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("database", expvar.Func(func() any {
		return db.Stats()
	}))
	expvar.Publish("timestamp", expvar.Func(func() any {
		return time.Now().Unix()
	}))

	// Application layers
	var wg sync.WaitGroup
	repo := repository.New(db)
	service := service.New(cfg, &wg, logger, repo)
	handler := handler.New(cfg, logger, service)

	app := &app{
		config:  cfg,
		handler: handler,
	}

	// Start the HTTP server
	err = app.serve(&wg, logger)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

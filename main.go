package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/urfave/negroni"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/config"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/gateway"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/logging"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/server"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/sessionstore"
	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/warehouse"
)

func main() {
	cfg := config.Load()

	logger := setupLogger(cfg)

	session, err := warehouse.Connect(cfg)
	if err != nil {
		log.Fatalf("Unable to connect to Snowflake: %v", err)
	}
	defer session.Close()

	gw := gateway.New(session, logger)

	store := sessionstore.New(cfg.SessionTTL)
	store.StartCleanup(5 * time.Minute)
	defer store.StopCleanup()

	routes := server.SetupRoutes(gw, store, logger)

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	n.Use(negroni.NewLogger())
	n.UseHandler(routes)

	logger.Info("Console starting",
		slog.String("environment", cfg.Environment),
		slog.String("database", cfg.SnowflakeDatabase))

	if cfg.Environment == "production" {
		server.ServeProduction(n, cfg)
	} else {
		srv := &http.Server{
			Addr:         ":" + cfg.HTTPPort,
			Handler:      n,
			IdleTimeout:  time.Minute,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
		}
		server.ServeDevelopment(srv)
	}
}

func setupLogger(cfg config.Config) *slog.Logger {
	handler, err := logging.NewDailyFileHandler(cfg.LogDir, &slog.HandlerOptions{Level: slog.LevelInfo})
	if err != nil {
		log.Printf("Warning: falling back to stderr logging: %v", err)
		return slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return slog.New(handler)
}

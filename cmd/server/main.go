package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/config"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/handlers"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/metrics"
)

func main() {
	// Load .env if it exists
	envFile := config.LoadDotEnv(config.DotEnvPaths...)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("could not load config", "error", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		slog.Error("could not create logger", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logger)
	if envFile != "" {
		logger.Info("loaded env file", "path", envFile)
	}

	rules, err := cfg.Rules()
	if err != nil {
		logger.Error("could not load rules", "path", cfg.RulesFile, "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.GinMode)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	h := handlers.New(rules, logger, metrics.NewPrometheus(reg, ""))
	h.MaxUploadBytes = cfg.MaxUploadBytes

	r := gin.New()
	r.Use(h.RequestLogger(), gin.Recovery())
	h.Register(r, reg)

	logger.Info("server starting", "port", cfg.Port, "rules", rules)
	if err := r.Run(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
		logger.Error("could not run server", "error", err)
		os.Exit(1)
	}
}

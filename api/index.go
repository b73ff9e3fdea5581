package handler

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/config"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/handlers"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/metrics"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/scheduler"
)

var r *gin.Engine

func init() {
	// Load .env if it exists (for local testing with vercel dev)
	config.LoadDotEnv(".env", "../.env")

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	rules := scheduler.DefaultRules()
	if cfg, err := config.Load(); err != nil {
		logger.Error("could not load config, using defaults", "error", err)
	} else if loaded, err := cfg.Rules(); err != nil {
		logger.Error("could not load rules, using defaults", "error", err)
	} else {
		rules = loaded
	}

	reg := prometheus.NewRegistry()
	h := handlers.New(rules, logger, metrics.NewPrometheus(reg, ""))

	gin.SetMode(gin.ReleaseMode)
	r = gin.New()
	r.Use(h.RequestLogger(), gin.Recovery())
	h.Register(r, reg)
}

// Handler is the entry point for Vercel Go Runtime
func Handler(w http.ResponseWriter, req *http.Request) {
	r.ServeHTTP(w, req)
}

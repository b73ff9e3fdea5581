package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/blocked"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/export"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/metrics"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/roster"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/scheduler"
)

// Version is reported by the index route
const Version = "1.0.0"

// Handler contains dependencies for the route handlers
type Handler struct {
	Rules          scheduler.Rules
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	MaxUploadBytes int64

	validate *validator.Validate
}

// New creates a handler; a nil logger falls back to slog.Default()
func New(rules scheduler.Rules, logger *slog.Logger, m *metrics.Metrics) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Rules:          rules,
		Logger:         logger,
		Metrics:        m,
		MaxUploadBytes: 1 << 20,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Register mounts every route on r. /metrics is served from gatherer when it is not nil.
func (h *Handler) Register(r gin.IRouter, gatherer prometheus.Gatherer) {
	r.GET("/", h.Index)

	api := r.Group("/api")
	{
		api.POST("/blocked", h.ParseBlocked)
		api.POST("/schedule", h.ScheduleJSON)
		api.POST("/schedule/csv", h.ScheduleCSV)
		api.POST("/validate", h.ValidateInput)
		api.GET("/rules", h.GetRules)
	}

	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
}

// RequestLogger logs one line per handled request
func (h *Handler) RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.Logger.Info("request handled",
			"status", c.Writer.Status(),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"ip", c.ClientIP(),
			"duration", time.Since(start),
		)
	}
}

// Index describes the service
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Duty Planner API",
		"version": Version,
	})
}

// ParseBlocked parses blocked-date text so it can be confirmed before generating
func (h *Handler) ParseBlocked(c *gin.Context) {
	var input models.BlockedInput
	if !h.bindJSON(c, &input) {
		return
	}

	target, err := calendar.ParseMonth(input.Month)
	if err != nil {
		h.fail(c, err)
		return
	}

	set := blocked.Parse(input.Blocked, target)
	c.JSON(http.StatusOK, gin.H{
		"month":   target.String(),
		"blocked": set,
		"summary": blocked.Describe(set),
	})
}

// ScheduleJSON handles the JSON-based scheduling request
func (h *Handler) ScheduleJSON(c *gin.Context) {
	var input models.ScheduleInput
	if !h.bindJSON(c, &input) {
		return
	}

	res, err := h.generate(c.Request.Context(), input.Roster, input.Blocked, input.Month)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ScheduleResponse{
		Month:         res.target.String(),
		Schedule:      res.month,
		Blocked:       res.scheduler.Blocked,
		Conflicts:     res.scheduler.Conflicts,
		UnfilledSlots: res.month.UnfilledSlots(),
		FairnessScore: res.scheduler.CalculateFairnessScore(),
		People:        res.scheduler.Stats(),
	})
}

// ScheduleCSV takes a points ledger upload and returns the month as a CSV download.
// Form fields: points_file (required), month (YYYY-MM), blocked (text).
func (h *Handler) ScheduleCSV(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	pointsFile, err := c.FormFile("points_file")
	if err != nil || pointsFile == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "points_file is required"})
		return
	}

	f, err := pointsFile.Open()
	if err != nil {
		h.fail(c, fmt.Errorf("opening points file: %w", err))
		return
	}
	defer f.Close()

	entries, err := roster.ParsePoints(f)
	if err != nil {
		h.fail(c, err)
		return
	}

	res, err := h.generate(c.Request.Context(), entries, c.PostForm("blocked"), c.PostForm("month"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var out bytes.Buffer
	if err := export.WriteCSV(&out, res.month); err != nil {
		h.fail(c, fmt.Errorf("writing csv: %w", err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(res.target)))
	c.Data(http.StatusOK, export.ContentType, out.Bytes())
}

type result struct {
	target    calendar.Month
	scheduler *scheduler.Scheduler
	month     models.ScheduleMonth
}

func (h *Handler) generate(ctx context.Context, entries []models.RosterEntry, blockedText, month string) (*result, error) {
	target, err := calendar.ParseMonth(month)
	if err != nil {
		h.Metrics.ObserveFailure(metrics.ResultInvalid)
		return nil, err
	}

	s, err := scheduler.NewScheduler(entries, blocked.Parse(blockedText, target), h.Rules)
	if err != nil {
		h.Metrics.ObserveFailure(metrics.ResultInvalid)
		return nil, err
	}
	s.Logger = h.Logger

	start := time.Now()
	generated, err := s.GenerateMonth(ctx, target)
	if err != nil {
		h.Metrics.ObserveFailure(metrics.ResultError)
		return nil, err
	}
	h.Metrics.ObserveRun(generated, time.Since(start))

	return &result{target: target, scheduler: s, month: generated}, nil
}

// bindJSON decodes and validates the body, answering 400 itself on failure
func (h *Handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("%s failed %q validation", verrs[0].Namespace(), verrs[0].Tag())
	}
	return err.Error()
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, models.ErrInvalidInput) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.Logger.Error("internal error", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

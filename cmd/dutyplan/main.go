// Command dutyplan generates a month's duty roster from a points ledger and a
// blocked-dates file and writes it as CSV.
//
//	dutyplan --points points.csv --blocked blocked.txt --month 2025-08
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/justinleeeeeeeeeee/DUTYPLANNER/internal/calendar"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/blocked"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/config"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/export"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/models"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/roster"
	"github.com/justinleeeeeeeeeee/DUTYPLANNER/pkg/scheduler"
)

type options struct {
	points  string
	blocked string
	month   string
	out     string
	rules   string
	verbose bool
}

func main() {
	var opts options
	flags := pflag.NewFlagSet("dutyplan", pflag.ExitOnError)
	flags.StringVarP(&opts.points, "points", "p", "", "points ledger CSV (Name,Points)")
	flags.StringVarP(&opts.blocked, "blocked", "b", "", "blocked dates, one \"Name: dates\" line per person")
	flags.StringVarP(&opts.month, "month", "m", "", "target month as YYYY-MM")
	flags.StringVarP(&opts.out, "out", "o", "", "output file (default PlannedSchedule_<Mon-YYYY>.csv, - for stdout)")
	flags.StringVar(&opts.rules, "rules", "", "YAML rules file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log parsed blocked dates and unfilled slots")
	_ = flags.Parse(os.Args[1:])

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts, os.Stdout, logger); err != nil {
		logger.Error("dutyplan failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, stdout io.Writer, logger *slog.Logger) error {
	if opts.points == "" || opts.month == "" {
		return fmt.Errorf("--points and --month are required")
	}

	target, err := calendar.ParseMonth(opts.month)
	if err != nil {
		return err
	}

	rules, err := config.LoadRules(opts.rules)
	if err != nil {
		return err
	}

	f, err := os.Open(opts.points)
	if err != nil {
		return err
	}
	defer f.Close()

	entries, err := roster.ParsePoints(f)
	if err != nil {
		return err
	}

	var blockedText string
	if opts.blocked != "" {
		data, err := os.ReadFile(opts.blocked)
		if err != nil {
			return err
		}
		blockedText = string(data)
	}
	set := blocked.Parse(blockedText, target)
	for _, line := range blocked.Describe(set) {
		logger.Debug("blocked", "dates", line)
	}

	s, err := scheduler.NewScheduler(entries, set, rules)
	if err != nil {
		return err
	}
	s.Logger = logger

	month, err := s.GenerateMonth(ctx, target)
	if err != nil {
		return err
	}

	for _, c := range s.Conflicts {
		logger.Debug("unfilled", "date", c.Date, "slot", c.Slot, "reasons", c.Reasons)
	}

	out := opts.out
	if out == "" {
		out = export.FileName(target)
	}
	if out == "-" {
		err = export.WriteCSV(stdout, month)
	} else {
		err = writeFile(out, month)
	}
	if err != nil {
		return err
	}

	logger.Info("roster written",
		"path", out,
		"unfilled", month.UnfilledSlots(),
		"fairness", fmt.Sprintf("%.1f", s.CalculateFairnessScore()),
	)
	return nil
}

func writeFile(path string, month models.ScheduleMonth) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := export.WriteCSV(f, month); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

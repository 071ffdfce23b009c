package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Options controls one pipeline run.
type Options struct {
	// MaxRows limits rows processed; 0 means unlimited.
	MaxRows int
	// Logger receives per-stage debug logs and a run summary. Nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns reasonable defaults for a pipeline run.
func DefaultOptions() Options {
	return Options{MaxRows: 0}
}

// Result is everything one run produces. Volume is nil when no record survived
// filtering.
type Result struct {
	RunID     string         `json:"run_id" yaml:"run_id"`
	Rows      int            `json:"rows" yaml:"rows"`
	Processed int            `json:"processed" yaml:"processed"`
	Stats     DropStats      `json:"stats" yaml:"stats"`
	Counts    []GroupedCount `json:"counts" yaml:"counts"`
	Pivot     PivotTable     `json:"pivot" yaml:"pivot"`
	Volume    *VolumeSummary `json:"volume,omitempty" yaml:"volume,omitempty"`
}

// Run projects, cleans, aggregates and pivots t. Each stage builds new values
// and ctx is checked between stages, so a cancelled run leaves nothing behind.
// The only failure besides cancellation is a *StructuralError.
func Run(ctx context.Context, t Table, opt Options) (*Result, error) {
	log := opt.Logger
	if log == nil {
		log = slog.Default()
	}
	res := &Result{RunID: uuid.NewString(), Rows: len(t)}
	log = log.With(slog.String("run_id", res.RunID))

	if opt.MaxRows > 0 && len(t) > opt.MaxRows {
		log.WarnContext(ctx, "truncating input", slog.Int("rows", len(t)), slog.Int("max_rows", opt.MaxRows))
		t = t[:opt.MaxRows]
	}
	res.Processed = len(t)

	raws, err := Project(t)
	if err != nil {
		log.ErrorContext(ctx, "column projection failed", slog.Any("error", err))
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("after projection: %w", err)
	}

	records, stats := Prepare(raws)
	res.Stats = stats
	log.DebugContext(ctx, "records prepared", slog.Int("kept", stats.Kept), slog.Int("dropped", stats.Dropped()))
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("after filtering: %w", err)
	}

	res.Counts = Aggregate(records)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("after aggregation: %w", err)
	}
	res.Pivot = BuildPivot(res.Counts)
	log.DebugContext(ctx, "pivot built", slog.Int("rows", len(res.Pivot.Rows)), slog.Int("dates", len(res.Pivot.Dates)))

	if vs, ok := AnalyzeVolume(records); ok {
		res.Volume = &vs
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("after volume analysis: %w", err)
	}

	log.InfoContext(ctx, "pipeline finished",
		slog.Int("rows", res.Rows),
		slog.Int("kept", stats.Kept),
		slog.Int("empty_specialty", stats.EmptySpecialty),
		slog.Int("empty_payer", stats.EmptyPayer),
		slog.Int("invalid_date", stats.InvalidDate),
		slog.Int("pivot_rows", len(res.Pivot.Rows)),
		slog.Int("pivot_dates", len(res.Pivot.Dates)))
	return res, nil
}

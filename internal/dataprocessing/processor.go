package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"incidentcli/pkg/contracts/domain"
)

const tracerName = "incidentcli/dataprocessing"

// BatchStats summarizes what happened to one input batch.
type BatchStats struct {
	RowsRead       int
	RowsKept       int
	RowsDropped    int
	IrregularRows  int
	UnparsedTimes  int
	OverriddenRows int
}

// Add accumulates other into s.
func (s *BatchStats) Add(other BatchStats) {
	s.RowsRead += other.RowsRead
	s.RowsKept += other.RowsKept
	s.RowsDropped += other.RowsDropped
	s.IrregularRows += other.IrregularRows
	s.UnparsedTimes += other.UnparsedTimes
	s.OverriddenRows += other.OverriddenRows
}

// Processor runs reconcile, interval computation and empty-row filtering
// over one batch of source rows.
type Processor struct {
	reconciler  *Reconciler
	significant []string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewProcessor creates a batch processor for the given rules.
func NewProcessor(rules domain.ReportRules, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		reconciler:  NewReconciler(rules),
		significant: rules.SignificantColumns(),
		logger:      logger,
		tracer:      otel.Tracer(tracerName),
	}
}

// ProcessBatch turns the rows of one input file into report records.
func (p *Processor) ProcessBatch(ctx context.Context, source string, rows []domain.SourceRow) ([]domain.IncidentRecord, BatchStats) {
	ctx, span := p.tracer.Start(ctx, "process_batch",
		trace.WithAttributes(
			attribute.String("batch.source", source),
			attribute.Int("batch.rows", len(rows)),
		))
	defer span.End()

	rules := p.reconciler.Rules()
	stats := BatchStats{RowsRead: len(rows)}

	records := make([]domain.IncidentRecord, 0, len(rows))
	for i, row := range rows {
		rec := p.reconciler.Reconcile(row)
		if p.overridden(row, rec) {
			stats.OverriddenRows++
		}

		times, unparsed := p.parseTimes(ctx, rec, source, i)
		stats.UnparsedTimes += unparsed

		iv := ComputeInterval(times[0], times[1], times[2], times[3])
		if iv.Irregular {
			stats.IrregularRows++
			p.logger.WarnContext(ctx, "Irregular incident window, durations left empty",
				slog.String("file", source),
				slog.Int("row_index", i),
				slog.String("store", rec.Text(rules.StoreColumn)),
				slog.String("start", rec.Text(rules.StartColumn)),
				slog.String("end", rec.Text(rules.EndColumn)))
			rec.Set(rules.ImpactColumn, "")
			rec.Set(rules.AvailabilityColumn, "")
		} else {
			rec.Set(rules.ImpactColumn, FormatDuration(iv.Impact))
			rec.Set(rules.AvailabilityColumn, FormatDuration(iv.Availability))
		}
		records = append(records, rec)
	}

	kept := FilterEmpty(records, p.significant)
	stats.RowsKept = len(kept)
	stats.RowsDropped = len(records) - len(kept)

	span.SetAttributes(
		attribute.Int("batch.rows_kept", stats.RowsKept),
		attribute.Int("batch.rows_dropped", stats.RowsDropped),
		attribute.Int("batch.irregular", stats.IrregularRows),
	)

	p.logger.InfoContext(ctx, "Batch processed",
		slog.String("file", source),
		slog.Int("rows_read", stats.RowsRead),
		slog.Int("rows_kept", stats.RowsKept),
		slog.Int("rows_dropped_empty", stats.RowsDropped),
		slog.Int("irregular_rows", stats.IrregularRows),
		slog.Int("unparsed_times", stats.UnparsedTimes))

	return kept, stats
}

// parseTimes returns open, close, start and end of rec in that order.
func (p *Processor) parseTimes(ctx context.Context, rec domain.IncidentRecord, source string, idx int) ([4]domain.NullDuration, int) {
	rules := p.reconciler.Rules()
	cols := [4]string{rules.OpenColumn, rules.CloseColumn, rules.StartColumn, rules.EndColumn}

	var out [4]domain.NullDuration
	unparsed := 0
	for i, col := range cols {
		raw := rec.Get(col)
		out[i] = ParseTime(raw)
		if !out[i].Valid && rec.Text(col) != "" {
			unparsed++
			p.logger.DebugContext(ctx, "Unparseable time treated as absent",
				slog.String("file", source),
				slog.Int("row_index", idx),
				slog.String("column", col),
				slog.String("value", rec.Text(col)))
		}
	}
	return out, unparsed
}

func (p *Processor) overridden(row domain.SourceRow, rec domain.IncidentRecord) bool {
	rules := p.reconciler.Rules()
	store := rec.Text(rules.StoreColumn)
	for _, o := range rules.Overrides {
		if store == o.Store {
			return domain.CellText(row[rules.OpenColumn]) != o.Open ||
				domain.CellText(row[rules.CloseColumn]) != o.Close
		}
	}
	return false
}

// FormatDuration renders d as zero-padded HH:MM. Negative durations render
// as 00:00; hours are not wrapped at 24.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

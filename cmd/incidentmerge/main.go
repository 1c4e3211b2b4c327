package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"incidentcli/internal/config"
	"incidentcli/internal/dataprocessing"
	apperrors "incidentcli/internal/errors"
	"incidentcli/internal/exporter"
	"incidentcli/internal/files"
	"incidentcli/internal/infrastructure"
	"incidentcli/internal/validation"
	"incidentcli/pkg/contracts"
	"incidentcli/pkg/contracts/domain"
)

// Summary reports what one merge run did.
type Summary struct {
	dataprocessing.BatchStats
	Files       int
	RowsWritten int
	TrimmedRows int
	OutputFile  string
	CSVFile     string
}

func main() {
	configFile := flag.String("config", "", "optional YAML configuration file")
	inDir := flag.String("in", "", "directory containing the incident .xlsx workbooks (defaults to dados_xlsx)")
	template := flag.String("template", "", "template workbook the rows are appended to")
	out := flag.String("out", "", "output workbook path")
	csvPath := flag.String("csv", "", "optional CSV copy of the merged rows")
	metricsFile := flag.String("metrics-file", "", "optional Prometheus textfile with run metrics")
	traceFile := flag.String("trace-file", "", "optional file receiving the run's spans")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *inDir, *template, *out, *csvPath, *metricsFile, *traceFile)

	logger, closeLog, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}
	defer closeLog()

	ctx := infrastructure.EnsureTraceID(context.Background())

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Failed to initialize telemetry")
		closeLog()
		os.Exit(1)
	}

	summary, runErr := run(ctx, cfg, tel, logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", err.Error()))
	}

	if runErr != nil {
		infrastructure.WithError(logger, runErr).ErrorContext(ctx, "Merge failed")
		fmt.Fprintf(os.Stderr, "merge failed: %v\n", runErr)
		closeLog()
		os.Exit(1)
	}

	fmt.Printf("Merged %d rows from %d files into %s\n", summary.RowsWritten, summary.Files, summary.OutputFile)
}

// applyFlags overrides configuration values with the flags that were set.
func applyFlags(cfg *config.Config, inDir, template, out, csvPath, metricsFile, traceFile string) {
	if inDir != "" {
		cfg.Report.InputDir = inDir
	}
	if template != "" {
		cfg.Report.TemplatePath = template
	}
	if out != "" {
		cfg.Report.OutputPath = out
	}
	if csvPath != "" {
		cfg.Report.CSVPath = csvPath
	}
	if metricsFile != "" {
		cfg.Telemetry.MetricsFile = metricsFile
	}
	if traceFile != "" {
		cfg.Telemetry.TraceFile = traceFile
	}
}

// run merges every input workbook into the template and saves the result.
// The template is checked before any input is read.
func run(ctx context.Context, cfg *config.Config, tel *infrastructure.Telemetry, logger *slog.Logger) (summary Summary, err error) {
	start := time.Now()

	var tracer trace.Tracer
	var metrics *infrastructure.RunMetrics
	if tel != nil {
		tracer = tel.Tracer
		metrics = tel.Metrics
	} else {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	ctx, span := tracer.Start(ctx, "merge_run")
	defer func() {
		if err != nil {
			infrastructure.RecordError(ctx, err)
		}
		span.SetAttributes(
			attribute.Int("run.files", summary.Files),
			attribute.Int("run.rows_written", summary.RowsWritten),
		)
		span.End()
		metrics.RecordRun(ctx, summary.RowsWritten, time.Since(start), err == nil)
	}()

	paths, err := config.GetPaths(cfg.Report)
	if err != nil {
		return summary, err
	}
	paths.LogPathResolution()

	validator := validation.NewFileValidator(infrastructure.WithComponent(logger, "validation"))
	if err := validator.ValidateTemplate(paths.TemplateFile); err != nil {
		return summary, err
	}
	if err := validator.ValidateInputDirectory(paths.InputDir); err != nil {
		return summary, err
	}
	if err := paths.EnsureDirectories(); err != nil {
		return summary, apperrors.NewStorageError("failed to create output directories", err)
	}
	if err := validator.ValidateOutputPath(paths.OutputFile); err != nil {
		return summary, err
	}
	if paths.CSVFile != "" {
		if err := validator.ValidateOutputPath(paths.CSVFile); err != nil {
			return summary, err
		}
	}

	workbooks, err := files.NewDiscovery(paths.BaseDir).FindExcelFiles(paths.InputDir)
	if err != nil {
		return summary, err
	}

	logger.InfoContext(ctx, "Starting merge",
		slog.String("input_dir", paths.InputDir),
		slog.String("template", paths.TemplateFile),
		slog.String("output_file", paths.OutputFile),
		slog.Int("files", len(workbooks)))

	rules := config.DefaultReportRules()
	processor := dataprocessing.NewProcessor(rules, infrastructure.WithComponent(logger, "processor"))

	writerOpts := exporter.OptionsFromConfig(cfg.Report, rules.Schema)
	writer, err := exporter.OpenReportWriter(paths.TemplateFile, writerOpts, infrastructure.WithComponent(logger, "writer"))
	if err != nil {
		return summary, err
	}
	defer writer.Close()

	var merged []domain.IncidentRecord
	for _, wb := range workbooks {
		rows, err := dataprocessing.ReadSheet(wb.Path)
		if err != nil {
			return summary, err
		}

		records, stats := processor.ProcessBatch(ctx, wb.Name, rows)
		if err := writer.Append(records); err != nil {
			return summary, err
		}
		if paths.CSVFile != "" {
			merged = append(merged, records...)
		}

		summary.Files++
		summary.BatchStats.Add(stats)
		metrics.RecordBatch(ctx, wb.Name, stats)
	}

	if summary.TrimmedRows, err = writer.Trim(); err != nil {
		return summary, err
	}
	if err := writer.SaveAs(paths.OutputFile); err != nil {
		return summary, err
	}
	summary.RowsWritten = writer.Written()
	summary.OutputFile = paths.OutputFile

	if paths.CSVFile != "" {
		if err := exporter.WriteRecordsCSV(paths.CSVFile, rules.Schema, merged); err != nil {
			return summary, err
		}
		summary.CSVFile = paths.CSVFile
	}

	logger.InfoContext(ctx, "Merge complete",
		slog.Int("files", summary.Files),
		slog.Int("rows_read", summary.RowsRead),
		slog.Int("rows_written", summary.RowsWritten),
		slog.Int("rows_dropped_empty", summary.RowsDropped),
		slog.Int("irregular_rows", summary.IrregularRows),
		slog.Int("unparsed_times", summary.UnparsedTimes),
		slog.Int("overridden_rows", summary.OverriddenRows),
		slog.Duration("duration", time.Since(start)))

	return summary, nil
}

package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"incidentcli/internal/config"
	apperrors "incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// WriterOptions controls where rows land in the template and how they look.
type WriterOptions struct {
	Schema    []string
	HeaderRow int
	StartRow  int
	RowHeight float64
	FontName  string
	FontSize  float64
}

// OptionsFromConfig builds writer options for the given schema from the
// report configuration.
func OptionsFromConfig(cfg config.ReportConfig, schema []string) WriterOptions {
	return WriterOptions{
		Schema:    schema,
		HeaderRow: cfg.HeaderRow,
		StartRow:  cfg.StartRow,
		RowHeight: cfg.RowHeight,
		FontName:  cfg.FontName,
		FontSize:  cfg.FontSize,
	}
}

// ReportWriter appends incident records to the active sheet of a template
// workbook. Rows are written at a cursor that starts at StartRow and only
// moves forward.
type ReportWriter struct {
	file       *excelize.File
	sheet      string
	opts       WriterOptions
	styleID    int
	timeStyles map[domain.TimeKind]int
	cursor     int
	written    int
	logger     *slog.Logger
}

// OpenReportWriter opens the template workbook and prepares its active sheet
// for appending. The template header is compared with the schema and any
// difference is logged as a warning.
func OpenReportWriter(templatePath string, opts WriterOptions, logger *slog.Logger) (*ReportWriter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.Schema) == 0 {
		return nil, apperrors.NewAppValidationError("report schema is empty")
	}
	if opts.HeaderRow < 1 || opts.StartRow <= opts.HeaderRow {
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("start row %d must follow header row %d", opts.StartRow, opts.HeaderRow))
	}

	f, err := excelize.OpenFile(templatePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open template", err).
			WithContext("file", templatePath)
	}

	styleID, err := f.NewStyle(rowStyle(opts.FontName, opts.FontSize))
	if err != nil {
		f.Close()
		return nil, apperrors.NewParsingError("failed to create row style", err).
			WithContext("file", templatePath)
	}

	timeStyles := make(map[domain.TimeKind]int, len(timeNumFmts))
	for kind := range timeNumFmts {
		id, err := f.NewStyle(timeStyle(opts.FontName, opts.FontSize, kind))
		if err != nil {
			f.Close()
			return nil, apperrors.NewParsingError("failed to create date style", err).
				WithContext("file", templatePath)
		}
		timeStyles[kind] = id
	}

	w := &ReportWriter{
		file:       f,
		sheet:      f.GetSheetName(f.GetActiveSheetIndex()),
		opts:       opts,
		styleID:    styleID,
		timeStyles: timeStyles,
		cursor:     opts.StartRow,
		logger:     logger,
	}

	missing, extra, err := w.CheckHeader()
	if err != nil {
		f.Close()
		return nil, err
	}
	if len(missing) > 0 || len(extra) > 0 {
		logger.Warn("Template header differs from report schema",
			slog.String("template", templatePath),
			slog.Any("missing", missing),
			slog.Any("extra", extra))
	}

	logger.Debug("Report writer opened",
		slog.String("template", templatePath),
		slog.String("sheet", w.sheet),
		slog.Int("start_row", w.cursor))

	return w, nil
}

// CheckHeader compares the template header row with the schema. missing holds
// schema columns absent from the header, extra holds header columns not in
// the schema.
func (w *ReportWriter) CheckHeader() (missing, extra []string, err error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return nil, nil, apperrors.NewParsingError("failed to read template header", err).
			WithContext("sheet", w.sheet)
	}

	var header []string
	if len(rows) >= w.opts.HeaderRow {
		header = rows[w.opts.HeaderRow-1]
	}

	present := make(map[string]bool, len(header))
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		present[name] = true
	}

	inSchema := make(map[string]bool, len(w.opts.Schema))
	for _, col := range w.opts.Schema {
		inSchema[col] = true
		if !present[col] {
			missing = append(missing, col)
		}
	}
	for _, name := range header {
		name = strings.TrimSpace(name)
		if name != "" && !inSchema[name] {
			extra = append(extra, name)
		}
	}
	return missing, extra, nil
}

// Append writes records in schema order starting at the cursor and styles
// each written row. time.Time values become date or time cells formatted day
// first; all other values are written as text.
func (w *ReportWriter) Append(records []domain.IncidentRecord) error {
	width := len(w.opts.Schema)
	for _, rec := range records {
		first, last, err := rowRange(w.cursor, width)
		if err != nil {
			return apperrors.NewStorageError("invalid row position", err).
				WithContext("row", w.cursor)
		}

		values := make([]any, width)
		kinds := make(map[int]domain.TimeKind)
		for i, col := range w.opts.Schema {
			v, kind, isTime := cellValue(rec.Get(col))
			values[i] = v
			if isTime {
				kinds[i] = kind
			}
		}
		if err := w.file.SetSheetRow(w.sheet, first, &values); err != nil {
			return apperrors.NewStorageError("failed to write row", err).
				WithContext("row", w.cursor)
		}
		if err := w.file.SetCellStyle(w.sheet, first, last, w.styleID); err != nil {
			return apperrors.NewStorageError("failed to style row", err).
				WithContext("row", w.cursor)
		}
		for i, kind := range kinds {
			cell, err := excelize.CoordinatesToCellName(i+1, w.cursor)
			if err != nil {
				return apperrors.NewStorageError("invalid cell position", err).
					WithContext("row", w.cursor)
			}
			if err := w.file.SetCellStyle(w.sheet, cell, cell, w.timeStyles[kind]); err != nil {
				return apperrors.NewStorageError("failed to style date cell", err).
					WithContext("row", w.cursor).
					WithContext("cell", cell)
			}
		}
		if err := w.file.SetRowHeight(w.sheet, w.cursor, w.opts.RowHeight); err != nil {
			return apperrors.NewStorageError("failed to set row height", err).
				WithContext("row", w.cursor)
		}

		w.cursor++
		w.written++
	}
	return nil
}

// Trim removes template rows left below the last written row.
func (w *ReportWriter) Trim() (int, error) {
	rows, err := w.file.GetRows(w.sheet)
	if err != nil {
		return 0, apperrors.NewStorageError("failed to read sheet", err).
			WithContext("sheet", w.sheet)
	}

	removed := 0
	for r := len(rows); r >= w.cursor; r-- {
		if err := w.file.RemoveRow(w.sheet, r); err != nil {
			return removed, apperrors.NewStorageError("failed to remove row", err).
				WithContext("row", r)
		}
		removed++
	}

	if removed > 0 {
		w.logger.Debug("Removed trailing template rows",
			slog.Int("removed", removed),
			slog.Int("last_row", w.cursor-1))
	}
	return removed, nil
}

// SaveAs writes the workbook to path, creating its directory if needed.
func (w *ReportWriter) SaveAs(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewStorageError("failed to create output directory", err).
			WithContext("file", path)
	}
	if err := w.file.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save report", err).
			WithContext("file", path)
	}

	w.logger.Info("Report saved",
		slog.String("file", path),
		slog.Int("rows_written", w.written))
	return nil
}

// Close releases the workbook.
func (w *ReportWriter) Close() error {
	return w.file.Close()
}

// Cursor returns the row the next record will be written to.
func (w *ReportWriter) Cursor() int {
	return w.cursor
}

// Written returns the number of rows appended so far.
func (w *ReportWriter) Written() int {
	return w.written
}

// Sheet returns the name of the sheet being written.
func (w *ReportWriter) Sheet() string {
	return w.sheet
}

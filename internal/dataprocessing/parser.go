package dataprocessing

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

// ReadSheet reads the first worksheet of an incident workbook. The first
// non-blank row is the header; every following row becomes a SourceRow keyed
// by header name. Rows that are blank in every cell are skipped.
//
// Numeric cells with a date or time number format are returned as time.Time
// read from the stored serial, never as their display text. Every other cell
// is returned as its formatted text.
func ReadSheet(filePath string) ([]domain.SourceRow, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("file", filePath)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError("workbook has no sheets", nil).
			WithContext("file", filePath)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheetName), err).
			WithContext("file", filePath)
	}

	raw, err := f.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheetName), err).
			WithContext("file", filePath)
	}

	cells := &sheetCells{
		file:      f,
		sheet:     sheetName,
		raw:       raw,
		dateStyle: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		cells.date1904 = *props.Date1904
	}

	return rowsToSourceRows(rows, cells.value, filePath, sheetName), nil
}

// cellValueFunc returns the value of the cell at zero-based row and col whose
// formatted text is text.
type cellValueFunc func(row, col int, text string) any

// sheetCells recovers typed values for date and time cells.
type sheetCells struct {
	file      *excelize.File
	sheet     string
	raw       [][]string
	date1904  bool
	dateStyle map[int]bool
}

func (c *sheetCells) value(row, col int, text string) any {
	if row >= len(c.raw) || col >= len(c.raw[row]) {
		return text
	}
	raw := c.raw[row][col]
	if raw == text {
		return text
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil || serial < 0 || !c.isDateCell(row, col) {
		return text
	}
	t, err := excelize.ExcelDateToTime(serial, c.date1904)
	if err != nil {
		return text
	}
	// serials carry float noise below the second
	return t.Round(time.Second)
}

func (c *sheetCells) isDateCell(row, col int) bool {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return false
	}
	styleID, err := c.file.GetCellStyle(c.sheet, cell)
	if err != nil {
		return false
	}
	if isDate, ok := c.dateStyle[styleID]; ok {
		return isDate
	}
	isDate := false
	if style, err := c.file.GetStyle(styleID); err == nil && style != nil {
		isDate = isDateNumFmt(style.NumFmt, style.CustomNumFmt)
	}
	c.dateStyle[styleID] = isDate
	return isDate
}

// isDateNumFmt reports whether a number format renders a date or a time.
// Built-in ids 14-22 and 45-47 are the date and time formats; a custom code
// is a date format when it has a date or time token outside quoted text,
// escapes and bracketed colors or locales.
func isDateNumFmt(id int, custom *string) bool {
	if custom == nil {
		return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
	}
	code := strings.ToLower(*custom)
	for i := 0; i < len(code); i++ {
		switch ch := code[i]; ch {
		case '"':
			if end := strings.IndexByte(code[i+1:], '"'); end >= 0 {
				i += end + 1
			} else {
				return false
			}
		case '\\', '_', '*':
			i++
		case '[':
			end := strings.IndexByte(code[i:], ']')
			if end < 0 {
				return false
			}
			// elapsed time such as [h]:mm
			if inner := code[i+1 : i+end]; inner == "h" || inner == "hh" || inner == "m" || inner == "mm" || inner == "s" || inner == "ss" {
				return true
			}
			i += end
		case 'd', 'm', 'y', 'h', 's':
			return true
		}
	}
	return false
}

func rowsToSourceRows(rows [][]string, cellValue cellValueFunc, filePath, sheetName string) []domain.SourceRow {
	headerRow := -1
	for i, row := range rows {
		if !isBlankRow(row) {
			headerRow = i
			break
		}
	}
	if headerRow == -1 {
		slog.Warn("Sheet has no header row",
			slog.String("file", filePath),
			slog.String("sheet_name", sheetName))
		return nil
	}

	header := headerIndex(rows[headerRow], filePath)

	slog.Debug("Header detected",
		slog.String("file", filePath),
		slog.String("sheet_name", sheetName),
		slog.Int("row_number", headerRow+1),
		slog.Int("columns", len(header)))

	var out []domain.SourceRow
	skipped := 0
	for i := headerRow + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			skipped++
			continue
		}
		src := make(domain.SourceRow, len(header))
		for name, idx := range header {
			if idx < len(row) {
				src[name] = cellValue(i, idx, row[idx])
			} else {
				src[name] = nil
			}
		}
		out = append(out, src)
	}

	slog.Info("Sheet read",
		slog.String("file", filePath),
		slog.String("sheet_name", sheetName),
		slog.Int("data_rows", len(out)),
		slog.Int("blank_rows_skipped", skipped))

	return out
}

// headerIndex maps trimmed header names to column positions. Unnamed columns
// are ignored and the first occurrence of a duplicated name wins.
func headerIndex(row []string, filePath string) map[string]int {
	header := make(map[string]int, len(row))
	for j, cell := range row {
		name := strings.TrimSpace(cell)
		if name == "" {
			continue
		}
		if _, dup := header[name]; dup {
			slog.Warn("Duplicate column header ignored",
				slog.String("file", filePath),
				slog.String("header", name),
				slog.Int("column_index", j))
			continue
		}
		header[name] = j
	}
	return header
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

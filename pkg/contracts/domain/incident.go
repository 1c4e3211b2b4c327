package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Incident report column names, in report order.
const (
	ColumnStore        = "LOJA"
	ColumnRegion       = "REGIONAL"
	ColumnOpen         = "ABERTURA"
	ColumnClose        = "FECHAMENTO"
	ColumnCause        = "CAUSA"
	ColumnType         = "TIPO"
	ColumnStatus       = "STATUS"
	ColumnLinkUp       = "LINK OPERANDO"
	ColumnDate         = "DATA"
	ColumnStart        = "INICIO"
	ColumnEnd          = "FIM"
	ColumnImpact       = "IMPACTO"
	ColumnAvailability = "DISPONIBILIDADE"
	ColumnResolution   = "SOLUÇÃO"
)

// SourceRow is one data row of an input sheet keyed by its header cell.
// Values are whatever the reader produced: strings, numbers, time.Time,
// time.Duration or nil.
type SourceRow map[string]any

// NullDuration is a time-of-day or elapsed value that may be absent.
type NullDuration struct {
	Duration time.Duration
	Valid    bool
}

// Minutes builds a valid NullDuration from a minute count.
func Minutes(m int) NullDuration {
	return NullDuration{Duration: time.Duration(m) * time.Minute, Valid: true}
}

// Interval is the result of clipping an incident window to a business window.
type Interval struct {
	Impact       time.Duration
	Availability time.Duration
	// Irregular is set when the incident ends before it starts. Impact and
	// Availability are meaningless in that case.
	Irregular bool
}

// BusinessHoursOverride pins the business window of one store.
type BusinessHoursOverride struct {
	Store string `yaml:"store"`
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// ReportRules is the fixed rule set a merge run reconciles against.
type ReportRules struct {
	// Schema is the ordered list of output columns.
	Schema []string
	// IgnoredColumns are removed from every source row before mapping.
	IgnoredColumns []string
	Overrides      []BusinessHoursOverride

	StoreColumn        string
	OpenColumn         string
	CloseColumn        string
	StartColumn        string
	EndColumn          string
	ImpactColumn       string
	AvailabilityColumn string
}

// SignificantColumns returns the schema minus the computed duration columns.
func (r ReportRules) SignificantColumns() []string {
	cols := make([]string, 0, len(r.Schema))
	for _, c := range r.Schema {
		if c == r.ImpactColumn || c == r.AvailabilityColumn {
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// IncidentRecord is a source row reconciled onto a fixed schema.
type IncidentRecord struct {
	columns []string
	values  map[string]any
}

// NewIncidentRecord returns an all-empty record over the given columns.
func NewIncidentRecord(columns []string) IncidentRecord {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return IncidentRecord{columns: cols, values: make(map[string]any, len(cols))}
}

// Columns returns the record's column order.
func (r IncidentRecord) Columns() []string {
	return r.columns
}

// Get returns the value stored under column, or nil.
func (r IncidentRecord) Get(column string) any {
	return r.values[column]
}

// Set stores a value. Columns outside the schema are ignored.
func (r IncidentRecord) Set(column string, value any) {
	for _, c := range r.columns {
		if c == column {
			r.values[column] = value
			return
		}
	}
}

// Text renders the value of column as trimmed text. Absent values, NaN and
// zero times render as "".
func (r IncidentRecord) Text(column string) string {
	return CellText(r.values[column])
}

// Values returns the record's values in column order.
func (r IncidentRecord) Values() []any {
	out := make([]any, len(r.columns))
	for i, c := range r.columns {
		out[i] = r.values[c]
	}
	return out
}

// Strings returns the record rendered as text in column order.
func (r IncidentRecord) Strings() []string {
	out := make([]string, len(r.columns))
	for i, c := range r.columns {
		out[i] = r.Text(c)
	}
	return out
}

// TimeKind tells how a time.Time cell value is meant to be read.
type TimeKind int

const (
	// TimeOfDay values sit on the spreadsheet epoch (before 1900) and only
	// carry a clock time.
	TimeOfDay TimeKind = iota
	// CalendarDate values carry a date at midnight.
	CalendarDate
	// DateTime values carry both a date and a clock time.
	DateTime
)

// Day-first layouts used to render time.Time cell values.
const (
	ClockLayout    = "15:04"
	DateLayout     = "02/01/2006"
	DateTimeLayout = "02/01/2006 15:04"
)

// KindOf classifies a time.Time cell value.
func KindOf(t time.Time) TimeKind {
	if t.Year() < 1900 {
		return TimeOfDay
	}
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return CalendarDate
	}
	return DateTime
}

// CellText renders a cell value as trimmed text. Times render day first.
func CellText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		if math.IsNaN(val) {
			return ""
		}
	case time.Time:
		if val.IsZero() {
			return ""
		}
		switch KindOf(val) {
		case TimeOfDay:
			return val.Format(ClockLayout)
		case CalendarDate:
			return val.Format(DateLayout)
		}
		return val.Format(DateTimeLayout)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

package dataprocessing

import (
	"strings"

	"incidentcli/pkg/contracts/domain"
)

// Reconciler maps arbitrary source rows onto the report schema.
type Reconciler struct {
	rules domain.ReportRules
}

// NewReconciler creates a reconciler bound to a fixed rule set.
func NewReconciler(rules domain.ReportRules) *Reconciler {
	return &Reconciler{rules: rules}
}

// Rules returns the rule set the reconciler was built with.
func (r *Reconciler) Rules() domain.ReportRules {
	return r.rules
}

// Reconcile copies every schema column present in row into a new record,
// leaving the rest empty, then applies the business-hours overrides.
// Ignored columns never reach the record even if they are also in the schema.
func (r *Reconciler) Reconcile(row domain.SourceRow) domain.IncidentRecord {
	row = DropIgnoredColumns(row, r.rules.IgnoredColumns)

	rec := domain.NewIncidentRecord(r.rules.Schema)
	for _, col := range r.rules.Schema {
		if v, ok := row[col]; ok {
			rec.Set(col, v)
		}
	}

	r.applyOverrides(rec)
	return rec
}

func (r *Reconciler) applyOverrides(rec domain.IncidentRecord) {
	store := rec.Text(r.rules.StoreColumn)
	if store == "" {
		return
	}
	for _, o := range r.rules.Overrides {
		if store == o.Store {
			rec.Set(r.rules.OpenColumn, o.Open)
			rec.Set(r.rules.CloseColumn, o.Close)
			return
		}
	}
}

// DropIgnoredColumns returns row without the named columns. Header names are
// compared after trimming surrounding whitespace. The input is not modified.
func DropIgnoredColumns(row domain.SourceRow, ignored []string) domain.SourceRow {
	if len(ignored) == 0 {
		return row
	}
	out := make(domain.SourceRow, len(row))
	for k, v := range row {
		if isIgnored(k, ignored) {
			continue
		}
		out[k] = v
	}
	return out
}

func isIgnored(column string, ignored []string) bool {
	name := strings.TrimSpace(column)
	for _, ig := range ignored {
		if name == ig {
			return true
		}
	}
	return false
}

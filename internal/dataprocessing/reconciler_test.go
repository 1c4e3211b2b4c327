package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/config"
	"incidentcli/pkg/contracts/domain"
)

func fullRow() domain.SourceRow {
	return domain.SourceRow{
		domain.ColumnStore:        "Loja Centro",
		domain.ColumnRegion:       "Sul",
		domain.ColumnOpen:         "08:00",
		domain.ColumnClose:        "18:00",
		domain.ColumnCause:        "Operadora",
		domain.ColumnType:         "Link",
		domain.ColumnStatus:       "Fechado",
		domain.ColumnLinkUp:       "SIM",
		domain.ColumnDate:         "2024-03-05",
		domain.ColumnStart:        "09:00",
		domain.ColumnEnd:          "10:00",
		domain.ColumnImpact:       "01:00",
		domain.ColumnAvailability: "09:00",
		domain.ColumnResolution:   "Normalizado",
	}
}

func TestReconcileMatchingRow(t *testing.T) {
	r := NewReconciler(config.DefaultReportRules())
	row := fullRow()

	rec := r.Reconcile(row)
	require.Equal(t, config.ReportSchema, rec.Columns())
	for i, col := range config.ReportSchema {
		assert.Equal(t, row[col], rec.Values()[i], col)
	}

	// Reconciling the result again changes nothing.
	again := domain.SourceRow{}
	for _, col := range rec.Columns() {
		again[col] = rec.Get(col)
	}
	assert.Equal(t, rec.Values(), r.Reconcile(again).Values())
}

func TestReconcileReordersAndRestricts(t *testing.T) {
	r := NewReconciler(config.DefaultReportRules())
	row := domain.SourceRow{
		domain.ColumnResolution: "Troca",
		"Observação":            "extra column",
		domain.ColumnStore:      "Loja 9",
	}

	rec := r.Reconcile(row)
	assert.Equal(t, "Loja 9", rec.Strings()[0])
	assert.Equal(t, "Troca", rec.Strings()[len(config.ReportSchema)-1])
	assert.NotContains(t, rec.Strings(), "extra column")
	assert.Nil(t, rec.Get("Observação"))
}

func TestReconcileNoMatchingFields(t *testing.T) {
	r := NewReconciler(config.DefaultReportRules())

	rec := r.Reconcile(domain.SourceRow{"foo": "bar", "baz": 1})
	for _, col := range config.ReportSchema {
		assert.Nil(t, rec.Get(col), col)
	}

	empty := r.Reconcile(nil)
	assert.Len(t, empty.Values(), len(config.ReportSchema))
}

func TestReconcileDropsTitleColumn(t *testing.T) {
	rules := config.DefaultReportRules()
	// Even a schema column is dropped when it is also ignored.
	rules.Schema = append(rules.Schema, config.IgnoredTitleColumn)
	r := NewReconciler(rules)

	for _, header := range []string{"Titulo", " Titulo "} {
		row := fullRow()
		row[header] = "Queda de link"

		rec := r.Reconcile(row)
		assert.Nil(t, rec.Get(config.IgnoredTitleColumn), header)
		assert.Equal(t, "Loja Centro", rec.Text(domain.ColumnStore))
	}
}

func TestReconcileHeadOfficeOverride(t *testing.T) {
	r := NewReconciler(config.DefaultReportRules())

	tests := []struct {
		name string
		row  domain.SourceRow
	}{
		{
			name: "hours replaced",
			row: domain.SourceRow{
				domain.ColumnStore: "MATRIZ TI - Cuiabá",
				domain.ColumnOpen:  "08:00",
				domain.ColumnClose: "17:00",
			},
		},
		{
			name: "hours missing",
			row:  domain.SourceRow{domain.ColumnStore: "MATRIZ TI - Cuiabá"},
		},
		{
			name: "surrounding whitespace",
			row: domain.SourceRow{
				domain.ColumnStore: "  MATRIZ TI - Cuiabá ",
				domain.ColumnOpen:  0.25,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := r.Reconcile(tt.row)
			assert.Equal(t, "06:00", rec.Get(domain.ColumnOpen))
			assert.Equal(t, "22:00", rec.Get(domain.ColumnClose))
		})
	}

	other := r.Reconcile(domain.SourceRow{
		domain.ColumnStore: "MATRIZ TI - Cuiaba",
		domain.ColumnOpen:  "08:00",
	})
	assert.Equal(t, "08:00", other.Get(domain.ColumnOpen))
	assert.Nil(t, other.Get(domain.ColumnClose))
}

func TestDropIgnoredColumns(t *testing.T) {
	row := domain.SourceRow{"Titulo": "x", "LOJA": "Loja 1", "Titulo ": "y"}

	out := DropIgnoredColumns(row, []string{"Titulo"})
	assert.Equal(t, domain.SourceRow{"LOJA": "Loja 1"}, out)
	assert.Len(t, row, 3, "input must not be modified")

	assert.Equal(t, row, DropIgnoredColumns(row, nil))
}

package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"incidentcli/internal/config"
	"incidentcli/pkg/contracts/domain"
)

func record(values map[string]any) domain.IncidentRecord {
	rec := domain.NewIncidentRecord(config.ReportSchema)
	for k, v := range values {
		rec.Set(k, v)
	}
	return rec
}

func TestFilterEmpty(t *testing.T) {
	significant := config.DefaultReportRules().SignificantColumns()

	onlyComputed := record(map[string]any{
		domain.ColumnImpact:       "01:00",
		domain.ColumnAvailability: "09:00",
	})
	blank := record(map[string]any{
		domain.ColumnStore:  "   ",
		domain.ColumnRegion: "",
		domain.ColumnDate:   nil,
	})
	oneField := record(map[string]any{domain.ColumnResolution: "Normalizado"})
	first := record(map[string]any{domain.ColumnStore: "Loja 1"})
	last := record(map[string]any{domain.ColumnStore: "Loja 2"})

	kept := FilterEmpty([]domain.IncidentRecord{first, onlyComputed, oneField, blank, last}, significant)

	assert.Len(t, kept, 3)
	assert.Equal(t, "Loja 1", kept[0].Text(domain.ColumnStore))
	assert.Equal(t, "Normalizado", kept[1].Text(domain.ColumnResolution))
	assert.Equal(t, "Loja 2", kept[2].Text(domain.ColumnStore))
}

func TestFilterEmptyNoRecords(t *testing.T) {
	assert.Empty(t, FilterEmpty(nil, config.ReportSchema))
}

func TestIsEmptyRecord(t *testing.T) {
	significant := config.DefaultReportRules().SignificantColumns()
	assert.NotContains(t, significant, domain.ColumnImpact)
	assert.NotContains(t, significant, domain.ColumnAvailability)

	tests := []struct {
		name   string
		values map[string]any
		want   bool
	}{
		{"all absent", nil, true},
		{"computed only", map[string]any{domain.ColumnImpact: "02:00"}, true},
		{"whitespace only", map[string]any{domain.ColumnCause: " \t"}, true},
		{"numeric field", map[string]any{domain.ColumnLinkUp: 0.0}, false},
		{"text field", map[string]any{domain.ColumnStatus: "Aberto"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsEmptyRecord(record(tt.values), significant))
		})
	}
}

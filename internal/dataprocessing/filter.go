package dataprocessing

import (
	"incidentcli/pkg/contracts/domain"
)

// FilterEmpty drops records whose significant columns are all blank after
// trimming. Surviving records keep their order.
func FilterEmpty(records []domain.IncidentRecord, significant []string) []domain.IncidentRecord {
	kept := make([]domain.IncidentRecord, 0, len(records))
	for _, rec := range records {
		if IsEmptyRecord(rec, significant) {
			continue
		}
		kept = append(kept, rec)
	}
	return kept
}

// IsEmptyRecord reports whether every listed column of rec is blank.
func IsEmptyRecord(rec domain.IncidentRecord, columns []string) bool {
	for _, col := range columns {
		if rec.Text(col) != "" {
			return false
		}
	}
	return true
}

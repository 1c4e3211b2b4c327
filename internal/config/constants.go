package config

import (
	"incidentcli/pkg/contracts"
	"incidentcli/pkg/contracts/domain"
)

// Application constants
const (
	// Application Info
	AppName    = "incident-report-merger"
	AppVersion = contracts.Version

	// File Paths (relative to the working directory)
	DefaultInputDir     = "dados_xlsx"
	DefaultTemplateFile = "modelo_incidentes_formatados.xlsx"
	DefaultOutputFile   = "Incidentes_Formatados_Final.xlsx"

	// Report layout
	DefaultHeaderRow = 1
	DefaultStartRow  = 2
	DefaultRowHeight = 75.0
	DefaultFontName  = "Calibri"
	DefaultFontSize  = 11.0

	// Report rules
	IgnoredTitleColumn = "Titulo"
	HeadOfficeStore    = "MATRIZ TI - Cuiabá"
	HeadOfficeOpens    = "06:00"
	HeadOfficeCloses   = "22:00"
)

// ReportSchema is the ordered list of columns of the merged report.
var ReportSchema = []string{
	domain.ColumnStore,
	domain.ColumnRegion,
	domain.ColumnOpen,
	domain.ColumnClose,
	domain.ColumnCause,
	domain.ColumnType,
	domain.ColumnStatus,
	domain.ColumnLinkUp,
	domain.ColumnDate,
	domain.ColumnStart,
	domain.ColumnEnd,
	domain.ColumnImpact,
	domain.ColumnAvailability,
	domain.ColumnResolution,
}

// DefaultReportRules returns the rule set every merge run applies. Each call
// returns a fresh copy.
func DefaultReportRules() domain.ReportRules {
	schema := make([]string, len(ReportSchema))
	copy(schema, ReportSchema)

	return domain.ReportRules{
		Schema:         schema,
		IgnoredColumns: []string{IgnoredTitleColumn},
		Overrides: []domain.BusinessHoursOverride{
			{Store: HeadOfficeStore, Open: HeadOfficeOpens, Close: HeadOfficeCloses},
		},
		StoreColumn:        domain.ColumnStore,
		OpenColumn:         domain.ColumnOpen,
		CloseColumn:        domain.ColumnClose,
		StartColumn:        domain.ColumnStart,
		EndColumn:          domain.ColumnEnd,
		ImpactColumn:       domain.ColumnImpact,
		AvailabilityColumn: domain.ColumnAvailability,
	}
}

package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"incidentcli/internal/config"
	apperrors "incidentcli/internal/errors"
	"incidentcli/internal/infrastructure"
	"incidentcli/internal/shared/testutil"
	"incidentcli/pkg/contracts/domain"
)

// setupRun lays out a template and two input batches under a temp dir and
// returns a configuration pointing at them.
func setupRun(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	inDir := filepath.Join(dir, "dados_xlsx")
	require.NoError(t, os.MkdirAll(inDir, 0755))

	template := [][]string{config.ReportSchema}
	for i := 0; i < 5; i++ {
		template = append(template, []string{"modelo"})
	}
	testutil.WriteWorkbook(t, filepath.Join(dir, "modelo.xlsx"), template)

	testutil.WriteWorkbook(t, filepath.Join(inDir, "a_cuiaba.xlsx"), [][]string{
		{"LOJA", "REGIONAL", "ABERTURA", "FECHAMENTO", "Titulo", "INICIO", "FIM", "SOLUÇÃO"},
		{"MATRIZ TI - Cuiabá", "Centro-Oeste", "08:00", "18:00", "Queda de link", "08:00", "10:00", "Reiniciado"},
		{"Loja 2", "Norte", "08:00", "18:00", "Sem energia", "11:00", "09:00", "Aguardando"},
	})
	testutil.WriteWorkbook(t, filepath.Join(inDir, "b_geral.xlsx"), [][]string{
		{"LOJA", "REGIONAL", "ABERTURA", "FECHAMENTO", "CAUSA", "INICIO", "FIM", "IMPACTO", "DISPONIBILIDADE"},
		{"Loja 3", "Sul", "08:00", "18:00", "Operadora", "07:00", "09:00", "", ""},
		{"", "", "", "", "", "", "", "05:00", "01:00"},
	})
	// Lock files are never read.
	require.NoError(t, os.WriteFile(filepath.Join(inDir, "~$a_cuiaba.xlsx"), []byte("lock"), 0644))

	cfg := config.Default()
	cfg.Report.InputDir = inDir
	cfg.Report.TemplatePath = filepath.Join(dir, "modelo.xlsx")
	cfg.Report.OutputPath = filepath.Join(dir, "out", "Incidentes_Formatados_Final.xlsx")
	cfg.Report.CSVPath = filepath.Join(dir, "out", "incidentes.csv")
	cfg.Telemetry.MetricsFile = filepath.Join(dir, "metrics", "incidentmerge.prom")
	return cfg
}

func TestRunEndToEnd(t *testing.T) {
	cfg := setupRun(t)
	logger, logs := testutil.NewTestLogger(t)

	tel, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	require.NoError(t, err)

	ctx := infrastructure.EnsureTraceID(context.Background())
	summary, err := run(ctx, cfg, tel, logger)
	require.NoError(t, err)
	require.NoError(t, tel.Shutdown(context.Background()))

	assert.Equal(t, 2, summary.Files)
	assert.Equal(t, 4, summary.RowsRead)
	assert.Equal(t, 3, summary.RowsWritten)
	assert.Equal(t, 1, summary.RowsDropped)
	assert.Equal(t, 1, summary.IrregularRows)
	assert.Equal(t, 1, summary.OverriddenRows)
	assert.Equal(t, 2, summary.TrimmedRows)

	testutil.AssertNoErrors(t, logs)
	testutil.AssertLogContains(t, logs, slog.LevelWarn, "Irregular incident window")
	testutil.AssertLogContains(t, logs, slog.LevelInfo, "Merge complete")

	rows := testutil.ReadWorkbook(t, summary.OutputFile, testutil.DefaultSheet)
	require.Len(t, rows, 4)
	assert.Equal(t, config.ReportSchema, rows[0])

	col := func(row []string, name string) string {
		for i, c := range config.ReportSchema {
			if c == name && i < len(row) {
				return row[i]
			}
		}
		return ""
	}

	matriz := rows[1]
	assert.Equal(t, "MATRIZ TI - Cuiabá", col(matriz, domain.ColumnStore))
	assert.Equal(t, "06:00", col(matriz, domain.ColumnOpen))
	assert.Equal(t, "22:00", col(matriz, domain.ColumnClose))
	assert.Equal(t, "02:00", col(matriz, domain.ColumnImpact))
	assert.Equal(t, "14:00", col(matriz, domain.ColumnAvailability))
	assert.Equal(t, "Reiniciado", col(matriz, domain.ColumnResolution))
	assert.NotContains(t, matriz, "Queda de link")

	irregular := rows[2]
	assert.Equal(t, "Loja 2", col(irregular, domain.ColumnStore))
	assert.Equal(t, "", col(irregular, domain.ColumnImpact))
	assert.Equal(t, "", col(irregular, domain.ColumnAvailability))

	third := rows[3]
	assert.Equal(t, "Loja 3", col(third, domain.ColumnStore))
	assert.Equal(t, "01:00", col(third, domain.ColumnImpact))
	assert.Equal(t, "09:00", col(third, domain.ColumnAvailability))

	csvData, err := os.ReadFile(summary.CSVFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(csvData)), "\n")
	assert.Len(t, lines, 4)
	assert.Contains(t, lines[1], "MATRIZ TI - Cuiabá")

	metrics, err := os.ReadFile(cfg.Telemetry.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "incident_rows_read_total")
}

func TestRunMissingTemplate(t *testing.T) {
	cfg := setupRun(t)
	cfg.Report.TemplatePath = filepath.Join(t.TempDir(), "missing.xlsx")

	_, err := run(context.Background(), cfg, nil, slog.Default())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeNotFound))

	_, statErr := os.Stat(cfg.Report.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunUnreadableInput(t *testing.T) {
	cfg := setupRun(t)
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Report.InputDir, "c_broken.xlsx"), []byte("not a zip"), 0644))

	_, err := run(context.Background(), cfg, nil, slog.Default())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing))

	_, statErr := os.Stat(cfg.Report.OutputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunEmptyInputDirectory(t *testing.T) {
	cfg := setupRun(t)
	empty := t.TempDir()
	cfg.Report.InputDir = empty
	cfg.Report.CSVPath = ""

	summary, err := run(context.Background(), cfg, nil, slog.Default())
	require.NoError(t, err)
	assert.Zero(t, summary.Files)
	assert.Zero(t, summary.RowsWritten)

	rows := testutil.ReadWorkbook(t, summary.OutputFile, testutil.DefaultSheet)
	assert.Len(t, rows, 1)
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	applyFlags(cfg, "in", "tpl.xlsx", "out.xlsx", "out.csv", "m.prom", "t.json")

	assert.Equal(t, "in", cfg.Report.InputDir)
	assert.Equal(t, "tpl.xlsx", cfg.Report.TemplatePath)
	assert.Equal(t, "out.xlsx", cfg.Report.OutputPath)
	assert.Equal(t, "out.csv", cfg.Report.CSVPath)
	assert.Equal(t, "m.prom", cfg.Telemetry.MetricsFile)
	assert.Equal(t, "t.json", cfg.Telemetry.TraceFile)

	cfg = config.Default()
	applyFlags(cfg, "", "", "", "", "", "")
	assert.Equal(t, config.Default(), cfg)
}

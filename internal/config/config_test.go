package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "incidentcli/internal/errors"
	"incidentcli/pkg/contracts/domain"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		yaml        string
		wantErr     bool
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults with no file and no env",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, DefaultInputDir, cfg.Report.InputDir)
				assert.Equal(t, DefaultTemplateFile, cfg.Report.TemplatePath)
				assert.Equal(t, DefaultOutputFile, cfg.Report.OutputPath)
				assert.Equal(t, 1, cfg.Report.HeaderRow)
				assert.Equal(t, 2, cfg.Report.StartRow)
				assert.Equal(t, 75.0, cfg.Report.RowHeight)
				assert.Equal(t, "Calibri", cfg.Report.FontName)
				assert.Equal(t, AppName, cfg.Telemetry.ServiceName)
			},
		},
		{
			name: "yaml file overrides defaults",
			yaml: "report:\n  input_dir: batches\n  start_row: 4\n  header_row: 3\nlogging:\n  level: debug\n",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "batches", cfg.Report.InputDir)
				assert.Equal(t, 4, cfg.Report.StartRow)
				assert.Equal(t, 3, cfg.Report.HeaderRow)
				assert.Equal(t, "debug", cfg.Logging.Level)
				// untouched keys keep defaults
				assert.Equal(t, DefaultOutputFile, cfg.Report.OutputPath)
			},
		},
		{
			name: "env overrides yaml",
			yaml: "report:\n  input_dir: batches\n",
			env: map[string]string{
				"INCIDENT_REPORT_INPUT_DIR": "from-env",
				"INCIDENT_LOGGING_LEVEL":    "WARN",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "from-env", cfg.Report.InputDir)
				assert.Equal(t, "warn", cfg.Logging.Level)
			},
		},
		{
			name:    "invalid log level is rejected",
			env:     map[string]string{"INCIDENT_LOGGING_LEVEL": "verbose"},
			wantErr: true,
		},
		{
			name:    "start row must be below header row",
			yaml:    "report:\n  header_row: 2\n  start_row: 2\n",
			wantErr: true,
		},
		{
			name:    "file output requires a file path",
			yaml:    "logging:\n  output: file\n  file_path: \"\"\n",
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			yaml:    "report: [unclosed",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// run from an empty directory so no stray .env is picked up
			t.Chdir(t.TempDir())
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			configFile := ""
			if tt.yaml != "" {
				configFile = filepath.Join(t.TempDir(), "config.yaml")
				require.NoError(t, os.WriteFile(configFile, []byte(tt.yaml), 0644))
			}

			cfg, err := Load(configFile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"),
		[]byte("INCIDENT_REPORT_OUTPUT_PATH=out/final.xlsx\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("INCIDENT_REPORT_OUTPUT_PATH") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "out/final.xlsx", cfg.Report.OutputPath)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeConfig))
}

func TestDefaultReportRules(t *testing.T) {
	rules := DefaultReportRules()

	assert.Equal(t, []string{
		"LOJA", "REGIONAL", "ABERTURA", "FECHAMENTO", "CAUSA", "TIPO", "STATUS",
		"LINK OPERANDO", "DATA", "INICIO", "FIM", "IMPACTO", "DISPONIBILIDADE", "SOLUÇÃO",
	}, rules.Schema)
	assert.Equal(t, []string{"Titulo"}, rules.IgnoredColumns)
	require.Len(t, rules.Overrides, 1)
	assert.Equal(t, domain.BusinessHoursOverride{Store: "MATRIZ TI - Cuiabá", Open: "06:00", Close: "22:00"}, rules.Overrides[0])

	significant := rules.SignificantColumns()
	assert.Len(t, significant, 12)
	assert.NotContains(t, significant, domain.ColumnImpact)
	assert.NotContains(t, significant, domain.ColumnAvailability)

	t.Run("each call returns an independent copy", func(t *testing.T) {
		a := DefaultReportRules()
		a.Schema[0] = "MUTATED"
		assert.Equal(t, domain.ColumnStore, DefaultReportRules().Schema[0])
		assert.Equal(t, domain.ColumnStore, ReportSchema[0])
	})
}

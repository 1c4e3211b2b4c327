package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file system location a merge run touches.
// Relative configuration values are resolved against BaseDir.
type Paths struct {
	BaseDir      string
	InputDir     string
	TemplateFile string
	OutputFile   string
	CSVFile      string
}

// GetPaths resolves the report locations of cfg against the current working
// directory.
func GetPaths(cfg ReportConfig) (*Paths, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return ResolvePaths(wd, cfg), nil
}

// ResolvePaths resolves the report locations of cfg against baseDir.
func ResolvePaths(baseDir string, cfg ReportConfig) *Paths {
	p := &Paths{
		BaseDir:      baseDir,
		InputDir:     resolve(baseDir, cfg.InputDir),
		TemplateFile: resolve(baseDir, cfg.TemplatePath),
		OutputFile:   resolve(baseDir, cfg.OutputPath),
	}
	if cfg.CSVPath != "" {
		p.CSVFile = resolve(baseDir, cfg.CSVPath)
	}
	return p
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// EnsureDirectories creates the directories output files are written to.
func (p *Paths) EnsureDirectories() error {
	directories := []string{filepath.Dir(p.OutputFile)}
	if p.CSVFile != "" {
		directories = append(directories, filepath.Dir(p.CSVFile))
	}

	logger := slog.Default()
	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists",
			slog.String("directory", dir))
	}
	return nil
}

// LogPathResolution logs every resolved path at debug level.
func (p *Paths) LogPathResolution() {
	slog.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("input_dir", p.InputDir),
		slog.String("template_file", p.TemplateFile),
		slog.String("output_file", p.OutputFile),
		slog.String("csv_file", p.CSVFile))
}

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains every file location used by a pipeline run.
// This is the single source of truth for file paths in the application.
type Paths struct {
	DataDir   string
	OutputDir string
	LogsDir   string

	// Acquisition output, scoring input
	HSIFile        string
	VHSIFile       string
	SouthboundFile string
	AHPremiumFile  string
	ValuationFile  string

	// Scoring output, visualization input
	IndexCSV      string
	ComponentsCSV string
	Workbook      string

	// Visualization output
	ChartFile string
}

// ResolvePaths derives every file location from the configured directories
func (c *Config) ResolvePaths() *Paths {
	return NewPaths(c.Paths, c.Chart.FileName)
}

// NewPaths lays out the data and output files under the given directories
func NewPaths(dirs PathsConfig, chartFile string) *Paths {
	if chartFile == "" {
		chartFile = ChartFileName
	}
	return &Paths{
		DataDir:   dirs.DataDir,
		OutputDir: dirs.OutputDir,
		LogsDir:   dirs.LogsDir,

		HSIFile:        filepath.Join(dirs.DataDir, HSIFileName),
		VHSIFile:       filepath.Join(dirs.DataDir, VHSIFileName),
		SouthboundFile: filepath.Join(dirs.DataDir, SouthboundFileName),
		AHPremiumFile:  filepath.Join(dirs.DataDir, AHPremiumFileName),
		ValuationFile:  filepath.Join(dirs.DataDir, ValuationFileName),

		IndexCSV:      filepath.Join(dirs.OutputDir, IndexFileName),
		ComponentsCSV: filepath.Join(dirs.OutputDir, ComponentsFileName),
		Workbook:      filepath.Join(dirs.OutputDir, WorkbookFileName),

		ChartFile: filepath.Join(dirs.OutputDir, chartFile),
	}
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	logger := slog.Default()

	for _, dir := range []string{p.DataDir, p.OutputDir, p.LogsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// DataFile returns the path of a file in the data directory
func (p *Paths) DataFile(name string) string {
	return filepath.Join(p.DataDir, name)
}

// LogPathResolution logs the resolved locations for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Debug("Path resolution summary",
		slog.Group("directories",
			slog.String("data", p.DataDir),
			slog.String("output", p.OutputDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("output_files",
			slog.String("index_csv", p.IndexCSV),
			slog.String("components_csv", p.ComponentsCSV),
			slog.String("workbook", p.Workbook),
			slog.String("chart", p.ChartFile),
		))
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

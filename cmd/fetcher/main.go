package main

import (
	"flag"
	"fmt"
	"os"

	"hkpulse/internal/app"
	"hkpulse/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to PULSE_CONFIG_FILE or ./config.yaml)")
	dataDir := flag.String("data-dir", "", "directory the series CSV files are written to")
	logLevel := flag.String("log-level", "", "debug | info | warn | error")
	quiet := flag.Bool("quiet", false, "hide the progress bar")
	flag.Parse()

	opts := app.Options{
		ConfigFile: *configFile,
		DataDir:    *dataDir,
		LogLevel:   *logLevel,
		Progress:   os.Stderr,
	}
	if *quiet {
		opts.Progress = nil
	}

	application, err := app.NewApplication(opts)
	if err != nil {
		app.Exit(nil, err)
	}

	state, err := application.Run(application.AcquisitionStep())
	if err != nil {
		_ = application.Close()
		app.Exit(application.Logger, err)
	}

	if report, err := operations.FetchReport(state); err == nil {
		for _, res := range report.Results {
			if res.Err != nil {
				fmt.Printf("✗ %-14s %v\n", res.Series, res.Err)
				continue
			}
			fmt.Printf("✓ %-14s %d rows -> %s (%d backups kept)\n", res.Series, res.Rows, res.Path, res.Backups)
		}
	}
	_ = application.Close()
}

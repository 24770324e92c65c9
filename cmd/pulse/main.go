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
	dataDir := flag.String("data-dir", "", "directory for the acquired series")
	outputDir := flag.String("output-dir", "", "directory for the index files and chart")
	start := flag.String("start", "", "first date to plot, YYYY-MM-DD (default from config)")
	logLevel := flag.String("log-level", "", "debug | info | warn | error")
	skipFetch := flag.Bool("skip-fetch", false, "score the files already in the data directory")
	skipChart := flag.Bool("skip-chart", false, "do not render the chart")
	flag.Parse()

	application, err := app.NewApplication(app.Options{
		ConfigFile: *configFile,
		DataDir:    *dataDir,
		OutputDir:  *outputDir,
		StartDate:  *start,
		LogLevel:   *logLevel,
		Progress:   os.Stderr,
	})
	if err != nil {
		app.Exit(nil, err)
	}

	var steps []operations.Step
	if !*skipFetch {
		steps = append(steps, application.AcquisitionStep())
	}
	steps = append(steps, application.ScoringStep())
	if !*skipChart {
		chartStep, err := application.ChartStep()
		if err != nil {
			_ = application.Close()
			app.Exit(application.Logger, err)
		}
		steps = append(steps, chartStep)
	}

	state, err := application.Run(steps...)
	if err != nil {
		_ = application.Close()
		app.Exit(application.Logger, err)
	}

	if report, err := operations.ScoringReport(state); err == nil && report.HasLatest {
		fmt.Print(report.Latest.String())
	}
	if report, err := operations.ChartReport(state); err == nil {
		fmt.Printf("Vector chart (PDF) saved to %s\n", report.Path)
	}
	_ = application.Close()
}

package main

import (
	"flag"
	"fmt"

	"hkpulse/internal/app"
	"hkpulse/internal/config"
	"hkpulse/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to PULSE_CONFIG_FILE or ./config.yaml)")
	outputDir := flag.String("output-dir", "", "directory holding the index CSV and receiving the chart")
	start := flag.String("start", "", "first date to plot, YYYY-MM-DD (default from config)")
	logLevel := flag.String("log-level", "", "debug | info | warn | error")
	flag.Parse()

	application, err := app.NewApplication(app.Options{
		ConfigFile: *configFile,
		OutputDir:  *outputDir,
		StartDate:  *start,
		LogLevel:   *logLevel,
	})
	if err != nil {
		app.Exit(nil, err)
	}

	step, err := application.ChartStep()
	if err != nil {
		_ = application.Close()
		app.Exit(application.Logger, err)
	}

	state, err := application.Run(step)
	if err != nil {
		_ = application.Close()
		app.Exit(application.Logger, err)
	}

	if report, err := operations.ChartReport(state); err == nil {
		fmt.Printf("Vector chart (PDF) of %d days (%s to %s) saved to %s\n", report.Points,
			report.From.Format(config.DateLayout), report.To.Format(config.DateLayout), report.Path)
	}
	_ = application.Close()
}

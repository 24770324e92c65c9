package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"hkpulse/internal/app"
	"hkpulse/internal/operations"
)

func main() {
	configFile := flag.String("config", "", "path to config.yaml (defaults to PULSE_CONFIG_FILE or ./config.yaml)")
	dataDir := flag.String("data-dir", "", "directory holding the acquired series")
	outputDir := flag.String("output-dir", "", "directory the index files are written to")
	logLevel := flag.String("log-level", "", "debug | info | warn | error")
	asJSON := flag.Bool("json", false, "print the latest reading as JSON")
	flag.Parse()

	application, err := app.NewApplication(app.Options{
		ConfigFile: *configFile,
		DataDir:    *dataDir,
		OutputDir:  *outputDir,
		LogLevel:   *logLevel,
	})
	if err != nil {
		app.Exit(nil, err)
	}

	state, err := application.Run(application.ScoringStep())
	if err != nil {
		_ = application.Close()
		app.Exit(application.Logger, err)
	}

	report, err := operations.ScoringReport(state)
	if err == nil {
		switch {
		case !report.HasLatest:
			fmt.Println("Not enough history for a composite reading yet")
		case *asJSON:
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			_ = enc.Encode(report.Latest)
		default:
			fmt.Print(report.Latest.String())
		}
		fmt.Printf("Index written to %s\n", report.IndexCSV)
	}
	_ = application.Close()
}

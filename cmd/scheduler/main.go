// Command scheduler merges a date sheet and a roll list into a
// per-student exam schedule spreadsheet, without the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"examsched/internal/config"
	"examsched/internal/exporter"
	"examsched/internal/infrastructure"
	"examsched/internal/services"
)

func main() {
	dateSheetPath := flag.String("datesheet", "", "path to the date sheet PDF (required)")
	rollListPath := flag.String("rolllist", "", "path to the roll list PDF (required)")
	outPath := flag.String("out", "exam_schedule.xlsx", "output xlsx path")
	csvPath := flag.String("csv", "", "also write the schedule as CSV to this path")
	forceText := flag.Bool("force-text", false, "skip the tabular roll-list strategy")
	logLevel := flag.String("log-level", "warn", "log level (debug, info, warn, error)")
	flag.Parse()

	if *dateSheetPath == "" || *rollListPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := infrastructure.InitializeLogger(config.LoggingConfig{
		Level:  *logLevel,
		Format: "text",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := run(logger, *dateSheetPath, *rollListPath, *outPath, *csvPath, *forceText); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, dateSheetPath, rollListPath, outPath, csvPath string, forceText bool) error {
	svc := services.NewScheduleService(config.DefaultParsing(), logger)

	result, err := svc.GenerateFromFiles(context.Background(), dateSheetPath, rollListPath, forceText)
	if err != nil {
		return err
	}

	fmt.Printf("Date sheet entries: %d\n", result.EntryCount)
	fmt.Printf("Students found:     %d (strategy: %s)\n", result.StudentCount, result.RollListStrategy)
	fmt.Printf("Schedule rows:      %d (%d not in date sheet)\n", result.RowCount, result.MissingCount)

	for _, warning := range result.Warnings {
		fmt.Printf("warning: %s\n", warning)
	}

	if result.Empty() {
		if result.DateSheetPreview != "" {
			fmt.Printf("\n--- date sheet raw text ---\n%s\n", result.DateSheetPreview)
		}
		if result.RollListPreview != "" {
			fmt.Printf("\n--- roll list raw text ---\n%s\n", result.RollListPreview)
		}
		return fmt.Errorf("no schedule rows could be extracted from the documents")
	}

	if err := exporter.WriteScheduleXLSX(outPath, result.Rows); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	fmt.Printf("Wrote %s\n", outPath)

	if csvPath != "" {
		writer := exporter.NewCSVWriter(".")
		if err := writer.WriteScheduleCSV(csvPath, result.Rows); err != nil {
			return fmt.Errorf("failed to write %s: %w", csvPath, err)
		}
		fmt.Printf("Wrote %s\n", strings.TrimPrefix(csvPath, "./"))
	}

	return nil
}

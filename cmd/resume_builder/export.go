package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a resume file to PDF",
	Long: `Renders a resume record and exports it to PDF with headless Chrome.
When the rich rendition fails a simple PDF is written instead; --print writes
the print rendition directly.`,
	RunE: runExport,
}

var (
	exportFlags   appearanceFlags
	exportChrome  string
	exportTimeout string
	exportPrint   bool
)

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVar(&exportChrome, "chrome", "", "Path to the Chrome/Chromium binary (defaults to CHROME_PATH or autodetect)")
	exportCmd.Flags().StringVar(&exportTimeout, "timeout", "", "Export timeout, e.g. 90s")
	exportCmd.Flags().BoolVar(&exportPrint, "print", false, "Write the print rendition instead of the rich export")
	rootCmd.AddCommand(exportCmd)
}

// resumeBaseName is the download filename without its extension.
func resumeBaseName(fullName string) string {
	return strings.TrimSuffix(export.Filename(fullName), ".pdf")
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := exportFlags.resolve()
	if err != nil {
		return err
	}
	cfg = (&config.Config{ChromePath: exportChrome, ExportTimeout: exportTimeout}).MergeWithDefaults(cfg)
	if cfg.ChromePath == "" {
		cfg.ChromePath = os.Getenv("CHROME_PATH")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	rec, err := loadRecord(exportFlags.input)
	if err != nil {
		return err
	}
	tree, err := renderRecord(rec, cfg)
	if err != nil {
		return err
	}

	logMode := "prod"
	if cfg.Verbose {
		logMode = "dev"
	}
	log, err := logging.New(logMode)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	browser := export.NewBrowser(export.BrowserOptions{ChromePath: cfg.ChromePath, Timeout: cfg.Timeout()})
	defer browser.Close()
	pipeline := export.NewPipeline(browser, export.Options{Timeout: cfg.Timeout(), Log: log})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	fullName := rec.ResumeData.PersonalInfo.FullName
	var result *export.Result
	if exportPrint {
		result, err = pipeline.Print(ctx, exportFlags.input, tree, fullName)
	} else {
		result, err = pipeline.Export(ctx, exportFlags.input, tree, fullName)
	}
	if err != nil {
		var exportErr *export.ExportError
		if errors.As(err, &exportErr) && exportErr.NextAction == export.NextActionPrint {
			return fmt.Errorf("%w\nretry with --print to use the print rendition", err)
		}
		return err
	}

	out := outputPath(exportFlags.output, cfg.Output, fullName, ".pdf")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, result.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write PDF: %w", err)
	}

	if cfg.Verbose {
		p := observability.NewPrinter(cmd.OutOrStdout())
		p.PrintCompletion(rec.Metadata.Title, rec.ResumeData)
		p.PrintExport(result, out)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %s (%s) to %s\n", rec.Metadata.Title, result.Tier, out)
	return nil
}

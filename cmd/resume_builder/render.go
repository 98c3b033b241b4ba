package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/resume"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
	recordschemas "github.com/jonathan/resume-builder/schemas"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume file to HTML",
	Long:  "Renders a resume record (the JSON the import endpoint accepts) with one of the four templates and writes the HTML document.",
	RunE:  runRender,
}

// appearanceFlags are shared by render and export.
type appearanceFlags struct {
	input      string
	output     string
	template   string
	font       string
	color      string
	configFile string
	verbose    bool
}

var renderFlags appearanceFlags

func (f *appearanceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.input, "in", "i", "", "Path to resume record JSON (required)")
	cmd.Flags().StringVarP(&f.output, "out", "o", "", "Output file (defaults to the output directory and the person's name)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", "Template: modern, minimal, creative or professional (defaults to the record's)")
	cmd.Flags().StringVar(&f.font, "font", "", "Font key or name")
	cmd.Flags().StringVar(&f.color, "color", "", "Color scheme key or title (defaults to the record's)")
	cmd.Flags().StringVarP(&f.configFile, "config", "c", "", "Path to a JSON or YAML config file")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print a completion summary")
	_ = cmd.MarkFlagRequired("in")
}

// resolve merges flags over the config file.
func (f *appearanceFlags) resolve() (config.Config, error) {
	flags := config.Config{
		Template:    f.template,
		FontFamily:  f.font,
		ColorScheme: f.color,
		Verbose:     f.verbose,
	}
	if f.configFile == "" {
		return flags, flags.Validate()
	}
	fileCfg, err := config.LoadConfig(f.configFile)
	if err != nil {
		return config.Config{}, err
	}
	if err := fileCfg.Validate(); err != nil {
		return config.Config{}, err
	}
	merged := flags.MergeWithDefaults(*fileCfg)
	return merged, merged.Validate()
}

func init() {
	renderFlags.register(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

// loadRecord reads and validates a resume record file.
func loadRecord(path string) (types.ResumeRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.ResumeRecord{}, fmt.Errorf("failed to read resume file: %w", err)
	}
	decoded, err := resume.Decode(data, resume.FormatOf(path))
	if err != nil {
		return types.ResumeRecord{}, fmt.Errorf("failed to parse resume file: %w", err)
	}
	if err := schemas.ValidateValue(recordschemas.ResumeRecord, decoded); err != nil {
		return types.ResumeRecord{}, fmt.Errorf("resume file is invalid: %w", err)
	}
	return resume.NormalizeRecord(decoded), nil
}

// renderRecord draws rec with the configured appearance, falling back to the
// record's own template and color scheme.
func renderRecord(rec types.ResumeRecord, cfg config.Config) (*rendering.DisplayTree, error) {
	kind := types.Template(rec.Metadata.Template)
	if cfg.Template != "" {
		kind = types.Template(cfg.Template)
	}
	style := rendering.Style{FontFamily: cfg.FontFamily, ColorScheme: rec.Metadata.ColorScheme}
	if cfg.ColorScheme != "" {
		style.ColorScheme = cfg.ColorScheme
	}
	return rendering.Render(kind, rec.ResumeData, style)
}

// outputPath picks the explicit output or names the file after the person.
func outputPath(explicit, dir, fullName, ext string) string {
	if explicit != "" {
		return explicit
	}
	name := resumeBaseName(fullName)
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, name+ext)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := renderFlags.resolve()
	if err != nil {
		return err
	}
	rec, err := loadRecord(renderFlags.input)
	if err != nil {
		return err
	}
	tree, err := renderRecord(rec, cfg)
	if err != nil {
		return err
	}

	out := outputPath(renderFlags.output, cfg.Output, rec.ResumeData.PersonalInfo.FullName, ".html")
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(out, tree.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.OutOrStdout()).PrintCompletion(rec.Metadata.Title, rec.ResumeData)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Rendered %s template to %s\n", tree.Kind, out)
	return nil
}

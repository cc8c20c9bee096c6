package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noaland/mirror/internal/cli/config"
	"github.com/noaland/mirror/internal/inspect"
)

var (
	// Flags for the inspect command
	inspectFormat            string
	inspectIncludeUnexported bool
	inspectNoColor           bool
)

// NewInspectCommand creates the inspect command
func NewInspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [packages]",
		Short: "Show struct memory layouts",
		Long: `Show the memory layout of every struct in the given packages.

Layouts are computed from source with the standard gc size model, so the
inspected packages are never compiled into or loaded by the tool itself.
For each struct the report lists size, alignment, and per-field offsets,
sizes, and tags.

Packages default to the patterns in mirror.yaml, or ./... without one.`,
		Example: `  # Inspect the current module
  mirror inspect

  # Inspect specific packages
  mirror inspect ./models/... ./store

  # Include unexported structs and fields
  mirror inspect --include-unexported

  # Output as JSON for tooling
  mirror inspect --format json`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if inspectNoColor || !isTerminal(os.Stdout) {
				color.NoColor = true
			}
		},
		RunE: runInspect,
	}

	cmd.Flags().StringVar(&inspectFormat, "format", "", "Output format: table, json, or yaml")
	cmd.Flags().BoolVar(&inspectIncludeUnexported, "include-unexported", false, "Include unexported structs and fields")
	cmd.Flags().BoolVar(&inspectNoColor, "no-color", false, "Disable colored output")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Packages.Patterns
	}

	format := inspectFormat
	if format == "" {
		format = cfg.Inspect.Format
	}
	includeUnexported := inspectIncludeUnexported || cfg.Inspect.IncludeUnexported

	reports, err := inspect.Load(patterns, includeUnexported)
	if err != nil {
		return err
	}

	formatter, err := GetFormatter(format, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	return formatter.Format(reports)
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Formatter renders package reports
type Formatter interface {
	Format(reports []inspect.PackageReport) error
}

// TableFormatter formats reports as human-readable tables
type TableFormatter struct {
	writer io.Writer
}

// NewTableFormatter creates a new table formatter
func NewTableFormatter(w io.Writer) *TableFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &TableFormatter{writer: w}
}

// Format formats reports as a table
func (f *TableFormatter) Format(reports []inspect.PackageReport) error {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	dim := color.New(color.Faint)

	total := 0
	for _, rep := range reports {
		total += len(rep.Structs)
	}
	if total == 0 {
		fmt.Fprintln(f.writer, "No structs found.")
		return nil
	}

	for _, rep := range reports {
		if len(rep.Structs) == 0 {
			continue
		}

		cyan.Fprintf(f.writer, "%s:\n", rep.Path)

		for _, st := range rep.Structs {
			bold.Fprintf(f.writer, "  %s", st.Name)
			dim.Fprintf(f.writer, "  (size %d, align %d)\n", st.Size, st.Align)

			for _, field := range st.Fields {
				fmt.Fprintf(f.writer, "    %-20s %-24s %4d", field.Name, field.Type, field.Offset)
				if field.Tag != "" {
					dim.Fprintf(f.writer, "  `%s`", field.Tag)
				}
				fmt.Fprintln(f.writer)
			}
			fmt.Fprintln(f.writer)
		}
	}

	return nil
}

// JSONFormatter formats reports as JSON
type JSONFormatter struct {
	writer io.Writer
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter(w io.Writer) *JSONFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &JSONFormatter{writer: w}
}

// Format formats reports as JSON
func (f *JSONFormatter) Format(reports []inspect.PackageReport) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(reports)
}

// YAMLFormatter formats reports as YAML
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	if w == nil {
		w = os.Stdout
	}
	return &YAMLFormatter{writer: w}
}

// Format formats reports as YAML
func (f *YAMLFormatter) Format(reports []inspect.PackageReport) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(reports)
}

// GetFormatter returns the appropriate formatter based on the format parameter
func GetFormatter(format string, writer io.Writer) (Formatter, error) {
	if writer == nil {
		writer = os.Stdout
	}
	switch strings.ToLower(format) {
	case config.FormatJSON:
		return NewJSONFormatter(writer), nil
	case config.FormatYAML:
		return NewYAMLFormatter(writer), nil
	case config.FormatTable:
		return NewTableFormatter(writer), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: table, json, yaml)", format)
	}
}

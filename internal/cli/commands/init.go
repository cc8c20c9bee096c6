package commands

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noaland/mirror/internal/cli/config"
)

var (
	// Flags for the init command
	initPatterns string
	initOutput   string
	initFormat   string
	initAddress  string
	initForce    bool
	initYes      bool
)

// initFileConfig mirrors the mirror.yaml layout for writing.
type initFileConfig struct {
	Packages struct {
		Patterns []string `yaml:"patterns"`
	} `yaml:"packages"`
	Gen struct {
		Output string `yaml:"output"`
	} `yaml:"gen"`
	Inspect struct {
		Format string `yaml:"format"`
	} `yaml:"inspect"`
	Serve struct {
		Address string `yaml:"address"`
	} `yaml:"serve"`
}

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a mirror.yaml for the current project",
		Long: `Create a mirror.yaml configuration file in the current directory.

Without flags, init asks for each setting interactively. Pass --yes to
accept the defaults, or set individual values through flags.`,
		Example: `  # Interactive setup
  mirror init

  # Accept all defaults
  mirror init --yes

  # Pin specific values without prompting
  mirror init --yes --patterns ./models/... --output registrations_gen.go`,
		RunE: runInit,
	}

	cmd.Flags().StringVar(&initPatterns, "patterns", "", "Comma-separated package patterns")
	cmd.Flags().StringVar(&initOutput, "output", "", "Generated file name")
	cmd.Flags().StringVar(&initFormat, "format", "", "Default inspect format: table, json, or yaml")
	cmd.Flags().StringVar(&initAddress, "address", "", "Registry server listen address")
	cmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing mirror.yaml")
	cmd.Flags().BoolVarP(&initYes, "yes", "y", false, "Accept defaults without prompting")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat("mirror.yaml"); err == nil && !initForce {
		return fmt.Errorf("mirror.yaml already exists (use --force to overwrite)")
	}

	patterns := initPatterns
	if patterns == "" {
		patterns = "./..."
	}
	output := initOutput
	if output == "" {
		output = "mirror_registrations.go"
	}
	format := initFormat
	if format == "" {
		format = config.FormatTable
	}
	address := initAddress
	if address == "" {
		address = ":8080"
	}

	if !initYes {
		prompt := &survey.Input{
			Message: "Package patterns (comma separated):",
			Default: patterns,
		}
		if err := survey.AskOne(prompt, &patterns, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		prompt = &survey.Input{
			Message: "Generated file name:",
			Default: output,
		}
		if err := survey.AskOne(prompt, &output, survey.WithValidator(survey.Required)); err != nil {
			return err
		}

		selectPrompt := &survey.Select{
			Message: "Default inspect format:",
			Options: []string{config.FormatTable, config.FormatJSON, config.FormatYAML},
			Default: format,
		}
		if err := survey.AskOne(selectPrompt, &format); err != nil {
			return err
		}

		prompt = &survey.Input{
			Message: "Registry server address:",
			Default: address,
		}
		if err := survey.AskOne(prompt, &address); err != nil {
			return err
		}
	}

	switch format {
	case config.FormatTable, config.FormatJSON, config.FormatYAML:
	default:
		return fmt.Errorf("format must be one of table, json, yaml; got: %s", format)
	}

	var fileCfg initFileConfig
	for _, p := range strings.Split(patterns, ",") {
		if p = strings.TrimSpace(p); p != "" {
			fileCfg.Packages.Patterns = append(fileCfg.Packages.Patterns, p)
		}
	}
	if len(fileCfg.Packages.Patterns) == 0 {
		return fmt.Errorf("at least one package pattern is required")
	}
	fileCfg.Gen.Output = output
	fileCfg.Inspect.Format = format
	fileCfg.Serve.Address = address

	var buf bytes.Buffer
	buf.WriteString("# mirror configuration\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&fileCfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile("mirror.yaml", buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing mirror.yaml: %w", err)
	}

	writer := cmd.OutOrStdout()
	color.New(color.FgGreen, color.Bold).Fprintln(writer, "Created mirror.yaml")
	color.New(color.FgCyan).Fprintln(writer, "Run 'mirror inspect' to see struct layouts, or 'mirror gen' to generate registrations.")

	return nil
}

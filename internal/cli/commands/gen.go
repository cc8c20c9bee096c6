package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/noaland/mirror/internal/cli/config"
	"github.com/noaland/mirror/internal/gen"
	"github.com/noaland/mirror/internal/inspect"
	"github.com/noaland/mirror/internal/watch"
)

var (
	// Flags for the gen command
	genOutput            string
	genIncludeUnexported bool
	genWatch             bool
)

// NewGenCommand creates the gen command
func NewGenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen [packages]",
		Short: "Generate registration files",
		Long: `Generate mirror registration files for the given packages.

For every package that declares structs, gen writes a Go file with one
mirror.MustRegister call per struct, listing its exported fields in
declaration order. Descriptors are then published at image load with no
hand-written registration code.

Packages default to the patterns in mirror.yaml, or ./... without one.`,
		Example: `  # Generate registrations for the current module
  mirror gen

  # Generate for specific packages
  mirror gen ./models/...

  # Change the generated file name
  mirror gen --output registrations_gen.go

  # Regenerate whenever a source file changes
  mirror gen --watch`,
		RunE: runGen,
	}

	cmd.Flags().StringVar(&genOutput, "output", "", "Name of the generated file inside each package")
	cmd.Flags().BoolVar(&genIncludeUnexported, "include-unexported", false, "Register unexported structs as well")
	cmd.Flags().BoolVarP(&genWatch, "watch", "w", false, "Watch for changes and regenerate")

	return cmd
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = cfg.Packages.Patterns
	}

	output := genOutput
	if output == "" {
		output = cfg.Gen.Output
	}
	if filepath.Ext(output) != ".go" {
		return fmt.Errorf("output must be a .go file, got: %s", output)
	}

	includeUnexported := genIncludeUnexported || cfg.Inspect.IncludeUnexported

	dirs, err := generateAll(cmd, cfg.Gen.Module, patterns, output, includeUnexported)
	if err != nil {
		return err
	}

	if !genWatch {
		return nil
	}
	if len(dirs) == 0 {
		return fmt.Errorf("nothing to watch: no packages with structs found")
	}

	return watchAndRegenerate(cmd, cfg.Gen.Module, patterns, output, includeUnexported, dirs)
}

// generateAll runs one generation pass and returns the package directories
// that received a file.
func generateAll(cmd *cobra.Command, module string, patterns []string, output string, includeUnexported bool) ([]string, error) {
	reports, err := inspect.Load(patterns, includeUnexported)
	if err != nil {
		return nil, err
	}

	success := color.New(color.FgGreen)
	writer := cmd.OutOrStdout()

	var dirs []string
	for _, rep := range reports {
		specs := gen.FromReport(rep, includeUnexported)
		if len(specs) == 0 {
			continue
		}
		if rep.Dir == "" {
			return nil, fmt.Errorf("package %s has no source directory", rep.Path)
		}

		code, err := gen.NewGenerator(module).Generate(rep.Name, specs)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", rep.Path, err)
		}

		path := filepath.Join(rep.Dir, output)
		if err := os.WriteFile(path, code, 0644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}

		success.Fprintf(writer, "  wrote %s (%d structs)\n", path, len(specs))
		dirs = append(dirs, rep.Dir)
	}

	if len(dirs) == 0 {
		fmt.Fprintln(writer, "No structs to register.")
	}
	return dirs, nil
}

// watchAndRegenerate blocks, rerunning generation whenever a watched source
// file changes, until interrupted.
func watchAndRegenerate(cmd *cobra.Command, module string, patterns []string, output string, includeUnexported bool, dirs []string) error {
	writer := cmd.OutOrStdout()

	w, err := watch.New(dirs, []string{output}, nil, func(files []string) error {
		fmt.Fprintf(writer, "Change detected (%d files), regenerating...\n", len(files))
		if _, err := generateAll(cmd, module, patterns, output, includeUnexported); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	color.New(color.FgCyan, color.Bold).Fprintln(writer, "Watching for changes...")
	color.New(color.FgYellow).Fprintln(writer, "Press Ctrl+C to stop")

	// Block until signal
	<-sigChan

	fmt.Fprintln(writer, "\nShutting down...")
	return w.Stop()
}

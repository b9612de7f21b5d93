package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"fastbuild/pkg/config"
	"fastbuild/pkg/formatter"
	"fastbuild/pkg/unit"
)

// addProjectFlags registers the flags that override .fastbuild.yaml values
func addProjectFlags(c *cobra.Command) {
	c.Flags().String("dest", "", "Output directory relative to the project root (default from .fastbuild.yaml)")
	c.Flags().String("suffix", "", "Suffix of definition outputs (default from .fastbuild.yaml)")
	c.Flags().IntP("jobs", "j", 0, "Number of units processed in parallel (default from .fastbuild.yaml)")
	c.Flags().BoolP("clang-format", "c", false, "Apply clang-format to both outputs")
}

// loadSettings reads the project configuration of root and applies the
// flags the user set explicitly
func loadSettings(cmd *cobra.Command, root string) (*config.Config, error) {
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Lookup("dest") != nil && flags.Changed("dest") {
		cfg.Dest, _ = flags.GetString("dest")
	}
	if flags.Lookup("suffix") != nil && flags.Changed("suffix") {
		cfg.SourceSuffix, _ = flags.GetString("suffix")
	}
	if flags.Lookup("jobs") != nil && flags.Changed("jobs") {
		cfg.Jobs, _ = flags.GetInt("jobs")
	}
	if flags.Lookup("clang-format") != nil && flags.Changed("clang-format") {
		cfg.ClangFormat, _ = flags.GetBool("clang-format")
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	slog.Debug("loaded settings", "root", root, "dest", cfg.Dest, "jobs", cfg.Jobs, "clang_format", cfg.ClangFormat)
	return cfg, nil
}

func newTransformer(cfg *config.Config) *unit.Transformer {
	return unit.NewTransformer(unit.Options{
		Formatter:    formatter.NewWithOptions(cfg.FormatterOptions()),
		ClangFormat:  cfg.ClangFormat,
		SourceSuffix: cfg.SourceSuffix,
		Logger:       slog.Default(),
	})
}

func newPreparer(cmd *cobra.Command, root string, cfg *config.Config, w *unit.Writer) *unit.Preparer {
	return unit.NewPreparer(unit.PrepareOptions{
		Root:         root,
		Dest:         cfg.Dest,
		SourceSuffix: cfg.SourceSuffix,
		Jobs:         cfg.Jobs,
		Progress:     cmd.OutOrStdout(),
		Logger:       slog.Default(),
	}, newTransformer(cfg), w)
}

func matcherFor(cfg *config.Config) unit.Matcher {
	return unit.Matcher{Include: cfg.Include, Exclude: cfg.Exclude, Dest: cfg.Dest}
}

// unitFiles normalizes explicit file arguments to root-relative slash paths,
// or discovers units when none are given
func unitFiles(root string, args []string, cfg *config.Config) ([]string, error) {
	if len(args) == 0 {
		if len(cfg.Include) == 0 {
			return nil, fmt.Errorf("no files given and no include patterns in %s", filepath.Join(root, config.FileName))
		}
		return unit.Discover(root, matcherFor(cfg))
	}

	files := make([]string, 0, len(args))
	for _, arg := range args {
		files = append(files, filepath.ToSlash(filepath.Clean(arg)))
	}
	return files, nil
}

// readUnit reads a single file given on the command line
func readUnit(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return string(content), nil
}

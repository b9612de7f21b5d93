package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"fastbuild/pkg/unit"
	"fastbuild/pkg/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [root]",
	Short: "Re-prepare units whenever they change",
	Long: `Prepare all units matched by the include/exclude globs of .fastbuild.yaml,
then watch the project root recursively and prepare changed units again.
A failing unit is reported and watching continues. Stop with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := loadSettings(cmd, root)
		if err != nil {
			return err
		}
		matcher := matcherFor(cfg)
		if err := matcher.Validate(); err != nil {
			return err
		}

		writer := unit.NewWriter()
		preparer := newPreparer(cmd, root, cfg, writer)

		if initial, _ := cmd.Flags().GetBool("initial"); initial && len(cfg.Include) > 0 {
			files, err := unit.Discover(root, matcher)
			if err != nil {
				return err
			}
			if _, err := preparer.Prepare(cmd.Context(), files); err != nil {
				slog.Error("initial prepare failed", "error", err)
			}
		}

		debounce, _ := cmd.Flags().GetDuration("debounce")
		dest := filepath.ToSlash(filepath.Clean(cfg.Dest))
		w, err := watch.New(root, watch.Options{
			Debounce: debounce,
			Match:    matcher.Match,
			SkipDir: func(rel string) bool {
				return rel == dest || rel == ".git"
			},
			OnChange: func(ctx context.Context, files []string) {
				if _, err := preparer.Prepare(ctx, files); err != nil {
					slog.Error("prepare failed", "error", err)
				}
			},
			Logger: slog.Default(),
		})
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s\n", root)
		return w.Run(cmd.Context())
	},
}

func init() {
	addProjectFlags(watchCmd)
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period after the last change before preparing")
	watchCmd.Flags().Bool("initial", true, "Prepare all matched units before watching")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare [root] [files...]",
	Short: "Split compilation units into declaration and definition files",
	Long: `Prepare every given file (relative to the project root) for the build:
the declaration text is written to <root>/<dest>/<file> and the out-of-line
definitions to the same path with its suffix replaced by the source suffix.
Without files, the include/exclude globs of .fastbuild.yaml select the units.
Outputs whose content did not change are left untouched.`,
	Example: `  # Prepare two headers of the project in the current directory
  fastbuild prepare . src/widget.hpp src/layout.hpp

  # Prepare everything matched by .fastbuild.yaml on 8 workers
  fastbuild prepare . -j 8`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := args[0]

		cfg, err := loadSettings(cmd, root)
		if err != nil {
			return err
		}

		files, err := unitFiles(root, args[1:], cfg)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no units to prepare")
			return nil
		}

		outcomes, err := newPreparer(cmd, root, cfg, nil).Prepare(cmd.Context(), files)
		if err != nil {
			return err
		}

		written, functions := 0, 0
		for _, o := range outcomes {
			if o.WroteHeader || o.WroteSource {
				written++
			}
			functions += o.Functions
		}
		fmt.Fprintf(cmd.OutOrStdout(), "prepared %d units (%d functions), %d updated in %s\n",
			len(outcomes), functions, written, cfg.DestDir(root))
		return nil
	},
}

func init() {
	addProjectFlags(prepareCmd)
}

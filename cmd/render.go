package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fastbuild/pkg/config"
)

// definitionsMarker separates the two texts printed by render
const definitionsMarker = "// ---- definitions ----"

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Print the declaration and definition texts of a file",
	Long: `Run the full pipeline on one file and print the declaration text followed by
the definition text, separated by a marker line. Nothing is written to disk.
Strip lists and clang-format come from the .fastbuild.yaml of --root.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		root, _ := cmd.Flags().GetString("root")
		cfg, err := loadSettings(cmd, root)
		if err != nil {
			return err
		}

		content, err := readUnit(filename)
		if err != nil {
			return err
		}

		res, err := newTransformer(cfg).Transform(filename, content)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprint(out, res.Declarations)
		if len(res.Declarations) > 0 && res.Declarations[len(res.Declarations)-1] != '\n' {
			fmt.Fprintln(out)
		}
		fmt.Fprintln(out, definitionsMarker)
		fmt.Fprint(out, res.Definitions)
		return nil
	},
}

func init() {
	renderCmd.Flags().String("root", ".", "Project root holding "+config.FileName)
	renderCmd.Flags().BoolP("clang-format", "c", false, "Apply clang-format to both outputs")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/config"
	"fastbuild/pkg/formatter"
	"fastbuild/pkg/unit"
)

var extractCmd = &cobra.Command{
	Use:   "extract [file] [function-path]",
	Short: "Print the out-of-line definition of one function",
	Long: `Print the definition text of the single function whose qualified path matches.
The function-path should be in the format namespace::class::method.
Without a function-path, the qualified paths of all functions are listed.`,
	Args: cobra.RangeArgs(1, 2),
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

		file, err := unit.NewTransformer(unit.Options{}).Build(filename, content, unit.StageOptimized)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(args) == 1 {
			for _, ref := range ast.CollectFunctions(file) {
				fmt.Fprintln(out, ref.QualifiedName())
			}
			return nil
		}

		ref, ok := ast.FindFunction(file, args[1])
		if !ok {
			return fmt.Errorf("function not found: %s", args[1])
		}

		fmt.Fprintln(out, formatter.NewWithOptions(cfg.FormatterOptions()).RenderDefinition(ref))
		return nil
	},
}

func init() {
	extractCmd.Flags().String("root", ".", "Project root holding "+config.FileName)
}

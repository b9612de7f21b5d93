package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"fastbuild/pkg/ast"
	"fastbuild/pkg/unit"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Print the node tree of a file",
	Long: `Parse a file and print one line per node of its tree: node kind, and for text
chunks the category, byte length and a preview with newlines and tabs made
visible. --stage selects how far the pipeline runs before dumping.
The output can be in JSON format for further processing or human-readable format.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		stageName, _ := cmd.Flags().GetString("stage")
		stage, err := unit.ParseStage(stageName)
		if err != nil {
			return err
		}

		content, err := readUnit(filename)
		if err != nil {
			return err
		}

		file, err := unit.NewTransformer(unit.Options{}).Build(filename, content, stage)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "json":
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(ast.ToDump(file))
		case "human":
			fmt.Fprintf(cmd.OutOrStdout(), "Parsed file: %s\n", filename)
			return ast.Dump(cmd.OutOrStdout(), file)
		default:
			return fmt.Errorf("unknown format %q (want human or json)", format)
		}
	},
}

func init() {
	dumpCmd.Flags().StringP("format", "f", "human", "Output format (human, json)")
	dumpCmd.Flags().StringP("stage", "s", "optimized", "Pipeline stage to dump (raw, grouped, optimized)")
}

package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/stratum/internal/render"
)

var validateOutput string

var validateCmd = &cobra.Command{
	Use:   "validate <plansDir>",
	Short: "Check cross-layer consistency of a plans directory",
	Long: `Load every layer plan under the directory, run the consistency rule
battery over adjacent layers, and print the findings. The command exits
non-zero when validation fails or a mandatory layer is missing; warnings
alone do not change the exit code.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		defer rc.close()

		fmt.Fprint(os.Stdout, render.Report(rc.result.Report))
		if validateOutput != "" {
			data, err := json.MarshalIndent(rc.result.Report, "", "  ")
			if err != nil {
				return fmt.Errorf("cli: encode report: %w", err)
			}
			if err := writeArtifact(validateOutput, append(data, '\n')); err != nil {
				return err
			}
		}
		if rc.result.Failed {
			return ErrValidationFailed
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateOutput, "output", "", "write the report as JSON to this path")
	rootCmd.AddCommand(validateCmd)
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var synthesizeOutput string

var synthesizeCmd = &cobra.Command{
	Use:   "synthesize <plansDir>",
	Short: "Generate the unified implementation plan",
	Long: `Run the full pipeline (load, validate, order) and render the unified
implementation plan. With --output the format follows the file extension:
.json writes the structured plan, anything else writes markdown. Without
--output the markdown goes to stdout.

Synthesis completes even when validation fails so the unified plan still
shows the full picture, but the command then exits non-zero.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		defer rc.close()

		if synthesizeOutput == "" {
			fmt.Fprint(os.Stdout, rc.result.Unified.RenderMarkdown())
		} else {
			var data []byte
			if strings.EqualFold(filepath.Ext(synthesizeOutput), ".json") {
				data, err = rc.result.Unified.RenderJSON()
				if err != nil {
					return err
				}
			} else {
				data = []byte(rc.result.Unified.RenderMarkdown())
			}
			if err := writeArtifact(synthesizeOutput, data); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "Unified plan written to %s\n", synthesizeOutput)
		}
		if rc.result.Failed {
			return ErrValidationFailed
		}
		return nil
	},
}

func init() {
	synthesizeCmd.Flags().StringVar(&synthesizeOutput, "output", "", "write the unified plan to this path (.json or markdown)")
	rootCmd.AddCommand(synthesizeCmd)
}

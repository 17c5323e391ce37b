package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/stratum/internal/render"
)

var orderOutput string

var orderCmd = &cobra.Command{
	Use:   "order <plansDir>",
	Short: "Compute the dependency-ordered execution sequence",
	Long: `Induce the layer graph on the plans present in the directory and print
the topologically sorted execution steps with their checkpoints.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		defer rc.close()

		fmt.Fprint(os.Stdout, render.Steps(rc.result.Steps))
		if orderOutput != "" {
			data, err := json.MarshalIndent(rc.result.Steps, "", "  ")
			if err != nil {
				return fmt.Errorf("cli: encode steps: %w", err)
			}
			if err := writeArtifact(orderOutput, append(data, '\n')); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	orderCmd.Flags().StringVar(&orderOutput, "output", "", "write the steps as JSON to this path")
	rootCmd.AddCommand(orderCmd)
}

package cli

import (
	"github.com/spf13/cobra"

	"github.com/kingrea/stratum/internal/tui"
)

var reviewCmd = &cobra.Command{
	Use:   "review <plansDir>",
	Short: "Browse a pipeline run interactively",
	Long: `Run the full pipeline and open an interactive browser over the
validation issues, execution steps, file manifest and run journal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := runPipeline(args[0])
		if err != nil {
			return err
		}
		defer rc.close()
		return tui.Run(rc.result, rc.journal)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
}

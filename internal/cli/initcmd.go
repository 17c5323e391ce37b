package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/stratum/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the .stratum project directory",
	Long: `Create the .stratum/ tree (config, rules, logs, out) in the current
directory. Existing files are left untouched.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		projectDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("cli: resolve working directory: %w", err)
		}
		if err := config.InitStratumDir(projectDir); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "Initialized %s/%s\n", projectDir, config.StratumDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

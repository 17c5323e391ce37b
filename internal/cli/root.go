// Package cli wires the stratum commands. Each command resolves the project
// configuration from the working directory, merges any rule packs, runs the
// pipeline and renders the result.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kingrea/stratum/internal/config"
	"github.com/kingrea/stratum/internal/layer"
	"github.com/kingrea/stratum/internal/logbook"
	"github.com/kingrea/stratum/internal/logging"
	"github.com/kingrea/stratum/internal/pipeline"
	"github.com/kingrea/stratum/plugins"
)

// ErrValidationFailed signals a completed run whose validation status is
// FAIL. main maps it to exit code 1 without an extra error line.
var ErrValidationFailed = errors.New("validation failed")

var mandatoryFlag []string

var rootCmd = &cobra.Command{
	Use:     "stratum",
	Version: "dev",
	Short:   "Cross-layer plan validation and orchestration",
	Long: `stratum checks a directory of layer plans (schema, interface, logic,
presentation, infrastructure) for cross-layer consistency, computes a
dependency-ordered execution sequence, and synthesizes a unified
implementation plan.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// SetVersion overrides the build version shown by `stratum version`.
func SetVersion(v string) {
	if v == "" {
		return
	}
	rootCmd.Version = v
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&mandatoryFlag, "mandatory", nil,
		"layers that must be present (overrides .stratum/config.yaml)")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the stratum version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintln(os.Stdout, rootCmd.Version)
		},
	}
	rootCmd.AddCommand(versionCmd)
}

// runContext bundles everything a command needs for one pipeline run.
type runContext struct {
	cfg     *config.Config
	logger  *logging.Logger
	journal *logbook.Logbook
	result  *pipeline.Result
}

func (rc *runContext) close() {
	if rc != nil {
		_ = rc.logger.Close()
	}
}

// runPipeline loads configuration and rule packs from the working directory
// and executes the full pipeline over plansDir.
func runPipeline(plansDir string) (*runContext, error) {
	projectDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cli: resolve working directory: %w", err)
	}
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	logger := logging.New(cfg)
	journal, err := logbook.New(filepath.Join(cfg.LogsDir(), "runs.log"))
	if err != nil {
		_ = logger.Close()
		return nil, fmt.Errorf("cli: open run journal: %w", err)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		_ = logger.Close()
		return nil, err
	}

	logger.Infof("running pipeline over %s", plansDir)
	result, err := pipeline.Run(plansDir, opts)
	if err != nil {
		logger.Errorf("pipeline failed: %v", err)
		journal.Error("run over %s failed: %v", plansDir, err)
		_ = logger.Close()
		return nil, err
	}
	logger.Infof("validation status %s with %d issue(s)", result.Report.Status, len(result.Report.Issues))
	journal.Info("run over %s: %s, %d step(s)", plansDir, result.Report.Status, len(result.Steps))

	return &runContext{cfg: cfg, logger: logger, journal: journal, result: result}, nil
}

func buildOptions(cfg *config.Config) (pipeline.Options, error) {
	mandatory, err := resolveMandatory(cfg)
	if err != nil {
		return pipeline.Options{}, err
	}
	graph, checkpoints, err := cfg.LoadGraph()
	if err != nil {
		return pipeline.Options{}, err
	}
	opts := pipeline.Options{
		Mandatory:       mandatory,
		Graph:           graph,
		Checkpoints:     checkpoints,
		NamingThreshold: cfg.NamingThreshold(),
		TypeSynonyms:    cfg.TypeSynonyms(),
		ParallelParse:   cfg.ParallelParse(),
	}
	packs, err := plugins.Discover(cfg)
	if err != nil {
		return pipeline.Options{}, err
	}
	plugins.Apply(&opts, packs)
	return opts, nil
}

func resolveMandatory(cfg *config.Config) ([]layer.Kind, error) {
	if len(mandatoryFlag) == 0 {
		return cfg.MandatoryLayers()
	}
	kinds := make([]layer.Kind, 0, len(mandatoryFlag))
	for _, name := range mandatoryFlag {
		kind, err := layer.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("cli: --mandatory: %w", err)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cli: ensure output dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("cli: write %s: %w", path, err)
	}
	return nil
}

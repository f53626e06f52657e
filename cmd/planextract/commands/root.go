// Package commands defines all Cobra CLI commands for the planextract binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/basinworks/planextract/internal/audit"
	"github.com/basinworks/planextract/internal/config"
	"github.com/basinworks/planextract/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "planextract",
		Short: "Extract structured sections from watershed management plans",
		Long: `planextract ingests watershed management plan documents and extracts
structured sections from them using retrieval-augmented LLM synthesis.

Plans are chunked, embedded, and stored locally; each section question
(goals, BMPs, pollutants, monitoring metrics, ...) retrieves the most
relevant chunks and synthesizes a schema-validated JSON answer with
source attribution and a confidence score.

Model and embedding providers are selected via the MODEL_PROVIDER and
EMBEDDING_PROVIDER environment variables or a YAML config file
(~/.planextract/config.yaml). See 'planextract --help' for commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.planextract/config.yaml)")

	root.AddCommand(
		NewIngestCmd(),
		NewAskCmd(),
		NewDocumentsCmd(),
		NewDeleteCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}

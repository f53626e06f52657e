package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/basinworks/planextract/internal/logging"
)

// NewIngestCmd constructs the `planextract ingest` command, which chunks,
// embeds, and stores a plan document under its GUID.
func NewIngestCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "ingest <guid>",
		Short: "Ingest a watershed plan document into the local store",
		Long: `Ingest the plain text of a watershed management plan under the given GUID.

The text is sanitized, split into token-budgeted chunks, embedded, and
stored in the local SQLite database. Re-ingesting an existing GUID
replaces the previous version atomically.

Text is read from --file, or from stdin when --file is omitted.

Required environment variables:
  EMBEDDING_PROVIDER   Embedding backend: ollama, openai, azure, gemini
                       (default: inherits MODEL_PROVIDER, then ollama)
  EMBEDDING_*          Provider-specific overrides (see README)
  PLANEXTRACT_DB       Database path (default: ~/.planextract/documents.db)

Examples:
  planextract ingest plan-2024-001 --file cedar-creek.txt
  pdftotext plan.pdf - | planextract ingest plan-2024-001`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			guid := args[0]

			var text []byte
			var err error
			if file != "" {
				text, err = os.ReadFile(file)
				if err != nil {
					return fmt.Errorf("ingest: read %s: %w", file, err)
				}
			} else {
				text, err = io.ReadAll(os.Stdin)
				if err != nil {
					return fmt.Errorf("ingest: read stdin: %w", err)
				}
			}

			s, err := buildStack(ctx, log, false)
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}
			defer s.Close()

			result, err := s.Pipeline.Ingest(ctx, guid, string(text))
			if err != nil {
				return fmt.Errorf("ingest: %w", err)
			}

			log.Info("ingestion complete",
				slog.String("guid", result.GUID),
				slog.Int("paragraphs", result.Paragraphs),
				slog.Int("chunks", result.Chunks),
				slog.Bool("replaced", result.Replaced),
			)
			fmt.Printf("ingested %s: %d chunks (%d paragraphs)\n", result.GUID, result.Chunks, result.Paragraphs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Path to the plain-text plan document (default: stdin)")

	return cmd
}

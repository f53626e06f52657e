package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/basinworks/planextract/internal/logging"
	"github.com/basinworks/planextract/internal/section"
)

// NewAskCmd constructs the `planextract ask` command, which extracts one
// section from a previously ingested document and prints the JSON result.
func NewAskCmd() *cobra.Command {
	var pretty bool

	cmd := &cobra.Command{
		Use:   "ask <guid> <key>",
		Short: "Extract a section from an ingested plan",
		Long: fmt.Sprintf(`Extract one structured section from a previously ingested plan document.

The section key selects what to extract. Valid keys:
  %s

The result is a JSON object with the answer envelope, source chunk
snippets, a confidence score, and the model that produced the answer.

Examples:
  planextract ask plan-2024-001 goals
  planextract ask plan-2024-001 bmps --pretty
  planextract ask plan-2024-001 monitoringMetrics | jq .answer`, strings.Join(keyNames(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			guid, key := args[0], args[1]

			s, err := buildStack(ctx, log, true)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer s.Close()

			ans, err := s.Service.Ask(ctx, guid, key)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(ans)
		},
	}

	cmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the JSON output")

	return cmd
}

// keyNames returns the canonical section keys as strings for help text.
func keyNames() []string {
	keys := section.All()
	names := make([]string, len(keys))
	for i, k := range keys {
		names[i] = string(k)
	}
	return names
}

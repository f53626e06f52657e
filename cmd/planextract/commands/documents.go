package commands

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/basinworks/planextract/internal/logging"
)

// NewDocumentsCmd constructs the `planextract documents` command, which lists
// the documents in the local store.
func NewDocumentsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "documents",
		Short: "List ingested plan documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)

			st, err := openStore(log)
			if err != nil {
				return fmt.Errorf("documents: %w", err)
			}
			defer func() { _ = st.Close() }()

			infos, err := st.ListDocuments(ctx)
			if err != nil {
				return fmt.Errorf("documents: %w", err)
			}
			if len(infos) == 0 {
				fmt.Println("no documents ingested")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "GUID\tCHUNKS\tMODEL\tUPDATED")
			for _, info := range infos {
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n",
					info.GUID, info.ChunkCount, info.Model,
					info.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}
}

// NewDeleteCmd constructs the `planextract delete` command, which removes a
// document and its embeddings from the local store.
func NewDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <guid>",
		Short: "Delete an ingested plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()
			ctx := logging.WithLogger(cmd.Context(), log)
			guid := args[0]

			st, err := openStore(log)
			if err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			defer func() { _ = st.Close() }()

			if err := st.DeleteDocument(ctx, guid); err != nil {
				return fmt.Errorf("delete: %w", err)
			}
			log.Info("document deleted", slog.String("guid", guid))
			fmt.Printf("deleted %s\n", guid)
			return nil
		},
	}
}

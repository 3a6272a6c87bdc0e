package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"quadvoice/internal/api"
	"quadvoice/internal/store"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest identity or style documents",
	}

	ingestCmd.AddCommand(newIngestIdentityCommand(ctx))
	ingestCmd.AddCommand(newIngestStyleCommand(ctx))
	return ingestCmd
}

func newIngestIdentityCommand(ctx *commandContext) *cobra.Command {
	var docTypeFlag string

	cmd := &cobra.Command{
		Use:   "identity <files...>",
		Short: "Ingest identity documents that shape the drafting voice",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docType, ok := store.ParseIdentityDocType(docTypeFlag)
			if !ok {
				return fmt.Errorf("doc type %q: must be one of skill, goal, knowledge", docTypeFlag)
			}

			uploads := make([]api.IdentityUpload, 0, len(args))
			for _, path := range args {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				uploads = append(uploads, api.IdentityUpload{
					Name:    filepath.Base(path),
					Content: string(content),
				})
			}

			svc, st, err := ctx.openService()
			if err != nil {
				return err
			}
			defer st.Close()

			resp := svc.IngestIdentity(cmd.Context(), docType, uploads, "")
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d identity document(s)\n", resp.Count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&docTypeFlag, "type", "t", "knowledge", "Document type (skill, goal, knowledge)")
	return cmd
}

func newIngestStyleCommand(ctx *commandContext) *cobra.Command {
	var platformFlag string

	cmd := &cobra.Command{
		Use:   "style <file>",
		Short: "Ingest a style sample for one platform",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			platform, ok := store.ParsePlatform(platformFlag)
			if !ok {
				return fmt.Errorf("platform %q: must be one of qiita, zenn, note, owned", platformFlag)
			}

			content, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}

			svc, st, err := ctx.openService()
			if err != nil {
				return err
			}
			defer st.Close()

			resp := svc.IngestStyle(cmd.Context(), platform, string(content), "")
			fmt.Fprintf(cmd.OutOrStdout(), "Stored style for %s (version %d)\n", resp.Platform, resp.Version)
			return nil
		},
	}

	cmd.Flags().StringVarP(&platformFlag, "platform", "p", "", "Target platform (qiita, zenn, note, owned)")
	_ = cmd.MarkFlagRequired("platform")
	return cmd
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"quadvoice/internal/store"
)

func newGenerateCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "generate <theme>",
		Short: "Run the drafting pipeline for a theme",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, st, err := ctx.openService()
			if err != nil {
				return err
			}
			defer st.Close()

			resp, err := svc.Generate(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), resp)
			}

			rows := make([][]string, 0, len(resp.Preview))
			for _, platform := range store.Platforms() {
				rows = append(rows, []string{string(platform), previewLine(resp.Preview[platform])})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Project %s (%s)\n", resp.ProjectID, resp.Status)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Platform", "Preview"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full result as JSON")
	return cmd
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"quadvoice/internal/services"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <project-id>",
		Short: "Show a stored project and its pipeline events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, st, err := ctx.openService()
			if err != nil {
				return err
			}
			defer st.Close()

			project, err := svc.Get(cmd.Context(), args[0])
			if err != nil {
				if errors.Is(err, services.ErrNotFound) {
					return fmt.Errorf("project %s not found", args[0])
				}
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), project)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Project %s\nTheme: %s\nStatus: %s\n\n", project.ProjectID, project.Theme, project.Status)
			rows := make([][]string, 0, len(project.Events))
			for _, event := range project.Events {
				rows = append(rows, []string{event.Node, string(event.Status), event.Message})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Stage", "Status", "Message"}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the full project as JSON")
	return cmd
}

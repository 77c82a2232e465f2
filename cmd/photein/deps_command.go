package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"photein/internal/deps"
)

func newDepsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "List the external tools photein uses and whether they are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), renderDeps(deps.CheckBinaries(deps.Requirements)))
			return nil
		},
	}
}

func renderDeps(statuses []deps.Status) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Tool", "Command", "Status", "Used for"})
	for _, status := range statuses {
		state := "ok"
		switch {
		case !status.Available && status.Optional:
			state = "missing (optional)"
		case !status.Available:
			state = "missing"
		}
		if status.Detail != "" && !status.Available {
			state += ": " + status.Detail
		}
		tw.AppendRow(table.Row{status.Name, status.Command, state, status.Description})
	}
	return tw.Render()
}

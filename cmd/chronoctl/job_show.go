package main

import (
	"github.com/spf13/cobra"

	"github.com/cronforge/chronod/internal/adminclient"
)

func buildShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show one job's current state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := client().GetJob(args[0])
			if err != nil {
				return err
			}
			return printJobTable([]adminclient.Job{*job})
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildDescribeCmd() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "describe <expression>",
		Short: "Describe a cron expression and list its next occurrences, without registering a job.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := client().Describe(args[0], count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmdOut(), "%s\n", result.Description)
			for _, next := range result.NextRuns {
				fmt.Fprintf(cmdOut(), "  %s\n", next.Format("2006-01-02 15:04:05 MST"))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 5, "number of upcoming occurrences to show")
	return cmd
}

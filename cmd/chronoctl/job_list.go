package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cronforge/chronod/internal/adminclient"
)

func buildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every job chronod has registered.",
		RunE: func(cmd *cobra.Command, args []string) error {
			jobs, err := client().ListJobs()
			if err != nil {
				return err
			}
			return printJobTable(jobs)
		},
	}
}

func printJobTable(jobs []adminclient.Job) error {
	w := tabwriter.NewWriter(cmdOut(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tNEXT RUN\tLAST RUN\tRUNS")
	for _, job := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			job.Name,
			colorizeState(job.State),
			humanizeTime(job.NextRun),
			humanizeTime(job.LastRun),
			job.RunCount,
		)
	}
	return w.Flush()
}

func colorizeState(state string) string {
	switch state {
	case "scheduled":
		return color.GreenString(state)
	case "busy":
		return color.CyanString(state)
	case "paused":
		return color.YellowString(state)
	case "stopped":
		return color.RedString(state)
	default:
		return state
	}
}

func humanizeTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return humanize.Time(*t)
}

package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/cronforge/chronod/internal/adminclient"
)

func buildTriggerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "trigger <name>",
		Short: "Fire a job's callback immediately.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runID, err := client().Trigger(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmdOut(), "%s run %s\n", color.CyanString("triggered"), runID)
			return nil
		},
	}
}

func buildPauseCmd() *cobra.Command {
	return buildStateChangeCmd("pause", "Suspend a job's scheduled runs.", (*adminclient.Client).Pause)
}

func buildResumeCmd() *cobra.Command {
	return buildStateChangeCmd("resume", "Resume a paused job.", (*adminclient.Client).Resume)
}

func buildStopCmd() *cobra.Command {
	return buildStateChangeCmd("stop", "Permanently stop a job.", (*adminclient.Client).Stop)
}

func buildStateChangeCmd(use, short string, action func(*adminclient.Client, string) (*adminclient.Job, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <name>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			job, err := action(client(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmdOut(), "%s is now %s\n", job.Name, colorizeState(job.State))
			return nil
		},
	}
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/cronforge/chronod/internal/adminclient"
)

var (
	serverURL string
	token     string
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "chronoctl",
		Short:         "Operate a running chronod instance.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&serverURL, "server", envOr("CHRONOCTL_SERVER", "http://localhost:9000"), "chronod admin API base URL")
	cmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CHRONOCTL_TOKEN"), "admin bearer token")

	cmd.AddCommand(
		buildLoginCmd(),
		buildListCmd(),
		buildShowCmd(),
		buildDescribeCmd(),
		buildTriggerCmd(),
		buildPauseCmd(),
		buildResumeCmd(),
		buildStopCmd(),
	)
	return cmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func client() *adminclient.Client {
	return adminclient.New(serverURL, token)
}

// cmdOut is where subcommands write their tabular output, overridable
// in tests.
func cmdOut() io.Writer {
	return os.Stdout
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

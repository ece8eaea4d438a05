package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cronforge/chronod/internal/adminauth"
	"github.com/cronforge/chronod/internal/config"
)

// buildLoginCmd mints a bearer token against the operator's shared
// CHRONOD_ADMIN_TOKEN secret, for use as --token with every other
// subcommand. There is no server round-trip: the secret itself is the
// credential, the same one chronod verifies requests against.
func buildLoginCmd() *cobra.Command {
	var secret string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Mint an admin bearer token from the shared CHRONOD_ADMIN_TOKEN secret.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				return fmt.Errorf("--secret (or CHRONOD_ADMIN_TOKEN) is required")
			}
			token, err := adminauth.GenerateAdminToken(config.Config{AdminToken: secret}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmdOut(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("CHRONOD_ADMIN_TOKEN", ""), "shared admin secret chronod was started with")
	cmd.Flags().DurationVar(&ttl, "ttl", adminauth.DefaultTokenTTL, "token validity duration")
	return cmd
}

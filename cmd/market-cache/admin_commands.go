package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"go-market-cache/internal/auth"
	"go-market-cache/internal/config"
)

func newConfigCmd(cc *cliContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the configuration",
	}
	cmd.AddCommand(newConfigValidateCmd(cc))
	return cmd
}

func newConfigValidateCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cc.logger)
			if err != nil {
				return fmt.Errorf("configuration validation failed: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration is valid")
			fmt.Fprintf(out, "  provider: %s (%s)\n", cfg.Provider.BaseURL, cfg.Provider.VsCurrency)
			fmt.Fprintf(out, "  l1: %s, l2 enabled: %t\n", cfg.L1.Backend, cfg.L2.Enabled)
			fmt.Fprintf(out, "  warmer enabled: %t\n", cfg.Warmer.Enabled)
			return nil
		},
	}
}

func newAdminTokenCmd(cc *cliContext) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Issue a bearer token for the cache admin endpoints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cc.logger)
			if err != nil {
				return err
			}
			if cfg.Admin.JWTSecret == "" {
				return errors.New("admin.jwt_secret is not configured")
			}
			if ttl <= 0 {
				ttl = cfg.Admin.TokenTTL
			}

			token, expiresAt, err := auth.Generate(cfg.Admin.JWTSecret, subject, auth.ScopeCacheAdmin, ttl)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			cmd.PrintErrf("expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to admin.token_ttl)")
	return cmd
}

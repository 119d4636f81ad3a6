package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// cliContext carries the state shared by every subcommand
type cliContext struct {
	configPath string
	debug      bool
	logger     *zap.Logger
}

// newRootCmd creates the market-cache command tree
func newRootCmd() *cobra.Command {
	cc := &cliContext{}

	cmd := &cobra.Command{
		Use:          "market-cache",
		Short:        "Caching front for a crypto market data API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cc.configPath != "" {
				if err := os.Setenv("CACHE_CONFIG_FILE", cc.configPath); err != nil {
					return err
				}
			}

			logger, err := newLogger(cc.debug)
			if err != nil {
				return err
			}
			cc.logger = logger
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&cc.configPath, "config", "c", "", "path to the YAML config file (overrides CACHE_CONFIG_FILE)")
	cmd.PersistentFlags().BoolVar(&cc.debug, "debug", false, "enable debug logging")

	cmd.AddCommand(
		newServeCmd(cc),
		newTopCmd(cc),
		newCoinCmd(cc),
		newGlobalCmd(cc),
		newSearchCmd(cc),
		newHistoryCmd(cc),
		newPricesCmd(cc),
		newConfigCmd(cc),
		newAdminTokenCmd(cc),
	)

	return cmd
}

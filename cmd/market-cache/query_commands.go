package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"go-market-cache/internal/format"
	"go-market-cache/internal/market"
	"go-market-cache/internal/models"
)

// withMarket builds the composition root for a one-shot query
func withMarket(cc *cliContext, fn func(*market.Service) error) error {
	root, err := NewCompositionRoot(cc.logger)
	if err != nil {
		return err
	}
	defer func() { _ = root.Cleanup() }()

	return fn(root.Market)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTopCmd(cc *cliContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "List the top coins by market cap",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				coins := svc.TopCoins(cmd.Context(), limit)
				if asJSON {
					return printJSON(cmd.OutOrStdout(), coins)
				}
				return renderCoins(cmd.OutOrStdout(), coins)
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", market.DefaultTopLimit, "number of coins to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print raw JSON")
	return cmd
}

// renderCoins prints coins as an aligned table of display strings
func renderCoins(w io.Writer, coins []models.Coin) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSYMBOL\tNAME\tPRICE\t24H\tMARKET CAP\tVOLUME")
	for i, c := range coins {
		rank := i + 1
		if c.MarketCapRank != nil {
			rank = *c.MarketCapRank
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rank,
			strings.ToUpper(c.Symbol),
			c.Name,
			format.Price(c.CurrentPrice),
			format.PercentagePtr(c.PriceChangePercentage24h),
			format.LargeNumber(c.MarketCap),
			format.LargeNumber(c.TotalVolume))
	}
	return tw.Flush()
}

func newCoinCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "coin <id>",
		Short: "Show details for one coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				coin := svc.Coin(cmd.Context(), args[0])
				if coin == nil {
					return fmt.Errorf("coin %q not found", args[0])
				}
				return printJSON(cmd.OutOrStdout(), coin)
			})
		},
	}
}

func newGlobalCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "global",
		Short: "Show aggregate market totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				global := svc.Global(cmd.Context())
				if global == nil {
					return fmt.Errorf("global market data unavailable")
				}
				return printJSON(cmd.OutOrStdout(), global)
			})
		},
	}
}

func newSearchCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <text>",
		Short: "Search coins by name or symbol",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				return printJSON(cmd.OutOrStdout(), svc.Search(cmd.Context(), strings.Join(args, " ")))
			})
		},
	}
}

func newHistoryCmd(cc *cliContext) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "history <id>",
		Short: "Show the price history of a coin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				return printJSON(cmd.OutOrStdout(), svc.History(cmd.Context(), args[0], days))
			})
		},
	}

	cmd.Flags().IntVarP(&days, "days", "d", 7, "number of days of history")
	return cmd
}

func newPricesCmd(cc *cliContext) *cobra.Command {
	return &cobra.Command{
		Use:   "prices <id>...",
		Short: "Show current prices for one or more coins",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMarket(cc, func(svc *market.Service) error {
				return printJSON(cmd.OutOrStdout(), svc.Prices(cmd.Context(), args))
			})
		},
	}
}

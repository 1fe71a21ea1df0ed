package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var getMarketCmd = &cobra.Command{
	Use:   "get-market <address>",
	Short: "Fetch a single market by address",
	Args:  cobra.ExactArgs(1),
	RunE:  runGetMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(getMarketCmd)
}

func runGetMarket(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	client, marketCache, err := newMarketsClient(cfg, logger)
	if err != nil {
		return err
	}
	defer marketCache.Close()

	market, err := client.GetMarket(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get market: %w", err)
	}

	fmt.Printf("Address:             %s\n", types.CanonicalAddress(market.Address))
	fmt.Printf("Kind:                %s\n", market.Kind)
	fmt.Printf("Question:            %s\n", market.Question)
	fmt.Printf("Resolution criteria: %s\n", market.ResolutionCriteria)
	fmt.Printf("Active:              %v\n", market.IsActive)

	if market.BettingCutoff != nil {
		fmt.Printf("Betting cutoff:      %s\n", market.BettingCutoff.Format(time.RFC3339))
	}

	if market.ResolvedAt != nil {
		fmt.Printf("Resolved at:         %s\n", market.ResolvedAt.Format(time.RFC3339))
		if market.ResolvedOutcome != nil {
			fmt.Printf("Resolved outcome:    %s\n", market.ResolvedOutcome.String())
		}
	}

	if market.VoidedAt != nil {
		fmt.Printf("Voided at:           %s\n", market.VoidedAt.Format(time.RFC3339))
	}

	if market.Kappa != nil {
		fmt.Printf("Kappa:               %s\n", market.Kappa.String())
	}
	if market.TotalQSquared != nil {
		fmt.Printf("TotalQSquared:       %s\n", market.TotalQSquared.String())
	}
	if market.OutcomeUnit != nil {
		fmt.Printf("OutcomeUnit:         %s\n", market.OutcomeUnit.String())
	}

	return nil
}

package cmd

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/onit-labs/onit-markets-go/internal/creation"
	"github.com/onit-labs/onit-markets-go/pkg/types"
)

//nolint:gochecknoglobals // Cobra boilerplate
var createMarketCmd = &cobra.Command{
	Use:   "create-market",
	Short: "Create a new market",
	Long: `Validates a market definition against its kind's schema and posts it to
the Onit API. Score markets need side metadata and an initial bet;
days-until markets need a day count.`,
	RunE: runCreateMarket,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(createMarketCmd)
	createMarketCmd.Flags().String("kind", "score", "Market kind: score or days-until")
	createMarketCmd.Flags().String("question", "", "Question title (required)")
	createMarketCmd.Flags().String("criteria", "", "Resolution criteria")
	createMarketCmd.Flags().Int64("cutoff", 0, "Betting cutoff as a unix timestamp")
	createMarketCmd.Flags().Int("first-score", 0, "Initial bet first side score")
	createMarketCmd.Flags().Int("second-score", 0, "Initial bet second side score")
	createMarketCmd.Flags().String("first-side", "", "First side name")
	createMarketCmd.Flags().String("second-side", "", "Second side name")
	createMarketCmd.Flags().String("tags", "", "Comma-separated tags")
	createMarketCmd.Flags().Int("days", 0, "Days until (days-until markets)")
	_ = createMarketCmd.MarkFlagRequired("question")
}

func runCreateMarket(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	kindStr, _ := cmd.Flags().GetString("kind")
	question, _ := cmd.Flags().GetString("question")
	criteria, _ := cmd.Flags().GetString("criteria")
	cutoff, _ := cmd.Flags().GetInt64("cutoff")
	firstScore, _ := cmd.Flags().GetInt("first-score")
	secondScore, _ := cmd.Flags().GetInt("second-score")
	firstSide, _ := cmd.Flags().GetString("first-side")
	secondSide, _ := cmd.Flags().GetString("second-side")
	tags, _ := cmd.Flags().GetString("tags")
	days, _ := cmd.Flags().GetInt("days")

	def := &creation.MarketDefinition{
		Kind:               types.MarketKind(kindStr),
		Question:           question,
		ResolutionCriteria: criteria,
	}

	if cutoff > 0 {
		def.BettingCutoff = big.NewInt(cutoff)
	}

	switch def.Kind {
	case types.KindScore:
		def.InitialBet = &types.ScoreOutcome{FirstSideScore: firstScore, SecondSideScore: secondScore}
		def.Metadata = &creation.ScoreMetadata{
			FirstSide:  creation.SideMetadata{Name: firstSide},
			SecondSide: creation.SideMetadata{Name: secondSide},
			Tags:       creation.ParseTags(tags),
		}
	case types.KindDaysUntil:
		def.DaysUntil = days
	}

	submitter := creation.NewSubmitter(&creation.Config{
		BaseURL:    cfg.OnitAPIURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger,
	})

	created, err := submitter.CreateMarket(ctx, def)
	if err != nil {
		return fmt.Errorf("create market: %w", err)
	}

	fmt.Printf("Market created.\n")
	fmt.Printf("Address: %s\n", types.CanonicalAddress(created.Address))
	fmt.Printf("Tx hash: %s\n", created.TxHash.Hex())

	return nil
}

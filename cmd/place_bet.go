package cmd

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onit-labs/onit-markets-go/internal/betting"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"github.com/onit-labs/onit-markets-go/pkg/wallet"
)

//nolint:gochecknoglobals // Cobra boilerplate
var placeBetCmd = &cobra.Command{
	Use:   "place-bet <address>",
	Short: "Resolve calldata for a bet and optionally submit it",
	Long: `Resolves the destination, value, and payload for a proposed bet and prints
them. With --send, signs and broadcasts the transaction using the key in
the PRIVATE_KEY environment variable and the chain ID in --chain-id.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaceBet,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(placeBetCmd)
	placeBetCmd.Flags().String("kind", "score", "Market kind: score, days-until, discrete, normal, percentage")
	placeBetCmd.Flags().Int("first-score", 0, "First side score (score markets)")
	placeBetCmd.Flags().Int("second-score", 0, "Second side score (score markets)")
	placeBetCmd.Flags().Int("days", 0, "Days until (days-until markets)")
	placeBetCmd.Flags().Int("bucket", 0, "Bucket index (discrete markets)")
	placeBetCmd.Flags().String("outcome-value", "", "Outcome value (normal markets)")
	placeBetCmd.Flags().Int("basis-points", 0, "Outcome in basis points (percentage markets)")
	placeBetCmd.Flags().String("stake", "", "Stake in the smallest on-chain unit (required)")
	placeBetCmd.Flags().Bool("send", false, "Sign and broadcast the transaction")
	placeBetCmd.Flags().Int64("chain-id", 8453, "Chain ID used when signing")
	_ = placeBetCmd.MarkFlagRequired("stake")
}

func runPlaceBet(cmd *cobra.Command, args []string) error {
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
	stakeStr, _ := cmd.Flags().GetString("stake")
	send, _ := cmd.Flags().GetBool("send")
	chainID, _ := cmd.Flags().GetInt64("chain-id")

	stake, ok := new(big.Int).SetString(stakeStr, 10)
	if !ok {
		return fmt.Errorf("invalid stake %q: expected a decimal integer", stakeStr)
	}

	kind := types.MarketKind(kindStr)

	outcome, err := outcomeFromFlags(cmd, kind)
	if err != nil {
		return err
	}

	proposal := &types.BetProposal{
		MarketAddress: args[0],
		Kind:          kind,
		Outcome:       outcome,
		Stake:         stake,
	}

	resolver := betting.NewResolver(&betting.ResolverConfig{
		BaseURL:    cfg.OnitAPIURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		Logger:     logger,
	})

	if !send {
		calldata, err := resolver.ResolveCalldata(ctx, proposal)
		if err != nil {
			return fmt.Errorf("resolve calldata: %w", err)
		}

		fmt.Printf("To:       %s\n", types.CanonicalAddress(calldata.To))
		fmt.Printf("Value:    %s\n", calldata.Value.String())
		fmt.Printf("Calldata: %s\n", hexutil.Encode(calldata.Data))
		fmt.Println("\nRe-run with --send to sign and broadcast.")

		return nil
	}

	submitter, err := submitterFromEnv(cfg.RPCURL, chainID, logger)
	if err != nil {
		return err
	}

	submission := betting.NewSubmission(resolver, submitter, logger)
	submission.SetProposal(proposal)

	status, err := submission.Submit(ctx)
	if err != nil {
		return fmt.Errorf("submit bet (state %s, reason %s): %w", status.State, status.Reason, err)
	}

	fmt.Printf("Bet submitted. State: %s, tx: %s\n", status.State, status.TxID)

	return nil
}

func outcomeFromFlags(cmd *cobra.Command, kind types.MarketKind) (types.Outcome, error) {
	switch kind {
	case types.KindScore:
		first, _ := cmd.Flags().GetInt("first-score")
		second, _ := cmd.Flags().GetInt("second-score")
		return types.ScoreOutcome{FirstSideScore: first, SecondSideScore: second}, nil
	case types.KindDaysUntil:
		days, _ := cmd.Flags().GetInt("days")
		return types.DaysUntilOutcome{Days: days}, nil
	case types.KindDiscrete:
		bucket, _ := cmd.Flags().GetInt("bucket")
		return types.DiscreteOutcome{Bucket: bucket}, nil
	case types.KindNormal:
		raw, _ := cmd.Flags().GetString("outcome-value")
		value, ok := new(big.Int).SetString(raw, 10)
		if !ok {
			return nil, fmt.Errorf("invalid --outcome-value %q: expected a decimal integer", raw)
		}
		return types.NormalOutcome{Value: value}, nil
	case types.KindPercentage:
		bps, _ := cmd.Flags().GetInt("basis-points")
		return types.PercentageOutcome{BasisPoints: bps}, nil
	default:
		return nil, fmt.Errorf("unknown market kind %q", kind)
	}
}

// submitterFromEnv builds the signing collaborator from PRIVATE_KEY. The key
// stays in this function's closure; the core packages only see the
// SignerFunc.
func submitterFromEnv(rpcURL string, chainID int64, logger *zap.Logger) (betting.TransactionSubmitter, error) {
	keyHex := os.Getenv("PRIVATE_KEY")
	if keyHex == "" {
		return nil, fmt.Errorf("PRIVATE_KEY must be set to use --send")
	}

	key, err := crypto.HexToECDSA(keyHex)
	if err != nil {
		return nil, fmt.Errorf("parse PRIVATE_KEY: %w", err)
	}

	from := crypto.PubkeyToAddress(key.PublicKey)
	signer := ethtypes.LatestSignerForChainID(big.NewInt(chainID))

	signFn := func(_ context.Context, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
		return ethtypes.SignTx(tx, signer, key)
	}

	return wallet.NewClient(rpcURL, from, wallet.SignerFunc(signFn), logger)
}

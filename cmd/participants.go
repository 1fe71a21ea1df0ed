package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var participantsCmd = &cobra.Command{
	Use:   "participants <address>",
	Short: "Fetch a market's participants",
	Args:  cobra.ExactArgs(1),
	RunE:  runParticipants,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(participantsCmd)
}

func runParticipants(cmd *cobra.Command, args []string) error {
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

	participants, err := client.GetParticipants(ctx, args[0])
	if err != nil {
		return fmt.Errorf("get participants: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(participants)
}

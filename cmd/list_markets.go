package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/config"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var listMarketsCmd = &cobra.Command{
	Use:   "list-markets",
	Short: "List markets from the Onit API",
	Long:  `Pages through the market list and displays each market's address, kind, and question.`,
	RunE:  runListMarkets,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(listMarketsCmd)
	listMarketsCmd.Flags().IntP("page-size", "p", 0, "Markets per page request (default from LIST_PAGE_SIZE)")
	listMarketsCmd.Flags().IntP("max", "m", 0, "Stop after this many markets (0 = all)")
	listMarketsCmd.Flags().BoolP("verbose", "v", false, "Show resolution state and pricing fields")
}

// effectivePageSize resolves the page size: an explicit flag wins, otherwise
// the configured default.
func effectivePageSize(cmd *cobra.Command, cfg *config.Config) int {
	if cmd.Flags().Changed("page-size") {
		pageSize, _ := cmd.Flags().GetInt("page-size")
		return pageSize
	}

	return cfg.ListPageSize
}

func runListMarkets(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	maxMarkets, _ := cmd.Flags().GetInt("max")
	verbose, _ := cmd.Flags().GetBool("verbose")

	client, marketCache, err := newMarketsClient(cfg, logger)
	if err != nil {
		return err
	}
	defer marketCache.Close()

	pager := client.ListMarkets(effectivePageSize(cmd, cfg))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ADDRESS\tKIND\tACTIVE\tQUESTION\n")
	fmt.Fprintf(w, "-------\t----\t------\t--------\n")

	total := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return fmt.Errorf("fetch markets: %w", err)
		}

		if page == nil {
			break
		}

		for i := range page {
			m := &page[i]

			question := m.Question
			if len(question) > 60 {
				question = question[:57] + "..."
			}

			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", types.CanonicalAddress(m.Address), m.Kind, m.IsActive, question)

			if verbose {
				if m.ResolvedAt != nil {
					fmt.Fprintf(w, "\tResolved at: %s\n", m.ResolvedAt.Format(time.RFC3339))
				}
				if m.VoidedAt != nil {
					fmt.Fprintf(w, "\tVoided at: %s\n", m.VoidedAt.Format(time.RFC3339))
				}
				if m.Kappa != nil {
					fmt.Fprintf(w, "\tKappa: %s\n", m.Kappa.String())
				}
			}

			total++
			if maxMarkets > 0 && total >= maxMarkets {
				w.Flush()
				fmt.Printf("\nTotal: %d markets (stopped at --max)\n", total)
				return nil
			}
		}

		if pager.Done() {
			break
		}
	}

	w.Flush()
	fmt.Printf("\nTotal: %d markets\n", total)

	return nil
}

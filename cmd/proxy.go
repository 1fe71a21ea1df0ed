package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/onit-labs/onit-markets-go/pkg/proxy"
)

//nolint:gochecknoglobals // Cobra boilerplate
var proxyCmd = &cobra.Command{
	Use:   "proxy",
	Short: "Run the credential-forwarding proxy",
	Long: `Runs the HTTP hop browser front ends talk to. Requests under the proxy
prefix are forwarded to the Onit API with the bearer credential attached;
the credential never reaches the browser.`,
	RunE: runProxy,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(proxyCmd)
}

func runProxy(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	if cfg.OnitAPIKey == "" {
		return fmt.Errorf("ONIT_API_KEY must be set to run the proxy")
	}

	server, err := proxy.New(&proxy.Config{
		Port:       cfg.ProxyPort,
		Upstream:   cfg.OnitAPIURL,
		APIKey:     cfg.OnitAPIKey,
		PathPrefix: cfg.ProxyPathPrefix,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("create proxy server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	server.SetReady(true)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutdown-signal-received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdownCtx)
}

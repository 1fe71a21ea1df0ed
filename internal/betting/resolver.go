// Package betting implements the two-phase bet placement pipeline: resolve
// the exact on-chain call parameters for a proposed bet, then drive the
// submission of that calldata as a transaction through an explicit
// lifecycle.
package betting

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/codec"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"go.uber.org/zap"
)

// Resolver fetches bet calldata from the ledger API. It performs no side
// effects beyond the network call and never submits a transaction itself.
// Calldata is single-use: results are never cached here.
type Resolver struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// ResolverConfig holds resolver configuration.
type ResolverConfig struct {
	BaseURL    string
	HTTPClient *http.Client // optional; defaults to a 30s-timeout client
	Logger     *zap.Logger
}

// NewResolver creates a new calldata resolver.
func NewResolver(cfg *ResolverConfig) *Resolver {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Resolver{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// ResolveCalldata fetches the destination, value, and payload required to
// place the proposed bet. Preconditions are checked locally first: a
// structurally mismatched outcome or a negative stake fails with a
// LocalValidationError and zero network calls. The response value must
// equal the proposed stake.
func (r *Resolver) ResolveCalldata(ctx context.Context, proposal *types.BetProposal) (*types.Calldata, error) {
	if proposal == nil {
		return nil, &types.LocalValidationError{Reason: "proposal is required"}
	}

	if err := proposal.Validate(); err != nil {
		return nil, err
	}

	bet, err := proposal.Outcome.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode outcome: %w", err)
	}

	query := url.Values{}
	query.Set("marketType", string(proposal.Kind))
	query.Set("bet", bet)
	query.Set("value", proposal.Stake.String())
	query.Set("type", "calldata")

	requestURL := fmt.Sprintf("%s/markets/%s/bet?%s", r.baseURL, proposal.MarketAddress, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	r.logger.Debug("resolving-calldata",
		zap.String("market-address", proposal.MarketAddress),
		zap.String("market-type", string(proposal.Kind)),
		zap.String("stake", proposal.Stake.String()))

	start := time.Now()
	resp, err := r.httpClient.Do(req)
	ResolveDurationSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		ResolveErrorsTotal.Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		ResolveErrorsTotal.Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		ResolveErrorsTotal.Inc()
		return nil, &types.UpstreamRejectionError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	decoded, err := codec.Decode(body)
	if err != nil {
		return nil, err
	}

	data, err := types.UnwrapEnvelope(decoded, resp.StatusCode)
	if err != nil {
		return nil, err
	}

	calldata, err := types.CalldataFromPayload(data)
	if err != nil {
		return nil, err
	}

	// The attached value must match the stake exactly; anything else means
	// the upstream computed calldata for a different bet.
	if calldata.Value.Cmp(proposal.Stake) != 0 {
		return nil, &types.DecodeError{
			Raw: string(body),
			Err: fmt.Errorf("calldata value %s does not match stake %s", calldata.Value, proposal.Stake),
		}
	}

	ResolvesTotal.Inc()

	return calldata, nil
}

// Package creation validates market-definition forms against their
// kind-discriminated schemas and posts them to the ledger API.
package creation

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/codec"
	"github.com/onit-labs/onit-markets-go/pkg/types"
	"go.uber.org/zap"
)

// SideMetadata describes one side of a score market.
type SideMetadata struct {
	Name        string
	Description string
	Image       string
}

// ScoreMetadata is the kind-specific metadata for a score market.
type ScoreMetadata struct {
	FirstSide  SideMetadata
	SecondSide SideMetadata
	Tags       []string
}

// MarketDefinition is a market-creation form. Kind selects which fields are
// required: score markets need an initial bet and side metadata, days-until
// markets need a day count.
type MarketDefinition struct {
	Kind               types.MarketKind
	Question           string
	ResolutionCriteria string

	// BettingCutoff is a unix-seconds timestamp. Required for score
	// markets, optional for days-until.
	BettingCutoff *big.Int

	// Score markets only.
	InitialBet *types.ScoreOutcome
	Metadata   *ScoreMetadata

	// Days-until markets only.
	DaysUntil int
}

// ParseTags splits a comma-separated tag string, trimming whitespace and
// dropping empties. Mirrors the form input, which accepts either a list or
// a comma string.
func ParseTags(s string) []string {
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))

	for _, part := range parts {
		tag := strings.TrimSpace(part)
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// Validate checks the definition against its kind's schema, reporting the
// first offending field. Runs entirely locally.
func (d *MarketDefinition) Validate() error {
	if d.Question == "" {
		return &types.LocalValidationError{Field: "question", Reason: "question is required"}
	}

	switch d.Kind {
	case types.KindScore:
		return d.validateScore()
	case types.KindDaysUntil:
		return d.validateDaysUntil()
	default:
		return &types.LocalValidationError{Field: "marketType", Reason: fmt.Sprintf("unsupported market kind %q", d.Kind)}
	}
}

func (d *MarketDefinition) validateScore() error {
	if d.BettingCutoff == nil {
		return &types.LocalValidationError{Field: "bettingCutoff", Reason: "betting cutoff is required for score markets"}
	}

	if d.BettingCutoff.Sign() < 0 {
		return &types.LocalValidationError{Field: "bettingCutoff", Reason: "betting cutoff must be non-negative"}
	}

	if d.InitialBet == nil {
		return &types.LocalValidationError{Field: "initialBet", Reason: "initial bet is required for score markets"}
	}

	if d.InitialBet.FirstSideScore < 0 {
		return &types.LocalValidationError{Field: "initialBet.firstSideScore", Reason: "score must be non-negative"}
	}

	if d.InitialBet.SecondSideScore < 0 {
		return &types.LocalValidationError{Field: "initialBet.secondSideScore", Reason: "score must be non-negative"}
	}

	if d.Metadata == nil {
		return &types.LocalValidationError{Field: "metadata", Reason: "metadata is required for score markets"}
	}

	if d.Metadata.FirstSide.Name == "" {
		return &types.LocalValidationError{Field: "metadata.firstSide.name", Reason: "side name is required"}
	}

	if d.Metadata.SecondSide.Name == "" {
		return &types.LocalValidationError{Field: "metadata.secondSide.name", Reason: "side name is required"}
	}

	return nil
}

func (d *MarketDefinition) validateDaysUntil() error {
	if d.DaysUntil < 1 {
		return &types.LocalValidationError{Field: "daysUntil", Reason: fmt.Sprintf("daysUntil must be at least 1, got %d", d.DaysUntil)}
	}

	if d.BettingCutoff != nil && d.BettingCutoff.Sign() < 0 {
		return &types.LocalValidationError{Field: "bettingCutoff", Reason: "betting cutoff must be non-negative"}
	}

	return nil
}

// payload builds the kind-discriminated request body. The cutoff stays an
// arbitrary-precision integer so the codec carries it as a tagged bigint.
func (d *MarketDefinition) payload() map[string]any {
	body := map[string]any{
		"marketType":         string(d.Kind),
		"question":           d.Question,
		"resolutionCriteria": d.ResolutionCriteria,
	}

	if d.BettingCutoff != nil {
		body["bettingCutoff"] = d.BettingCutoff
	}

	switch d.Kind {
	case types.KindScore:
		body["initialBet"] = map[string]any{
			"firstSideScore":  d.InitialBet.FirstSideScore,
			"secondSideScore": d.InitialBet.SecondSideScore,
		}

		tags := make([]any, len(d.Metadata.Tags))
		for i, tag := range d.Metadata.Tags {
			tags[i] = tag
		}

		body["metadata"] = map[string]any{
			"firstSide":  sideMetadataPayload(d.Metadata.FirstSide),
			"secondSide": sideMetadataPayload(d.Metadata.SecondSide),
			"tags":       tags,
		}
	case types.KindDaysUntil:
		body["daysUntil"] = d.DaysUntil
	}

	return body
}

func sideMetadataPayload(side SideMetadata) map[string]any {
	out := map[string]any{"name": side.Name}

	if side.Description != "" {
		out["description"] = side.Description
	}

	if side.Image != "" {
		out["image"] = side.Image
	}

	return out
}

// Submitter posts validated market definitions to the ledger API.
type Submitter struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds submitter configuration.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client // optional; defaults to a 30s-timeout client
	Logger     *zap.Logger
}

// NewSubmitter creates a new market creation submitter.
func NewSubmitter(cfg *Config) *Submitter {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Submitter{
		baseURL:    cfg.BaseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// CreateMarket validates the definition and posts it upstream. Schema
// mismatches fail with a field-level error before any network call. On
// success it returns the deployed market's address and deployment
// transaction hash.
func (s *Submitter) CreateMarket(ctx context.Context, def *MarketDefinition) (*types.CreatedMarket, error) {
	if def == nil {
		return nil, &types.LocalValidationError{Reason: "definition is required"}
	}

	if err := def.Validate(); err != nil {
		return nil, err
	}

	body, err := codec.Encode(def.payload())
	if err != nil {
		return nil, fmt.Errorf("encode definition: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/markets", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	s.logger.Debug("creating-market",
		zap.String("market-type", string(def.Kind)),
		zap.String("question", def.Question))

	resp, err := s.httpClient.Do(req)
	if err != nil {
		CreateErrorsTotal.Inc()
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		CreateErrorsTotal.Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		CreateErrorsTotal.Inc()
		return nil, &types.UpstreamRejectionError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	decoded, err := codec.Decode(respBody)
	if err != nil {
		return nil, err
	}

	data, err := types.UnwrapEnvelope(decoded, resp.StatusCode)
	if err != nil {
		return nil, err
	}

	created, err := types.CreatedMarketFromPayload(data)
	if err != nil {
		return nil, err
	}

	CreatesTotal.Inc()

	s.logger.Info("market-created",
		zap.String("market-address", types.CanonicalAddress(created.Address)),
		zap.String("tx-hash", created.TxHash.Hex()))

	return created, nil
}

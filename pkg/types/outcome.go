package types

import (
	"fmt"
	"math/big"

	json "github.com/goccy/go-json"
)

// Outcome is a kind-specific encoding of a proposed bet outcome. Encode
// produces the wire form carried in the bet query parameter.
type Outcome interface {
	Kind() MarketKind
	Validate() error
	Encode() (string, error)
}

// ScoreOutcome is the outcome encoding for score markets: a pair of
// non-negative integers, one per side.
type ScoreOutcome struct {
	FirstSideScore  int
	SecondSideScore int
}

func (ScoreOutcome) Kind() MarketKind { return KindScore }

func (o ScoreOutcome) Validate() error {
	if o.FirstSideScore < 0 {
		return &LocalValidationError{Field: "bet.firstSideScore", Reason: "score must be non-negative"}
	}

	if o.SecondSideScore < 0 {
		return &LocalValidationError{Field: "bet.secondSideScore", Reason: "score must be non-negative"}
	}

	return nil
}

func (o ScoreOutcome) Encode() (string, error) {
	return encodeOutcome(map[string]any{
		"score": fmt.Sprintf("%d-%d", o.FirstSideScore, o.SecondSideScore),
	})
}

// DaysUntilOutcome is the outcome encoding for days-until markets.
type DaysUntilOutcome struct {
	Days int
}

func (DaysUntilOutcome) Kind() MarketKind { return KindDaysUntil }

func (o DaysUntilOutcome) Validate() error {
	if o.Days < 0 {
		return &LocalValidationError{Field: "bet.days", Reason: "days must be non-negative"}
	}

	return nil
}

func (o DaysUntilOutcome) Encode() (string, error) {
	return encodeOutcome(map[string]any{"days": o.Days})
}

// DiscreteOutcome is the outcome encoding for discrete markets: the index of
// the chosen bucket.
type DiscreteOutcome struct {
	Bucket int
}

func (DiscreteOutcome) Kind() MarketKind { return KindDiscrete }

func (o DiscreteOutcome) Validate() error {
	if o.Bucket < 0 {
		return &LocalValidationError{Field: "bet.bucket", Reason: "bucket must be non-negative"}
	}

	return nil
}

func (o DiscreteOutcome) Encode() (string, error) {
	return encodeOutcome(map[string]any{"bucket": o.Bucket})
}

// NormalOutcome is the outcome encoding for normal markets: a point estimate
// in the market's outcome unit.
type NormalOutcome struct {
	Value *big.Int
}

func (NormalOutcome) Kind() MarketKind { return KindNormal }

func (o NormalOutcome) Validate() error {
	if o.Value == nil {
		return &LocalValidationError{Field: "bet.value", Reason: "value is required"}
	}

	return nil
}

func (o NormalOutcome) Encode() (string, error) {
	return encodeOutcome(map[string]any{"value": o.Value.String()})
}

// PercentageOutcome is the outcome encoding for percentage markets: a value
// in basis points.
type PercentageOutcome struct {
	BasisPoints int
}

func (PercentageOutcome) Kind() MarketKind { return KindPercentage }

func (o PercentageOutcome) Validate() error {
	if o.BasisPoints < 0 || o.BasisPoints > 10000 {
		return &LocalValidationError{Field: "bet.basisPoints", Reason: "basis points must be between 0 and 10000"}
	}

	return nil
}

func (o PercentageOutcome) Encode() (string, error) {
	return encodeOutcome(map[string]any{"basisPoints": o.BasisPoints})
}

func encodeOutcome(v map[string]any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal outcome: %w", err)
	}

	return string(b), nil
}

// BetProposal is a not-yet-submitted stake and outcome pair for a specific
// market. Transient, never persisted.
type BetProposal struct {
	MarketAddress string
	Kind          MarketKind
	Outcome       Outcome
	Stake         *big.Int
}

// Validate checks the proposal locally, without any network call: the market
// address must be canonical, the outcome shape must match the market kind,
// and the stake must be a non-negative integer.
func (p *BetProposal) Validate() error {
	if !IsAddress(p.MarketAddress) {
		return &LocalValidationError{Field: "marketAddress", Reason: "not a canonical address"}
	}

	if !p.Kind.Valid() {
		return &LocalValidationError{Field: "marketType", Reason: fmt.Sprintf("unknown market kind %q", p.Kind)}
	}

	if p.Outcome == nil {
		return &LocalValidationError{Field: "bet", Reason: "outcome is required"}
	}

	if p.Outcome.Kind() != p.Kind {
		return &LocalValidationError{
			Field:  "bet",
			Reason: fmt.Sprintf("outcome encoding for %q does not match market kind %q", p.Outcome.Kind(), p.Kind),
		}
	}

	if err := p.Outcome.Validate(); err != nil {
		return err
	}

	if p.Stake == nil {
		return &LocalValidationError{Field: "value", Reason: "stake is required"}
	}

	if p.Stake.Sign() < 0 {
		return &LocalValidationError{Field: "value", Reason: "stake must be non-negative"}
	}

	return nil
}

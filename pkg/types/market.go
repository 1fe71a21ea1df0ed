package types

import (
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MarketKind discriminates which outcome encoding and metadata shape a
// market uses.
type MarketKind string

const (
	KindScore      MarketKind = "score"
	KindDaysUntil  MarketKind = "days-until"
	KindDiscrete   MarketKind = "discrete"
	KindNormal     MarketKind = "normal"
	KindPercentage MarketKind = "percentage"
)

// Valid reports whether k is a known market kind.
func (k MarketKind) Valid() bool {
	switch k {
	case KindScore, KindDaysUntil, KindDiscrete, KindNormal, KindPercentage:
		return true
	}

	return false
}

// Market represents a deployed prediction market. Immutable once deployed
// except for the resolution fields.
type Market struct {
	Address            common.Address
	CreatedTxHash      common.Hash
	Question           string
	ResolutionCriteria string
	Kind               MarketKind

	// Metadata is the kind-specific metadata bag (side names, images, tags).
	// Unknown keys are preserved verbatim for forward compatibility.
	Metadata map[string]any

	BettingCutoff *time.Time
	ExpiresAt     *time.Time

	// Resolution state. ResolvedAt non-nil implies IsActive false;
	// VoidedAt non-nil implies ResolvedOutcome nil.
	IsActive        bool
	ResolvedBy      *common.Address
	ResolvedOutcome *big.Int
	VoidedBy        *common.Address
	ResolvedAt      *time.Time
	VoidedAt        *time.Time

	// Pricing state. Arbitrary precision, never coerced through float64.
	Kappa         *big.Int
	TotalQSquared *big.Int
	OutcomeUnit   *big.Int
}

// CanonicalAddress renders an address in the canonical lowercase-hex form
// used for cache keys and request paths.
func CanonicalAddress(a common.Address) string {
	return hexutil.Encode(a.Bytes())
}

// CanonicalAddressString lowercases an already-validated hex address string.
func CanonicalAddressString(s string) string {
	return strings.ToLower(s)
}

// Calldata is the upstream-computed instruction triple for executing a bet
// on-chain. It is single-use: never cached and never replayed across
// submission attempts.
type Calldata struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// CreatedMarket is the result of a successful market creation.
type CreatedMarket struct {
	Address common.Address
	TxHash  common.Hash
}

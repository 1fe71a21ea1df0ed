package types

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	json "github.com/goccy/go-json"
)

var (
	addressPattern  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hexBytesPattern = regexp.MustCompile(`^0x(?:[0-9a-fA-F]{2})*$`)
	txHashPattern   = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
)

// IsAddress reports whether s is a canonical 20-byte hex address.
func IsAddress(s string) bool {
	return addressPattern.MatchString(s)
}

// IsHexBytes reports whether s is a canonical 0x-prefixed hex byte string.
func IsHexBytes(s string) bool {
	return hexBytesPattern.MatchString(s)
}

// IsTxHash reports whether s is a canonical 32-byte hex transaction hash.
func IsTxHash(s string) bool {
	return txHashPattern.MatchString(s)
}

// ParseAmount parses a ledger amount into an arbitrary-precision integer.
// Accepts the decoded forms an amount can arrive in: a *big.Int restored by
// the codec, a json.Number from a plain body, or a decimal string. Floats are
// rejected so large values are never rounded.
func ParseAmount(v any) (*big.Int, error) {
	switch n := v.(type) {
	case *big.Int:
		return new(big.Int).Set(n), nil
	case json.Number:
		i, ok := new(big.Int).SetString(n.String(), 10)
		if !ok {
			return nil, fmt.Errorf("amount %q is not an integer", n.String())
		}
		return i, nil
	case string:
		i, ok := new(big.Int).SetString(n, 10)
		if !ok {
			return nil, fmt.Errorf("amount %q is not a decimal integer string", n)
		}
		return i, nil
	default:
		return nil, fmt.Errorf("amount has unsupported type %T", v)
	}
}

// ParseTimestamp coerces a decoded timestamp into a time.Time. Accepts a
// time.Time restored by the codec, an RFC3339 string, or a unix-seconds
// number.
func ParseTimestamp(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q is not RFC3339: %w", t, err)
		}
		return parsed, nil
	case json.Number:
		secs, err := t.Int64()
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %q is not unix seconds: %w", t.String(), err)
		}
		return time.Unix(secs, 0).UTC(), nil
	default:
		return time.Time{}, fmt.Errorf("timestamp has unsupported type %T", v)
	}
}

// UnwrapEnvelope checks the {success, data} wrapper every ledger response
// carries and returns the data field. A success=false envelope is an
// UpstreamRejectionError even when the transport reported success;
// statusCode is the transport status the caller observed and is carried
// through for diagnosis.
func UnwrapEnvelope(v any, statusCode int) (any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Raw: renderPayload(v), Err: fmt.Errorf("response envelope is %T, not an object", v)}
	}

	success, ok := obj["success"].(bool)
	if !ok {
		return nil, &DecodeError{Raw: renderPayload(v), Err: fmt.Errorf("response envelope has no boolean success field")}
	}

	if !success {
		return nil, &UpstreamRejectionError{StatusCode: statusCode, Body: renderPayload(v)}
	}

	data, ok := obj["data"]
	if !ok {
		return nil, &DecodeError{Raw: renderPayload(v), Err: fmt.Errorf("response envelope has no data field")}
	}

	return data, nil
}

// MarketFromPayload projects a decoded market payload into a Market.
// Extensible metadata is preserved verbatim; resolution invariants are
// enforced on the way in.
func MarketFromPayload(v any) (*Market, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("market payload is %T, not an object", v))
	}

	addr, err := requireAddress(obj, "address")
	if err != nil {
		return nil, decodeErr(v, err)
	}

	kindStr, _ := obj["marketType"].(string)
	kind := MarketKind(kindStr)
	if !kind.Valid() {
		return nil, decodeErr(v, fmt.Errorf("unknown market kind %q", kindStr))
	}

	m := &Market{
		Address: addr,
		Kind:    kind,
	}

	m.Question, _ = obj["questionTitle"].(string)
	m.ResolutionCriteria, _ = obj["resolutionCriteria"].(string)

	if raw, ok := obj["createdTxHash"].(string); ok && raw != "" {
		if !IsTxHash(raw) {
			return nil, decodeErr(v, fmt.Errorf("createdTxHash %q is not a canonical hash", raw))
		}
		m.CreatedTxHash = common.HexToHash(raw)
	}

	// Metadata is an open bag. Keep whatever the upstream sent.
	if meta, ok := obj["metadata"].(map[string]any); ok {
		m.Metadata = meta
	}

	if m.BettingCutoff, err = optionalTimestamp(obj, "bettingCutoff"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.ExpiresAt, err = optionalTimestamp(obj, "expiresAt"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.ResolvedAt, err = optionalTimestamp(obj, "resolvedAt"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.VoidedAt, err = optionalTimestamp(obj, "voidedAt"); err != nil {
		return nil, decodeErr(v, err)
	}

	if m.ResolvedBy, err = optionalAddress(obj, "resolvedBy"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.VoidedBy, err = optionalAddress(obj, "voidedBy"); err != nil {
		return nil, decodeErr(v, err)
	}

	if m.ResolvedOutcome, err = optionalAmount(obj, "resolvedOutcome"); err != nil {
		return nil, decodeErr(v, err)
	}

	if m.Kappa, err = optionalAmount(obj, "kappa"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.TotalQSquared, err = optionalAmount(obj, "totalQSquared"); err != nil {
		return nil, decodeErr(v, err)
	}
	if m.OutcomeUnit, err = optionalAmount(obj, "outcomeUnit"); err != nil {
		return nil, decodeErr(v, err)
	}

	m.IsActive, _ = obj["isActive"].(bool)

	// A resolved market is never active, whatever the flag said.
	if m.ResolvedAt != nil {
		m.IsActive = false
	}

	// A voided market has no resolved outcome.
	if m.VoidedAt != nil && m.ResolvedOutcome != nil {
		return nil, decodeErr(v, fmt.Errorf("market is voided but carries a resolved outcome"))
	}

	return m, nil
}

// MarketsFromPayload projects the markets field of a list payload.
func MarketsFromPayload(v any) ([]Market, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("markets payload is %T, not an object", v))
	}

	items, ok := obj["markets"].([]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("markets payload has no markets array"))
	}

	markets := make([]Market, 0, len(items))
	for i, item := range items {
		m, err := MarketFromPayload(item)
		if err != nil {
			return nil, decodeErr(v, fmt.Errorf("markets[%d]: %w", i, err))
		}
		markets = append(markets, *m)
	}

	return markets, nil
}

// CalldataFromPayload projects a decoded calldata payload. The destination
// must be a canonical address, the value an integer, and the payload
// canonical hex.
func CalldataFromPayload(v any) (*Calldata, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("calldata payload is %T, not an object", v))
	}

	if kind, _ := obj["type"].(string); kind != "calldata" {
		return nil, decodeErr(v, fmt.Errorf("calldata payload has type %q", kind))
	}

	to, err := requireAddress(obj, "to")
	if err != nil {
		return nil, decodeErr(v, err)
	}

	rawValue, ok := obj["value"]
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("calldata payload has no value field"))
	}

	value, err := ParseAmount(rawValue)
	if err != nil {
		return nil, decodeErr(v, err)
	}

	rawData, _ := obj["calldata"].(string)
	if !IsHexBytes(rawData) {
		return nil, decodeErr(v, fmt.Errorf("calldata %q is not a canonical hex string", rawData))
	}

	data, err := hexutil.Decode(rawData)
	if err != nil {
		return nil, decodeErr(v, fmt.Errorf("decode calldata: %w", err))
	}

	return &Calldata{To: to, Value: value, Data: data}, nil
}

// CreatedMarketFromPayload projects a decoded market-creation payload.
func CreatedMarketFromPayload(v any) (*CreatedMarket, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("created market payload is %T, not an object", v))
	}

	addr, err := requireAddress(obj, "marketAddress")
	if err != nil {
		return nil, decodeErr(v, err)
	}

	rawHash, _ := obj["txHash"].(string)
	if !IsTxHash(rawHash) {
		return nil, decodeErr(v, fmt.Errorf("txHash %q is not a canonical hash", rawHash))
	}

	return &CreatedMarket{Address: addr, TxHash: common.HexToHash(rawHash)}, nil
}

// ParticipantsFromPayload projects a decoded participants payload. The shape
// is upstream-defined and forward compatible, so the object is preserved
// as-is.
func ParticipantsFromPayload(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, decodeErr(v, fmt.Errorf("participants payload is %T, not an object", v))
	}

	return obj, nil
}

func requireAddress(obj map[string]any, field string) (common.Address, error) {
	raw, _ := obj[field].(string)
	if !IsAddress(raw) {
		return common.Address{}, fmt.Errorf("%s %q is not a canonical address", field, raw)
	}

	return common.HexToAddress(raw), nil
}

func optionalAddress(obj map[string]any, field string) (*common.Address, error) {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return nil, nil
	}

	s, ok := raw.(string)
	if !ok || !IsAddress(s) {
		return nil, fmt.Errorf("%s %v is not a canonical address", field, raw)
	}

	addr := common.HexToAddress(s)
	return &addr, nil
}

func optionalAmount(obj map[string]any, field string) (*big.Int, error) {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return nil, nil
	}

	i, err := ParseAmount(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	return i, nil
}

func optionalTimestamp(obj map[string]any, field string) (*time.Time, error) {
	raw, ok := obj[field]
	if !ok || raw == nil {
		return nil, nil
	}

	t, err := ParseTimestamp(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", field, err)
	}

	return &t, nil
}

func decodeErr(payload any, err error) *DecodeError {
	var inner *DecodeError
	if errors.As(err, &inner) {
		return inner
	}

	return &DecodeError{Raw: renderPayload(payload), Err: err}
}

func renderPayload(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}

	return string(b)
}

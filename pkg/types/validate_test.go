package types

import (
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func decodeJSON(t *testing.T, raw string) any {
	t.Helper()

	var v any
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		t.Fatalf("bad test fixture: %v", err)
	}

	return v
}

func TestIsAddress(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"0x2791bca1f2de4661ed88a30c99a7a9449aa84174", true},
		{"0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174", true},
		{"0x2791bca1f2de4661ed88a30c99a7a9449aa8417", false},  // too short
		{"2791bca1f2de4661ed88a30c99a7a9449aa84174", false},   // no prefix
		{"0xzz91bca1f2de4661ed88a30c99a7a9449aa84174", false}, // bad hex
		{"", false},
	}

	for _, tc := range cases {
		if got := IsAddress(tc.input); got != tc.want {
			t.Errorf("IsAddress(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestIsHexBytes(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"0x", true},
		{"0xdeadbeef", true},
		{"0xabc", false}, // odd length
		{"deadbeef", false},
	}

	for _, tc := range cases {
		if got := IsHexBytes(tc.input); got != tc.want {
			t.Errorf("IsHexBytes(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseAmount(t *testing.T) {
	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

	t.Run("from-big-int", func(t *testing.T) {
		got, err := ParseAmount(new(big.Int).Set(want))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("from-json-number", func(t *testing.T) {
		got, err := ParseAmount(json.Number("123456789012345678901234567890"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("from-decimal-string", func(t *testing.T) {
		got, err := ParseAmount("123456789012345678901234567890")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("rejects-float", func(t *testing.T) {
		if _, err := ParseAmount(1.5); err == nil {
			t.Error("expected error for float input")
		}
	})

	t.Run("rejects-fractional-number", func(t *testing.T) {
		if _, err := ParseAmount(json.Number("1.5")); err == nil {
			t.Error("expected error for fractional number")
		}
	})
}

func TestUnwrapEnvelope(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		data, err := UnwrapEnvelope(map[string]any{"success": true, "data": map[string]any{"x": "y"}}, 200)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if data.(map[string]any)["x"] != "y" {
			t.Errorf("unexpected data: %v", data)
		}
	})

	t.Run("success-false-is-rejection-even-on-2xx", func(t *testing.T) {
		_, err := UnwrapEnvelope(map[string]any{"success": false, "error": "nope"}, 200)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var rejection *UpstreamRejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("expected *UpstreamRejectionError, got %T", err)
		}

		if rejection.StatusCode != 200 {
			t.Errorf("expected status 200, got %d", rejection.StatusCode)
		}

		if rejection.Body == "" {
			t.Error("expected offending payload to be attached")
		}
	})

	t.Run("rejection-carries-transport-status", func(t *testing.T) {
		_, err := UnwrapEnvelope(map[string]any{"success": false, "error": "nope"}, 201)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var rejection *UpstreamRejectionError
		if !errors.As(err, &rejection) {
			t.Fatalf("expected *UpstreamRejectionError, got %T", err)
		}

		if rejection.StatusCode != 201 {
			t.Errorf("expected the observed status 201, got %d", rejection.StatusCode)
		}
	})

	t.Run("missing-success-is-decode-error", func(t *testing.T) {
		_, err := UnwrapEnvelope(map[string]any{"data": map[string]any{}}, 200)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("expected *DecodeError, got %T", err)
		}
	})
}

const marketFixture = `{
	"address": "0x1111111111111111111111111111111111111111",
	"createdTxHash": "0x2222222222222222222222222222222222222222222222222222222222222222",
	"questionTitle": "Who wins the final?",
	"resolutionCriteria": "Official result",
	"marketType": "score",
	"isActive": true,
	"kappa": "123456789012345678901234567890",
	"totalQSquared": "400",
	"outcomeUnit": "1000000000000000000",
	"metadata": {
		"firstSide": {"name": "Reds"},
		"secondSide": {"name": "Blues"},
		"tags": ["football"],
		"futureField": {"anything": true}
	}
}`

func TestMarketFromPayload(t *testing.T) {
	t.Run("valid-market", func(t *testing.T) {
		m, err := MarketFromPayload(decodeJSON(t, marketFixture))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if CanonicalAddress(m.Address) != "0x1111111111111111111111111111111111111111" {
			t.Errorf("unexpected address: %s", CanonicalAddress(m.Address))
		}

		if m.Kind != KindScore {
			t.Errorf("expected score kind, got %s", m.Kind)
		}

		if !m.IsActive {
			t.Error("expected active market")
		}

		wantKappa, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
		if m.Kappa == nil || m.Kappa.Cmp(wantKappa) != 0 {
			t.Errorf("expected kappa %s, got %v", wantKappa, m.Kappa)
		}

		// Unknown metadata fields survive the projection.
		if _, ok := m.Metadata["futureField"]; !ok {
			t.Error("expected forward-compatible metadata to be preserved")
		}
	})

	t.Run("resolved-market-is-never-active", func(t *testing.T) {
		payload := decodeJSON(t, marketFixture).(map[string]any)
		payload["resolvedAt"] = "2025-06-01T00:00:00Z"
		payload["resolvedOutcome"] = "3"
		payload["isActive"] = true // contradictory upstream flag

		m, err := MarketFromPayload(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if m.IsActive {
			t.Error("resolved market must report isActive == false")
		}

		if m.ResolvedAt == nil {
			t.Fatal("expected resolvedAt to be set")
		}
	})

	t.Run("voided-market-with-outcome-rejected", func(t *testing.T) {
		payload := decodeJSON(t, marketFixture).(map[string]any)
		payload["voidedAt"] = "2025-06-01T00:00:00Z"
		payload["resolvedOutcome"] = "3"

		_, err := MarketFromPayload(payload)
		if err == nil {
			t.Fatal("expected error, got nil")
		}

		var decodeErr *DecodeError
		if !errors.As(err, &decodeErr) {
			t.Errorf("expected *DecodeError, got %T", err)
		}
	})

	t.Run("bad-address-rejected", func(t *testing.T) {
		payload := decodeJSON(t, marketFixture).(map[string]any)
		payload["address"] = "not-an-address"

		_, err := MarketFromPayload(payload)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("unknown-kind-rejected", func(t *testing.T) {
		payload := decodeJSON(t, marketFixture).(map[string]any)
		payload["marketType"] = "coin-flip"

		_, err := MarketFromPayload(payload)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})

	t.Run("nullable-fields-default-to-nil", func(t *testing.T) {
		m, err := MarketFromPayload(decodeJSON(t, marketFixture))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if m.ResolvedAt != nil || m.VoidedAt != nil || m.ResolvedBy != nil || m.ResolvedOutcome != nil {
			t.Error("expected absent resolution fields to be nil")
		}
	})

	t.Run("timestamp-from-unix-seconds", func(t *testing.T) {
		payload := decodeJSON(t, marketFixture).(map[string]any)
		payload["bettingCutoff"] = json.Number("1750000000")

		m, err := MarketFromPayload(payload)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := time.Unix(1750000000, 0).UTC()
		if m.BettingCutoff == nil || !m.BettingCutoff.Equal(want) {
			t.Errorf("expected cutoff %v, got %v", want, m.BettingCutoff)
		}
	})
}

func TestCalldataFromPayload(t *testing.T) {
	valid := `{
		"type": "calldata",
		"to": "0x1111111111111111111111111111111111111111",
		"value": "1000000000000000000",
		"calldata": "0xdeadbeef"
	}`

	t.Run("valid", func(t *testing.T) {
		cd, err := CalldataFromPayload(decodeJSON(t, valid))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if CanonicalAddress(cd.To) != "0x1111111111111111111111111111111111111111" {
			t.Errorf("unexpected to: %s", CanonicalAddress(cd.To))
		}

		want, _ := new(big.Int).SetString("1000000000000000000", 10)
		if cd.Value.Cmp(want) != 0 {
			t.Errorf("expected value %s, got %s", want, cd.Value)
		}

		if len(cd.Data) != 4 {
			t.Errorf("expected 4 payload bytes, got %d", len(cd.Data))
		}
	})

	t.Run("wrong-type-tag", func(t *testing.T) {
		payload := decodeJSON(t, valid).(map[string]any)
		payload["type"] = "estimate"

		if _, err := CalldataFromPayload(payload); err == nil {
			t.Error("expected error for wrong type tag")
		}
	})

	t.Run("non-canonical-calldata", func(t *testing.T) {
		payload := decodeJSON(t, valid).(map[string]any)
		payload["calldata"] = "0xabc"

		if _, err := CalldataFromPayload(payload); err == nil {
			t.Error("expected error for odd-length hex")
		}
	})
}

func TestCreatedMarketFromPayload(t *testing.T) {
	payload := decodeJSON(t, `{
		"marketAddress": "0x3333333333333333333333333333333333333333",
		"txHash": "0x4444444444444444444444444444444444444444444444444444444444444444"
	}`)

	created, err := CreatedMarketFromPayload(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if CanonicalAddress(created.Address) != "0x3333333333333333333333333333333333333333" {
		t.Errorf("unexpected address: %s", CanonicalAddress(created.Address))
	}
}

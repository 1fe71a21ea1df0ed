package codec

import (
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/onit-labs/onit-markets-go/pkg/types"
)

func TestEncode_Decode_RoundTrip(t *testing.T) {
	t.Run("bigint-beyond-float64-precision", func(t *testing.T) {
		stake, _ := new(big.Int).SetString("123456789012345678901234567890", 10)

		encoded, err := Encode(map[string]any{"stake": stake})
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}

		obj := decoded.(map[string]any)
		got, ok := obj["stake"].(*big.Int)
		if !ok {
			t.Fatalf("expected *big.Int, got %T", obj["stake"])
		}

		if got.Cmp(stake) != 0 {
			t.Errorf("expected %s, got %s", stake, got)
		}
	})

	t.Run("timestamp", func(t *testing.T) {
		cutoff := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

		encoded, err := Encode(map[string]any{"bettingCutoff": cutoff})
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}

		obj := decoded.(map[string]any)
		got, ok := obj["bettingCutoff"].(time.Time)
		if !ok {
			t.Fatalf("expected time.Time, got %T", obj["bettingCutoff"])
		}

		if !got.Equal(cutoff) {
			t.Errorf("expected %v, got %v", cutoff, got)
		}
	})

	t.Run("nested-and-array-paths", func(t *testing.T) {
		kappa := big.NewInt(42)
		inner, _ := new(big.Int).SetString("99999999999999999999", 10)

		encoded, err := Encode(map[string]any{
			"market": map[string]any{"kappa": kappa},
			"values": []any{inner, "plain"},
		})
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}

		obj := decoded.(map[string]any)

		market := obj["market"].(map[string]any)
		if got := market["kappa"].(*big.Int); got.Cmp(kappa) != 0 {
			t.Errorf("expected kappa %s, got %s", kappa, got)
		}

		values := obj["values"].([]any)
		if got := values[0].(*big.Int); got.Cmp(inner) != 0 {
			t.Errorf("expected values[0] %s, got %s", inner, got)
		}

		if values[1] != "plain" {
			t.Errorf("expected values[1] to stay a string, got %v", values[1])
		}
	})

	t.Run("no-special-values-stays-plain", func(t *testing.T) {
		encoded, err := Encode(map[string]any{"question": "Who wins?"})
		if err != nil {
			t.Fatalf("unexpected encode error: %v", err)
		}

		decoded, err := Decode(encoded)
		if err != nil {
			t.Fatalf("unexpected decode error: %v", err)
		}

		obj := decoded.(map[string]any)
		if _, hasEnvelope := obj["json"]; hasEnvelope {
			t.Error("expected plain output without envelope wrapper")
		}

		if obj["question"] != "Who wins?" {
			t.Errorf("unexpected round-trip value: %v", obj["question"])
		}
	})
}

func TestDecode_InputShapes(t *testing.T) {
	envelope := `{"json":{"stake":"12345678901234567890"},"meta":{"values":{"stake":["bigint"]}}}`
	want, _ := new(big.Int).SetString("12345678901234567890", 10)

	t.Run("envelope-bytes", func(t *testing.T) {
		decoded, err := Decode([]byte(envelope))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := decoded.(map[string]any)["stake"].(*big.Int)
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("already-parsed-envelope-object", func(t *testing.T) {
		parsed, err := Decode([]byte(envelope))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Decoding the result of a decode is a no-op on a plain object.
		again, err := DecodeValue(parsed)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := again.(map[string]any)["stake"].(*big.Int)
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("json-string-value", func(t *testing.T) {
		decoded, err := DecodeValue(envelope)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got := decoded.(map[string]any)["stake"].(*big.Int)
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})

	t.Run("plain-json", func(t *testing.T) {
		decoded, err := Decode([]byte(`{"question":"Who wins?","offset":5}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		obj := decoded.(map[string]any)
		if obj["question"] != "Who wins?" {
			t.Errorf("unexpected question: %v", obj["question"])
		}
	})

	t.Run("large-plain-number-preserved", func(t *testing.T) {
		decoded, err := Decode([]byte(`{"value":12345678901234567890}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		obj := decoded.(map[string]any)
		// Plain numbers stay json.Number so precision survives without
		// annotations.
		got, err := types.ParseAmount(obj["value"])
		if err != nil {
			t.Fatalf("unexpected parse error: %v", err)
		}

		want, _ := new(big.Int).SetString("12345678901234567890", 10)
		if got.Cmp(want) != 0 {
			t.Errorf("expected %s, got %s", want, got)
		}
	})
}

func TestDecode_MalformedEnvelope(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"unknown-annotation", `{"json":{"x":"1"},"meta":{"values":{"x":["decimal128"]}}}`},
		{"path-not-in-shadow", `{"json":{"x":"1"},"meta":{"values":{"y":["bigint"]}}}`},
		{"non-decimal-bigint", `{"json":{"x":"abc"},"meta":{"values":{"x":["bigint"]}}}`},
		{"bad-date", `{"json":{"x":"not-a-date"},"meta":{"values":{"x":["Date"]}}}`},
		{"meta-not-object", `{"json":{"x":"1"},"meta":7}`},
		{"annotation-not-array", `{"json":{"x":"1"},"meta":{"values":{"x":"bigint"}}}`},
		{"annotated-leaf-not-string", `{"json":{"x":7},"meta":{"values":{"x":["bigint"]}}}`},
		{"bad-array-index", `{"json":{"x":["1"]},"meta":{"values":{"x.5":["bigint"]}}}`},
		{"not-json-at-all", `{{{`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}

			var decodeErr *types.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Errorf("expected *types.DecodeError, got %T: %v", err, err)
			}

			if decodeErr.Raw == "" {
				t.Error("expected offending payload to be attached")
			}
		})
	}
}

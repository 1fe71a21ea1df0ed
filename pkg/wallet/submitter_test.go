package wallet

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

func TestNewClient(t *testing.T) {
	from := common.HexToAddress("0x1111111111111111111111111111111111111111")
	signer := func(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Transaction, error) {
		return tx, nil
	}

	t.Run("valid", func(t *testing.T) {
		client, err := NewClient("http://localhost:8545", from, signer, zap.NewNop())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if client == nil {
			t.Fatal("expected client")
		}
	})

	t.Run("empty-rpc-url", func(t *testing.T) {
		if _, err := NewClient("", from, signer, zap.NewNop()); err == nil {
			t.Error("expected error for empty RPC URL")
		}
	})

	t.Run("nil-signer", func(t *testing.T) {
		if _, err := NewClient("http://localhost:8545", from, nil, zap.NewNop()); err == nil {
			t.Error("expected error for nil signer")
		}
	})

	t.Run("nil-logger", func(t *testing.T) {
		if _, err := NewClient("http://localhost:8545", from, signer, nil); err == nil {
			t.Error("expected error for nil logger")
		}
	})
}

// Package wallet implements the transaction-submission collaborator over a
// JSON-RPC endpoint. Signing is delegated to a caller-supplied function so
// key material never enters this package.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/onit-labs/onit-markets-go/pkg/types"
)

// SignerFunc signs a prepared transaction. Implementations decide where the
// key lives: a local keystore, a hardware signer, a remote service.
type SignerFunc func(ctx context.Context, tx *ethtypes.Transaction) (*ethtypes.Transaction, error)

// Client submits bet transactions to the chain.
type Client struct {
	rpcURL string
	from   common.Address
	signer SignerFunc
	logger *zap.Logger
}

// NewClient creates a new transaction submitter.
func NewClient(rpcURL string, from common.Address, signer SignerFunc, logger *zap.Logger) (*Client, error) {
	if rpcURL == "" {
		return nil, errors.New("rpcURL cannot be empty")
	}

	if signer == nil {
		return nil, errors.New("signer cannot be nil")
	}

	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	return &Client{
		rpcURL: rpcURL,
		from:   from,
		signer: signer,
		logger: logger,
	}, nil
}

// SubmitTransaction prepares, signs, and broadcasts a transaction carrying
// the resolved calldata. Returns the transaction hash once the node has
// accepted it for broadcast; confirmation tracking is the caller's concern.
// Signing refusals surface as types.SigningError.
func (c *Client) SubmitTransaction(ctx context.Context, to common.Address, value *big.Int, data []byte) (string, error) {
	client, err := ethclient.DialContext(ctx, c.rpcURL)
	if err != nil {
		return "", fmt.Errorf("dial RPC: %w", err)
	}
	defer client.Close()

	nonce, err := client.PendingNonceAt(ctx, c.from)
	if err != nil {
		return "", fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("suggest gas price: %w", err)
	}

	gasLimit, err := client.EstimateGas(ctx, ethereum.CallMsg{
		From:  c.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return "", fmt.Errorf("estimate gas: %w", err)
	}

	tx := ethtypes.NewTx(&ethtypes.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
		Data:     data,
	})

	signed, err := c.signer(ctx, tx)
	if err != nil {
		return "", &types.SigningError{Err: fmt.Errorf("sign transaction: %w", err)}
	}

	err = client.SendTransaction(ctx, signed)
	if err != nil {
		return "", &types.SigningError{Err: fmt.Errorf("send transaction: %w", err)}
	}

	hash := signed.Hash().Hex()

	c.logger.Info("transaction-broadcast",
		zap.String("tx-hash", hash),
		zap.String("to", types.CanonicalAddress(to)),
		zap.String("value", value.String()))

	return hash, nil
}

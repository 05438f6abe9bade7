// Package oracle contains the chain oracle implementation resolving a
// transaction hash to verified on-chain facts.
package oracle

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	log "github.com/golang/glog"

	"github.com/sazalo101/paywall/pkg/model"
)

const (
	defaultLookupTimeoutSecs = 5
)

// NewEthOracleParams are the params to initialize a new EthOracle
type NewEthOracleParams struct {
	Client  TransactionReader
	Timeout time.Duration
}

// TransactionReader is the subset of the eth client used by the oracle.
// Satisfied by ethclient.Client.
type TransactionReader interface {
	TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error)
}

// NewEthOracle is a convenience function to init an EthOracle
func NewEthOracle(params *NewEthOracleParams) *EthOracle {
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultLookupTimeoutSecs * time.Second
	}
	return &EthOracle{
		client:  params.Client,
		timeout: timeout,
	}
}

// EthOracle resolves transaction hashes against an Ethereum-compatible node.
// Every lookup carries its own deadline so a hung node never blocks a
// verification indefinitely.
type EthOracle struct {
	client  TransactionReader
	timeout time.Duration
}

// Lookup resolves the transaction hash to its on-chain facts
func (o *EthOracle) Lookup(ctx context.Context, txHash common.Hash) (*model.TransactionFacts, error) {
	lookupCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	tx, isPending, err := o.client.TransactionByHash(lookupCtx, txHash)
	if err != nil {
		if err == ethereum.NotFound {
			return nil, model.ErrTransactionNotFound
		}
		if lookupCtx.Err() == context.DeadlineExceeded {
			return nil, model.ErrOracleTimeout
		}
		log.Errorf("Error looking up transaction %v: err: %v", txHash.Hex(), err)
		return nil, model.ErrOracleUnavailable
	}
	if isPending {
		return nil, model.ErrTransactionPending
	}

	var recipient common.Address
	if tx.To() != nil {
		recipient = *tx.To()
	}
	return model.NewTransactionFacts(&model.TransactionFactsParams{
		TxHash:    txHash,
		Amount:    tx.Value(),
		Recipient: recipient,
		Confirmed: true,
	}), nil
}

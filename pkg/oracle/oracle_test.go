package oracle_test

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/oracle"
)

var (
	lookupTxHash = common.HexToHash("0xabc1")
	recipient    = common.HexToAddress("0x77e5aaBddb760FBa989A1C4B2CDd4aA8Fa3d311d")
)

// TestTransactionReader returns a scripted transaction or error
type TestTransactionReader struct {
	tx        *types.Transaction
	isPending bool
	err       error
}

func (r *TestTransactionReader) TransactionByHash(ctx context.Context,
	hash common.Hash) (*types.Transaction, bool, error) {
	if r.err != nil {
		return nil, false, r.err
	}
	return r.tx, r.isPending, nil
}

func newTestOracle(reader *TestTransactionReader) *oracle.EthOracle {
	return oracle.NewEthOracle(&oracle.NewEthOracleParams{Client: reader})
}

func TestLookupConfirmed(t *testing.T) {
	tx := types.NewTransaction(0, recipient, big.NewInt(5100000), 21000, big.NewInt(1), nil)
	ethOracle := newTestOracle(&TestTransactionReader{tx: tx})

	facts, err := ethOracle.Lookup(context.Background(), lookupTxHash)
	if err != nil {
		t.Fatalf("Should not have gotten error on confirmed tx: err: %v", err)
	}
	if facts.Amount().Int64() != 5100000 {
		t.Errorf("Should have gotten the tx value, got %v", facts.Amount())
	}
	if facts.Recipient() != recipient {
		t.Errorf("Should have gotten the tx recipient, got %v", facts.Recipient().Hex())
	}
	if !facts.Confirmed() {
		t.Errorf("Should have marked the tx confirmed")
	}
}

func TestLookupNotFound(t *testing.T) {
	ethOracle := newTestOracle(&TestTransactionReader{err: ethereum.NotFound})

	_, err := ethOracle.Lookup(context.Background(), lookupTxHash)
	if err != model.ErrTransactionNotFound {
		t.Errorf("Should have gotten ErrTransactionNotFound, got %v", err)
	}
	if model.IsErrTransient(err) {
		t.Errorf("Unknown tx should not be a transient failure")
	}
}

func TestLookupPending(t *testing.T) {
	tx := types.NewTransaction(0, recipient, big.NewInt(5100000), 21000, big.NewInt(1), nil)
	ethOracle := newTestOracle(&TestTransactionReader{tx: tx, isPending: true})

	_, err := ethOracle.Lookup(context.Background(), lookupTxHash)
	if err != model.ErrTransactionPending {
		t.Errorf("Should have gotten ErrTransactionPending, got %v", err)
	}
	if !model.IsErrTransient(err) {
		t.Errorf("Pending tx should be a transient failure")
	}
}

func TestLookupTransportFailure(t *testing.T) {
	ethOracle := newTestOracle(&TestTransactionReader{err: errors.New("connection refused")})

	_, err := ethOracle.Lookup(context.Background(), lookupTxHash)
	if err != model.ErrOracleUnavailable {
		t.Errorf("Should have gotten ErrOracleUnavailable, got %v", err)
	}
	if !model.IsErrTransient(err) {
		t.Errorf("An unreachable oracle should be a transient failure")
	}
}

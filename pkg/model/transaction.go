package model

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// TransactionFactsParams are the params to initialize a new TransactionFacts
type TransactionFactsParams struct {
	TxHash    common.Hash
	Amount    *big.Int
	Recipient common.Address
	Confirmed bool
}

// NewTransactionFacts is a convenience method to init a TransactionFacts struct
func NewTransactionFacts(params *TransactionFactsParams) *TransactionFacts {
	return &TransactionFacts{
		txHash:    params.TxHash,
		amount:    params.Amount,
		recipient: params.Recipient,
		confirmed: params.Confirmed,
	}
}

// TransactionFacts are the verified on-chain facts for a transaction as
// reported by the chain oracle. Not persisted; only the hash and the derived
// fee split are stored on commit.
type TransactionFacts struct {
	txHash common.Hash

	// amount in the chain's smallest currency unit
	amount *big.Int

	recipient common.Address

	confirmed bool
}

// TxHash is the hash of the transaction
func (t *TransactionFacts) TxHash() common.Hash {
	return t.txHash
}

// Amount is the transferred amount in the chain's smallest currency unit
func (t *TransactionFacts) Amount() *big.Int {
	return t.amount
}

// Recipient is the destination address of the transaction
func (t *TransactionFacts) Recipient() common.Address {
	return t.recipient
}

// Confirmed is true when the oracle reports the transaction as final
func (t *TransactionFacts) Confirmed() bool {
	return t.confirmed
}

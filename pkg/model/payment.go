package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// PaymentRecordParams are the params to initialize a new PaymentRecord
type PaymentRecordParams struct {
	PaymentID       int64
	ContentID       string
	UserID          string
	TxHash          common.Hash
	Amount          float64
	ServiceFee      float64
	CreatorEarnings float64
	PurchaseDateTs  int64
}

// NewPaymentRecord is a convenience method to init a PaymentRecord struct
func NewPaymentRecord(params *PaymentRecordParams) *PaymentRecord {
	return &PaymentRecord{
		paymentID:       params.PaymentID,
		contentID:       params.ContentID,
		userID:          params.UserID,
		txHash:          params.TxHash,
		amount:          params.Amount,
		serviceFee:      params.ServiceFee,
		creatorEarnings: params.CreatorEarnings,
		purchaseDateTs:  params.PurchaseDateTs,
	}
}

// PaymentRecord represents one committed redemption of a verified on-chain
// transaction for one content item by one user. Append-only; no two records
// share the same (contentID, txHash).
type PaymentRecord struct {
	// paymentID is assigned by the store on commit
	paymentID int64

	contentID string

	userID string

	txHash common.Hash

	// amount is the price portion, equal to creatorEarnings
	amount float64

	serviceFee float64

	creatorEarnings float64

	purchaseDateTs int64
}

// PaymentID is the store-assigned record ID
func (p *PaymentRecord) PaymentID() int64 {
	return p.paymentID
}

// ContentID is the content item this payment unlocked
func (p *PaymentRecord) ContentID() string {
	return p.contentID
}

// UserID is the paying user
func (p *PaymentRecord) UserID() string {
	return p.userID
}

// TxHash is the hash of the redeemed on-chain transaction
func (p *PaymentRecord) TxHash() common.Hash {
	return p.txHash
}

// Amount is the price portion of the payment in currency units
func (p *PaymentRecord) Amount() float64 {
	return p.amount
}

// ServiceFee is the platform cut in currency units
func (p *PaymentRecord) ServiceFee() float64 {
	return p.serviceFee
}

// CreatorEarnings is the creator cut in currency units
func (p *PaymentRecord) CreatorEarnings() float64 {
	return p.creatorEarnings
}

// PurchaseDateTs returns the timestamp of the commit
func (p *PaymentRecord) PurchaseDateTs() int64 {
	return p.purchaseDateTs
}

package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// PendingRedemptionParams are the params to initialize a new PendingRedemption
type PendingRedemptionParams struct {
	PendingID     int64
	ContentID     string
	UserID        string
	TxHash        common.Hash
	Attempts      int
	CreatedDateTs int64
	LastAttemptTs int64
}

// NewPendingRedemption is a convenience method to init a PendingRedemption struct
func NewPendingRedemption(params *PendingRedemptionParams) *PendingRedemption {
	return &PendingRedemption{
		pendingID:     params.PendingID,
		contentID:     params.ContentID,
		userID:        params.UserID,
		txHash:        params.TxHash,
		attempts:      params.Attempts,
		createdDateTs: params.CreatedDateTs,
		lastAttemptTs: params.LastAttemptTs,
	}
}

// PendingRedemption is a redemption attempt that failed on a transient oracle
// outcome (unconfirmed tx, lookup timeout) and is queued for retry. Retrying
// is safe since verification is idempotent on the redemption key.
type PendingRedemption struct {
	pendingID int64

	contentID string

	userID string

	txHash common.Hash

	// attempts is the number of retries performed so far
	attempts int

	createdDateTs int64

	lastAttemptTs int64
}

// PendingID is the store-assigned row ID
func (p *PendingRedemption) PendingID() int64 {
	return p.pendingID
}

// ContentID is the content item the redemption targets
func (p *PendingRedemption) ContentID() string {
	return p.contentID
}

// UserID is the redeeming user
func (p *PendingRedemption) UserID() string {
	return p.userID
}

// TxHash is the claimed transaction hash
func (p *PendingRedemption) TxHash() common.Hash {
	return p.txHash
}

// Attempts returns the number of retries performed so far
func (p *PendingRedemption) Attempts() int {
	return p.attempts
}

// CreatedDateTs returns the timestamp the redemption was queued
func (p *PendingRedemption) CreatedDateTs() int64 {
	return p.createdDateTs
}

// LastAttemptTs returns the timestamp of the last retry
func (p *PendingRedemption) LastAttemptTs() int64 {
	return p.lastAttemptTs
}

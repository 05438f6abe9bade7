// Package model contains the general data models and interfaces for the paywall service.
package model

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

// ErrPersisterDuplicate is returned by conditional inserts when a row with the
// same key already exists. The store's uniqueness constraint is the sole
// arbiter; persisters must never check-then-insert.
var ErrPersisterDuplicate = errors.New("persister: duplicate entry")

// ContentPersister is the interface to store content items
type ContentPersister interface {
	// ContentByID retrieves a content item by its unique ID
	ContentByID(contentID string) (*ContentItem, error)
	// ContentsByGroup retrieves all content items sharing a group ID
	ContentsByGroup(groupID string) ([]*ContentItem, error)
	// CreateContent creates a new content item. Returns
	// ErrPersisterDuplicate on an ID collision.
	CreateContent(content *ContentItem) error
}

// CreatorPersister is the interface to store creators
type CreatorPersister interface {
	// CreatorByID retrieves a creator by ID
	CreatorByID(creatorID string) (*Creator, error)
	// UpsertCreator creates or updates a creator, last write wins on the
	// wallet address
	UpsertCreator(creator *Creator) error
}

// PaymentPersister is the interface to store committed payment records
type PaymentPersister interface {
	// CreatePaymentIfAbsent atomically inserts the record unless one
	// already exists for (contentID, txHash). Returns the committed record
	// with its store-assigned ID, or ErrPersisterDuplicate.
	CreatePaymentIfAbsent(record *PaymentRecord) (*PaymentRecord, error)
	// PaymentByContentAndUser retrieves the most recent payment for the
	// exact (contentID, userID) pair
	PaymentByContentAndUser(contentID string, userID string) (*PaymentRecord, error)
	// PaymentByGroupAndUser retrieves the most recent payment by the user
	// for any content whose ID carries the group prefix
	PaymentByGroupAndUser(groupID string, userID string) (*PaymentRecord, error)
}

// PendingRedemptionPersister is the interface to store redemptions queued for retry
type PendingRedemptionPersister interface {
	// CreatePendingRedemption queues a redemption for retry. Returns
	// ErrPersisterDuplicate if the redemption is already queued.
	CreatePendingRedemption(pending *PendingRedemption) error
	// PendingRedemptions retrieves up to limit queued redemptions, oldest first
	PendingRedemptions(limit int) ([]*PendingRedemption, error)
	// UpdatePendingRedemptionAttempts bumps the attempt count and timestamp
	UpdatePendingRedemptionAttempts(pendingID int64, attempts int, lastAttemptTs int64) error
	// DeletePendingRedemption removes a queued redemption
	DeletePendingRedemption(pendingID int64) error
}

// ChainOracle is the interface to the external capability resolving a
// transaction hash to authoritative on-chain payment facts.
type ChainOracle interface {
	// Lookup resolves the transaction hash to its on-chain facts. Returns
	// ErrTransactionNotFound, ErrTransactionPending or ErrOracleTimeout.
	Lookup(ctx context.Context, txHash common.Hash) (*TransactionFacts, error)
}

package model

import (
	"github.com/ethereum/go-ethereum/common"
)

// CreatorParams are the params to initialize a new Creator
type CreatorParams struct {
	CreatorID         string
	WalletAddress     common.Address
	LastUpdatedDateTs int64
}

// NewCreator is a convenience method to init a Creator struct
func NewCreator(params *CreatorParams) *Creator {
	return &Creator{
		creatorID:         params.CreatorID,
		walletAddress:     params.WalletAddress,
		lastUpdatedDateTs: params.LastUpdatedDateTs,
	}
}

// Creator represents a content creator with a payout wallet. Identity is
// externally assigned and immutable, the wallet address is last-write-wins.
type Creator struct {
	creatorID string

	// walletAddress is the destination for creator earnings
	walletAddress common.Address

	lastUpdatedDateTs int64
}

// CreatorID is the externally assigned creator identity
func (c *Creator) CreatorID() string {
	return c.creatorID
}

// WalletAddress is the payout destination wallet
func (c *Creator) WalletAddress() common.Address {
	return c.walletAddress
}

// LastUpdatedDateTs returns the timestamp of the last wallet update
func (c *Creator) LastUpdatedDateTs() int64 {
	return c.lastUpdatedDateTs
}

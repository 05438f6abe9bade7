package persistence

import (
	cpersist "github.com/joincivil/go-common/pkg/persistence"

	"github.com/sazalo101/paywall/pkg/model"
)

// NullPersister is a persister that does nothing but return default values
type NullPersister struct {
}

// ContentByID returns no content
func (n *NullPersister) ContentByID(contentID string) (*model.ContentItem, error) {
	return nil, cpersist.ErrPersisterNoResults
}

// ContentsByGroup returns no content
func (n *NullPersister) ContentsByGroup(groupID string) ([]*model.ContentItem, error) {
	return []*model.ContentItem{}, nil
}

// CreateContent does nothing
func (n *NullPersister) CreateContent(content *model.ContentItem) error {
	return nil
}

// CreatorByID returns no creator
func (n *NullPersister) CreatorByID(creatorID string) (*model.Creator, error) {
	return nil, cpersist.ErrPersisterNoResults
}

// UpsertCreator does nothing
func (n *NullPersister) UpsertCreator(creator *model.Creator) error {
	return nil
}

// CreatePaymentIfAbsent returns the record unchanged
func (n *NullPersister) CreatePaymentIfAbsent(record *model.PaymentRecord) (*model.PaymentRecord, error) {
	return record, nil
}

// PaymentByContentAndUser returns no payment
func (n *NullPersister) PaymentByContentAndUser(contentID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

// PaymentByGroupAndUser returns no payment
func (n *NullPersister) PaymentByGroupAndUser(groupID string, userID string) (*model.PaymentRecord, error) {
	return nil, cpersist.ErrPersisterNoResults
}

// CreatePendingRedemption does nothing
func (n *NullPersister) CreatePendingRedemption(pending *model.PendingRedemption) error {
	return nil
}

// PendingRedemptions returns no pending redemptions
func (n *NullPersister) PendingRedemptions(limit int) ([]*model.PendingRedemption, error) {
	return []*model.PendingRedemption{}, nil
}

// UpdatePendingRedemptionAttempts does nothing
func (n *NullPersister) UpdatePendingRedemptionAttempts(pendingID int64, attempts int,
	lastAttemptTs int64) error {
	return nil
}

// DeletePendingRedemption does nothing
func (n *NullPersister) DeletePendingRedemption(pendingID int64) error {
	return nil
}

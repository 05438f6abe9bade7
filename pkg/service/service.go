// Package service is the transport-agnostic request surface of the paywall.
// An HTTP layer maps onto these methods one to one.
package service

import (
	"context"
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	cpersist "github.com/joincivil/go-common/pkg/persistence"
	cpubsub "github.com/joincivil/go-common/pkg/pubsub"
	ctime "github.com/joincivil/go-common/pkg/time"

	"github.com/sazalo101/paywall/pkg/gate"
	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/pricing"
	"github.com/sazalo101/paywall/pkg/registry"
	"github.com/sazalo101/paywall/pkg/verifier"
)

// NewServiceParams are the params to initialize a new Service
type NewServiceParams struct {
	Registry         *registry.ContentRegistry
	Verifier         *verifier.PaymentVerifier
	Gate             *gate.AccessGate
	ContentPersister model.ContentPersister
	CreatorPersister model.CreatorPersister
	PendingPersister model.PendingRedemptionPersister

	// GooglePubSub publishes payment-committed events when set
	GooglePubSub          *cpubsub.GooglePubSub
	GooglePubSubTopicName string

	// EnablePublicListing serves ungated group listings. Off by default;
	// it bypasses the paywall and exists for free-preview deployments only.
	EnablePublicListing bool
}

// NewService is a convenience function to init a Service
func NewService(params *NewServiceParams) *Service {
	return &Service{
		registry:            params.Registry,
		verifier:            params.Verifier,
		gate:                params.Gate,
		contentPersister:    params.ContentPersister,
		creatorPersister:    params.CreatorPersister,
		pendingPersister:    params.PendingPersister,
		googlePubSub:        params.GooglePubSub,
		pubSubTopicName:     params.GooglePubSubTopicName,
		enablePublicListing: params.EnablePublicListing,
	}
}

// Service composes the registry, verifier and gate into the paywall's
// caller-facing operations
type Service struct {
	registry            *registry.ContentRegistry
	verifier            *verifier.PaymentVerifier
	gate                *gate.AccessGate
	contentPersister    model.ContentPersister
	creatorPersister    model.CreatorPersister
	pendingPersister    model.PendingRedemptionPersister
	googlePubSub        *cpubsub.GooglePubSub
	pubSubTopicName     string
	enablePublicListing bool
}

// PaymentMessage is the pubsub payload published on a committed payment
type PaymentMessage struct {
	ContentID       string  `json:"contentId"`
	UserID          string  `json:"userId"`
	TxHash          string  `json:"txHash"`
	Amount          float64 `json:"amount"`
	ServiceFee      float64 `json:"serviceFee"`
	CreatorEarnings float64 `json:"creatorEarnings"`
	ScaleVersion    int     `json:"scaleVersion"`
}

// RegisterCreator creates or updates a creator's payout wallet, last write wins
func (s *Service) RegisterCreator(creatorID string, walletAddress common.Address) (*model.Creator, error) {
	if creatorID == "" {
		return nil, model.ErrInvalidRequest
	}
	creator := model.NewCreator(&model.CreatorParams{
		CreatorID:         creatorID,
		WalletAddress:     walletAddress,
		LastUpdatedDateTs: ctime.CurrentEpochSecsInInt64(),
	})
	err := s.creatorPersister.UpsertCreator(creator)
	if err != nil {
		log.Errorf("Error upserting creator %v: err: %v", creatorID, err)
		return nil, model.ErrStoreUnavailable
	}
	return creator, nil
}

// CreateContent registers a new content item via the registry
func (s *Service) CreateContent(ctx context.Context,
	req *registry.CreateContentRequest) (*model.ContentItem, error) {
	return s.registry.CreateContent(ctx, req)
}

// ListContentByGroup returns all content in a group without any access check.
// Only served when public listing is enabled.
func (s *Service) ListContentByGroup(groupID string) ([]*model.ContentItem, error) {
	if !s.enablePublicListing {
		return nil, model.ErrPublicListingDisabled
	}
	contents, err := s.contentPersister.ContentsByGroup(groupID)
	if err != nil && err != cpersist.ErrPersisterNoResults {
		log.Errorf("Error listing contents for group %v: err: %v", groupID, err)
		return nil, model.ErrStoreUnavailable
	}
	if len(contents) == 0 {
		return nil, model.ErrContentNotFound
	}
	return contents, nil
}

// RedeemContent verifies the claimed transaction and unlocks the content for
// the user. Transient failures queue the redemption for retry by the
// reconciler and are still reported to the caller.
func (s *Service) RedeemContent(ctx context.Context, contentID string, userID string,
	txHash common.Hash) (*model.PaymentRecord, error) {
	if contentID == "" || userID == "" {
		return nil, model.ErrInvalidRequest
	}
	record, err := s.verifier.VerifyAndCommit(ctx, contentID, userID, txHash)
	if err != nil {
		if model.IsErrTransient(err) {
			s.queueRedemption(contentID, userID, txHash)
		}
		return nil, err
	}
	s.publishPayment(record)
	return record, nil
}

// ContentAccess resolves the content in a group the user has paid for
func (s *Service) ContentAccess(groupID string, userID string) (*model.ContentItem, error) {
	return s.gate.ContentByGroupAccess(groupID, userID)
}

// CheckAccess reports whether the user has unlocked the exact content item
func (s *Service) CheckAccess(contentID string, userID string) (bool, error) {
	return s.gate.CheckAccess(contentID, userID)
}

func (s *Service) queueRedemption(contentID string, userID string, txHash common.Hash) {
	pending := model.NewPendingRedemption(&model.PendingRedemptionParams{
		ContentID:     contentID,
		UserID:        userID,
		TxHash:        txHash,
		CreatedDateTs: ctime.CurrentEpochSecsInInt64(),
	})
	err := s.pendingPersister.CreatePendingRedemption(pending)
	if err != nil && err != model.ErrPersisterDuplicate {
		log.Errorf("Error queueing redemption for content %v: err: %v", contentID, err)
	}
}

// publishPayment publishes the committed payment. Best effort; a publish
// failure never affects the already-committed record.
func (s *Service) publishPayment(record *model.PaymentRecord) {
	if s.googlePubSub == nil || s.pubSubTopicName == "" {
		return
	}
	msg := &PaymentMessage{
		ContentID:       record.ContentID(),
		UserID:          record.UserID(),
		TxHash:          record.TxHash().Hex(),
		Amount:          record.Amount(),
		ServiceFee:      record.ServiceFee(),
		CreatorEarnings: record.CreatorEarnings(),
		ScaleVersion:    pricing.FeeScaleVersion,
	}
	msgBytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error building payment message: err: %v", err)
		return
	}
	err = s.googlePubSub.Publish(&cpubsub.GooglePubSubMsg{
		Topic:   s.pubSubTopicName,
		Payload: string(msgBytes),
	})
	if err != nil {
		log.Errorf("Error publishing payment message: err: %v", err)
	}
}

// Package registry handles creation and identity assignment for content items.
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	cpersist "github.com/joincivil/go-common/pkg/persistence"
	ctime "github.com/joincivil/go-common/pkg/time"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/pricing"
	"github.com/sazalo101/paywall/pkg/verifier"
)

const (
	// maxIDAttempts bounds retries when the store rejects a generated ID
	maxIDAttempts = 3
)

// NewContentRegistryParams are the params to initialize a new ContentRegistry
type NewContentRegistryParams struct {
	ContentPersister model.ContentPersister
	CreatorPersister model.CreatorPersister
	Verifier         *verifier.PaymentVerifier
	Pricing          *pricing.Policy

	// ListingFeeRequired gates creation on proof of the flat listing fee
	ListingFeeRequired bool
}

// NewContentRegistry is a convenience function to init a ContentRegistry
func NewContentRegistry(params *NewContentRegistryParams) *ContentRegistry {
	return &ContentRegistry{
		contentPersister:   params.ContentPersister,
		creatorPersister:   params.CreatorPersister,
		verifier:           params.Verifier,
		pricing:            params.Pricing,
		listingFeeRequired: params.ListingFeeRequired,
		seq:                time.Now().UnixNano(),
	}
}

// CreateContentRequest are the caller-supplied fields for a new content item
type CreateContentRequest struct {
	CreatorID   string
	GroupID     string
	ContentType model.ContentType
	Title       string
	Description string
	URL         string
	Price       float64
	Metadata    model.ContentMetadata

	// FeeTxHash is the proof-of-fee transaction, required only when the
	// registry is fee-gated
	FeeTxHash common.Hash
}

// ContentRegistry creates content items with globally unique, group-prefixed
// IDs. IDs carry a strictly increasing per-process sequence; the store's
// primary key rejects cross-process collisions and the registry retries with
// a bumped sequence.
type ContentRegistry struct {
	contentPersister   model.ContentPersister
	creatorPersister   model.CreatorPersister
	verifier           *verifier.PaymentVerifier
	pricing            *pricing.Policy
	listingFeeRequired bool

	mutex sync.Mutex
	seq   int64
}

// CreateContent validates the request, optionally verifies the flat listing
// fee, and persists a new content item
func (r *ContentRegistry) CreateContent(ctx context.Context,
	req *CreateContentRequest) (*model.ContentItem, error) {
	if req.CreatorID == "" || req.GroupID == "" {
		return nil, model.ErrInvalidRequest
	}
	if !req.ContentType.Valid() {
		return nil, model.ErrInvalidContentType
	}
	if req.Price < 0 {
		return nil, model.ErrInvalidPrice
	}

	_, err := r.creatorPersister.CreatorByID(req.CreatorID)
	if err != nil {
		if err == cpersist.ErrPersisterNoResults {
			return nil, model.ErrCreatorNotFound
		}
		log.Errorf("Error retrieving creator %v: err: %v", req.CreatorID, err)
		return nil, model.ErrStoreUnavailable
	}

	if r.listingFeeRequired {
		_, err = r.verifier.VerifyMinimum(ctx, req.FeeTxHash, r.pricing.ListingFeeUnits())
		if err != nil {
			return nil, err
		}
	}

	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		content := model.NewContentItem(&model.ContentItemParams{
			ID:            r.nextID(req.GroupID),
			ContentType:   req.ContentType,
			Title:         req.Title,
			Description:   req.Description,
			URL:           req.URL,
			Price:         req.Price,
			CreatorID:     req.CreatorID,
			GroupID:       req.GroupID,
			Metadata:      req.Metadata,
			CreatedDateTs: ctime.CurrentEpochSecsInInt64(),
		})
		err = r.contentPersister.CreateContent(content)
		if err == model.ErrPersisterDuplicate {
			log.Infof("Content ID collision for %v, retrying", content.ID())
			continue
		}
		if err != nil {
			log.Errorf("Error creating content in group %v: err: %v", req.GroupID, err)
			return nil, model.ErrStoreUnavailable
		}
		return content, nil
	}
	log.Errorf("Exhausted content ID attempts for group %v", req.GroupID)
	return nil, model.ErrContentIDConflict
}

// nextID returns the next group-prefixed content ID. The sequence is seeded
// from nanotime so restarts keep it increasing.
func (r *ContentRegistry) nextID(groupID string) string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.seq++
	return fmt.Sprintf("%v-%v", groupID, r.seq)
}

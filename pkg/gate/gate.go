// Package gate decides whether a prior committed payment grants a user access
// to content.
package gate

import (
	log "github.com/golang/glog"

	cpersist "github.com/joincivil/go-common/pkg/persistence"

	"github.com/sazalo101/paywall/pkg/model"
)

// NewAccessGate is a convenience function to init an AccessGate
func NewAccessGate(contentPersister model.ContentPersister,
	paymentPersister model.PaymentPersister) *AccessGate {
	return &AccessGate{
		contentPersister: contentPersister,
		paymentPersister: paymentPersister,
	}
}

// AccessGate grants access iff a committed payment record exists for the
// gating key. Access is never inferred from payment intent.
type AccessGate struct {
	contentPersister model.ContentPersister
	paymentPersister model.PaymentPersister
}

// ContentByGroupAccess resolves which content in the group the user is
// entitled to, based on their most recent payment for any content carrying
// the group prefix. Returns ErrPaymentRequired when the group has content but
// the user has no payment, ErrContentNotFound when the group has no content.
// The two are distinct on purpose.
func (g *AccessGate) ContentByGroupAccess(groupID string, userID string) (*model.ContentItem, error) {
	payment, err := g.paymentPersister.PaymentByGroupAndUser(groupID, userID)
	if err == cpersist.ErrPersisterNoResults {
		contents, cerr := g.contentPersister.ContentsByGroup(groupID)
		if cerr != nil && cerr != cpersist.ErrPersisterNoResults {
			log.Errorf("Error retrieving contents for group %v: err: %v", groupID, cerr)
			return nil, model.ErrStoreUnavailable
		}
		if len(contents) == 0 {
			return nil, model.ErrContentNotFound
		}
		return nil, model.ErrPaymentRequired
	}
	if err != nil {
		log.Errorf("Error retrieving payment for group %v user %v: err: %v", groupID, userID, err)
		return nil, model.ErrStoreUnavailable
	}

	content, err := g.contentPersister.ContentByID(payment.ContentID())
	if err != nil {
		if err == cpersist.ErrPersisterNoResults {
			return nil, model.ErrContentNotFound
		}
		log.Errorf("Error retrieving content %v: err: %v", payment.ContentID(), err)
		return nil, model.ErrStoreUnavailable
	}
	return content, nil
}

// CheckAccess returns true iff a committed payment exists for the exact
// (contentID, userID) pair
func (g *AccessGate) CheckAccess(contentID string, userID string) (bool, error) {
	_, err := g.paymentPersister.PaymentByContentAndUser(contentID, userID)
	if err == cpersist.ErrPersisterNoResults {
		return false, nil
	}
	if err != nil {
		log.Errorf("Error retrieving payment for content %v user %v: err: %v", contentID, userID, err)
		return false, model.ErrStoreUnavailable
	}
	return true, nil
}

// Package verifier implements the payment verification state machine.
package verifier

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	log "github.com/golang/glog"

	cpersist "github.com/joincivil/go-common/pkg/persistence"
	ctime "github.com/joincivil/go-common/pkg/time"

	"github.com/sazalo101/paywall/pkg/model"
	"github.com/sazalo101/paywall/pkg/pricing"
)

// NewPaymentVerifierParams are the params to initialize a new PaymentVerifier
type NewPaymentVerifierParams struct {
	Oracle           model.ChainOracle
	ContentPersister model.ContentPersister
	CreatorPersister model.CreatorPersister
	PaymentPersister model.PaymentPersister
	Pricing          *pricing.Policy

	// RequireCreatorPayout makes verification fail when the content's
	// creator has no payout record. Off in deployments that route payouts
	// out of band.
	RequireCreatorPayout bool
}

// NewPaymentVerifier is a convenience function to init a PaymentVerifier
func NewPaymentVerifier(params *NewPaymentVerifierParams) *PaymentVerifier {
	return &PaymentVerifier{
		oracle:               params.Oracle,
		contentPersister:     params.ContentPersister,
		creatorPersister:     params.CreatorPersister,
		paymentPersister:     params.PaymentPersister,
		pricing:              params.Pricing,
		requireCreatorPayout: params.RequireCreatorPayout,
	}
}

// PaymentVerifier validates claimed transactions against content requirements
// and commits payment records. The store's uniqueness constraint on
// (contentID, txHash) makes redemption at-most-once; the verifier never
// deduplicates in memory and writes nothing on any failure path.
type PaymentVerifier struct {
	oracle               model.ChainOracle
	contentPersister     model.ContentPersister
	creatorPersister     model.CreatorPersister
	paymentPersister     model.PaymentPersister
	pricing              *pricing.Policy
	requireCreatorPayout bool
}

// VerifyMinimum resolves the transaction via the oracle and checks that its
// amount covers minUnits in the chain's smallest unit. This is the single
// verification primitive shared by content payments and flat creation fees.
func (v *PaymentVerifier) VerifyMinimum(ctx context.Context, txHash common.Hash,
	minUnits *big.Int) (*model.TransactionFacts, error) {
	facts, err := v.oracle.Lookup(ctx, txHash)
	if err != nil {
		return nil, err
	}
	if facts.Amount().Cmp(minUnits) < 0 {
		log.Infof("Insufficient payment: tx: %v, amount: %v, required: %v",
			txHash.Hex(), facts.Amount(), minUnits)
		return nil, model.ErrPaymentInsufficient
	}
	return facts, nil
}

// VerifyAndCommit validates the claimed transaction against the content's
// price quote and atomically commits a payment record. Overpayment is
// accepted; the excess is not tracked. Returns the committed record, or
// ErrDuplicateRedemption when the transaction was already consumed for this
// content.
func (v *PaymentVerifier) VerifyAndCommit(ctx context.Context, contentID string,
	userID string, txHash common.Hash) (*model.PaymentRecord, error) {
	content, err := v.contentPersister.ContentByID(contentID)
	if err != nil {
		if err == cpersist.ErrPersisterNoResults {
			return nil, model.ErrContentNotFound
		}
		log.Errorf("Error retrieving content %v: err: %v", contentID, err)
		return nil, model.ErrStoreUnavailable
	}

	if v.requireCreatorPayout {
		_, err = v.creatorPersister.CreatorByID(content.CreatorID())
		if err != nil {
			if err == cpersist.ErrPersisterNoResults {
				return nil, model.ErrCreatorNotFound
			}
			log.Errorf("Error retrieving creator %v: err: %v", content.CreatorID(), err)
			return nil, model.ErrStoreUnavailable
		}
	}

	quote := v.pricing.Quote(content.Price())
	_, err = v.VerifyMinimum(ctx, txHash, quote.RequiredUnits)
	if err != nil {
		return nil, err
	}

	record := model.NewPaymentRecord(&model.PaymentRecordParams{
		ContentID:       contentID,
		UserID:          userID,
		TxHash:          txHash,
		Amount:          quote.CreatorEarnings,
		ServiceFee:      quote.ServiceFee,
		CreatorEarnings: quote.CreatorEarnings,
		PurchaseDateTs:  ctime.CurrentEpochSecsInInt64(),
	})
	committed, err := v.paymentPersister.CreatePaymentIfAbsent(record)
	if err != nil {
		if err == model.ErrPersisterDuplicate {
			return nil, model.ErrDuplicateRedemption
		}
		log.Errorf("Error committing payment for content %v: err: %v", contentID, err)
		return nil, model.ErrStoreUnavailable
	}
	return committed, nil
}

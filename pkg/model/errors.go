package model

import (
	"fmt"

	"github.com/pkg/errors"
)

// Error is a stable, caller-visible paywall error. The code is part of the
// external contract and must not change between releases.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%v: %v", e.Code, e.Message)
}

var (
	// ErrContentNotFound indicates the content item does not exist
	ErrContentNotFound = &Error{Code: "content_not_found", Message: "content was not found"}

	// ErrCreatorNotFound indicates the creator does not exist
	ErrCreatorNotFound = &Error{Code: "creator_not_found", Message: "creator was not found"}

	// ErrPaymentNotFound indicates no payment record exists for the key
	ErrPaymentNotFound = &Error{Code: "payment_not_found", Message: "payment was not found"}

	// ErrInvalidContentType indicates an unknown content type was given
	ErrInvalidContentType = &Error{Code: "invalid_content_type", Message: "content type must be file, link or course"}

	// ErrInvalidPrice indicates a negative price was given
	ErrInvalidPrice = &Error{Code: "invalid_price", Message: "price must not be negative"}

	// ErrInvalidRequest indicates a required request field was empty
	ErrInvalidRequest = &Error{Code: "invalid_request", Message: "required field was empty"}

	// ErrPaymentInsufficient indicates the on-chain amount does not cover
	// price plus service fee
	ErrPaymentInsufficient = &Error{Code: "payment_insufficient", Message: "transaction amount does not cover price plus fee"}

	// ErrTransactionNotFound indicates the oracle could not resolve the tx hash
	ErrTransactionNotFound = &Error{Code: "transaction_not_found", Message: "transaction was not found on-chain"}

	// ErrTransactionPending indicates the oracle reports the tx as unconfirmed
	ErrTransactionPending = &Error{Code: "transaction_pending", Message: "transaction is not confirmed yet"}

	// ErrOracleTimeout indicates the oracle lookup exceeded its deadline
	ErrOracleTimeout = &Error{Code: "oracle_timeout", Message: "transaction lookup timed out"}

	// ErrOracleUnavailable indicates the oracle could not be reached
	ErrOracleUnavailable = &Error{Code: "oracle_unavailable", Message: "transaction lookup failed"}

	// ErrDuplicateRedemption indicates the redemption key was already consumed
	ErrDuplicateRedemption = &Error{Code: "duplicate_redemption", Message: "transaction was already redeemed for this content"}

	// ErrContentIDConflict indicates every generated content ID collided
	// with an existing one
	ErrContentIDConflict = &Error{Code: "content_id_conflict", Message: "could not assign a unique content id"}

	// ErrPaymentRequired indicates the content exists but no payment grants access
	ErrPaymentRequired = &Error{Code: "payment_required", Message: "no payment found for this content"}

	// ErrPublicListingDisabled indicates the ungated listing mode is off
	ErrPublicListingDisabled = &Error{Code: "public_listing_disabled", Message: "public content listing is not enabled"}

	// ErrStoreUnavailable indicates a transient store failure
	ErrStoreUnavailable = &Error{Code: "store_unavailable", Message: "store is unavailable"}
)

// IsErrTransient returns true for failures the calling layer may retry.
// Everything else is reported to the caller immediately.
func IsErrTransient(err error) bool {
	switch errors.Cause(err) {
	case ErrTransactionPending, ErrOracleTimeout, ErrOracleUnavailable, ErrStoreUnavailable:
		return true
	}
	return false
}

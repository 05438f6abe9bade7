// Package pricing computes the minimum acceptable payment for content and its
// split into creator earnings and service fee. Pure, no I/O.
package pricing

import (
	"math/big"
)

const (
	// DefaultServiceFee is the platform cut per successful payment, in
	// currency units, independent of content price
	DefaultServiceFee = 0.10

	// DefaultListingFee is the flat fee for fee-gated content creation, in
	// currency units
	DefaultListingFee = 0.75

	// FeeUnitScale converts currency units to the chain's smallest unit.
	// All conversion goes through Units; never inline this.
	FeeUnitScale = 1000000

	// FeeScaleVersion identifies the scale in persisted and published data
	FeeScaleVersion = 1
)

// Units converts an amount in currency units to the chain's smallest unit.
// The scaling stays in big.Float so amounts past the int64 range convert
// without overflow. Rounds half up; amounts are never negative.
func Units(amount float64) *big.Int {
	scaled := new(big.Float).Mul(big.NewFloat(amount), big.NewFloat(FeeUnitScale))
	scaled.Add(scaled, big.NewFloat(0.5))
	units, _ := scaled.Int(nil)
	return units
}

// Quote is the minimum acceptable payment for a content item and its split
type Quote struct {
	// CreatorEarnings equals the content price, in currency units
	CreatorEarnings float64

	// ServiceFee is the platform cut, in currency units
	ServiceFee float64

	// RequiredUnits is price plus fee in the chain's smallest unit
	RequiredUnits *big.Int
}

// NewPolicy creates a Policy. Non-positive fees fall back to the defaults.
func NewPolicy(serviceFee float64, listingFee float64) *Policy {
	if serviceFee <= 0 {
		serviceFee = DefaultServiceFee
	}
	if listingFee <= 0 {
		listingFee = DefaultListingFee
	}
	return &Policy{
		serviceFee: serviceFee,
		listingFee: listingFee,
	}
}

// Policy is the fee policy used to quote payments. Deterministic and
// side-effect free.
type Policy struct {
	serviceFee float64
	listingFee float64
}

// ServiceFee is the per-payment platform cut in currency units
func (p *Policy) ServiceFee() float64 {
	return p.serviceFee
}

// ListingFee is the flat content creation fee in currency units
func (p *Policy) ListingFee() float64 {
	return p.listingFee
}

// Quote computes the minimum acceptable payment for the given content price
func (p *Policy) Quote(price float64) *Quote {
	return &Quote{
		CreatorEarnings: price,
		ServiceFee:      p.serviceFee,
		RequiredUnits:   Units(price + p.serviceFee),
	}
}

// ListingFeeUnits is the flat creation fee in the chain's smallest unit
func (p *Policy) ListingFeeUnits() *big.Int {
	return Units(p.listingFee)
}

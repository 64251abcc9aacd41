package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type DiscountKind string

const (
	DiscountPercentage   DiscountKind = "percentage"
	DiscountFixedAmount  DiscountKind = "fixed_amount"
	DiscountBuyOneGetOne DiscountKind = "buy_one_get_one"
	DiscountFreeItem     DiscountKind = "free_item"
)

type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusPaused   OfferStatus = "paused"
	OfferStatusArchived OfferStatus = "archived"
)

// Offer is a merchant discount students can claim coupons against.
// TotalCoupons nil means the merchant did not cap the campaign.
type Offer struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	MerchantID     uuid.UUID       `json:"merchant_id" db:"merchant_id"`
	Title          string          `json:"title" db:"title"`
	Description    *string         `json:"description,omitempty" db:"description"`
	DiscountKind   DiscountKind    `json:"discount_kind" db:"discount_kind"`
	DiscountValue  decimal.Decimal `json:"discount_value" db:"discount_value"`
	ReferencePrice decimal.Decimal `json:"reference_price" db:"reference_price"`
	UsagePolicy
	StartDate          time.Time   `json:"start_date" db:"start_date"`
	EndDate            time.Time   `json:"end_date" db:"end_date"`
	Status             OfferStatus `json:"status" db:"status"`
	TotalCoupons       *int        `json:"total_coupons,omitempty" db:"total_coupons"`
	ClaimedCount       int         `json:"claimed_count" db:"claimed_count"`
	RedeemedCount      int         `json:"redeemed_count" db:"redeemed_count"`
	CouponValidityDays int         `json:"coupon_validity_days" db:"coupon_validity_days"`
	Version            int         `json:"version" db:"version"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// IsActiveAt reports whether the offer accepts claims at the given instant.
func (o *Offer) IsActiveAt(now time.Time) bool {
	if o.Status != OfferStatusActive {
		return false
	}
	if now.Before(o.StartDate) {
		return false
	}
	if !o.EndDate.IsZero() && now.After(o.EndDate) {
		return false
	}
	return true
}

// IsExhausted reports whether the campaign-wide coupon pool is used up.
func (o *Offer) IsExhausted() bool {
	return o.TotalCoupons != nil && o.ClaimedCount >= *o.TotalCoupons
}

func (o *Offer) HasEnded(now time.Time) bool {
	return !o.EndDate.IsZero() && now.After(o.EndDate)
}

// DiscountSnapshot is the discount frozen onto a coupon at claim time.
// Later edits to the offer never change an issued coupon.
type DiscountSnapshot struct {
	Kind           DiscountKind    `json:"kind"`
	Value          decimal.Decimal `json:"value"`
	ReferencePrice decimal.Decimal `json:"reference_price"`
	Savings        decimal.Decimal `json:"savings"`
}

// Snapshot freezes the offer's current discount terms. Savings is the
// monetary value one claim represents, rounded to cents.
func (o *Offer) Snapshot() DiscountSnapshot {
	return DiscountSnapshot{
		Kind:           o.DiscountKind,
		Value:          o.DiscountValue,
		ReferencePrice: o.ReferencePrice,
		Savings:        o.SavingsPerClaim(),
	}
}

// SavingsPerClaim computes how much money one claim of this offer is worth.
func (o *Offer) SavingsPerClaim() decimal.Decimal {
	var savings decimal.Decimal
	switch o.DiscountKind {
	case DiscountPercentage:
		savings = o.ReferencePrice.Mul(o.DiscountValue).Div(decimal.NewFromInt(100))
	case DiscountFixedAmount:
		savings = o.DiscountValue
		if o.ReferencePrice.IsPositive() && savings.GreaterThan(o.ReferencePrice) {
			savings = o.ReferencePrice
		}
	case DiscountBuyOneGetOne:
		savings = o.ReferencePrice
	case DiscountFreeItem:
		savings = o.DiscountValue
	}
	return savings.Round(2)
}

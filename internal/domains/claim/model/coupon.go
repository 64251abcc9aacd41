package model

import (
	"time"

	"github.com/google/uuid"

	offermodel "studentdeals-backend/internal/domains/offer/model"
)

type CouponStatus string

const (
	CouponStatusActive   CouponStatus = "ACTIVE"
	CouponStatusExpired  CouponStatus = "EXPIRED"
	CouponStatusRedeemed CouponStatus = "REDEEMED"
	CouponStatusInactive CouponStatus = "INACTIVE"
)

// Coupon is a single issued claim. Discount carries the offer terms as
// they stood at claim time and is never updated afterwards.
type Coupon struct {
	ID             uuid.UUID                   `json:"id" db:"id"`
	UserID         uuid.UUID                   `json:"user_id" db:"user_id"`
	OfferID        uuid.UUID                   `json:"offer_id" db:"offer_id"`
	Code           string                      `json:"code" db:"code"`
	QRCode         string                      `json:"qr_code" db:"qr_code"`
	Status         CouponStatus                `json:"status" db:"status"`
	Discount       offermodel.DiscountSnapshot `json:"discount" db:"discount"`
	IdempotencyKey string                      `json:"-" db:"idempotency_key"`
	ExpiryDate     time.Time                   `json:"expiry_date" db:"expiry_date"`
	RedeemedAt     *time.Time                  `json:"redeemed_at,omitempty" db:"redeemed_at"`
	CreatedAt      time.Time                   `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at" db:"updated_at"`
}

// EffectiveStatus resolves expiry lazily. A coupon whose expiry date has
// passed reads as EXPIRED even before the sweep job marks the row.
func (c *Coupon) EffectiveStatus(now time.Time) CouponStatus {
	if c.Status == CouponStatusActive && now.After(c.ExpiryDate) {
		return CouponStatusExpired
	}
	return c.Status
}

func (c *Coupon) IsRedeemable(now time.Time) bool {
	return c.EffectiveStatus(now) == CouponStatusActive
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"studentdeals-backend/internal/domains/claim/model"
)

type ApplyClaimParams struct {
	UserID  uuid.UUID
	OfferID uuid.UUID
	// Coupon arrives fully built (code, QR, snapshot, expiry,
	// idempotency key); ApplyClaim only persists it.
	Coupon  *model.Coupon
	Savings decimal.Decimal
	Now     time.Time
}

// ClaimStore owns the usage ledger and the atomic claim commit.
type ClaimStore interface {
	// Entry returns the user's ledger row for the offer, or an empty
	// entry when they never claimed it.
	Entry(ctx context.Context, userID, offerID uuid.UUID) (*model.UsageLedgerEntry, error)
	// ApplyClaim commits one claim in a single transaction: bumps the
	// ledger under a row lock, consumes one coupon from the campaign
	// pool, and inserts the coupon. A replayed idempotency key returns
	// the originally issued coupon instead of a second one.
	ApplyClaim(ctx context.Context, params ApplyClaimParams) (*model.UsageLedgerEntry, *model.Coupon, error)
	// OfferUsage aggregates ledger and coupon rows across all users of
	// one offer.
	OfferUsage(ctx context.Context, offerID uuid.UUID) (*model.OfferUsageResponse, error)
}

// CouponStore reads and maintains issued coupons.
type CouponStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Coupon, int64, error)
	// MarkExpired flips ACTIVE coupons whose expiry date has passed,
	// at most batch rows per call.
	MarkExpired(ctx context.Context, now time.Time, batch int) (int64, error)
}

package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
)

// OfferReader is the slice of the offer domain this service needs.
// Declared here so the claim domain does not import offer services.
type OfferReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*offermodel.Offer, error)
}

type ClaimService interface {
	// UsageStats returns the user's claim history for an offer. Users
	// who never claimed get a zeroed entry, not an error.
	UsageStats(ctx context.Context, userID, offerID uuid.UUID) (*model.UsageLedgerEntry, error)
	// Availability previews the eligibility verdict without claiming.
	Availability(ctx context.Context, userID, offerID uuid.UUID, now time.Time) (*model.ClaimAvailabilityResponse, error)
	// Claim attempts to issue a coupon. Denials come back inside the
	// result; errors are reserved for invalid offers and infrastructure.
	Claim(ctx context.Context, userID, offerID uuid.UUID, now time.Time) (*model.ClaimResult, error)
	MyCoupons(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Coupon, int64, error)
	// OfferUsage aggregates an offer's claim history across all users.
	OfferUsage(ctx context.Context, offerID uuid.UUID) (*model.OfferUsageResponse, error)
	// ExpireCoupons sweeps ACTIVE coupons past their expiry date.
	ExpireCoupons(ctx context.Context, batch int) (int64, error)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"studentdeals-backend/internal/domains/claim/model"
	"studentdeals-backend/internal/domains/claim/repository"
	offermodel "studentdeals-backend/internal/domains/offer/model"
	"studentdeals-backend/internal/shared"
)

type claimService struct {
	offers   OfferReader
	store    repository.ClaimStore
	coupons  repository.CouponStore
	locks    *keyedMutex
	lockWait time.Duration
}

func NewClaimService(offers OfferReader, store repository.ClaimStore, coupons repository.CouponStore, lockWait time.Duration) ClaimService {
	return &claimService{
		offers:   offers,
		store:    store,
		coupons:  coupons,
		locks:    newKeyedMutex(),
		lockWait: lockWait,
	}
}

func (s *claimService) UsageStats(ctx context.Context, userID, offerID uuid.UUID) (*model.UsageLedgerEntry, error) {
	if _, err := s.offers.FindByID(ctx, offerID); err != nil {
		return nil, err
	}
	return s.store.Entry(ctx, userID, offerID)
}

func (s *claimService) Availability(ctx context.Context, userID, offerID uuid.UUID, now time.Time) (*model.ClaimAvailabilityResponse, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offer.UsagePolicy.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.store.Entry(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}

	result := Evaluate(offer.UsagePolicy, entry, now)
	resp := model.NewClaimAvailabilityResponse(result, entry, offer.UsagePolicy)
	return &resp, nil
}

func (s *claimService) Claim(ctx context.Context, userID, offerID uuid.UUID, now time.Time) (*model.ClaimResult, error) {
	offer, err := s.offers.FindByID(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if err := offer.UsagePolicy.Validate(); err != nil {
		return nil, err
	}
	if !offer.IsActiveAt(now) {
		return nil, offermodel.ErrOfferInactive
	}
	if offer.IsExhausted() {
		return nil, offermodel.ErrOfferExhausted
	}

	// One claim per (user, offer) at a time in this process. The
	// ledger row lock covers other instances.
	key := userID.String() + ":" + offerID.String()
	if err := s.locks.Acquire(ctx, key, s.lockWait); err != nil {
		return nil, err
	}
	defer s.locks.Release(key)

	entry, err := s.store.Entry(ctx, userID, offerID)
	if err != nil {
		return nil, err
	}

	verdict := Evaluate(offer.UsagePolicy, entry, now)
	if !verdict.Allowed {
		return &model.ClaimResult{
			Reason:          verdict.Reason,
			NextAvailableAt: verdict.NextAvailableAt,
			Entry:           entry,
			Remaining:       model.Remaining(0),
		}, nil
	}

	// The idempotency key survives the retry so a commit that succeeded
	// but failed to report cannot issue a second coupon.
	idempotencyKey := uuid.NewString()
	coupon := buildCoupon(offer, userID, idempotencyKey, now)
	savings := coupon.Discount.Savings

	updated, issued, err := s.store.ApplyClaim(ctx, repository.ApplyClaimParams{
		UserID:  userID,
		OfferID: offerID,
		Coupon:  coupon,
		Savings: savings,
		Now:     now,
	})
	if err != nil && retryableClaimError(err) {
		log.Warn().Err(err).
			Str("user_id", userID.String()).
			Str("offer_id", offerID.String()).
			Msg("claim commit failed, retrying once")
		updated, issued, err = s.store.ApplyClaim(ctx, repository.ApplyClaimParams{
			UserID:  userID,
			OfferID: offerID,
			Coupon:  coupon,
			Savings: savings,
			Now:     now,
		})
	}
	if err != nil {
		var appErr *shared.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrStorageFailure, err)
	}

	log.Info().
		Str("user_id", userID.String()).
		Str("offer_id", offerID.String()).
		Str("coupon_code", issued.Code).
		Int("usage_count", updated.UsageCount).
		Msg("coupon claimed")

	return &model.ClaimResult{
		Issued:    true,
		Coupon:    issued,
		Entry:     updated,
		Remaining: remainingAfterClaim(offer.UsagePolicy, updated),
	}, nil
}

func (s *claimService) MyCoupons(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Coupon, int64, error) {
	return s.coupons.ListByUser(ctx, userID, page, limit)
}

func (s *claimService) OfferUsage(ctx context.Context, offerID uuid.UUID) (*model.OfferUsageResponse, error) {
	if _, err := s.offers.FindByID(ctx, offerID); err != nil {
		return nil, err
	}
	return s.store.OfferUsage(ctx, offerID)
}

func (s *claimService) ExpireCoupons(ctx context.Context, batch int) (int64, error) {
	return s.coupons.MarkExpired(ctx, time.Now().UTC(), batch)
}

// retryableClaimError reports whether a failed commit is worth one more
// attempt. Business denials and context cancellation are final.
func retryableClaimError(err error) bool {
	var appErr *shared.AppError
	if errors.As(err, &appErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

func remainingAfterClaim(policy offermodel.UsagePolicy, entry *model.UsageLedgerEntry) model.RemainingClaims {
	max, unlimited := policy.EffectiveMaxClaims()
	if unlimited {
		return model.UnlimitedRemaining()
	}
	return model.Remaining(max - entry.UsageCount)
}

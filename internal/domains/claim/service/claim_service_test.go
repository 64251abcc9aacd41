package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdeals-backend/internal/domains/claim/model"
	"studentdeals-backend/internal/domains/claim/repository"
	offermodel "studentdeals-backend/internal/domains/offer/model"
	offerrepo "studentdeals-backend/internal/domains/offer/repository"
)

type fixture struct {
	service ClaimService
	offers  offerrepo.OfferRepository
	claims  *repository.MemoryClaimRepository
}

func newFixture(t *testing.T, store repository.ClaimStore) *fixture {
	t.Helper()
	offers := offerrepo.NewMemoryOfferRepository()
	claims := repository.NewMemoryClaimRepository()
	if store == nil {
		store = claims
	}
	return &fixture{
		service: NewClaimService(offers, store, claims, 500*time.Millisecond),
		offers:  offers,
		claims:  claims,
	}
}

func (f *fixture) seedOffer(t *testing.T, policy offermodel.UsagePolicy, mutate func(*offermodel.Offer)) *offermodel.Offer {
	t.Helper()
	offer := &offermodel.Offer{
		ID:                 uuid.New(),
		MerchantID:         uuid.New(),
		Title:              "20% off campus lunch",
		DiscountKind:       offermodel.DiscountPercentage,
		DiscountValue:      decimal.NewFromInt(25),
		ReferencePrice:     decimal.NewFromInt(200),
		UsagePolicy:        policy,
		StartDate:          time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:            time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Status:             offermodel.OfferStatusActive,
		CouponValidityDays: 7,
	}
	if mutate != nil {
		mutate(offer)
	}
	require.NoError(t, f.offers.Create(context.Background(), offer))
	f.claims.RegisterOffer(offer.ID, offer.TotalCoupons)
	return offer
}

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func TestClaimIssuesCouponAndUpdatesLedger(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:        offermodel.UsageMultiUse,
		MaxClaimsPerUser: intPtr(3),
	}, nil)
	userID := uuid.New()

	result, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
	require.NoError(t, err)
	require.True(t, result.Issued)

	coupon := result.Coupon
	assert.Equal(t, model.CouponStatusActive, coupon.Status)
	assert.Contains(t, coupon.Code, "SD-")
	assert.NotEmpty(t, coupon.QRCode)
	assert.Equal(t, testNow.AddDate(0, 0, 7), coupon.ExpiryDate)

	// 25% of 200 is 50 saved per claim.
	assert.True(t, coupon.Discount.Savings.Equal(decimal.NewFromInt(50)),
		"savings = %s", coupon.Discount.Savings)

	assert.Equal(t, 1, result.Entry.UsageCount)
	assert.True(t, result.Entry.TotalSavings.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, model.Remaining(2), result.Remaining)

	stats, err := f.service.UsageStats(context.Background(), userID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.UsageCount)
}

func TestClaimSingleUseSecondAttemptDenied(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, nil)
	userID := uuid.New()

	first, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
	require.NoError(t, err)
	require.True(t, first.Issued)

	second, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, second.Issued)
	assert.Equal(t, model.DenialAlreadyClaimed, second.Reason)
	assert.Equal(t, 1, second.Entry.UsageCount)
}

func TestClaimCooldownDeniedWithNextAvailable(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:           offermodel.UsageMultiUse,
		MaxClaimsPerUser:    intPtr(5),
		CooldownPeriodHours: 24,
	}, nil)
	userID := uuid.New()

	first, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
	require.NoError(t, err)
	require.True(t, first.Issued)

	avail, err := f.service.Availability(context.Background(), userID, offer.ID, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, avail.CanClaimNow)
	require.NotNil(t, avail.Reason)
	assert.Equal(t, model.DenialCooldown, *avail.Reason)
	require.NotNil(t, avail.NextAvailableClaim)
	assert.True(t, testNow.Add(24*time.Hour).Equal(*avail.NextAvailableClaim))

	denied, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, denied.Issued)
	assert.Equal(t, model.DenialCooldown, denied.Reason)

	// Exactly at the boundary the claim goes through.
	boundary, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(24*time.Hour))
	require.NoError(t, err)
	assert.True(t, boundary.Issued)
}

func TestClaimMultiUseStopsAtLimit(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:        offermodel.UsageMultiUse,
		MaxClaimsPerUser: intPtr(3),
	}, nil)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		result, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.True(t, result.Issued, "claim %d should be issued", i+1)
		assert.Equal(t, model.Remaining(2-i), result.Remaining)
	}

	fourth, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(3*time.Minute))
	require.NoError(t, err)
	assert.False(t, fourth.Issued)
	assert.Equal(t, model.DenialLimitReached, fourth.Reason)
	assert.Nil(t, fourth.NextAvailableAt)
	assert.Equal(t, 3, fourth.Entry.UsageCount)
}

func TestClaimTieredLimitAndCooldownInterleave(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:           offermodel.UsageTiered,
		MaxClaimsPerUser:    intPtr(2),
		CooldownPeriodHours: 24,
	}, nil)
	userID := uuid.New()

	first, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
	require.NoError(t, err)
	require.True(t, first.Issued)

	cooled, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, cooled.Issued)
	assert.Equal(t, model.DenialCooldown, cooled.Reason)
	require.NotNil(t, cooled.NextAvailableAt)
	assert.True(t, testNow.Add(24*time.Hour).Equal(*cooled.NextAvailableAt))

	second, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(24*time.Hour))
	require.NoError(t, err)
	require.True(t, second.Issued)
	assert.Equal(t, model.Remaining(0), second.Remaining)

	// At the cap the limit wins even though the cooldown is also running.
	capped, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(25*time.Hour))
	require.NoError(t, err)
	assert.False(t, capped.Issued)
	assert.Equal(t, model.DenialLimitReached, capped.Reason)
	assert.Nil(t, capped.NextAvailableAt)
}

func TestClaimConcurrentSingleUseIssuesExactlyOne(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, nil)
	userID := uuid.New()

	const attempts = 10
	results := make([]*model.ClaimResult, attempts)
	errs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = f.service.Claim(context.Background(), userID, offer.ID, testNow)
		}(i)
	}
	wg.Wait()

	issued := 0
	for i := 0; i < attempts; i++ {
		require.NoError(t, errs[i])
		if results[i].Issued {
			issued++
		} else {
			assert.Equal(t, model.DenialAlreadyClaimed, results[i].Reason)
		}
	}
	assert.Equal(t, 1, issued)

	entry, err := f.claims.Entry(context.Background(), userID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.UsageCount)
}

func TestClaimExhaustedPool(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, func(o *offermodel.Offer) {
		o.TotalCoupons = intPtr(1)
	})

	first, err := f.service.Claim(context.Background(), uuid.New(), offer.ID, testNow)
	require.NoError(t, err)
	require.True(t, first.Issued)

	_, err = f.service.Claim(context.Background(), uuid.New(), offer.ID, testNow)
	assert.ErrorIs(t, err, offermodel.ErrOfferExhausted)
}

func TestClaimOfferValidation(t *testing.T) {
	f := newFixture(t, nil)
	userID := uuid.New()

	t.Run("unknown offer", func(t *testing.T) {
		_, err := f.service.Claim(context.Background(), userID, uuid.New(), testNow)
		assert.ErrorIs(t, err, offermodel.ErrOfferNotFound)
	})

	t.Run("paused offer", func(t *testing.T) {
		offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, func(o *offermodel.Offer) {
			o.Status = offermodel.OfferStatusPaused
		})
		_, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
		assert.ErrorIs(t, err, offermodel.ErrOfferInactive)
	})

	t.Run("ended offer", func(t *testing.T) {
		offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, func(o *offermodel.Offer) {
			o.EndDate = testNow.Add(-time.Hour)
		})
		_, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
		assert.ErrorIs(t, err, offermodel.ErrOfferInactive)
	})

	t.Run("bounded policy without limit", func(t *testing.T) {
		offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse}, nil)
		_, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
		assert.ErrorIs(t, err, offermodel.ErrInvalidPolicy)
	})
}

// flakyStore fails ApplyClaim a fixed number of times before delegating.
type flakyStore struct {
	repository.ClaimStore
	mu       sync.Mutex
	failures int
	calls    int
}

func (f *flakyStore) ApplyClaim(ctx context.Context, p repository.ApplyClaimParams) (*model.UsageLedgerEntry, *model.Coupon, error) {
	f.mu.Lock()
	f.calls++
	fail := f.failures > 0
	if fail {
		f.failures--
	}
	f.mu.Unlock()
	if fail {
		return nil, nil, errors.New("connection reset by peer")
	}
	return f.ClaimStore.ApplyClaim(ctx, p)
}

func TestClaimRetriesOnceOnStorageFailure(t *testing.T) {
	claims := repository.NewMemoryClaimRepository()
	store := &flakyStore{ClaimStore: claims, failures: 1}
	f := newFixture(t, store)
	f.claims = claims
	f.service = NewClaimService(f.offers, store, claims, 500*time.Millisecond)
	offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, nil)
	userID := uuid.New()

	result, err := f.service.Claim(context.Background(), userID, offer.ID, testNow)
	require.NoError(t, err)
	assert.True(t, result.Issued)
	assert.Equal(t, 2, store.calls)

	entry, err := claims.Entry(context.Background(), userID, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.UsageCount)
}

func TestClaimGivesUpAfterSecondFailure(t *testing.T) {
	claims := repository.NewMemoryClaimRepository()
	store := &flakyStore{ClaimStore: claims, failures: 2}
	f := newFixture(t, store)
	offer := f.seedOffer(t, offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse}, nil)

	_, err := f.service.Claim(context.Background(), uuid.New(), offer.ID, testNow)
	assert.ErrorIs(t, err, model.ErrStorageFailure)
	assert.Equal(t, 2, store.calls)
}

func TestAvailabilityForNewUser(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:        offermodel.UsageTiered,
		MaxClaimsPerUser: intPtr(4),
	}, nil)

	avail, err := f.service.Availability(context.Background(), uuid.New(), offer.ID, testNow)
	require.NoError(t, err)
	assert.True(t, avail.CanClaimNow)
	assert.Equal(t, model.Remaining(3), avail.RemainingClaims)
	assert.Equal(t, 0, avail.CurrentUsageCount)
	assert.Nil(t, avail.Reason)
	assert.Equal(t, model.Remaining(4), avail.OfferDetails.MaxClaimsPerUser)
}

func TestOfferUsageAggregatesAcrossUsers(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:        offermodel.UsageMultiUse,
		MaxClaimsPerUser: intPtr(3),
	}, nil)

	alice, bob := uuid.New(), uuid.New()
	for i, userID := range []uuid.UUID{alice, alice, bob} {
		result, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Duration(i)*time.Minute))
		require.NoError(t, err)
		require.True(t, result.Issued)
	}

	usage, err := f.service.OfferUsage(context.Background(), offer.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), usage.UniqueClaimers)
	assert.Equal(t, 3, usage.TotalClaims)
	// Three claims at 50 saved each.
	assert.True(t, usage.TotalSavings.Equal(decimal.NewFromInt(150)),
		"total savings = %s", usage.TotalSavings)
	assert.Equal(t, int64(3), usage.ActiveCoupons)
	assert.Equal(t, int64(0), usage.RedeemedCoupons)

	_, err = f.service.OfferUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, offermodel.ErrOfferNotFound)
}

func TestMyCouponsListsNewestFirst(t *testing.T) {
	f := newFixture(t, nil)
	offer := f.seedOffer(t, offermodel.UsagePolicy{
		UsageType:        offermodel.UsageMultiUse,
		MaxClaimsPerUser: intPtr(5),
	}, nil)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		result, err := f.service.Claim(context.Background(), userID, offer.ID, testNow.Add(time.Duration(i)*time.Hour))
		require.NoError(t, err)
		require.True(t, result.Issued)
	}

	coupons, total, err := f.service.MyCoupons(context.Background(), userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, coupons, 2)
	assert.True(t, coupons[0].CreatedAt.After(coupons[1].CreatedAt))
}

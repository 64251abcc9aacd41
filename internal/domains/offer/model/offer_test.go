package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studentdeals-backend/internal/shared"
)

func intPtr(n int) *int { return &n }

func TestUsagePolicyValidate(t *testing.T) {
	tests := []struct {
		name    string
		policy  UsagePolicy
		wantErr bool
	}{
		{"single use needs no limit", UsagePolicy{UsageType: UsageSingleUse}, false},
		{"unlimited needs no limit", UsagePolicy{UsageType: UsageUnlimited}, false},
		{"multi use with limit", UsagePolicy{UsageType: UsageMultiUse, MaxClaimsPerUser: intPtr(3)}, false},
		{"multi use missing limit", UsagePolicy{UsageType: UsageMultiUse}, true},
		{"tiered zero limit", UsagePolicy{UsageType: UsageTiered, MaxClaimsPerUser: intPtr(0)}, true},
		{"tiered negative limit", UsagePolicy{UsageType: UsageTiered, MaxClaimsPerUser: intPtr(-1)}, true},
		{"unknown type", UsagePolicy{UsageType: "weekly"}, true},
		{"negative cooldown", UsagePolicy{UsageType: UsageSingleUse, CooldownPeriodHours: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var appErr *shared.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, ErrInvalidPolicy.Code, appErr.Code)
			assert.Equal(t, 422, appErr.HTTPStatus)
		})
	}
}

func TestEffectiveMaxClaims(t *testing.T) {
	// A single-use policy caps at one even if a limit slipped in.
	max, unlimited := UsagePolicy{UsageType: UsageSingleUse, MaxClaimsPerUser: intPtr(5)}.EffectiveMaxClaims()
	assert.Equal(t, 1, max)
	assert.False(t, unlimited)

	_, unlimited = UsagePolicy{UsageType: UsageUnlimited}.EffectiveMaxClaims()
	assert.True(t, unlimited)

	max, unlimited = UsagePolicy{UsageType: UsageTiered, MaxClaimsPerUser: intPtr(4)}.EffectiveMaxClaims()
	assert.Equal(t, 4, max)
	assert.False(t, unlimited)
}

func TestSavingsPerClaim(t *testing.T) {
	tests := []struct {
		name  string
		kind  DiscountKind
		value string
		ref   string
		want  string
	}{
		{"percentage", DiscountPercentage, "25", "200", "50"},
		{"percentage rounds to cents", DiscountPercentage, "33", "9.99", "3.3"},
		{"fixed amount", DiscountFixedAmount, "15", "100", "15"},
		{"fixed amount capped at price", DiscountFixedAmount, "150", "100", "100"},
		{"fixed amount without reference price", DiscountFixedAmount, "15", "0", "15"},
		{"buy one get one worth the item", DiscountBuyOneGetOne, "0", "12.50", "12.5"},
		{"free item worth its value", DiscountFreeItem, "8.75", "0", "8.75"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := &Offer{
				DiscountKind:   tt.kind,
				DiscountValue:  decimal.RequireFromString(tt.value),
				ReferencePrice: decimal.RequireFromString(tt.ref),
			}
			want := decimal.RequireFromString(tt.want)
			got := offer.SavingsPerClaim()
			assert.True(t, want.Equal(got), "got %s, want %s", got, want)

			snap := offer.Snapshot()
			assert.Equal(t, tt.kind, snap.Kind)
			assert.True(t, want.Equal(snap.Savings))
		})
	}
}

func TestOfferIsActiveAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	base := Offer{StartDate: start, EndDate: end, Status: OfferStatusActive}

	tests := []struct {
		name   string
		mutate func(*Offer)
		now    time.Time
		want   bool
	}{
		{"inside window", nil, start.Add(time.Hour), true},
		{"at start", nil, start, true},
		{"at end", nil, end, true},
		{"before start", nil, start.Add(-time.Minute), false},
		{"after end", nil, end.Add(time.Minute), false},
		{"paused", func(o *Offer) { o.Status = OfferStatusPaused }, start.Add(time.Hour), false},
		{"archived", func(o *Offer) { o.Status = OfferStatusArchived }, start.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offer := base
			if tt.mutate != nil {
				tt.mutate(&offer)
			}
			assert.Equal(t, tt.want, offer.IsActiveAt(tt.now))
		})
	}
}

func TestOfferIsExhausted(t *testing.T) {
	assert.False(t, (&Offer{ClaimedCount: 1000}).IsExhausted())
	assert.False(t, (&Offer{TotalCoupons: intPtr(10), ClaimedCount: 9}).IsExhausted())
	assert.True(t, (&Offer{TotalCoupons: intPtr(10), ClaimedCount: 10}).IsExhausted())
}

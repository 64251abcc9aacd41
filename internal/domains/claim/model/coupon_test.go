package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	offermodel "studentdeals-backend/internal/domains/offer/model"
)

func TestCouponEffectiveStatus(t *testing.T) {
	expiry := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		status CouponStatus
		now    time.Time
		want   CouponStatus
	}{
		{"active before expiry", CouponStatusActive, expiry.Add(-time.Hour), CouponStatusActive},
		{"active at expiry instant", CouponStatusActive, expiry, CouponStatusActive},
		{"active past expiry reads expired", CouponStatusActive, expiry.Add(time.Second), CouponStatusExpired},
		{"redeemed stays redeemed past expiry", CouponStatusRedeemed, expiry.Add(time.Hour), CouponStatusRedeemed},
		{"inactive stays inactive", CouponStatusInactive, expiry.Add(time.Hour), CouponStatusInactive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Coupon{Status: tt.status, ExpiryDate: expiry}
			assert.Equal(t, tt.want, c.EffectiveStatus(tt.now))
			assert.Equal(t, tt.want == CouponStatusActive, c.IsRedeemable(tt.now))
		})
	}
}

func TestRemainingClaimsJSON(t *testing.T) {
	tests := []struct {
		name  string
		value RemainingClaims
		want  string
	}{
		{"unlimited", UnlimitedRemaining(), `"unlimited"`},
		{"count", Remaining(3), `3`},
		{"zero", Remaining(0), `0`},
		{"negative clamps to zero", Remaining(-2), `0`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, string(data))
		})
	}
}

func TestClaimAvailabilityResponseShape(t *testing.T) {
	next := time.Date(2026, 3, 16, 12, 0, 0, 0, time.UTC)
	policy := offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(3)}

	// A cooldown only delays the user, so the response still shows the
	// one claim they have left once it lapses.
	t.Run("cooldown keeps remaining", func(t *testing.T) {
		entry := EmptyLedgerEntry(uuid.Nil, uuid.Nil)
		entry.UsageCount = 2

		resp := NewClaimAvailabilityResponse(DeniedUntil(DenialCooldown, next), entry, policy)

		data, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.JSONEq(t, `{
			"can_claim_now": false,
			"remaining_claims": 1,
			"reason": "cooldown",
			"next_available_claim": "2026-03-16T12:00:00Z",
			"current_usage_count": 2,
			"offer_details": {"max_claims_per_user": 3}
		}`, string(data))
	})

	t.Run("limit reached shows zero", func(t *testing.T) {
		entry := EmptyLedgerEntry(uuid.Nil, uuid.Nil)
		entry.UsageCount = 3

		resp := NewClaimAvailabilityResponse(Denied(DenialLimitReached), entry, policy)

		data, err := json.Marshal(resp)
		assert.NoError(t, err)
		assert.JSONEq(t, `{
			"can_claim_now": false,
			"remaining_claims": 0,
			"reason": "limit_reached",
			"current_usage_count": 3,
			"offer_details": {"max_claims_per_user": 3}
		}`, string(data))
	})

	t.Run("unlimited cooldown stays unlimited", func(t *testing.T) {
		unlimited := offermodel.UsagePolicy{UsageType: offermodel.UsageUnlimited, CooldownPeriodHours: 24}
		entry := EmptyLedgerEntry(uuid.Nil, uuid.Nil)
		entry.UsageCount = 7

		resp := NewClaimAvailabilityResponse(DeniedUntil(DenialCooldown, next), entry, unlimited)

		var decoded map[string]interface{}
		assert.NoError(t, json.Unmarshal(mustMarshal(t, resp), &decoded))
		assert.Equal(t, "unlimited", decoded["remaining_claims"])
		assert.Equal(t, "unlimited", decoded["offer_details"].(map[string]interface{})["max_claims_per_user"])
	})
}

func mustMarshal(t *testing.T, v interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	assert.NoError(t, err)
	return data
}

func intPtr(n int) *int { return &n }

package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
)

func intPtr(n int) *int { return &n }

func entryWith(count int, lastClaim *time.Time) *model.UsageLedgerEntry {
	entry := model.EmptyLedgerEntry(uuid.New(), uuid.New())
	entry.UsageCount = count
	entry.LastClaimAt = lastClaim
	return entry
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	twoHoursAgo := now.Add(-2 * time.Hour)
	justNow := now.Add(-time.Minute)

	tests := []struct {
		name        string
		policy      offermodel.UsagePolicy
		entry       *model.UsageLedgerEntry
		wantAllowed bool
		wantReason  model.DenialReason
		wantNext    *time.Time
		wantRemain  string
	}{
		{
			name:        "single use first claim",
			policy:      offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse},
			entry:       entryWith(0, nil),
			wantAllowed: true,
			wantRemain:  "0",
		},
		{
			name:       "single use already claimed",
			policy:     offermodel.UsagePolicy{UsageType: offermodel.UsageSingleUse},
			entry:      entryWith(1, &twoHoursAgo),
			wantReason: model.DenialAlreadyClaimed,
		},
		{
			name:       "multi use at limit",
			policy:     offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(3)},
			entry:      entryWith(3, &twoHoursAgo),
			wantReason: model.DenialLimitReached,
		},
		{
			name:        "multi use below limit no cooldown",
			policy:      offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(3)},
			entry:       entryWith(1, &twoHoursAgo),
			wantAllowed: true,
			wantRemain:  "1",
		},
		{
			name:       "cooldown still running",
			policy:     offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(5), CooldownPeriodHours: 24},
			entry:      entryWith(1, &justNow),
			wantReason: model.DenialCooldown,
			wantNext:   timePtr(justNow.Add(24 * time.Hour)),
		},
		{
			name:        "claim at exact cooldown boundary allowed",
			policy:      offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(5), CooldownPeriodHours: 2},
			entry:       entryWith(1, &twoHoursAgo),
			wantAllowed: true,
			wantRemain:  "3",
		},
		{
			name:        "unlimited ignores count",
			policy:      offermodel.UsagePolicy{UsageType: offermodel.UsageUnlimited},
			entry:       entryWith(9999, &twoHoursAgo),
			wantAllowed: true,
			wantRemain:  "unlimited",
		},
		{
			name:       "unlimited still honors cooldown",
			policy:     offermodel.UsagePolicy{UsageType: offermodel.UsageUnlimited, CooldownPeriodHours: 24},
			entry:      entryWith(2, &justNow),
			wantReason: model.DenialCooldown,
		},
		{
			name:        "tiered last allowed claim reports zero remaining",
			policy:      offermodel.UsagePolicy{UsageType: offermodel.UsageTiered, MaxClaimsPerUser: intPtr(2)},
			entry:       entryWith(1, &twoHoursAgo),
			wantAllowed: true,
			wantRemain:  "0",
		},
		{
			name:       "limit check wins over cooldown",
			policy:     offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(2), CooldownPeriodHours: 24},
			entry:      entryWith(2, &justNow),
			wantReason: model.DenialLimitReached,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Evaluate(tt.policy, tt.entry, now)

			assert.Equal(t, tt.wantAllowed, result.Allowed)
			if tt.wantAllowed {
				data, err := result.Remaining.MarshalJSON()
				assert.NoError(t, err)
				if tt.wantRemain == "unlimited" {
					assert.Equal(t, `"unlimited"`, string(data))
				} else {
					assert.Equal(t, tt.wantRemain, string(data))
				}
				return
			}
			assert.Equal(t, tt.wantReason, result.Reason)
			if tt.wantNext != nil {
				assert.NotNil(t, result.NextAvailableAt)
				assert.True(t, tt.wantNext.Equal(*result.NextAvailableAt))
			}
		})
	}
}

// A nil entry means no claim history and evaluates like a zero entry.
func TestEvaluateNilEntry(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	policy := offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(3), CooldownPeriodHours: 24}

	result := Evaluate(policy, nil, now)

	assert.True(t, result.Allowed)
	assert.Equal(t, model.Remaining(2), result.Remaining)
	assert.Equal(t, Evaluate(policy, entryWith(0, nil), now), result)
}

// Evaluating the same state twice must give the same verdict; the
// evaluator records nothing.
func TestEvaluateIsPure(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	last := now.Add(-time.Hour)
	policy := offermodel.UsagePolicy{UsageType: offermodel.UsageMultiUse, MaxClaimsPerUser: intPtr(3), CooldownPeriodHours: 2}
	entry := entryWith(1, &last)

	first := Evaluate(policy, entry, now)
	second := Evaluate(policy, entry, now)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, entry.UsageCount)
}

func timePtr(t time.Time) *time.Time { return &t }

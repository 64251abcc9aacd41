package service

import (
	"time"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
)

// Evaluate decides whether a student with the given claim history may
// claim the offer right now. It is a pure function of its inputs and
// never touches storage.
//
// Rules are checked in a fixed order so the reported reason is stable:
// single-use exhaustion, then per-user limit, then cooldown. A claim at
// exactly the cooldown boundary is allowed.
func Evaluate(policy offermodel.UsagePolicy, entry *model.UsageLedgerEntry, now time.Time) model.EligibilityResult {
	// A nil entry means the user never claimed, same as a zero entry.
	if entry == nil {
		entry = &model.UsageLedgerEntry{}
	}

	max, unlimited := policy.EffectiveMaxClaims()

	if policy.UsageType == offermodel.UsageSingleUse && entry.UsageCount >= 1 {
		return model.Denied(model.DenialAlreadyClaimed)
	}

	if !unlimited && entry.UsageCount >= max {
		return model.Denied(model.DenialLimitReached)
	}

	if policy.HasCooldown() && entry.LastClaimAt != nil {
		nextAvailable := entry.LastClaimAt.Add(policy.Cooldown())
		if now.Before(nextAvailable) {
			return model.DeniedUntil(model.DenialCooldown, nextAvailable)
		}
	}

	if unlimited {
		return model.Allowed(model.UnlimitedRemaining())
	}
	// Remaining is what the user would still have after this claim.
	return model.Allowed(model.Remaining(max - entry.UsageCount - 1))
}

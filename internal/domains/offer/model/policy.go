package model

import "time"

type UsageType string

const (
	UsageSingleUse UsageType = "single_use"
	UsageMultiUse  UsageType = "multi_use"
	UsageUnlimited UsageType = "unlimited"
	UsageTiered    UsageType = "tiered"
)

// UsagePolicy governs how many times one student may claim an offer
// and how long they must wait between claims.
type UsagePolicy struct {
	UsageType           UsageType `json:"usage_type" db:"usage_type"`
	MaxClaimsPerUser    *int      `json:"max_claims_per_user,omitempty" db:"max_claims_per_user"`
	CooldownPeriodHours int       `json:"cooldown_period_hours" db:"cooldown_period_hours"`
}

// Validate rejects policies that cannot be evaluated.
func (p UsagePolicy) Validate() error {
	switch p.UsageType {
	case UsageSingleUse, UsageUnlimited:
	case UsageMultiUse, UsageTiered:
		if p.MaxClaimsPerUser == nil || *p.MaxClaimsPerUser <= 0 {
			return ErrInvalidPolicy.WithDetails(map[string]interface{}{
				"usage_type": string(p.UsageType),
				"reason":     "max_claims_per_user must be a positive integer",
			})
		}
	default:
		return ErrInvalidPolicy.WithDetails(map[string]interface{}{
			"usage_type": string(p.UsageType),
			"reason":     "unknown usage type",
		})
	}
	if p.CooldownPeriodHours < 0 {
		return ErrInvalidPolicy.WithDetails(map[string]interface{}{
			"reason": "cooldown_period_hours must not be negative",
		})
	}
	return nil
}

// EffectiveMaxClaims resolves the per-user ceiling. Single-use is a hard
// cap of one regardless of what max_claims_per_user says.
func (p UsagePolicy) EffectiveMaxClaims() (max int, unlimited bool) {
	switch p.UsageType {
	case UsageSingleUse:
		return 1, false
	case UsageUnlimited:
		return 0, true
	default:
		if p.MaxClaimsPerUser == nil {
			return 0, false
		}
		return *p.MaxClaimsPerUser, false
	}
}

func (p UsagePolicy) Cooldown() time.Duration {
	return time.Duration(p.CooldownPeriodHours) * time.Hour
}

func (p UsagePolicy) HasCooldown() bool {
	return p.CooldownPeriodHours > 0
}

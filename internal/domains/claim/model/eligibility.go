package model

import (
	"strconv"
	"time"
)

type DenialReason string

const (
	DenialAlreadyClaimed DenialReason = "already_claimed"
	DenialLimitReached   DenialReason = "limit_reached"
	DenialCooldown       DenialReason = "cooldown"
)

// RemainingClaims is a count that may be unbounded. It marshals as the
// string "unlimited" or a plain number.
type RemainingClaims struct {
	Unlimited bool
	Count     int
}

func Remaining(n int) RemainingClaims {
	if n < 0 {
		n = 0
	}
	return RemainingClaims{Count: n}
}

func UnlimitedRemaining() RemainingClaims {
	return RemainingClaims{Unlimited: true}
}

func (r RemainingClaims) MarshalJSON() ([]byte, error) {
	if r.Unlimited {
		return []byte(`"unlimited"`), nil
	}
	return []byte(strconv.Itoa(r.Count)), nil
}

// EligibilityResult is the evaluator's verdict. Denials are ordinary
// data, not errors; only infrastructure failures surface as errors.
type EligibilityResult struct {
	Allowed         bool
	Remaining       RemainingClaims
	Reason          DenialReason
	NextAvailableAt *time.Time
}

func Allowed(remaining RemainingClaims) EligibilityResult {
	return EligibilityResult{Allowed: true, Remaining: remaining}
}

func Denied(reason DenialReason) EligibilityResult {
	return EligibilityResult{Reason: reason}
}

func DeniedUntil(reason DenialReason, next time.Time) EligibilityResult {
	return EligibilityResult{Reason: reason, NextAvailableAt: &next}
}

// ClaimResult is what the coordinator hands back. Either Issued is true
// and Coupon is set, or Reason explains the denial.
type ClaimResult struct {
	Issued          bool
	Coupon          *Coupon
	Entry           *UsageLedgerEntry
	Remaining       RemainingClaims
	Reason          DenialReason
	NextAvailableAt *time.Time
}

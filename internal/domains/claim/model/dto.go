package model

import (
	"time"

	"github.com/shopspring/decimal"

	offermodel "studentdeals-backend/internal/domains/offer/model"
)

type UsageStatsResponse struct {
	UsageCount   int             `json:"usage_count"`
	TotalSavings decimal.Decimal `json:"total_savings"`
}

func NewUsageStatsResponse(entry *UsageLedgerEntry) UsageStatsResponse {
	return UsageStatsResponse{
		UsageCount:   entry.UsageCount,
		TotalSavings: entry.TotalSavings,
	}
}

// OfferUsageResponse aggregates an offer's claim history across all
// users, for the merchant dashboard.
type OfferUsageResponse struct {
	TotalClaims     int             `json:"total_claims"`
	UniqueClaimers  int64           `json:"unique_claimers"`
	TotalSavings    decimal.Decimal `json:"total_savings"`
	ActiveCoupons   int64           `json:"active_coupons"`
	RedeemedCoupons int64           `json:"redeemed_coupons"`
}

type OfferDetails struct {
	MaxClaimsPerUser RemainingClaims `json:"max_claims_per_user"`
}

type ClaimAvailabilityResponse struct {
	CanClaimNow        bool            `json:"can_claim_now"`
	RemainingClaims    RemainingClaims `json:"remaining_claims"`
	Reason             *DenialReason   `json:"reason,omitempty"`
	NextAvailableClaim *time.Time      `json:"next_available_claim,omitempty"`
	CurrentUsageCount  int             `json:"current_usage_count"`
	OfferDetails       OfferDetails    `json:"offer_details"`
}

func NewClaimAvailabilityResponse(result EligibilityResult, entry *UsageLedgerEntry, policy offermodel.UsagePolicy) ClaimAvailabilityResponse {
	resp := ClaimAvailabilityResponse{
		CanClaimNow:        result.Allowed,
		RemainingClaims:    result.Remaining,
		NextAvailableClaim: result.NextAvailableAt,
		CurrentUsageCount:  entry.UsageCount,
	}
	if !result.Allowed {
		reason := result.Reason
		resp.Reason = &reason
		// A cooldown only delays the user. Show what they still have
		// once it lapses instead of an exhausted offer.
		if result.Reason == DenialCooldown {
			if max, unlimited := policy.EffectiveMaxClaims(); unlimited {
				resp.RemainingClaims = UnlimitedRemaining()
			} else {
				resp.RemainingClaims = Remaining(max - entry.UsageCount)
			}
		}
	}
	if max, unlimited := policy.EffectiveMaxClaims(); unlimited {
		resp.OfferDetails.MaxClaimsPerUser = UnlimitedRemaining()
	} else {
		resp.OfferDetails.MaxClaimsPerUser = Remaining(max)
	}
	return resp
}

type ClaimedCouponData struct {
	Code       string                      `json:"code"`
	QRCode     string                      `json:"qrCode"`
	ExpiryDate time.Time                   `json:"expiryDate"`
	Status     CouponStatus                `json:"status"`
	Discount   offermodel.DiscountSnapshot `json:"discount"`
	UsageStats UsageStatsResponse          `json:"usage_stats"`
}

type ClaimSuccessResponse struct {
	Message     string            `json:"message"`
	Description string            `json:"description"`
	Data        ClaimedCouponData `json:"data"`
}

func NewClaimSuccessResponse(coupon *Coupon, entry *UsageLedgerEntry) ClaimSuccessResponse {
	return ClaimSuccessResponse{
		Message:     "Coupon claimed successfully",
		Description: "Show the code or QR at checkout before it expires",
		Data: ClaimedCouponData{
			Code:       coupon.Code,
			QRCode:     coupon.QRCode,
			ExpiryDate: coupon.ExpiryDate,
			Status:     coupon.Status,
			Discount:   coupon.Discount,
			UsageStats: NewUsageStatsResponse(entry),
		},
	}
}

package model

import (
	"errors"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"
)

var errEndBeforeStart = errors.New("must be after start_date")

type CreateOfferRequest struct {
	MerchantID          string          `json:"merchant_id"`
	Title               string          `json:"title"`
	Description         *string         `json:"description"`
	DiscountKind        string          `json:"discount_kind"`
	DiscountValue       decimal.Decimal `json:"discount_value"`
	ReferencePrice      decimal.Decimal `json:"reference_price"`
	UsageType           string          `json:"usage_type"`
	MaxClaimsPerUser    *int            `json:"max_claims_per_user"`
	CooldownPeriodHours int             `json:"cooldown_period_hours"`
	StartDate           time.Time       `json:"start_date"`
	EndDate             time.Time       `json:"end_date"`
	TotalCoupons        *int            `json:"total_coupons"`
	CouponValidityDays  int             `json:"coupon_validity_days"`
}

func (r CreateOfferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.MerchantID, validation.Required, validation.Length(36, 36)),
		validation.Field(&r.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.DiscountKind, validation.Required, validation.In(
			string(DiscountPercentage), string(DiscountFixedAmount),
			string(DiscountBuyOneGetOne), string(DiscountFreeItem),
		)),
		validation.Field(&r.UsageType, validation.Required, validation.In(
			string(UsageSingleUse), string(UsageMultiUse),
			string(UsageUnlimited), string(UsageTiered),
		)),
		validation.Field(&r.CooldownPeriodHours, validation.Min(0)),
		validation.Field(&r.StartDate, validation.Required),
		validation.Field(&r.EndDate, validation.Required, validation.By(func(interface{}) error {
			if !r.EndDate.After(r.StartDate) {
				return errEndBeforeStart
			}
			return nil
		})),
		validation.Field(&r.CouponValidityDays, validation.Min(0)),
	)
}

type UpdateOfferRequest struct {
	Title               *string          `json:"title"`
	Description         *string          `json:"description"`
	DiscountValue       *decimal.Decimal `json:"discount_value"`
	ReferencePrice      *decimal.Decimal `json:"reference_price"`
	UsageType           *string          `json:"usage_type"`
	MaxClaimsPerUser    *int             `json:"max_claims_per_user"`
	CooldownPeriodHours *int             `json:"cooldown_period_hours"`
	EndDate             *time.Time       `json:"end_date"`
	TotalCoupons        *int             `json:"total_coupons"`
	Status              *string          `json:"status"`
	Version             int              `json:"version"`
}

func (r UpdateOfferRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.NilOrNotEmpty, validation.Length(1, 255)),
		validation.Field(&r.UsageType, validation.In(
			string(UsageSingleUse), string(UsageMultiUse),
			string(UsageUnlimited), string(UsageTiered),
		)),
		validation.Field(&r.Status, validation.In(
			string(OfferStatusActive), string(OfferStatusPaused), string(OfferStatusArchived),
		)),
		validation.Field(&r.Version, validation.Min(1)),
	)
}

// UpdateOfferStatusRequest pauses, resumes or archives an offer without
// touching the rest of the campaign.
type UpdateOfferStatusRequest struct {
	Status  string `json:"status"`
	Version int    `json:"version"`
}

func (r UpdateOfferStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.Required, validation.In(
			string(OfferStatusActive), string(OfferStatusPaused), string(OfferStatusArchived),
		)),
		validation.Field(&r.Version, validation.Min(1)),
	)
}

type ListOffersQuery struct {
	MerchantID string `form:"merchant_id"`
	Status     string `form:"status"`
	Search     string `form:"search"`
	Page       int    `form:"page"`
	Limit      int    `form:"limit"`
}

func (q *ListOffersQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}
}

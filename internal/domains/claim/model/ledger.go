package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UsageLedgerEntry tracks one student's claim history against one offer.
// A row appears on the first claim; absence means zero usage.
type UsageLedgerEntry struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	UserID       uuid.UUID       `json:"user_id" db:"user_id"`
	OfferID      uuid.UUID       `json:"offer_id" db:"offer_id"`
	UsageCount   int             `json:"usage_count" db:"usage_count"`
	TotalSavings decimal.Decimal `json:"total_savings" db:"total_savings"`
	LastClaimAt  *time.Time      `json:"last_claim_at,omitempty" db:"last_claim_at"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// EmptyLedgerEntry is what a user who never claimed looks like to the
// evaluator.
func EmptyLedgerEntry(userID, offerID uuid.UUID) *UsageLedgerEntry {
	return &UsageLedgerEntry{
		UserID:       userID,
		OfferID:      offerID,
		UsageCount:   0,
		TotalSavings: decimal.Zero,
	}
}

package service

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
)

const defaultCouponValidityDays = 30

// buildCoupon assembles a new ACTIVE coupon for the offer, freezing the
// discount terms as they stand right now.
func buildCoupon(offer *offermodel.Offer, userID uuid.UUID, idempotencyKey string, now time.Time) *model.Coupon {
	id := uuid.New()
	code := couponCode(id)

	validityDays := offer.CouponValidityDays
	if validityDays <= 0 {
		validityDays = defaultCouponValidityDays
	}

	return &model.Coupon{
		ID:             id,
		UserID:         userID,
		OfferID:        offer.ID,
		Code:           code,
		QRCode:         qrPayload(code),
		Status:         model.CouponStatusActive,
		Discount:       offer.Snapshot(),
		IdempotencyKey: idempotencyKey,
		ExpiryDate:     now.AddDate(0, 0, validityDays),
	}
}

// couponCode derives a short human-readable code from the coupon id.
func couponCode(id uuid.UUID) string {
	compact := strings.ToUpper(strings.ReplaceAll(id.String(), "-", ""))
	return fmt.Sprintf("SD-%s-%s", compact[:4], compact[4:10])
}

// qrPayload is the string redemption apps render as a QR image.
func qrPayload(code string) string {
	return "studentdeals://coupon/" + base64.RawURLEncoding.EncodeToString([]byte(code))
}

package shared

// Task type identifiers for the background worker.
const (
	TypeExpireCoupons      = "coupon:expire"
	TypeArchiveEndedOffers = "offer:archive-ended"
)

// Queue names, highest priority first.
const (
	QueueCoupon = "coupon"
	QueueOffer  = "offer"
)

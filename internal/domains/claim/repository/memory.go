package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
)

type ledgerKey struct {
	userID  uuid.UUID
	offerID uuid.UUID
}

type poolState struct {
	total   *int
	claimed int
}

// MemoryClaimRepository backs tests and local development without
// Postgres. RegisterOffer seeds the campaign pool; unregistered offers
// behave as uncapped.
type MemoryClaimRepository struct {
	mu      sync.Mutex
	entries map[ledgerKey]*model.UsageLedgerEntry
	coupons map[uuid.UUID]*model.Coupon
	byKey   map[string]uuid.UUID
	pools   map[uuid.UUID]*poolState
}

func NewMemoryClaimRepository() *MemoryClaimRepository {
	return &MemoryClaimRepository{
		entries: make(map[ledgerKey]*model.UsageLedgerEntry),
		coupons: make(map[uuid.UUID]*model.Coupon),
		byKey:   make(map[string]uuid.UUID),
		pools:   make(map[uuid.UUID]*poolState),
	}
}

var (
	_ ClaimStore  = (*MemoryClaimRepository)(nil)
	_ CouponStore = (*MemoryClaimRepository)(nil)
)

func (r *MemoryClaimRepository) RegisterOffer(offerID uuid.UUID, totalCoupons *int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pools[offerID] = &poolState{total: totalCoupons}
}

func (r *MemoryClaimRepository) Entry(_ context.Context, userID, offerID uuid.UUID) (*model.UsageLedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[ledgerKey{userID, offerID}]
	if !ok {
		return model.EmptyLedgerEntry(userID, offerID), nil
	}
	clone := *entry
	return &clone, nil
}

func (r *MemoryClaimRepository) ApplyClaim(_ context.Context, p ApplyClaimParams) (*model.UsageLedgerEntry, *model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byKey[p.Coupon.IdempotencyKey]; ok {
		coupon := *r.coupons[id]
		entry := *r.entries[ledgerKey{p.UserID, p.OfferID}]
		return &entry, &coupon, nil
	}

	if pool, ok := r.pools[p.OfferID]; ok && pool.total != nil && pool.claimed >= *pool.total {
		return nil, nil, offermodel.ErrOfferExhausted
	}

	key := ledgerKey{p.UserID, p.OfferID}
	entry, ok := r.entries[key]
	if !ok {
		entry = model.EmptyLedgerEntry(p.UserID, p.OfferID)
		entry.ID = uuid.New()
		entry.CreatedAt = p.Now
		r.entries[key] = entry
	}
	entry.UsageCount++
	entry.TotalSavings = entry.TotalSavings.Add(p.Savings)
	lastClaim := p.Now
	entry.LastClaimAt = &lastClaim
	entry.UpdatedAt = p.Now

	if pool, ok := r.pools[p.OfferID]; ok {
		pool.claimed++
	}

	coupon := *p.Coupon
	coupon.CreatedAt = p.Now
	coupon.UpdatedAt = p.Now
	r.coupons[coupon.ID] = &coupon
	r.byKey[coupon.IdempotencyKey] = coupon.ID

	entryCopy := *entry
	couponCopy := coupon
	return &entryCopy, &couponCopy, nil
}

func (r *MemoryClaimRepository) OfferUsage(_ context.Context, offerID uuid.UUID) (*model.OfferUsageResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	usage := &model.OfferUsageResponse{}
	for key, entry := range r.entries {
		if key.offerID != offerID {
			continue
		}
		usage.UniqueClaimers++
		usage.TotalClaims += entry.UsageCount
		usage.TotalSavings = usage.TotalSavings.Add(entry.TotalSavings)
	}
	for _, coupon := range r.coupons {
		if coupon.OfferID != offerID {
			continue
		}
		switch coupon.Status {
		case model.CouponStatusActive:
			usage.ActiveCoupons++
		case model.CouponStatusRedeemed:
			usage.RedeemedCoupons++
		}
	}
	return usage, nil
}

func (r *MemoryClaimRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Coupon, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	coupon, ok := r.coupons[id]
	if !ok {
		return nil, model.ErrCouponNotFound
	}
	clone := *coupon
	return &clone, nil
}

func (r *MemoryClaimRepository) ListByUser(_ context.Context, userID uuid.UUID, page, limit int) ([]*model.Coupon, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	matched := make([]*model.Coupon, 0)
	for _, coupon := range r.coupons {
		if coupon.UserID == userID {
			clone := *coupon
			matched = append(matched, &clone)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (page - 1) * limit
	if start >= len(matched) {
		return []*model.Coupon{}, total, nil
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *MemoryClaimRepository) MarkExpired(_ context.Context, now time.Time, batch int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for _, coupon := range r.coupons {
		if changed >= int64(batch) {
			break
		}
		if coupon.Status == model.CouponStatusActive && now.After(coupon.ExpiryDate) {
			coupon.Status = model.CouponStatusExpired
			coupon.UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}

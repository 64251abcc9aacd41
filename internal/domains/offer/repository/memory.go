package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/offer/model"
)

// memoryOfferRepository backs tests and local development without Postgres.
type memoryOfferRepository struct {
	mu     sync.RWMutex
	offers map[uuid.UUID]*model.Offer
}

func NewMemoryOfferRepository() OfferRepository {
	return &memoryOfferRepository{offers: make(map[uuid.UUID]*model.Offer)}
}

func (r *memoryOfferRepository) Create(_ context.Context, offer *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	offer.Version = 1
	offer.CreatedAt = now
	offer.UpdatedAt = now
	clone := *offer
	r.offers[offer.ID] = &clone
	return nil
}

func (r *memoryOfferRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Offer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	offer, ok := r.offers[id]
	if !ok {
		return nil, model.ErrOfferNotFound
	}
	clone := *offer
	return &clone, nil
}

func (r *memoryOfferRepository) List(_ context.Context, q *model.ListOffersQuery) ([]*model.Offer, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q.Normalize()

	matched := make([]*model.Offer, 0)
	for _, offer := range r.offers {
		if q.MerchantID != "" && offer.MerchantID.String() != q.MerchantID {
			continue
		}
		if q.Status != "" && string(offer.Status) != q.Status {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(offer.Title), strings.ToLower(q.Search)) {
			continue
		}
		clone := *offer
		matched = append(matched, &clone)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.Limit
	if start >= len(matched) {
		return []*model.Offer{}, total, nil
	}
	end := start + q.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryOfferRepository) Update(_ context.Context, offer *model.Offer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.offers[offer.ID]
	if !ok {
		return model.ErrOfferNotFound
	}
	if current.Version != offer.Version {
		return model.ErrVersionConflict
	}
	offer.Version++
	offer.UpdatedAt = time.Now().UTC()
	offer.ClaimedCount = current.ClaimedCount
	offer.RedeemedCount = current.RedeemedCount
	clone := *offer
	r.offers[offer.ID] = &clone
	return nil
}

func (r *memoryOfferRepository) ArchiveEnded(_ context.Context, now time.Time, batch int) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var changed int64
	for _, offer := range r.offers {
		if changed >= int64(batch) {
			break
		}
		if offer.Status != model.OfferStatusArchived && offer.HasEnded(now) {
			offer.Status = model.OfferStatusArchived
			offer.Version++
			offer.UpdatedAt = now
			changed++
		}
	}
	return changed, nil
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/offer/model"
)

type OfferRepository interface {
	Create(ctx context.Context, offer *model.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	List(ctx context.Context, query *model.ListOffersQuery) ([]*model.Offer, int64, error)
	// Update persists the offer and bumps the version column. It returns
	// model.ErrVersionConflict when the row moved on underneath.
	Update(ctx context.Context, offer *model.Offer) error
	// ArchiveEnded flips offers whose end date has passed to archived,
	// at most batch rows per call. Returns how many rows changed.
	ArchiveEnded(ctx context.Context, now time.Time, batch int) (int64, error)
}

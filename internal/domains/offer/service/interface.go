package service

import (
	"context"

	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/offer/model"
)

type OfferService interface {
	Create(ctx context.Context, req *model.CreateOfferRequest) (*model.Offer, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error)
	List(ctx context.Context, query *model.ListOffersQuery) ([]*model.Offer, int64, error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateOfferRequest) (*model.Offer, error)
	// UpdateStatus changes only the offer status, with the same
	// optimistic-version check as Update.
	UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateOfferStatusRequest) (*model.Offer, error)
	// ArchiveEnded flips offers past their end date to archived.
	ArchiveEnded(ctx context.Context, batch int) (int64, error)
}

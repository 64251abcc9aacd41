package main

import (
	"github.com/hibiken/asynq"

	claimJob "studentdeals-backend/internal/domains/claim/job"
	offerJob "studentdeals-backend/internal/domains/offer/job"
	"studentdeals-backend/internal/shared"
	"studentdeals-backend/pkg/container"
)

// HandlerRegistry holds the job handlers with their dependencies wired.
type HandlerRegistry struct {
	expireCoupons *claimJob.ExpireCouponsHandler
	archiveOffers *offerJob.ArchiveEndedHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		expireCoupons: claimJob.NewExpireCouponsHandler(c.ClaimService, c.Config.Jobs.ExpireCouponsBatch),
		archiveOffers: offerJob.NewArchiveEndedHandler(c.OfferService, c.Config.Jobs.ArchiveOffersBatch),
	}
}

func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeExpireCoupons, h.expireCoupons.ProcessTask)
	mux.HandleFunc(shared.TypeArchiveEndedOffers, h.archiveOffers.ProcessTask)
}

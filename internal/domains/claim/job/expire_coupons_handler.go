package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"studentdeals-backend/internal/domains/claim/service"
	"studentdeals-backend/internal/shared/utils"
)

// ExpireCouponsPayload tunes one sweep run. A zero batch falls back to
// the handler's configured default.
type ExpireCouponsPayload struct {
	Batch int `json:"batch"`
}

// ExpireCouponsHandler sweeps coupons whose expiry date has passed.
// Reads already resolve expiry lazily; the sweep keeps the stored rows
// honest for reporting.
type ExpireCouponsHandler struct {
	service service.ClaimService
	batch   int
}

func NewExpireCouponsHandler(s service.ClaimService, batch int) *ExpireCouponsHandler {
	return &ExpireCouponsHandler{service: s, batch: batch}
}

func (h *ExpireCouponsHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ExpireCouponsPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}
	batch := payload.Batch
	if batch <= 0 {
		batch = h.batch
	}

	expired, err := h.service.ExpireCoupons(ctx, batch)
	if err != nil {
		log.Error().Err(err).Msg("coupon expiry sweep failed")
		return err
	}
	if expired > 0 {
		log.Info().Int64("expired", expired).Msg("coupon expiry sweep done")
	}
	return nil
}

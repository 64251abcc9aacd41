package job

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"studentdeals-backend/internal/domains/offer/service"
	"studentdeals-backend/internal/shared/utils"
)

// ArchiveEndedPayload tunes one sweep run. A zero batch falls back to
// the handler's configured default.
type ArchiveEndedPayload struct {
	Batch int `json:"batch"`
}

// ArchiveEndedHandler archives offers whose end date has passed so they
// drop out of public listings.
type ArchiveEndedHandler struct {
	service service.OfferService
	batch   int
}

func NewArchiveEndedHandler(s service.OfferService, batch int) *ArchiveEndedHandler {
	return &ArchiveEndedHandler{service: s, batch: batch}
}

func (h *ArchiveEndedHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload ArchiveEndedPayload
	if err := utils.UnmarshalTask(t, &payload); err != nil {
		return err
	}
	batch := payload.Batch
	if batch <= 0 {
		batch = h.batch
	}

	archived, err := h.service.ArchiveEnded(ctx, batch)
	if err != nil {
		log.Error().Err(err).Msg("offer archive sweep failed")
		return err
	}
	if archived > 0 {
		log.Info().Int64("archived", archived).Msg("offer archive sweep done")
	}
	return nil
}

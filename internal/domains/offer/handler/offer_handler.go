package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/offer/model"
	"studentdeals-backend/internal/domains/offer/service"
	"studentdeals-backend/internal/shared/response"
)

type OfferHandler struct {
	service service.OfferService
}

func NewOfferHandler(s service.OfferService) *OfferHandler {
	return &OfferHandler{service: s}
}

// ListOffers handles GET /api/v1/offers. Public browsing defaults to
// active offers only.
func (h *OfferHandler) ListOffers(c *gin.Context) {
	var query model.ListOffersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if query.Status == "" {
		query.Status = string(model.OfferStatusActive)
	}

	offers, total, err := h.service.List(c.Request.Context(), &query)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, offers, response.NewMeta(query.Page, query.Limit, total))
}

// GetOffer handles GET /api/v1/offers/:id.
func (h *OfferHandler) GetOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid offer id")
		return
	}

	offer, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

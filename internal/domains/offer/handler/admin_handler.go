package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/offer/model"
	"studentdeals-backend/internal/domains/offer/service"
	"studentdeals-backend/internal/shared/response"
)

// AdminOfferHandler serves the merchant-facing offer management routes.
type AdminOfferHandler struct {
	service service.OfferService
}

func NewAdminOfferHandler(s service.OfferService) *AdminOfferHandler {
	return &AdminOfferHandler{service: s}
}

// CreateOffer handles POST /api/v1/admin/offers.
func (h *AdminOfferHandler) CreateOffer(c *gin.Context) {
	var req model.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	offer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, offer)
}

// UpdateOffer handles PUT /api/v1/admin/offers/:id. A stale version in
// the body comes back as 409.
func (h *AdminOfferHandler) UpdateOffer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid offer id")
		return
	}

	var req model.UpdateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	offer, err := h.service.Update(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

// UpdateOfferStatus handles PATCH /api/v1/admin/offers/:id/status.
func (h *AdminOfferHandler) UpdateOfferStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid offer id")
		return
	}

	var req model.UpdateOfferStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	offer, err := h.service.UpdateStatus(c.Request.Context(), id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, offer)
}

// ListAllOffers handles GET /api/v1/admin/offers with no status filter
// applied by default.
func (h *AdminOfferHandler) ListAllOffers(c *gin.Context) {
	var query model.ListOffersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	offers, total, err := h.service.List(c.Request.Context(), &query)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, offers, response.NewMeta(query.Page, query.Limit, total))
}

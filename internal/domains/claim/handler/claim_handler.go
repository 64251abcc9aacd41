package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"studentdeals-backend/internal/domains/claim/model"
	"studentdeals-backend/internal/domains/claim/service"
	"studentdeals-backend/internal/shared/response"
)

type ClaimHandler struct {
	service service.ClaimService
}

func NewClaimHandler(s service.ClaimService) *ClaimHandler {
	return &ClaimHandler{service: s}
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	raw, ok := c.Get("userID")
	if !ok {
		return uuid.Nil, false
	}
	userID, ok := raw.(uuid.UUID)
	return userID, ok
}

func offerIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid offer id")
		return uuid.Nil, false
	}
	return id, true
}

// GetUsageStats handles GET /api/v1/offers/:id/usage-stats.
func (h *ClaimHandler) GetUsageStats(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	offerID, ok := offerIDParam(c)
	if !ok {
		return
	}

	entry, err := h.service.UsageStats(c.Request.Context(), userID, offerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, model.NewUsageStatsResponse(entry))
}

// GetClaimAvailability handles GET /api/v1/offers/:id/claim-availability.
func (h *ClaimHandler) GetClaimAvailability(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	offerID, ok := offerIDParam(c)
	if !ok {
		return
	}

	availability, err := h.service.Availability(c.Request.Context(), userID, offerID, time.Now().UTC())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, availability)
}

// ClaimCoupon handles POST /api/v1/offers/:id/claim. Denials come back
// as 409 with the reason; only issued coupons get a 201.
func (h *ClaimHandler) ClaimCoupon(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}
	offerID, ok := offerIDParam(c)
	if !ok {
		return
	}

	result, err := h.service.Claim(c.Request.Context(), userID, offerID, time.Now().UTC())
	if err != nil {
		response.FromError(c, err)
		return
	}

	if !result.Issued {
		details := map[string]interface{}{
			"reason":              result.Reason,
			"current_usage_count": result.Entry.UsageCount,
		}
		if result.NextAvailableAt != nil {
			details["next_available_claim"] = result.NextAvailableAt
		}
		response.ErrorWithDetails(c, http.StatusConflict, "CLAIM_DENIED", "Claim not allowed", details)
		return
	}

	c.JSON(http.StatusCreated, model.NewClaimSuccessResponse(result.Coupon, result.Entry))
}

// GetOfferUsage handles GET /api/v1/admin/offers/:id/usage, the
// merchant-side aggregate over every user's claims.
func (h *ClaimHandler) GetOfferUsage(c *gin.Context) {
	offerID, ok := offerIDParam(c)
	if !ok {
		return
	}

	usage, err := h.service.OfferUsage(c.Request.Context(), offerID)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, usage)
}

// MyCoupons handles GET /api/v1/coupons, the user's coupon wallet.
func (h *ClaimHandler) MyCoupons(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	coupons, total, err := h.service.MyCoupons(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}

	// Expiry is resolved lazily so a wallet read never shows an ACTIVE
	// coupon that is already past its date.
	now := time.Now().UTC()
	for _, coupon := range coupons {
		coupon.Status = coupon.EffectiveStatus(now)
	}

	response.SuccessWithMeta(c, http.StatusOK, coupons, response.NewMeta(page, limit, total))
}

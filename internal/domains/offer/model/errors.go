package model

import (
	"net/http"

	"studentdeals-backend/internal/shared"
)

var (
	ErrOfferNotFound = &shared.AppError{
		Code:       "OFFER_001",
		Message:    "Offer not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrOfferInactive = &shared.AppError{
		Code:       "OFFER_002",
		Message:    "Offer is not accepting claims",
		HTTPStatus: http.StatusGone,
	}

	ErrOfferExhausted = &shared.AppError{
		Code:       "OFFER_003",
		Message:    "All coupons for this offer have been claimed",
		HTTPStatus: http.StatusGone,
	}

	ErrInvalidPolicy = &shared.AppError{
		Code:       "OFFER_004",
		Message:    "Offer usage policy is invalid",
		HTTPStatus: http.StatusUnprocessableEntity,
	}

	ErrVersionConflict = &shared.AppError{
		Code:       "OFFER_005",
		Message:    "Offer was modified by another request",
		HTTPStatus: http.StatusConflict,
	}
)

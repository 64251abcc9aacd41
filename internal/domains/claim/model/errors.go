package model

import (
	"net/http"

	"studentdeals-backend/internal/shared"
)

var (
	ErrClaimTimeout = &shared.AppError{
		Code:       "CLAIM_001",
		Message:    "Timed out waiting for a concurrent claim to finish",
		HTTPStatus: http.StatusGatewayTimeout,
	}

	ErrCouponNotFound = &shared.AppError{
		Code:       "CLAIM_002",
		Message:    "Coupon not found",
		HTTPStatus: http.StatusNotFound,
	}

	ErrStorageFailure = &shared.AppError{
		Code:       "CLAIM_003",
		Message:    "Claim could not be persisted",
		HTTPStatus: http.StatusInternalServerError,
	}
)

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"studentdeals-backend/internal/domains/offer/model"
	"studentdeals-backend/internal/domains/offer/repository"
	"studentdeals-backend/pkg/cache"
)

const offerCacheTTL = 5 * time.Minute

type offerService struct {
	repo  repository.OfferRepository
	cache cache.Cache
}

func NewOfferService(repo repository.OfferRepository, c cache.Cache) OfferService {
	return &offerService{repo: repo, cache: c}
}

func offerCacheKey(id uuid.UUID) string {
	return "offer:" + id.String()
}

func (s *offerService) Create(ctx context.Context, req *model.CreateOfferRequest) (*model.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	merchantID, err := uuid.Parse(req.MerchantID)
	if err != nil {
		return nil, validation.Errors{"merchant_id": errors.New("must be a valid UUID")}
	}

	offer := &model.Offer{
		ID:             uuid.New(),
		MerchantID:     merchantID,
		Title:          req.Title,
		Description:    req.Description,
		DiscountKind:   model.DiscountKind(req.DiscountKind),
		DiscountValue:  req.DiscountValue,
		ReferencePrice: req.ReferencePrice,
		UsagePolicy: model.UsagePolicy{
			UsageType:           model.UsageType(req.UsageType),
			MaxClaimsPerUser:    req.MaxClaimsPerUser,
			CooldownPeriodHours: req.CooldownPeriodHours,
		},
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		Status:             model.OfferStatusActive,
		TotalCoupons:       req.TotalCoupons,
		CouponValidityDays: req.CouponValidityDays,
	}
	if err := offer.UsagePolicy.Validate(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, offer); err != nil {
		return nil, fmt.Errorf("create offer: %w", err)
	}

	log.Info().
		Str("offer_id", offer.ID.String()).
		Str("merchant_id", offer.MerchantID.String()).
		Msg("offer created")
	return offer, nil
}

func (s *offerService) FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	key := offerCacheKey(id)

	var cached model.Offer
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return &cached, nil
	}

	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, offer, offerCacheTTL); err != nil {
		log.Warn().Err(err).Str("offer_id", id.String()).Msg("failed to cache offer")
	}
	return offer, nil
}

func (s *offerService) List(ctx context.Context, query *model.ListOffersQuery) ([]*model.Offer, int64, error) {
	return s.repo.List(ctx, query)
}

func (s *offerService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateOfferRequest) (*model.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The caller edits the version it last saw. A stale version fails
	// the optimistic check in the repository.
	offer.Version = req.Version

	if req.Title != nil {
		offer.Title = *req.Title
	}
	if req.Description != nil {
		offer.Description = req.Description
	}
	if req.DiscountValue != nil {
		offer.DiscountValue = *req.DiscountValue
	}
	if req.ReferencePrice != nil {
		offer.ReferencePrice = *req.ReferencePrice
	}
	if req.UsageType != nil {
		offer.UsageType = model.UsageType(*req.UsageType)
	}
	if req.MaxClaimsPerUser != nil {
		offer.MaxClaimsPerUser = req.MaxClaimsPerUser
	}
	if req.CooldownPeriodHours != nil {
		offer.CooldownPeriodHours = *req.CooldownPeriodHours
	}
	if req.EndDate != nil {
		offer.EndDate = *req.EndDate
	}
	if req.TotalCoupons != nil {
		offer.TotalCoupons = req.TotalCoupons
	}
	if req.Status != nil {
		offer.Status = model.OfferStatus(*req.Status)
	}

	if err := offer.UsagePolicy.Validate(); err != nil {
		return nil, err
	}
	if !offer.EndDate.After(offer.StartDate) {
		return nil, validation.Errors{"end_date": errors.New("must be after start_date")}
	}

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, offerCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("offer_id", id.String()).Msg("failed to invalidate offer cache")
	}
	return offer, nil
}

func (s *offerService) UpdateStatus(ctx context.Context, id uuid.UUID, req *model.UpdateOfferStatusRequest) (*model.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	offer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	offer.Version = req.Version
	offer.Status = model.OfferStatus(req.Status)

	if err := s.repo.Update(ctx, offer); err != nil {
		return nil, err
	}

	if err := s.cache.Delete(ctx, offerCacheKey(id)); err != nil {
		log.Warn().Err(err).Str("offer_id", id.String()).Msg("failed to invalidate offer cache")
	}

	log.Info().
		Str("offer_id", id.String()).
		Str("status", req.Status).
		Msg("offer status changed")
	return offer, nil
}

func (s *offerService) ArchiveEnded(ctx context.Context, batch int) (int64, error) {
	changed, err := s.repo.ArchiveEnded(ctx, time.Now().UTC(), batch)
	if err != nil {
		return 0, err
	}
	if changed > 0 {
		// Archived offers may still sit in the cache under their ids.
		if err := s.cache.DeletePattern(ctx, "offer:*"); err != nil {
			log.Warn().Err(err).Msg("failed to flush offer cache after archiving")
		}
	}
	return changed, nil
}

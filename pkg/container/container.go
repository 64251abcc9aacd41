package container

import (
	"context"
	"fmt"
	"time"

	"studentdeals-backend/internal/config"
	claimHandler "studentdeals-backend/internal/domains/claim/handler"
	claimRepo "studentdeals-backend/internal/domains/claim/repository"
	claimService "studentdeals-backend/internal/domains/claim/service"
	offerHandler "studentdeals-backend/internal/domains/offer/handler"
	offerRepo "studentdeals-backend/internal/domains/offer/repository"
	offerService "studentdeals-backend/internal/domains/offer/service"
	infraCache "studentdeals-backend/internal/infrastructure/cache"
	"studentdeals-backend/internal/infrastructure/database"
	"studentdeals-backend/pkg/cache"
	"studentdeals-backend/pkg/jwt"
	"studentdeals-backend/pkg/logger"
)

// Container is the root of the dependency graph. Everything in it is a
// singleton built once at startup, in dependency order: config,
// infrastructure, repositories, services, handlers.
type Container struct {
	Config     *config.Config
	DB         *database.PostgresDB
	Cache      cache.Cache
	JWTManager *jwt.Manager

	OfferRepo offerRepo.OfferRepository
	ClaimRepo *claimRepo.PostgresClaimRepository

	OfferService offerService.OfferService
	ClaimService claimService.ClaimService

	OfferHandler      *offerHandler.OfferHandler
	AdminOfferHandler *offerHandler.AdminOfferHandler
	ClaimHandler      *claimHandler.ClaimHandler
}

func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}
	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := redisCache.Connect(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	c.Cache = redisCache

	c.JWTManager = jwt.NewManager(
		cfg.JWT.Secret,
		time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute,
		time.Duration(cfg.JWT.RefreshTokenExpiry)*time.Hour,
	)

	c.OfferRepo = offerRepo.NewPostgresOfferRepository(db.Pool)
	c.ClaimRepo = claimRepo.NewPostgresClaimRepository(db.Pool)

	c.OfferService = offerService.NewOfferService(c.OfferRepo, c.Cache)
	c.ClaimService = claimService.NewClaimService(
		c.OfferService,
		c.ClaimRepo,
		c.ClaimRepo,
		time.Duration(cfg.Claim.LockWaitMillis)*time.Millisecond,
	)

	c.OfferHandler = offerHandler.NewOfferHandler(c.OfferService)
	c.AdminOfferHandler = offerHandler.NewAdminOfferHandler(c.OfferService)
	c.ClaimHandler = claimHandler.NewClaimHandler(c.ClaimService)

	logger.Info("Container initialized", map[string]interface{}{
		"environment": cfg.App.Environment,
	})
	return c, nil
}

// Cleanup releases infrastructure connections in reverse order.
func (c *Container) Cleanup() {
	if c.Cache != nil {
		if closer, ok := c.Cache.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close redis connection", err)
			}
		}
	}
	if c.DB != nil {
		c.DB.Close()
	}
	logger.Info("Container cleaned up", nil)
}

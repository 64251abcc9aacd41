package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studentdeals-backend/internal/domains/offer/model"
)

const offerColumns = `id, merchant_id, title, description, discount_kind, discount_value,
	reference_price, usage_type, max_claims_per_user, cooldown_period_hours,
	start_date, end_date, status, total_coupons, claimed_count, redeemed_count,
	coupon_validity_days, version, created_at, updated_at`

type postgresOfferRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresOfferRepository(pool *pgxpool.Pool) OfferRepository {
	return &postgresOfferRepository{pool: pool}
}

func scanOffer(row pgx.Row) (*model.Offer, error) {
	var o model.Offer
	err := row.Scan(
		&o.ID, &o.MerchantID, &o.Title, &o.Description, &o.DiscountKind, &o.DiscountValue,
		&o.ReferencePrice, &o.UsageType, &o.MaxClaimsPerUser, &o.CooldownPeriodHours,
		&o.StartDate, &o.EndDate, &o.Status, &o.TotalCoupons, &o.ClaimedCount, &o.RedeemedCount,
		&o.CouponValidityDays, &o.Version, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *postgresOfferRepository) Create(ctx context.Context, offer *model.Offer) error {
	query := `
		INSERT INTO offers (id, merchant_id, title, description, discount_kind, discount_value,
			reference_price, usage_type, max_claims_per_user, cooldown_period_hours,
			start_date, end_date, status, total_coupons, coupon_validity_days, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, 1)
		RETURNING claimed_count, redeemed_count, version, created_at, updated_at`

	return r.pool.QueryRow(ctx, query,
		offer.ID, offer.MerchantID, offer.Title, offer.Description,
		offer.DiscountKind, offer.DiscountValue, offer.ReferencePrice,
		offer.UsageType, offer.MaxClaimsPerUser, offer.CooldownPeriodHours,
		offer.StartDate, offer.EndDate, offer.Status, offer.TotalCoupons,
		offer.CouponValidityDays,
	).Scan(&offer.ClaimedCount, &offer.RedeemedCount, &offer.Version, &offer.CreatedAt, &offer.UpdatedAt)
}

func (r *postgresOfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Offer, error) {
	query := fmt.Sprintf(`SELECT %s FROM offers WHERE id = $1`, offerColumns)

	offer, err := scanOffer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrOfferNotFound
		}
		return nil, fmt.Errorf("find offer: %w", err)
	}
	return offer, nil
}

func (r *postgresOfferRepository) List(ctx context.Context, q *model.ListOffersQuery) ([]*model.Offer, int64, error) {
	q.Normalize()

	where := "WHERE 1=1"
	args := []interface{}{}
	idx := 1
	if q.MerchantID != "" {
		where += fmt.Sprintf(" AND merchant_id = $%d", idx)
		args = append(args, q.MerchantID)
		idx++
	}
	if q.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", idx)
		args = append(args, q.Status)
		idx++
	}
	if q.Search != "" {
		where += fmt.Sprintf(" AND title ILIKE $%d", idx)
		args = append(args, "%"+q.Search+"%")
		idx++
	}

	var total int64
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM offers "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count offers: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM offers %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		offerColumns, where, idx, idx+1)
	args = append(args, q.Limit, (q.Page-1)*q.Limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list offers: %w", err)
	}
	defer rows.Close()

	offers := make([]*model.Offer, 0)
	for rows.Next() {
		offer, err := scanOffer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan offer: %w", err)
		}
		offers = append(offers, offer)
	}
	return offers, total, rows.Err()
}

func (r *postgresOfferRepository) Update(ctx context.Context, offer *model.Offer) error {
	query := `
		UPDATE offers
		SET title = $1, description = $2, discount_value = $3, reference_price = $4,
			usage_type = $5, max_claims_per_user = $6, cooldown_period_hours = $7,
			end_date = $8, total_coupons = $9, status = $10,
			version = version + 1, updated_at = NOW()
		WHERE id = $11 AND version = $12
		RETURNING version, updated_at`

	err := r.pool.QueryRow(ctx, query,
		offer.Title, offer.Description, offer.DiscountValue, offer.ReferencePrice,
		offer.UsageType, offer.MaxClaimsPerUser, offer.CooldownPeriodHours,
		offer.EndDate, offer.TotalCoupons, offer.Status,
		offer.ID, offer.Version,
	).Scan(&offer.Version, &offer.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrVersionConflict
		}
		return fmt.Errorf("update offer: %w", err)
	}
	return nil
}

func (r *postgresOfferRepository) ArchiveEnded(ctx context.Context, now time.Time, batch int) (int64, error) {
	query := `
		UPDATE offers
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM offers
			WHERE status != $1 AND end_date < $2
			LIMIT $3
		)`

	tag, err := r.pool.Exec(ctx, query, model.OfferStatusArchived, now, batch)
	if err != nil {
		return 0, fmt.Errorf("archive ended offers: %w", err)
	}
	return tag.RowsAffected(), nil
}

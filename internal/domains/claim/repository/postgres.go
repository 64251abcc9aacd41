package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"studentdeals-backend/internal/domains/claim/model"
	offermodel "studentdeals-backend/internal/domains/offer/model"
	"studentdeals-backend/pkg/database"
)

const couponColumns = `id, user_id, offer_id, code, qr_code, status, discount,
	idempotency_key, expiry_date, redeemed_at, created_at, updated_at`

// errIdempotentReplay signals that the coupon insert hit an idempotency
// key that was already committed by an earlier attempt.
var errIdempotentReplay = errors.New("idempotency key already used")

type PostgresClaimRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresClaimRepository(pool *pgxpool.Pool) *PostgresClaimRepository {
	return &PostgresClaimRepository{pool: pool}
}

var (
	_ ClaimStore  = (*PostgresClaimRepository)(nil)
	_ CouponStore = (*PostgresClaimRepository)(nil)
)

func (r *PostgresClaimRepository) Entry(ctx context.Context, userID, offerID uuid.UUID) (*model.UsageLedgerEntry, error) {
	query := `
		SELECT id, user_id, offer_id, usage_count, total_savings, last_claim_at, created_at, updated_at
		FROM usage_ledger
		WHERE user_id = $1 AND offer_id = $2`

	entry, err := scanLedgerEntry(r.pool.QueryRow(ctx, query, userID, offerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.EmptyLedgerEntry(userID, offerID), nil
		}
		return nil, fmt.Errorf("load ledger entry: %w", err)
	}
	return entry, nil
}

type applyClaimResult struct {
	entry  *model.UsageLedgerEntry
	coupon *model.Coupon
}

func (r *PostgresClaimRepository) ApplyClaim(ctx context.Context, p ApplyClaimParams) (*model.UsageLedgerEntry, *model.Coupon, error) {
	result, err := database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) (applyClaimResult, error) {
		return r.applyClaimTx(ctx, tx, p)
	})
	if err != nil {
		if errors.Is(err, errIdempotentReplay) {
			return r.replayCommittedClaim(ctx, p)
		}
		return nil, nil, err
	}
	return result.entry, result.coupon, nil
}

func (r *PostgresClaimRepository) applyClaimTx(ctx context.Context, tx pgx.Tx, p ApplyClaimParams) (applyClaimResult, error) {
	var zero applyClaimResult

	// Make sure a ledger row exists, then lock it for the duration of
	// the transaction. The row lock serializes claims across instances;
	// the in-process key lock only covers this one.
	_, err := tx.Exec(ctx, `
		INSERT INTO usage_ledger (id, user_id, offer_id, usage_count, total_savings)
		VALUES ($1, $2, $3, 0, 0)
		ON CONFLICT (user_id, offer_id) DO NOTHING`,
		uuid.New(), p.UserID, p.OfferID)
	if err != nil {
		return zero, fmt.Errorf("ensure ledger row: %w", err)
	}

	_, err = tx.Exec(ctx, `
		SELECT id FROM usage_ledger WHERE user_id = $1 AND offer_id = $2 FOR UPDATE`,
		p.UserID, p.OfferID)
	if err != nil {
		return zero, fmt.Errorf("lock ledger row: %w", err)
	}

	// Consume one coupon from the campaign pool, refusing to go past
	// total_coupons.
	tag, err := tx.Exec(ctx, `
		UPDATE offers
		SET claimed_count = claimed_count + 1, updated_at = NOW()
		WHERE id = $1 AND (total_coupons IS NULL OR claimed_count < total_coupons)`,
		p.OfferID)
	if err != nil {
		return zero, fmt.Errorf("consume coupon pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return zero, offermodel.ErrOfferExhausted
	}

	entry, err := scanLedgerEntry(tx.QueryRow(ctx, `
		UPDATE usage_ledger
		SET usage_count = usage_count + 1,
			total_savings = total_savings + $3,
			last_claim_at = $4,
			updated_at = NOW()
		WHERE user_id = $1 AND offer_id = $2
		RETURNING id, user_id, offer_id, usage_count, total_savings, last_claim_at, created_at, updated_at`,
		p.UserID, p.OfferID, p.Savings, p.Now))
	if err != nil {
		return zero, fmt.Errorf("bump ledger: %w", err)
	}

	c := p.Coupon
	err = tx.QueryRow(ctx, `
		INSERT INTO coupons (id, user_id, offer_id, code, qr_code, status, discount, idempotency_key, expiry_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`,
		c.ID, c.UserID, c.OfferID, c.Code, c.QRCode, c.Status, c.Discount, c.IdempotencyKey, c.ExpiryDate,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "coupons_idempotency_key_key" {
			return zero, errIdempotentReplay
		}
		return zero, fmt.Errorf("insert coupon: %w", err)
	}

	return applyClaimResult{entry: entry, coupon: c}, nil
}

// replayCommittedClaim returns the outcome of the earlier attempt that
// already committed under the same idempotency key.
func (r *PostgresClaimRepository) replayCommittedClaim(ctx context.Context, p ApplyClaimParams) (*model.UsageLedgerEntry, *model.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE idempotency_key = $1`, couponColumns)
	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, p.Coupon.IdempotencyKey))
	if err != nil {
		return nil, nil, fmt.Errorf("load committed coupon: %w", err)
	}
	entry, err := r.Entry(ctx, p.UserID, p.OfferID)
	if err != nil {
		return nil, nil, err
	}
	return entry, coupon, nil
}

func (r *PostgresClaimRepository) OfferUsage(ctx context.Context, offerID uuid.UUID) (*model.OfferUsageResponse, error) {
	var usage model.OfferUsageResponse

	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COALESCE(SUM(usage_count), 0), COALESCE(SUM(total_savings), 0)
		FROM usage_ledger
		WHERE offer_id = $1`,
		offerID,
	).Scan(&usage.UniqueClaimers, &usage.TotalClaims, &usage.TotalSavings)
	if err != nil {
		return nil, fmt.Errorf("aggregate ledger: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = $2),
			COUNT(*) FILTER (WHERE status = $3)
		FROM coupons
		WHERE offer_id = $1`,
		offerID, model.CouponStatusActive, model.CouponStatusRedeemed,
	).Scan(&usage.ActiveCoupons, &usage.RedeemedCoupons)
	if err != nil {
		return nil, fmt.Errorf("aggregate coupons: %w", err)
	}
	return &usage, nil
}

func (r *PostgresClaimRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Coupon, error) {
	query := fmt.Sprintf(`SELECT %s FROM coupons WHERE id = $1`, couponColumns)

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrCouponNotFound
		}
		return nil, fmt.Errorf("find coupon: %w", err)
	}
	return coupon, nil
}

func (r *PostgresClaimRepository) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]*model.Coupon, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM coupons WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count coupons: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM coupons
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, couponColumns)

	rows, err := r.pool.Query(ctx, query, userID, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list coupons: %w", err)
	}
	defer rows.Close()

	coupons := make([]*model.Coupon, 0)
	for rows.Next() {
		coupon, err := scanCoupon(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan coupon: %w", err)
		}
		coupons = append(coupons, coupon)
	}
	return coupons, total, rows.Err()
}

func (r *PostgresClaimRepository) MarkExpired(ctx context.Context, now time.Time, batch int) (int64, error) {
	query := `
		UPDATE coupons
		SET status = $1, updated_at = NOW()
		WHERE id IN (
			SELECT id FROM coupons
			WHERE status = $2 AND expiry_date < $3
			LIMIT $4
		)`

	tag, err := r.pool.Exec(ctx, query, model.CouponStatusExpired, model.CouponStatusActive, now, batch)
	if err != nil {
		return 0, fmt.Errorf("mark expired coupons: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanLedgerEntry(row pgx.Row) (*model.UsageLedgerEntry, error) {
	var e model.UsageLedgerEntry
	err := row.Scan(&e.ID, &e.UserID, &e.OfferID, &e.UsageCount, &e.TotalSavings,
		&e.LastClaimAt, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var c model.Coupon
	err := row.Scan(&c.ID, &c.UserID, &c.OfferID, &c.Code, &c.QRCode, &c.Status, &c.Discount,
		&c.IdempotencyKey, &c.ExpiryDate, &c.RedeemedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

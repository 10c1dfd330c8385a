package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

const couponColumns = `id::text, agent_id, code, type, value, max_discount, min_purchase,
	usage_limit, usage_count, valid_from, valid_until, is_active, created_at`

// CouponRepository provides data access for coupons using pgx.
type CouponRepository struct {
	pool PoolInterface
}

// NewCouponRepository creates a new CouponRepository with the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// NewCouponRepositoryWithPool creates a new CouponRepository with a custom pool interface.
// This is primarily used for testing.
func NewCouponRepositoryWithPool(pool PoolInterface) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Insert inserts a new coupon into the database.
// Returns service.ErrCouponExists if the agent already has a coupon with the same code.
func (r *CouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO coupons (id, agent_id, code, type, value, max_discount, min_purchase,
			usage_limit, usage_count, valid_from, valid_until, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		coupon.ID, coupon.AgentID, coupon.Code, string(coupon.Type), coupon.Value,
		nullDecimal(coupon.MaxDiscount), nullDecimal(coupon.MinPurchase),
		coupon.UsageLimit, coupon.UsageCount, coupon.ValidFrom, coupon.ValidUntil, coupon.IsActive)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return service.ErrCouponExists
		}
		return fmt.Errorf("insert coupon: %w", err)
	}
	return nil
}

// GetByCode retrieves an agent's coupon by code, ignoring case.
// Returns nil, nil if the coupon is not found (service layer handles this).
func (r *CouponRepository) GetByCode(ctx context.Context, agentID, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE agent_id = $1 AND UPPER(code) = UPPER($2)`

	coupon, err := scanCoupon(r.pool.QueryRow(ctx, query, agentID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found - let service handle
		}
		return nil, fmt.Errorf("get coupon by code %s: %w", code, err)
	}
	return coupon, nil
}

// GetByCodeForUpdate retrieves a coupon with a row lock (SELECT FOR UPDATE).
// This locks the row until the transaction completes.
// Returns service.ErrCouponNotFound if the coupon doesn't exist.
func (r *CouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, agentID, code string) (*model.Coupon, error) {
	query := `SELECT ` + couponColumns + ` FROM coupons WHERE agent_id = $1 AND UPPER(code) = UPPER($2) FOR UPDATE`

	coupon, err := scanCoupon(tx.QueryRow(ctx, query, agentID, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, service.ErrCouponNotFound
		}
		return nil, fmt.Errorf("get coupon for update %s: %w", code, err)
	}
	return coupon, nil
}

// IncrementUsage records one redemption. The usage limit is enforced in the
// UPDATE itself, so a concurrent redemption cannot push usage_count past it.
// Returns service.ErrCouponExhausted when no row was updated.
func (r *CouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, id string) error {
	query := `UPDATE coupons SET usage_count = usage_count + 1
		WHERE id = $1 AND (usage_limit IS NULL OR usage_count < usage_limit)`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment coupon usage %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrCouponExhausted
	}
	return nil
}

func scanCoupon(row pgx.Row) (*model.Coupon, error) {
	var (
		coupon      model.Coupon
		couponType  string
		maxDiscount decimal.NullDecimal
		minPurchase decimal.NullDecimal
	)
	err := row.Scan(
		&coupon.ID,
		&coupon.AgentID,
		&coupon.Code,
		&couponType,
		&coupon.Value,
		&maxDiscount,
		&minPurchase,
		&coupon.UsageLimit,
		&coupon.UsageCount,
		&coupon.ValidFrom,
		&coupon.ValidUntil,
		&coupon.IsActive,
		&coupon.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	coupon.Type = model.DiscountType(couponType)
	coupon.MaxDiscount = decimalPtr(maxDiscount)
	coupon.MinPurchase = decimalPtr(minPurchase)
	return &coupon, nil
}

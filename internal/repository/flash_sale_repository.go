package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/internal/service"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

const flashSaleColumns = `id::text, agent_id, service_id, original_price, sale_price,
	quantity, sold_count, start_at, end_at, is_active, created_at`

// liveFlashSaleFilter selects sales that can price an order at $3.
// The cheapest live sale wins when several overlap.
const liveFlashSaleFilter = ` FROM flash_sales
	WHERE agent_id = $1 AND service_id = $2 AND is_active
		AND start_at <= $3 AND end_at >= $3 AND sold_count < quantity
	ORDER BY sale_price ASC, start_at ASC
	LIMIT 1`

// FlashSaleRepository provides data access for flash sales using pgx.
type FlashSaleRepository struct {
	pool PoolInterface
}

// NewFlashSaleRepository creates a new FlashSaleRepository with the given pool.
func NewFlashSaleRepository(pool *pgxpool.Pool) *FlashSaleRepository {
	return &FlashSaleRepository{pool: pool}
}

// NewFlashSaleRepositoryWithPool creates a new FlashSaleRepository with a custom pool interface.
// This is primarily used for testing.
func NewFlashSaleRepositoryWithPool(pool PoolInterface) *FlashSaleRepository {
	return &FlashSaleRepository{pool: pool}
}

// Insert inserts a new flash sale into the database.
func (r *FlashSaleRepository) Insert(ctx context.Context, sale *model.FlashSale) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO flash_sales (id, agent_id, service_id, original_price, sale_price,
			quantity, sold_count, start_at, end_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		sale.ID, sale.AgentID, sale.ServiceID, sale.OriginalPrice, sale.SalePrice,
		sale.Quantity, sale.SoldCount, sale.StartAt, sale.EndAt, sale.IsActive)
	if err != nil {
		return fmt.Errorf("insert flash sale: %w", err)
	}
	return nil
}

// GetByID retrieves an agent's flash sale by id.
// Returns nil, nil if the flash sale is not found.
func (r *FlashSaleRepository) GetByID(ctx context.Context, agentID, id string) (*model.FlashSale, error) {
	query := `SELECT ` + flashSaleColumns + ` FROM flash_sales WHERE agent_id = $1 AND id::text = $2`

	sale, err := scanFlashSale(r.pool.QueryRow(ctx, query, agentID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get flash sale %s: %w", id, err)
	}
	return sale, nil
}

// GetLiveForService returns the flash sale pricing serviceID at now, or nil, nil if none.
func (r *FlashSaleRepository) GetLiveForService(ctx context.Context, agentID, serviceID string, now time.Time) (*model.FlashSale, error) {
	return r.getLive(ctx, r.pool, agentID, serviceID, now, "")
}

// GetLiveForServiceForUpdate is GetLiveForService with a row lock held until the transaction ends.
func (r *FlashSaleRepository) GetLiveForServiceForUpdate(ctx context.Context, tx database.TxQuerier, agentID, serviceID string, now time.Time) (*model.FlashSale, error) {
	return r.getLive(ctx, tx, agentID, serviceID, now, " FOR UPDATE")
}

func (r *FlashSaleRepository) getLive(ctx context.Context, q PoolInterface, agentID, serviceID string, now time.Time, lock string) (*model.FlashSale, error) {
	query := `SELECT ` + flashSaleColumns + liveFlashSaleFilter + lock

	sale, err := scanFlashSale(q.QueryRow(ctx, query, agentID, serviceID, now))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get live flash sale for %s: %w", serviceID, err)
	}
	return sale, nil
}

// IncrementSold records one completed order against the sale.
// Returns service.ErrFlashSaleSoldOut when the sale is already full.
func (r *FlashSaleRepository) IncrementSold(ctx context.Context, tx database.TxQuerier, id string) error {
	query := `UPDATE flash_sales SET sold_count = sold_count + 1 WHERE id = $1 AND sold_count < quantity`

	tag, err := tx.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("increment flash sale sold %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return service.ErrFlashSaleSoldOut
	}
	return nil
}

func scanFlashSale(row pgx.Row) (*model.FlashSale, error) {
	var sale model.FlashSale
	err := row.Scan(
		&sale.ID,
		&sale.AgentID,
		&sale.ServiceID,
		&sale.OriginalPrice,
		&sale.SalePrice,
		&sale.Quantity,
		&sale.SoldCount,
		&sale.StartAt,
		&sale.EndAt,
		&sale.IsActive,
		&sale.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

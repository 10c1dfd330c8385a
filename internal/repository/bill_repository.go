package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

const billColumns = `id::text, agent_id, customer_id, service_id, quantity, base_price, unit_price,
	sale_price, cost_price, actual_cost, profit, agent_discount, flash_sale_discount, coupon_discount,
	coupon_code, coupon_id::text, flash_sale_id::text, tier_name, created_at`

// BillPoolInterface defines the database operations needed by BillRepository.
type BillPoolInterface interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// BillRepository provides data access for bills using pgx.
type BillRepository struct {
	pool BillPoolInterface
}

// NewBillRepository creates a new BillRepository with the given pool.
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

// NewBillRepositoryWithPool creates a new BillRepository with a custom pool interface.
// This is primarily used for testing.
func NewBillRepositoryWithPool(pool BillPoolInterface) *BillRepository {
	return &BillRepository{pool: pool}
}

// Insert inserts a bill within a transaction. CreatedAt is filled from the database.
func (r *BillRepository) Insert(ctx context.Context, tx database.TxQuerier, bill *model.Bill) error {
	query := `INSERT INTO bills (id, agent_id, customer_id, service_id, quantity, base_price, unit_price,
			sale_price, cost_price, actual_cost, profit, agent_discount, flash_sale_discount, coupon_discount,
			coupon_code, coupon_id, flash_sale_id, tier_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at`

	err := tx.QueryRow(ctx, query,
		bill.ID, bill.AgentID, bill.CustomerID, bill.ServiceID, bill.Quantity,
		bill.BasePrice, bill.UnitPrice, bill.SalePrice, bill.CostPrice, bill.ActualCost, bill.Profit,
		bill.AgentDiscount, bill.FlashSaleDiscount, bill.CouponDiscount,
		bill.CouponCode, bill.CouponID, bill.FlashSaleID, bill.TierName,
	).Scan(&bill.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

// ListByCustomer returns the customer's most recent bills, newest first.
// On success, returns an empty slice (not nil) when the customer has no bills.
func (r *BillRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]model.Bill, error) {
	query := `SELECT ` + billColumns + ` FROM bills WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, customerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list bills for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	bills := []model.Bill{}
	for rows.Next() {
		var b model.Bill
		if err := rows.Scan(
			&b.ID, &b.AgentID, &b.CustomerID, &b.ServiceID, &b.Quantity,
			&b.BasePrice, &b.UnitPrice, &b.SalePrice, &b.CostPrice, &b.ActualCost, &b.Profit,
			&b.AgentDiscount, &b.FlashSaleDiscount, &b.CouponDiscount,
			&b.CouponCode, &b.CouponID, &b.FlashSaleID, &b.TierName, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bill rows: %w", err)
	}
	return bills, nil
}

// SumSpendByCustomer returns the total the customer has paid across all bills.
func (r *BillRepository) SumSpendByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	query := `SELECT COALESCE(SUM(sale_price), 0) FROM bills WHERE customer_id = $1`

	var total decimal.Decimal
	if err := r.pool.QueryRow(ctx, query, customerID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum spend for customer %s: %w", customerID, err)
	}
	return total, nil
}


package service

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

// CouponRepositoryInterface defines the interface for coupon data access.
type CouponRepositoryInterface interface {
	Insert(ctx context.Context, coupon *model.Coupon) error
	GetByCode(ctx context.Context, agentID, code string) (*model.Coupon, error)
	GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, agentID, code string) (*model.Coupon, error)
	IncrementUsage(ctx context.Context, tx database.TxQuerier, id string) error
}

// FlashSaleRepositoryInterface defines the interface for flash sale data access.
type FlashSaleRepositoryInterface interface {
	Insert(ctx context.Context, sale *model.FlashSale) error
	GetByID(ctx context.Context, agentID, id string) (*model.FlashSale, error)
	GetLiveForService(ctx context.Context, agentID, serviceID string, now time.Time) (*model.FlashSale, error)
	GetLiveForServiceForUpdate(ctx context.Context, tx database.TxQuerier, agentID, serviceID string, now time.Time) (*model.FlashSale, error)
	IncrementSold(ctx context.Context, tx database.TxQuerier, id string) error
}

// BillRepositoryInterface defines the interface for bill data access.
type BillRepositoryInterface interface {
	Insert(ctx context.Context, tx database.TxQuerier, bill *model.Bill) error
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]model.Bill, error)
	SpendRepository
}

// SpendRepository sums what a customer has paid across all bills.
type SpendRepository interface {
	SumSpendByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error)
}

// SpendCache caches cumulative spend per customer. GetSpend also returns the
// customer's generation; SetSpend only stores when it is still current.
type SpendCache interface {
	GetSpend(ctx context.Context, customerID string) (decimal.Decimal, int64, bool, error)
	SetSpend(ctx context.Context, customerID string, generation int64, spend decimal.Decimal) (bool, error)
	InvalidateSpend(ctx context.Context, customerID string) error
}

// BillPublisher announces committed bills to other services.
type BillPublisher interface {
	PublishBillCreated(ctx context.Context, bill *model.Bill) error
}

// TxBeginner defines the interface for beginning transactions.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

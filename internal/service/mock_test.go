package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
	"github.com/fairyhunter13/meelike-pricing/pkg/database"
)

// mockCouponRepository is a mock implementation of CouponRepositoryInterface.
type mockCouponRepository struct {
	insertFn             func(ctx context.Context, coupon *model.Coupon) error
	getByCodeFn          func(ctx context.Context, agentID, code string) (*model.Coupon, error)
	getByCodeForUpdateFn func(ctx context.Context, tx database.TxQuerier, agentID, code string) (*model.Coupon, error)
	incrementUsageFn     func(ctx context.Context, tx database.TxQuerier, id string) error
}

func (m *mockCouponRepository) Insert(ctx context.Context, coupon *model.Coupon) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, coupon)
	}
	return nil
}

func (m *mockCouponRepository) GetByCode(ctx context.Context, agentID, code string) (*model.Coupon, error) {
	if m.getByCodeFn != nil {
		return m.getByCodeFn(ctx, agentID, code)
	}
	return nil, nil
}

func (m *mockCouponRepository) GetByCodeForUpdate(ctx context.Context, tx database.TxQuerier, agentID, code string) (*model.Coupon, error) {
	if m.getByCodeForUpdateFn != nil {
		return m.getByCodeForUpdateFn(ctx, tx, agentID, code)
	}
	return nil, ErrCouponNotFound
}

func (m *mockCouponRepository) IncrementUsage(ctx context.Context, tx database.TxQuerier, id string) error {
	if m.incrementUsageFn != nil {
		return m.incrementUsageFn(ctx, tx, id)
	}
	return nil
}

// mockFlashSaleRepository is a mock implementation of FlashSaleRepositoryInterface.
type mockFlashSaleRepository struct {
	insertFn                     func(ctx context.Context, sale *model.FlashSale) error
	getByIDFn                    func(ctx context.Context, agentID, id string) (*model.FlashSale, error)
	getLiveForServiceFn          func(ctx context.Context, agentID, serviceID string, now time.Time) (*model.FlashSale, error)
	getLiveForServiceForUpdateFn func(ctx context.Context, tx database.TxQuerier, agentID, serviceID string, now time.Time) (*model.FlashSale, error)
	incrementSoldFn              func(ctx context.Context, tx database.TxQuerier, id string) error
}

func (m *mockFlashSaleRepository) Insert(ctx context.Context, sale *model.FlashSale) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, sale)
	}
	return nil
}

func (m *mockFlashSaleRepository) GetByID(ctx context.Context, agentID, id string) (*model.FlashSale, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, agentID, id)
	}
	return nil, nil
}

func (m *mockFlashSaleRepository) GetLiveForService(ctx context.Context, agentID, serviceID string, now time.Time) (*model.FlashSale, error) {
	if m.getLiveForServiceFn != nil {
		return m.getLiveForServiceFn(ctx, agentID, serviceID, now)
	}
	return nil, nil
}

func (m *mockFlashSaleRepository) GetLiveForServiceForUpdate(ctx context.Context, tx database.TxQuerier, agentID, serviceID string, now time.Time) (*model.FlashSale, error) {
	if m.getLiveForServiceForUpdateFn != nil {
		return m.getLiveForServiceForUpdateFn(ctx, tx, agentID, serviceID, now)
	}
	return nil, nil
}

func (m *mockFlashSaleRepository) IncrementSold(ctx context.Context, tx database.TxQuerier, id string) error {
	if m.incrementSoldFn != nil {
		return m.incrementSoldFn(ctx, tx, id)
	}
	return nil
}

// mockBillRepository is a mock implementation of BillRepositoryInterface.
type mockBillRepository struct {
	insertFn         func(ctx context.Context, tx database.TxQuerier, bill *model.Bill) error
	listByCustomerFn func(ctx context.Context, customerID string, limit int) ([]model.Bill, error)
	sumSpendFn       func(ctx context.Context, customerID string) (decimal.Decimal, error)
}

func (m *mockBillRepository) Insert(ctx context.Context, tx database.TxQuerier, bill *model.Bill) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, tx, bill)
	}
	return nil
}

func (m *mockBillRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]model.Bill, error) {
	if m.listByCustomerFn != nil {
		return m.listByCustomerFn(ctx, customerID, limit)
	}
	return []model.Bill{}, nil
}

func (m *mockBillRepository) SumSpendByCustomer(ctx context.Context, customerID string) (decimal.Decimal, error) {
	if m.sumSpendFn != nil {
		return m.sumSpendFn(ctx, customerID)
	}
	return decimal.Zero, nil
}

// mockSpendCache is an in-memory SpendCache with injectable failures.
type mockSpendCache struct {
	values        map[string]decimal.Decimal
	generations   map[string]int64
	getErr        error
	setErr        error
	invalidateErr error
	invalidated   []string
}

func newMockSpendCache() *mockSpendCache {
	return &mockSpendCache{values: map[string]decimal.Decimal{}, generations: map[string]int64{}}
}

func (m *mockSpendCache) GetSpend(ctx context.Context, customerID string) (decimal.Decimal, int64, bool, error) {
	if m.getErr != nil {
		return decimal.Zero, 0, false, m.getErr
	}
	v, ok := m.values[customerID]
	return v, m.generations[customerID], ok, nil
}

func (m *mockSpendCache) SetSpend(ctx context.Context, customerID string, generation int64, spend decimal.Decimal) (bool, error) {
	if m.setErr != nil {
		return false, m.setErr
	}
	if m.generations[customerID] != generation {
		return false, nil
	}
	m.values[customerID] = spend
	return true, nil
}

func (m *mockSpendCache) InvalidateSpend(ctx context.Context, customerID string) error {
	m.invalidated = append(m.invalidated, customerID)
	if m.invalidateErr != nil {
		return m.invalidateErr
	}
	m.generations[customerID]++
	delete(m.values, customerID)
	return nil
}

// mockPublisher records published bills.
type mockPublisher struct {
	published []*model.Bill
	err       error
}

func (m *mockPublisher) PublishBillCreated(ctx context.Context, bill *model.Bill) error {
	m.published = append(m.published, bill)
	return m.err
}

// mockTx is a mock implementation of pgx.Tx for testing transactions.
type mockTx struct {
	commitFn   func(ctx context.Context) error
	rollbackFn func(ctx context.Context) error
	committed  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) {
	return nil, errors.New("nested transactions not supported")
}

func (m *mockTx) Commit(ctx context.Context) error {
	if m.commitFn != nil {
		return m.commitFn(ctx)
	}
	m.committed = true
	return nil
}

func (m *mockTx) Rollback(ctx context.Context) error {
	if m.rollbackFn != nil {
		return m.rollbackFn(ctx)
	}
	return nil
}

func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}

func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	return nil
}

func (m *mockTx) LargeObjects() pgx.LargeObjects {
	return pgx.LargeObjects{}
}

func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}

func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}

func (m *mockTx) Conn() *pgx.Conn {
	return nil
}

// mockTxBeginner is a mock implementation of TxBeginner.
type mockTxBeginner struct {
	beginFn func(ctx context.Context) (pgx.Tx, error)
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	if m.beginFn != nil {
		return m.beginFn(ctx)
	}
	return &mockTx{}, nil
}

var testNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func intPtr(i int) *int {
	return &i
}

func activeCoupon() *model.Coupon {
	return &model.Coupon{
		ID:         "coupon-1",
		AgentID:    "agent-1",
		Code:       "SAVE10",
		Type:       model.DiscountPercentage,
		Value:      dec("10"),
		ValidFrom:  testNow.Add(-24 * time.Hour),
		ValidUntil: testNow.Add(24 * time.Hour),
		IsActive:   true,
	}
}

func liveSale() *model.FlashSale {
	return &model.FlashSale{
		ID:            "sale-1",
		AgentID:       "agent-1",
		ServiceID:     "svc-like",
		OriginalPrice: dec("100"),
		SalePrice:     dec("80"),
		Quantity:      10,
		SoldCount:     9,
		StartAt:       testNow.Add(-time.Hour),
		EndAt:         testNow.Add(time.Hour),
		IsActive:      true,
	}
}

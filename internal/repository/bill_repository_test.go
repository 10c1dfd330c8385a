package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/meelike-pricing/internal/model"
)

func billRow(id string, salePrice int64) func(dest ...any) error {
	return func(dest ...any) error {
		*(dest[0].(*string)) = id
		*(dest[1].(*string)) = "agent-1"
		*(dest[2].(*string)) = "cust-1"
		*(dest[3].(*string)) = "svc"
		*(dest[4].(*int)) = 1
		*(dest[7].(*decimal.Decimal)) = decimal.NewFromInt(salePrice)
		*(dest[17].(*string)) = "Member"
		return nil
	}
}

func TestBillRepository_Insert_Success(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	var capturedSQL string
	var capturedArgs []any
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*time.Time)) = createdAt
				return nil
			}}
		},
	}

	code := "SAVE10"
	bill := &model.Bill{
		ID:         "bill-1",
		AgentID:    "agent-1",
		CustomerID: "cust-1",
		ServiceID:  "svc",
		Quantity:   2,
		SalePrice:  decimal.NewFromInt(180),
		CouponCode: &code,
		TierName:   "Silver",
	}

	err := NewBillRepositoryWithPool(&mockPool{}).Insert(context.Background(), mockTx, bill)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO bills")
	assert.Contains(t, capturedSQL, "RETURNING created_at")
	require.Len(t, capturedArgs, 18)
	assert.Equal(t, "bill-1", capturedArgs[0])
	assert.Equal(t, &code, capturedArgs[14])
	assert.Nil(t, capturedArgs[15], "coupon_id should be NULL when no coupon applied")
	assert.Equal(t, createdAt, bill.CreatedAt)
}

func TestBillRepository_Insert_DatabaseError(t *testing.T) {
	dbErr := errors.New("foreign key violation")
	mockTx := &mockTxQuerier{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error { return dbErr }}
		},
	}

	err := NewBillRepositoryWithPool(&mockPool{}).Insert(context.Background(), mockTx, &model.Bill{ID: "bill-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert bill")
	assert.True(t, errors.Is(err, dbErr))
}

func TestBillRepository_ListByCustomer_ReturnsRowsInOrder(t *testing.T) {
	rows := &mockRows{rows: []func(dest ...any) error{
		billRow("bill-2", 200),
		billRow("bill-1", 100),
	}}
	var capturedArgs []any
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedArgs = args
			assert.Contains(t, sql, "ORDER BY created_at DESC")
			return rows, nil
		},
	}

	bills, err := NewBillRepositoryWithPool(mock).ListByCustomer(context.Background(), "cust-1", 20)

	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, "bill-2", bills[0].ID)
	assert.True(t, bills[1].SalePrice.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, []any{"cust-1", 20}, capturedArgs)
	assert.True(t, rows.closed, "rows must be closed")
}

func TestBillRepository_ListByCustomer_EmptyIsNotNil(t *testing.T) {
	bills, err := NewBillRepositoryWithPool(&mockPool{}).ListByCustomer(context.Background(), "nobody", 20)

	require.NoError(t, err)
	assert.NotNil(t, bills)
	assert.Empty(t, bills)
}

func TestBillRepository_ListByCustomer_Errors(t *testing.T) {
	t.Run("query", func(t *testing.T) {
		dbErr := errors.New("connection reset")
		mock := &mockPool{
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return nil, dbErr
			},
		}

		bills, err := NewBillRepositoryWithPool(mock).ListByCustomer(context.Background(), "cust-1", 20)

		require.Error(t, err)
		assert.Nil(t, bills)
		assert.True(t, errors.Is(err, dbErr))
	})

	t.Run("scan", func(t *testing.T) {
		scanErr := errors.New("cannot scan NULL")
		mock := &mockPool{
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &mockRows{rows: []func(dest ...any) error{
					func(dest ...any) error { return scanErr },
				}}, nil
			},
		}

		_, err := NewBillRepositoryWithPool(mock).ListByCustomer(context.Background(), "cust-1", 20)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "scan bill")
	})

	t.Run("iteration", func(t *testing.T) {
		iterErr := errors.New("unexpected EOF")
		mock := &mockPool{
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &mockRows{err: iterErr}, nil
			},
		}

		_, err := NewBillRepositoryWithPool(mock).ListByCustomer(context.Background(), "cust-1", 20)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "iterate bill rows")
	})
}

func TestBillRepository_SumSpendByCustomer(t *testing.T) {
	var capturedSQL string
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*decimal.Decimal)) = decimal.RequireFromString("60000.50")
				return nil
			}}
		},
	}

	total, err := NewBillRepositoryWithPool(mock).SumSpendByCustomer(context.Background(), "cust-1")

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "COALESCE(SUM(sale_price), 0)")
	assert.True(t, total.Equal(decimal.RequireFromString("60000.50")))
}

func TestBillRepository_SumSpendByCustomer_DatabaseError(t *testing.T) {
	dbErr := errors.New("timeout")
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error { return dbErr }}
		},
	}

	total, err := NewBillRepositoryWithPool(mock).SumSpendByCustomer(context.Background(), "cust-1")

	require.Error(t, err)
	assert.True(t, total.IsZero())
	assert.True(t, errors.Is(err, dbErr))
}

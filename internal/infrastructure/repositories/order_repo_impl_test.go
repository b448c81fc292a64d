package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
)

func newPendingOrder(userID uuid.UUID, chain entities.Chain, amount string) *entities.Order {
	return &entities.Order{
		ID:               uuid.New(),
		UserID:           userID,
		RecipientUserID:  uuid.New(),
		Chain:            chain,
		Amount:           decimal.RequireFromString(amount),
		TokenSymbol:      chain.NativeSymbol(),
		TokenDecimals:    chain.NativeDecimals(),
		ReceivingAddress: "0x742d35cc6634c0532925a3b844bc9e7595f0beb1",
		Status:           entities.OrderStatusPending,
		CreatedAt:        time.Now(),
		ExpiresAt:        time.Now().Add(30 * time.Minute),
	}
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	db := newTestDB(t)
	createOrderTable(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := newPendingOrder(uuid.New(), entities.ChainEthereum, "0.1")
	require.NoError(t, repo.Create(ctx, o))

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.True(t, got.Amount.Equal(decimal.RequireFromString("0.1")))
	require.Equal(t, entities.OrderStatusPending, got.Status)
	require.False(t, got.TxHash.Valid)
	require.False(t, got.TokenAddress.Valid)

	_, err = repo.GetByID(ctx, uuid.New())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestOrderRepository_GetByUserIDPagination(t *testing.T) {
	db := newTestDB(t)
	createOrderTable(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, newPendingOrder(userID, entities.ChainEthereum, "1")))
	}
	require.NoError(t, repo.Create(ctx, newPendingOrder(uuid.New(), entities.ChainEthereum, "1")))

	orders, total, err := repo.GetByUserID(ctx, userID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, orders, 2)

	all, total, err := repo.GetByUserID(ctx, userID, 0, 0)
	require.NoError(t, err)
	require.Equal(t, int64(5), total)
	require.Len(t, all, 5)
}

func TestOrderRepository_MarkPaidOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	createOrderTable(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := newPendingOrder(uuid.New(), entities.ChainEthereum, "0.1")
	require.NoError(t, repo.Create(ctx, o))

	won, err := repo.MarkPaid(ctx, o.ID, "0xhash", decimal.RequireFromString("0.1"), time.Now())
	require.NoError(t, err)
	require.True(t, won)

	// second transition attempt loses: row no longer pending
	won, err = repo.MarkPaid(ctx, o.ID, "0xother", decimal.RequireFromString("0.2"), time.Now())
	require.NoError(t, err)
	require.False(t, won)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusPaid, got.Status)
	require.Equal(t, "0xhash", got.TxHash.String)
	require.True(t, got.AmountReceived.Valid)
	require.True(t, got.AmountReceived.Decimal.Equal(decimal.RequireFromString("0.1")))
	require.True(t, got.VerifiedAt.Valid)
}

func TestOrderRepository_MarkFailedRecordsReason(t *testing.T) {
	db := newTestDB(t)
	createOrderTable(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	o := newPendingOrder(uuid.New(), entities.ChainSolana, "2")
	require.NoError(t, repo.Create(ctx, o))

	won, err := repo.MarkFailed(ctx, o.ID, "sig123", "amount below tolerance")
	require.NoError(t, err)
	require.True(t, won)

	got, err := repo.GetByID(ctx, o.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusFailed, got.Status)
	require.Equal(t, "amount below tolerance", got.FailureReason.String)

	// terminal states stay terminal
	won, err = repo.MarkExpired(ctx, o.ID)
	require.NoError(t, err)
	require.False(t, won)
	won, err = repo.MarkPaid(ctx, o.ID, "sig456", decimal.RequireFromString("2"), time.Now())
	require.NoError(t, err)
	require.False(t, won)
}

func TestOrderRepository_ExpireStale(t *testing.T) {
	db := newTestDB(t)
	createOrderTable(t, db)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	stale := newPendingOrder(uuid.New(), entities.ChainEthereum, "1")
	stale.ExpiresAt = time.Now().Add(-time.Hour)
	fresh := newPendingOrder(uuid.New(), entities.ChainEthereum, "1")
	paid := newPendingOrder(uuid.New(), entities.ChainEthereum, "1")
	paid.ExpiresAt = time.Now().Add(-time.Hour)

	require.NoError(t, repo.Create(ctx, stale))
	require.NoError(t, repo.Create(ctx, fresh))
	require.NoError(t, repo.Create(ctx, paid))
	won, err := repo.MarkPaid(ctx, paid.ID, "0xhash", decimal.RequireFromString("1"), time.Now())
	require.NoError(t, err)
	require.True(t, won)

	n, err := repo.ExpireStale(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	gotStale, err := repo.GetByID(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusExpired, gotStale.Status)

	gotFresh, err := repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusPending, gotFresh.Status)

	gotPaid, err := repo.GetByID(ctx, paid.ID)
	require.NoError(t, err)
	require.Equal(t, entities.OrderStatusPaid, gotPaid.Status)
}

package usecases

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"problem-hunt.backend/internal/domain/entities"
	"problem-hunt.backend/internal/infrastructure/blockchain"
	"problem-hunt.backend/pkg/logger"
)

func init() {
	logger.Init("development")
}

type mockUserRepo struct{ mock.Mock }

func (m *mockUserRepo) Create(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepo) Update(ctx context.Context, user *entities.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockWalletRepo struct{ mock.Mock }

func (m *mockWalletRepo) Create(ctx context.Context, wallet *entities.Wallet) error {
	return m.Called(ctx, wallet).Error(0)
}

func (m *mockWalletRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *mockWalletRepo) GetByChainAddress(ctx context.Context, chain entities.Chain, address string) (*entities.Wallet, error) {
	args := m.Called(ctx, chain, address)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *mockWalletRepo) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Wallet), args.Error(1)
}

func (m *mockWalletRepo) GetPrimary(ctx context.Context, userID uuid.UUID, chain entities.Chain) (*entities.Wallet, error) {
	args := m.Called(ctx, userID, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *mockWalletRepo) SetPrimary(ctx context.Context, userID, walletID uuid.UUID) error {
	return m.Called(ctx, userID, walletID).Error(0)
}

func (m *mockWalletRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrderRepo struct{ mock.Mock }

func (m *mockOrderRepo) Create(ctx context.Context, order *entities.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *mockOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Order), args.Error(1)
}

func (m *mockOrderRepo) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*entities.Order), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderRepo) MarkPaid(ctx context.Context, id uuid.UUID, txHash string, amountReceived decimal.Decimal, verifiedAt time.Time) (bool, error) {
	args := m.Called(ctx, id, txHash, amountReceived, verifiedAt)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) MarkFailed(ctx context.Context, id uuid.UUID, txHash, reason string) (bool, error) {
	args := m.Called(ctx, id, txHash, reason)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockOrderRepo) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockNonceStore struct{ mock.Mock }

func (m *mockNonceStore) Issue(ctx context.Context, chain, address, nonce string) error {
	return m.Called(ctx, chain, address, nonce).Error(0)
}

func (m *mockNonceStore) Consume(ctx context.Context, chain, address, nonce string) error {
	return m.Called(ctx, chain, address, nonce).Error(0)
}

// fakeAdapter is a configurable chain adapter for usecase tests. Call
// counters are atomic so tests may drive it from several goroutines.
type fakeAdapter struct {
	chain       entities.Chain
	verifyOK    bool
	verifyCalls atomic.Int32
	fetchFn     func(ctx context.Context, txHash string) (*blockchain.TxResult, error)
	fetchCalls  atomic.Int32
}

func (f *fakeAdapter) Chain() entities.Chain { return f.chain }

func (f *fakeAdapter) VerifySignature(statement, signature, claimedAddress string) bool {
	f.verifyCalls.Add(1)
	return f.verifyOK
}

func (f *fakeAdapter) FetchTransaction(ctx context.Context, txHash string) (*blockchain.TxResult, error) {
	f.fetchCalls.Add(1)
	if f.fetchFn == nil {
		return nil, nil
	}
	return f.fetchFn(ctx, txHash)
}

func registryWith(adapters ...blockchain.ChainAdapter) *blockchain.Registry {
	registry := blockchain.NewRegistry()
	for _, adapter := range adapters {
		registry.Register(adapter)
	}
	return registry
}

package repositories

import (
	"context"

	"github.com/google/uuid"
	"problem-hunt.backend/internal/domain/entities"
)

// WalletRepository defines wallet data operations. Create must fail with
// ErrAlreadyExists when the (chain, address) pair is taken, so callers can
// resolve find-or-create races by re-reading.
type WalletRepository interface {
	Create(ctx context.Context, wallet *entities.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error)
	GetByChainAddress(ctx context.Context, chain entities.Chain, address string) (*entities.Wallet, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error)
	GetPrimary(ctx context.Context, userID uuid.UUID, chain entities.Chain) (*entities.Wallet, error)
	SetPrimary(ctx context.Context, userID, walletID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

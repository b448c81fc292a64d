package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/infrastructure/models"
)

// WalletRepository implements wallet data operations
type WalletRepository struct {
	db *gorm.DB
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *gorm.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// isUniqueViolation detects a unique-constraint error from postgres, the gorm
// error translator, or the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Create inserts a wallet. Returns ErrAlreadyExists when (chain, address)
// is already linked, so callers can re-read and resolve the race.
func (r *WalletRepository) Create(ctx context.Context, wallet *entities.Wallet) error {
	m := &models.Wallet{
		ID:        wallet.ID,
		UserID:    wallet.UserID,
		Chain:     string(wallet.Chain),
		Address:   wallet.Address,
		IsPrimary: wallet.IsPrimary,
		CreatedAt: wallet.CreatedAt,
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a wallet by ID
func (r *WalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	var m models.Wallet
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return walletToEntity(&m), nil
}

// GetByChainAddress gets the wallet linked to (chain, address)
func (r *WalletRepository) GetByChainAddress(ctx context.Context, chain entities.Chain, address string) (*entities.Wallet, error) {
	var m models.Wallet
	if err := r.db.WithContext(ctx).Where("chain = ? AND address = ?", string(chain), address).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return walletToEntity(&m), nil
}

// GetByUserID gets all wallets for a user, primaries first
func (r *WalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	var walletModels []models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_primary DESC, created_at ASC").
		Find(&walletModels).Error
	if err != nil {
		return nil, err
	}

	wallets := make([]*entities.Wallet, 0, len(walletModels))
	for i := range walletModels {
		wallets = append(wallets, walletToEntity(&walletModels[i]))
	}
	return wallets, nil
}

// GetPrimary gets the user's primary wallet for a chain
func (r *WalletRepository) GetPrimary(ctx context.Context, userID uuid.UUID, chain entities.Chain) (*entities.Wallet, error) {
	var m models.Wallet
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND chain = ? AND is_primary = ?", userID, string(chain), true).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return walletToEntity(&m), nil
}

// SetPrimary clears the previous primary for the wallet's chain and sets the
// new one in a single transaction, so the one-primary-per-chain invariant
// survives a failure partway.
func (r *WalletRepository) SetPrimary(ctx context.Context, userID, walletID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var target models.Wallet
		if err := tx.Where("id = ? AND user_id = ?", walletID, userID).First(&target).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrNotFound
			}
			return err
		}

		if err := tx.Model(&models.Wallet{}).
			Where("user_id = ? AND chain = ? AND is_primary = ?", userID, target.Chain, true).
			Updates(map[string]interface{}{"is_primary": false, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		return tx.Model(&models.Wallet{}).
			Where("id = ?", walletID).
			Updates(map[string]interface{}{"is_primary": true, "updated_at": time.Now()}).Error
	})
}

// Delete removes a wallet
func (r *WalletRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.Wallet{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func walletToEntity(m *models.Wallet) *entities.Wallet {
	return &entities.Wallet{
		ID:        m.ID,
		UserID:    m.UserID,
		Chain:     entities.Chain(m.Chain),
		Address:   m.Address,
		IsPrimary: m.IsPrimary,
		CreatedAt: m.CreatedAt,
	}
}

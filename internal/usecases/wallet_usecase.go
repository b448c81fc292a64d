package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/domain/repositories"
	"problem-hunt.backend/pkg/utils"
)

// WalletUsecase manages wallets linked to an existing account.
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(walletRepo repositories.WalletRepository) *WalletUsecase {
	return &WalletUsecase{walletRepo: walletRepo}
}

// LinkWallet attaches an address to the user's account. Linking an address
// the user already owns is a no-op returning the existing wallet; an address
// owned by another account is rejected. The first wallet on a chain becomes
// the primary one.
func (u *WalletUsecase) LinkWallet(ctx context.Context, userID uuid.UUID, input *entities.LinkWalletInput) (*entities.Wallet, error) {
	chain, err := parseChain(input.Chain)
	if err != nil {
		return nil, err
	}
	address, err := normalizeAddress(chain, input.Address)
	if err != nil {
		return nil, err
	}

	existing, err := u.walletRepo.GetByChainAddress(ctx, chain, address)
	if err == nil {
		if existing.UserID == userID {
			return existing, nil
		}
		return nil, domainerrors.AddressAlreadyLinked()
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.InternalError(err)
	}

	isPrimary := false
	if _, err := u.walletRepo.GetPrimary(ctx, userID, chain); errors.Is(err, domainerrors.ErrNotFound) {
		isPrimary = true
	} else if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	wallet := &entities.Wallet{
		ID:        utils.GenerateUUIDv7(),
		UserID:    userID,
		Chain:     chain,
		Address:   address,
		IsPrimary: isPrimary,
		CreatedAt: time.Now(),
	}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			// lost a race for the address; re-read to see who owns it now
			winner, readErr := u.walletRepo.GetByChainAddress(ctx, chain, address)
			if readErr != nil {
				return nil, domainerrors.InternalError(readErr)
			}
			if winner.UserID == userID {
				return winner, nil
			}
			return nil, domainerrors.AddressAlreadyLinked()
		}
		return nil, domainerrors.InternalError(err)
	}
	return wallet, nil
}

// GetWallets lists the user's linked wallets.
func (u *WalletUsecase) GetWallets(ctx context.Context, userID uuid.UUID) ([]*entities.Wallet, error) {
	wallets, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return wallets, nil
}

// SetPrimaryWallet makes the wallet the user's primary one for its chain.
func (u *WalletUsecase) SetPrimaryWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
	wallet, err := u.ownedWallet(ctx, userID, walletID)
	if err != nil {
		return nil, err
	}

	if err := u.walletRepo.SetPrimary(ctx, userID, walletID); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	wallet.IsPrimary = true
	return wallet, nil
}

// DisconnectWallet removes a linked wallet. Existing orders keep the
// receiving address that was resolved when they were created.
func (u *WalletUsecase) DisconnectWallet(ctx context.Context, userID, walletID uuid.UUID) error {
	if _, err := u.ownedWallet(ctx, userID, walletID); err != nil {
		return err
	}
	if err := u.walletRepo.Delete(ctx, walletID); err != nil {
		return domainerrors.InternalError(err)
	}
	return nil
}

// ResolvePrimaryAddress returns the user's primary wallet address on a chain.
func (u *WalletUsecase) ResolvePrimaryAddress(ctx context.Context, userID uuid.UUID, chain entities.Chain) (string, error) {
	wallet, err := u.walletRepo.GetPrimary(ctx, userID, chain)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return "", domainerrors.NotFound("no primary wallet on " + string(chain))
		}
		return "", domainerrors.InternalError(err)
	}
	return wallet.Address, nil
}

func (u *WalletUsecase) ownedWallet(ctx context.Context, userID, walletID uuid.UUID) (*entities.Wallet, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("wallet not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	if wallet.UserID != userID {
		return nil, domainerrors.Forbidden("wallet belongs to another user")
	}
	return wallet, nil
}

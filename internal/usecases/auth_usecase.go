package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/domain/repositories"
	"problem-hunt.backend/internal/infrastructure/blockchain"
	"problem-hunt.backend/pkg/crypto"
	"problem-hunt.backend/pkg/jwt"
	"problem-hunt.backend/pkg/logger"
	"problem-hunt.backend/pkg/metrics"
	"problem-hunt.backend/pkg/utils"
)

var generateNonce = crypto.GenerateNonce

// nonceStore is the slice of the redis nonce store the usecase needs.
type nonceStore interface {
	Issue(ctx context.Context, chain, address, nonce string) error
	Consume(ctx context.Context, chain, address, nonce string) error
}

// AuthUsecase handles email and wallet authentication.
type AuthUsecase struct {
	userRepo     repositories.UserRepository
	walletRepo   repositories.WalletRepository
	jwtService   *jwt.JWTService
	nonces       nonceStore
	adapters     *blockchain.Registry
	challengeTTL time.Duration
}

// NewAuthUsecase creates a new auth usecase
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	walletRepo repositories.WalletRepository,
	jwtService *jwt.JWTService,
	nonces nonceStore,
	adapters *blockchain.Registry,
	challengeTTL time.Duration,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:     userRepo,
		walletRepo:   walletRepo,
		jwtService:   jwtService,
		nonces:       nonces,
		adapters:     adapters,
		challengeTTL: challengeTTL,
	}
}

// Register creates a user with email credentials and returns a token pair.
func (u *AuthUsecase) Register(ctx context.Context, input *entities.RegisterInput) (*entities.AuthResponse, error) {
	if _, err := u.userRepo.GetByEmail(ctx, input.Email); err == nil {
		return nil, domainerrors.Conflict("email already registered")
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.InternalError(err)
	}

	hash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	user := &entities.User{
		ID:           utils.GenerateUUIDv7(),
		Email:        null.StringFrom(input.Email),
		Name:         input.Name,
		PasswordHash: null.StringFrom(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("email already registered")
		}
		return nil, domainerrors.InternalError(err)
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, input.Email, "", "")
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

// Login authenticates email credentials and returns a token pair.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid credentials")
		}
		return nil, domainerrors.InternalError(err)
	}

	// wallet-only accounts have no password to check
	if !user.PasswordHash.Valid || !crypto.CheckPassword(input.Password, user.PasswordHash.String) {
		return nil, domainerrors.Unauthorized("invalid credentials")
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, user.Email.String, "", "")
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

// RefreshToken exchanges a valid refresh token for a fresh pair, preserving
// the wallet claims of wallet sessions.
func (u *AuthUsecase) RefreshToken(ctx context.Context, refreshToken string) (*entities.AuthResponse, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid refresh token")
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, domainerrors.InternalError(err)
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, claims.Email, claims.WalletAddress, claims.Chain)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	return &entities.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         user,
	}, nil
}

// GetUserByID returns the user profile.
func (u *AuthUsecase) GetUserByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	user, err := u.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	return user, nil
}

// IssueChallenge creates a single-use sign-in challenge for the wallet. The
// nonce is recorded server-side so the statement can only be redeemed once.
func (u *AuthUsecase) IssueChallenge(ctx context.Context, chainRaw, address string) (*entities.AuthChallenge, error) {
	chain, err := parseChain(chainRaw)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeAddress(chain, address)
	if err != nil {
		return nil, err
	}

	nonce, err := generateNonce()
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if err := u.nonces.Issue(ctx, string(chain), normalized, nonce); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	return &entities.AuthChallenge{
		Nonce:     nonce,
		Statement: buildStatement(address, nonce, now),
		ExpiresAt: now.Add(u.challengeTTL),
	}, nil
}

// AuthenticateWallet verifies a signed challenge and signs the wallet in,
// creating a user and wallet on first sight of the address. Signature
// verification only runs after the nonce has been consumed, so a captured
// statement cannot be replayed.
func (u *AuthUsecase) AuthenticateWallet(ctx context.Context, input *entities.WalletAuthInput) (*entities.WalletAuthResponse, error) {
	chain, err := parseChain(input.Chain)
	if err != nil {
		metrics.AuthTotal.WithLabelValues(input.Chain, "unsupported_chain").Inc()
		return nil, err
	}
	address, err := normalizeAddress(chain, input.Address)
	if err != nil {
		metrics.AuthTotal.WithLabelValues(string(chain), "invalid_address").Inc()
		return nil, err
	}

	parsed, err := parseStatement(input.Statement)
	if err != nil {
		metrics.AuthTotal.WithLabelValues(string(chain), "malformed").Inc()
		return nil, domainerrors.MalformedChallenge("statement is missing required fields")
	}
	if !sameAddress(chain, parsed.Address, address) {
		metrics.AuthTotal.WithLabelValues(string(chain), "malformed").Inc()
		return nil, domainerrors.MalformedChallenge("statement address does not match claimed address")
	}
	if time.Since(parsed.IssuedAt) > u.challengeTTL {
		metrics.AuthTotal.WithLabelValues(string(chain), "expired").Inc()
		return nil, domainerrors.MalformedChallenge("challenge expired")
	}

	if err := u.nonces.Consume(ctx, string(chain), address, parsed.Nonce); err != nil {
		metrics.AuthTotal.WithLabelValues(string(chain), "nonce_rejected").Inc()
		return nil, domainerrors.MalformedChallenge("unknown or already used nonce")
	}

	adapter, err := u.adapters.Get(chain)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if !adapter.VerifySignature(input.Statement, input.Signature, input.Address) {
		metrics.AuthTotal.WithLabelValues(string(chain), "signature_invalid").Inc()
		return nil, domainerrors.SignatureInvalid()
	}

	wallet, err := u.findOrCreateWallet(ctx, chain, address)
	if err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByID(ctx, wallet.UserID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	tokens, err := u.jwtService.GenerateTokenPair(user.ID, user.Email.String, address, string(chain))
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	metrics.AuthTotal.WithLabelValues(string(chain), "success").Inc()
	return &entities.WalletAuthResponse{
		AccessToken:   tokens.AccessToken,
		RefreshToken:  tokens.RefreshToken,
		UserID:        user.ID,
		WalletAddress: address,
		Chain:         chain,
	}, nil
}

// findOrCreateWallet resolves the wallet for an authenticated address,
// creating a fresh user and primary wallet for addresses seen for the first
// time. A concurrent first sign-in is resolved by the unique (chain, address)
// index: the loser deletes its orphan user and adopts the winner's wallet.
func (u *AuthUsecase) findOrCreateWallet(ctx context.Context, chain entities.Chain, address string) (*entities.Wallet, error) {
	wallet, err := u.walletRepo.GetByChainAddress(ctx, chain, address)
	if err == nil {
		return wallet, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	user := &entities.User{
		ID:        utils.GenerateUUIDv7(),
		Name:      shortAddress(address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	wallet = &entities.Wallet{
		ID:        utils.GenerateUUIDv7(),
		UserID:    user.ID,
		Chain:     chain,
		Address:   address,
		IsPrimary: true,
		CreatedAt: now,
	}
	if err := u.walletRepo.Create(ctx, wallet); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			if delErr := u.userRepo.Delete(ctx, user.ID); delErr != nil {
				logger.Warn(ctx, "cleaning up user after wallet race", zap.Error(delErr))
			}
			winner, readErr := u.walletRepo.GetByChainAddress(ctx, chain, address)
			if readErr != nil {
				return nil, domainerrors.InternalError(readErr)
			}
			return winner, nil
		}
		return nil, domainerrors.InternalError(err)
	}
	return wallet, nil
}

// shortAddress renders a display name like 0x1234...abcd for new wallet users.
func shortAddress(address string) string {
	if len(address) <= 12 {
		return address
	}
	return address[:6] + "..." + address[len(address)-4:]
}

package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/domain/repositories"
	"problem-hunt.backend/pkg/utils"
)

const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// OrderUsecase creates and reads payment orders.
type OrderUsecase struct {
	orderRepo  repositories.OrderRepository
	walletRepo repositories.WalletRepository
	orderTTL   time.Duration
}

// NewOrderUsecase creates a new order usecase
func NewOrderUsecase(orderRepo repositories.OrderRepository, walletRepo repositories.WalletRepository, orderTTL time.Duration) *OrderUsecase {
	return &OrderUsecase{
		orderRepo:  orderRepo,
		walletRepo: walletRepo,
		orderTTL:   orderTTL,
	}
}

// CreateOrder opens a payment order from the caller to the recipient. The
// receiving address is the recipient's primary wallet on the chain, resolved
// now and frozen on the order; creation is refused when the recipient has no
// primary wallet there.
func (u *OrderUsecase) CreateOrder(ctx context.Context, payerID uuid.UUID, input *entities.CreateOrderInput) (*entities.Order, error) {
	recipientID, err := uuid.Parse(input.RecipientUserID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid recipient user id")
	}
	chain, err := parseChain(input.Chain)
	if err != nil {
		return nil, err
	}

	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !amount.IsPositive() {
		return nil, domainerrors.BadRequest("amount must be a positive decimal")
	}

	tokenAddress := null.String{}
	tokenSymbol := chain.NativeSymbol()
	tokenDecimals := chain.NativeDecimals()
	if input.TokenAddress != "" {
		normalized, err := normalizeAddress(chain, input.TokenAddress)
		if err != nil {
			return nil, domainerrors.BadRequest("invalid token address")
		}
		if input.TokenDecimals == nil {
			return nil, domainerrors.BadRequest("tokenDecimals is required for token payments")
		}
		if input.TokenSymbol == "" {
			return nil, domainerrors.BadRequest("tokenSymbol is required for token payments")
		}
		tokenAddress = null.StringFrom(normalized)
		tokenSymbol = input.TokenSymbol
		tokenDecimals = *input.TokenDecimals
	}

	receivingAddress, err := u.walletRepo.GetPrimary(ctx, recipientID, chain)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.BadRequest("recipient has no primary wallet on " + string(chain))
		}
		return nil, domainerrors.InternalError(err)
	}

	now := time.Now()
	order := &entities.Order{
		ID:               utils.GenerateUUIDv7(),
		UserID:           payerID,
		RecipientUserID:  recipientID,
		Chain:            chain,
		Amount:           amount,
		TokenAddress:     tokenAddress,
		TokenSymbol:      tokenSymbol,
		TokenDecimals:    tokenDecimals,
		ReceivingAddress: receivingAddress.Address,
		Status:           entities.OrderStatusPending,
		CreatedAt:        now,
		ExpiresAt:        now.Add(u.orderTTL),
	}
	if err := u.orderRepo.Create(ctx, order); err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return order, nil
}

// GetOrder returns an order visible to its payer or recipient only.
func (u *OrderUsecase) GetOrder(ctx context.Context, callerID, orderID uuid.UUID) (*entities.Order, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("order not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	if order.UserID != callerID && order.RecipientUserID != callerID {
		return nil, domainerrors.Forbidden("order belongs to another user")
	}
	return order, nil
}

// ListOrders pages through the caller's orders, newest first.
func (u *OrderUsecase) ListOrders(ctx context.Context, callerID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error) {
	if limit <= 0 {
		limit = defaultOrderPageSize
	}
	if limit > maxOrderPageSize {
		limit = maxOrderPageSize
	}
	if offset < 0 {
		offset = 0
	}

	orders, total, err := u.orderRepo.GetByUserID(ctx, callerID, limit, offset)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return orders, total, nil
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/domain/repositories"
	"problem-hunt.backend/internal/infrastructure/blockchain"
	"problem-hunt.backend/pkg/logger"
	"problem-hunt.backend/pkg/metrics"
)

// PaymentVerifierUsecase checks submitted transactions against their order
// and drives the order's single pending -> terminal transition. Retryable
// chain conditions never change order state; concurrent attempts are settled
// by the conditional repository writes, with the loser adopting the winner's
// stored outcome.
type PaymentVerifierUsecase struct {
	orderRepo repositories.OrderRepository
	adapters  *blockchain.Registry
	tolerance decimal.Decimal
}

// NewPaymentVerifierUsecase creates a verifier accepting underpayment up to
// the given relative tolerance (0.01 accepts 99% of the requested amount).
func NewPaymentVerifierUsecase(orderRepo repositories.OrderRepository, adapters *blockchain.Registry, tolerance float64) *PaymentVerifierUsecase {
	return &PaymentVerifierUsecase{
		orderRepo: orderRepo,
		adapters:  adapters,
		tolerance: decimal.NewFromFloat(tolerance),
	}
}

// VerifyPayment verifies txHash as payment for the order. Settled orders
// answer idempotently for their recorded transaction without touching the
// chain; any other transaction against a settled order is rejected.
func (u *PaymentVerifierUsecase) VerifyPayment(ctx context.Context, callerID, orderID uuid.UUID, txHash string) (*entities.VerifyPaymentResult, error) {
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

	if order.Status.IsTerminal() {
		return u.settledResult(order, txHash)
	}

	if order.IsExpired(timeNow()) {
		if _, err := u.orderRepo.MarkExpired(ctx, order.ID); err != nil {
			return nil, domainerrors.InternalError(err)
		}
		metrics.VerificationTotal.WithLabelValues(string(order.Chain), "expired").Inc()
		return u.rereadAndSettle(ctx, order.ID, txHash)
	}

	adapter, err := u.adapters.Get(order.Chain)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	tx, err := adapter.FetchTransaction(ctx, txHash)
	if err != nil {
		switch {
		case errors.Is(err, domainerrors.ErrTransactionPending):
			metrics.VerificationTotal.WithLabelValues(string(order.Chain), "pending").Inc()
			return &entities.VerifyPaymentResult{
				Success: false,
				Status:  order.Status,
				Message: "transaction not yet finalized, try again shortly",
			}, nil
		case errors.Is(err, domainerrors.ErrRpcUnavailable):
			metrics.VerificationTotal.WithLabelValues(string(order.Chain), "rpc_unavailable").Inc()
			logger.Warn(ctx, "chain rpc unavailable during verification",
				zap.String("chain", string(order.Chain)), zap.Error(err))
			return &entities.VerifyPaymentResult{
				Success: false,
				Status:  order.Status,
				Message: "chain rpc unavailable, try again shortly",
			}, nil
		case errors.Is(err, domainerrors.ErrTransactionReverted):
			return u.fail(ctx, order, txHash, "transaction reverted on chain", "reverted")
		default:
			return nil, domainerrors.InternalError(err)
		}
	}

	received, matched := matchTransfers(order, tx)
	if !matched {
		return u.fail(ctx, order, txHash, "no transfer to the receiving address for the expected asset", "recipient_mismatch")
	}

	floor := order.Amount.Mul(decimal.NewFromInt(1).Sub(u.tolerance))
	if received.LessThan(floor) {
		reason := fmt.Sprintf("received %s, below accepted minimum %s %s", received, floor, order.TokenSymbol)
		return u.fail(ctx, order, txHash, reason, "amount_mismatch")
	}

	won, err := u.orderRepo.MarkPaid(ctx, order.ID, txHash, received, timeNow())
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if !won {
		return u.rereadAndSettle(ctx, order.ID, txHash)
	}

	metrics.VerificationTotal.WithLabelValues(string(order.Chain), "success").Inc()
	logger.Info(ctx, "payment verified",
		zap.String("order_id", order.ID.String()),
		zap.String("chain", string(order.Chain)),
		zap.String("tx_hash", txHash))
	return &entities.VerifyPaymentResult{
		Success:        true,
		Status:         entities.OrderStatusPaid,
		Message:        "payment verified",
		AmountReceived: decimal.NewNullDecimal(received),
	}, nil
}

// fail records a terminal failure. A lost transition race means some
// concurrent attempt settled the order first; its outcome wins.
func (u *PaymentVerifierUsecase) fail(ctx context.Context, order *entities.Order, txHash, reason, outcome string) (*entities.VerifyPaymentResult, error) {
	won, err := u.orderRepo.MarkFailed(ctx, order.ID, txHash, reason)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if !won {
		return u.rereadAndSettle(ctx, order.ID, txHash)
	}

	metrics.VerificationTotal.WithLabelValues(string(order.Chain), outcome).Inc()
	return &entities.VerifyPaymentResult{
		Success: false,
		Status:  entities.OrderStatusFailed,
		Message: reason,
	}, nil
}

func (u *PaymentVerifierUsecase) rereadAndSettle(ctx context.Context, orderID uuid.UUID, txHash string) (*entities.VerifyPaymentResult, error) {
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return u.settledResult(order, txHash)
}

// settledResult answers for an order that already reached a terminal status.
func (u *PaymentVerifierUsecase) settledResult(order *entities.Order, txHash string) (*entities.VerifyPaymentResult, error) {
	switch order.Status {
	case entities.OrderStatusPaid:
		if order.TxHash.Valid && order.TxHash.String == txHash {
			return &entities.VerifyPaymentResult{
				Success:        true,
				Status:         entities.OrderStatusPaid,
				Message:        "payment verified",
				AmountReceived: order.AmountReceived,
			}, nil
		}
		return nil, domainerrors.OrderAlreadySettled()
	case entities.OrderStatusFailed:
		if order.TxHash.Valid && order.TxHash.String == txHash {
			return &entities.VerifyPaymentResult{
				Success: false,
				Status:  entities.OrderStatusFailed,
				Message: order.FailureReason.String,
			}, nil
		}
		return nil, domainerrors.OrderAlreadySettled()
	case entities.OrderStatusExpired:
		return nil, domainerrors.OrderExpired()
	}
	// still pending after a lost race, treat as retryable
	return &entities.VerifyPaymentResult{
		Success: false,
		Status:  order.Status,
		Message: "verification in progress, try again shortly",
	}, nil
}

// matchTransfers sums the transaction's transfers of the order's asset into
// the receiving address, normalized to the asset's decimal units.
func matchTransfers(order *entities.Order, tx *blockchain.TxResult) (decimal.Decimal, bool) {
	wantToken := ""
	if order.TokenAddress.Valid {
		wantToken = order.TokenAddress.String
	}

	sum := new(big.Int)
	matched := false
	for _, transfer := range tx.Transfers {
		if !sameAddress(order.Chain, transfer.To, order.ReceivingAddress) {
			continue
		}
		if !sameToken(order.Chain, transfer.TokenAddress, wantToken) {
			continue
		}
		matched = true
		sum.Add(sum, transfer.Amount)
	}
	if !matched {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromBigInt(sum, -order.TokenDecimals), true
}

// sameToken compares token addresses; empty means the native asset.
func sameToken(chain entities.Chain, a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	return sameAddress(chain, a, b)
}

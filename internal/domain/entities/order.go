package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// OrderStatus represents the status of a payment order
type OrderStatus string

const (
	OrderStatusPending OrderStatus = "pending"
	OrderStatusPaid    OrderStatus = "paid"
	OrderStatusFailed  OrderStatus = "failed"
	OrderStatusExpired OrderStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusPaid || s == OrderStatusFailed || s == OrderStatusExpired
}

// Order represents a payment order. ReceivingAddress is resolved from the
// recipient's primary wallet at creation time and never re-resolved. Orders
// are never deleted; status only moves pending -> {paid, failed, expired}.
type Order struct {
	ID               uuid.UUID           `json:"id"`
	UserID           uuid.UUID           `json:"userId"`
	RecipientUserID  uuid.UUID           `json:"recipientUserId"`
	Chain            Chain               `json:"chain"`
	Amount           decimal.Decimal     `json:"amount"`
	TokenAddress     null.String         `json:"tokenAddress,omitempty"`
	TokenSymbol      string              `json:"tokenSymbol"`
	TokenDecimals    int32               `json:"tokenDecimals"`
	ReceivingAddress string              `json:"receivingAddress"`
	Status           OrderStatus         `json:"status"`
	TxHash           null.String         `json:"txHash,omitempty"`
	FailureReason    null.String         `json:"failureReason,omitempty"`
	AmountReceived   decimal.NullDecimal `json:"amountReceived,omitempty"`
	VerifiedAt       null.Time           `json:"verifiedAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	ExpiresAt        time.Time           `json:"expiresAt"`
}

// IsExpired reports whether the payment deadline has passed.
func (o *Order) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// CreateOrderInput represents input for creating an order
type CreateOrderInput struct {
	RecipientUserID string `json:"recipientUserId" binding:"required,uuid"`
	Chain           string `json:"chain" binding:"required"`
	Amount          string `json:"amount" binding:"required"`
	TokenAddress    string `json:"tokenAddress"`
	TokenSymbol     string `json:"tokenSymbol"`
	TokenDecimals   *int32 `json:"tokenDecimals"`
}

// VerifyPaymentInput represents input for verifying an order payment
type VerifyPaymentInput struct {
	TxHash string `json:"txHash" binding:"required"`
}

// VerifyPaymentResult is the user-facing outcome of a verification attempt.
type VerifyPaymentResult struct {
	Success        bool                `json:"success"`
	Message        string              `json:"message"`
	Status         OrderStatus         `json:"status"`
	AmountReceived decimal.NullDecimal `json:"amountReceived,omitempty"`
}

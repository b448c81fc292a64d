package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"problem-hunt.backend/internal/domain/entities"
)

// OrderRepository defines order data operations. Orders are append-only
// except for the status transition methods, each of which is conditional on
// the row still being pending and reports whether it won the write.
type OrderRepository interface {
	Create(ctx context.Context, order *entities.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error)

	// MarkPaid transitions pending -> paid. Returns false when the order was
	// no longer pending, without modifying it.
	MarkPaid(ctx context.Context, id uuid.UUID, txHash string, amountReceived decimal.Decimal, verifiedAt time.Time) (bool, error)

	// MarkFailed transitions pending -> failed recording the reason.
	MarkFailed(ctx context.Context, id uuid.UUID, txHash, reason string) (bool, error)

	// MarkExpired transitions pending -> expired.
	MarkExpired(ctx context.Context, id uuid.UUID) (bool, error)

	// ExpireStale expires every pending order whose deadline passed before
	// cutoff and returns how many rows changed.
	ExpireStale(ctx context.Context, cutoff time.Time) (int64, error)
}

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/infrastructure/models"
)

// OrderRepository implements order data operations. Status transitions are
// conditional UPDATE ... WHERE status = 'pending' writes; the RowsAffected
// count tells the caller whether it won a concurrent transition race.
type OrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create creates a new order
func (r *OrderRepository) Create(ctx context.Context, order *entities.Order) error {
	m := &models.Order{
		ID:               order.ID,
		UserID:           order.UserID,
		RecipientUserID:  order.RecipientUserID,
		Chain:            string(order.Chain),
		Amount:           order.Amount.String(),
		TokenAddress:     order.TokenAddress.Ptr(),
		TokenSymbol:      order.TokenSymbol,
		TokenDecimals:    order.TokenDecimals,
		ReceivingAddress: order.ReceivingAddress,
		Status:           string(order.Status),
		ExpiresAt:        order.ExpiresAt,
		CreatedAt:        order.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(m).Error
}

// GetByID gets an order by ID
func (r *OrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Order, error) {
	var m models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return orderToEntity(&m)
}

// GetByUserID lists orders where the user is payer or recipient, newest first
func (r *OrderRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entities.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("user_id = ? OR recipient_user_id = ?", userID, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query := base.Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var orderModels []models.Order
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, 0, err
	}

	orders := make([]*entities.Order, 0, len(orderModels))
	for i := range orderModels {
		order, err := orderToEntity(&orderModels[i])
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	return orders, total, nil
}

// MarkPaid transitions pending -> paid
func (r *OrderRepository) MarkPaid(ctx context.Context, id uuid.UUID, txHash string, amountReceived decimal.Decimal, verifiedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":          string(entities.OrderStatusPaid),
			"tx_hash":         txHash,
			"amount_received": amountReceived.String(),
			"verified_at":     verifiedAt,
			"updated_at":      time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkFailed transitions pending -> failed
func (r *OrderRepository) MarkFailed(ctx context.Context, id uuid.UUID, txHash, reason string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":         string(entities.OrderStatusFailed),
			"tx_hash":        txHash,
			"failure_reason": reason,
			"updated_at":     time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// MarkExpired transitions pending -> expired
func (r *OrderRepository) MarkExpired(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ? AND status = ?", id, string(entities.OrderStatusPending)).
		Updates(map[string]interface{}{
			"status":     string(entities.OrderStatusExpired),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ExpireStale expires all pending orders past their deadline
func (r *OrderRepository) ExpireStale(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Order{}).
		Where("status = ? AND expires_at < ?", string(entities.OrderStatusPending), cutoff).
		Updates(map[string]interface{}{
			"status":     string(entities.OrderStatusExpired),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func orderToEntity(m *models.Order) (*entities.Order, error) {
	amount, err := decimal.NewFromString(m.Amount)
	if err != nil {
		return nil, err
	}

	var amountReceived decimal.NullDecimal
	if m.AmountReceived != nil {
		received, err := decimal.NewFromString(*m.AmountReceived)
		if err != nil {
			return nil, err
		}
		amountReceived = decimal.NewNullDecimal(received)
	}

	return &entities.Order{
		ID:               m.ID,
		UserID:           m.UserID,
		RecipientUserID:  m.RecipientUserID,
		Chain:            entities.Chain(m.Chain),
		Amount:           amount,
		TokenAddress:     null.StringFromPtr(m.TokenAddress),
		TokenSymbol:      m.TokenSymbol,
		TokenDecimals:    m.TokenDecimals,
		ReceivingAddress: m.ReceivingAddress,
		Status:           entities.OrderStatus(m.Status),
		TxHash:           null.StringFromPtr(m.TxHash),
		FailureReason:    null.StringFromPtr(m.FailureReason),
		AmountReceived:   amountReceived,
		VerifiedAt:       null.TimeFromPtr(m.VerifiedAt),
		CreatedAt:        m.CreatedAt,
		ExpiresAt:        m.ExpiresAt,
	}, nil
}

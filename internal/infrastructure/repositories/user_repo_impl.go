package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"problem-hunt.backend/internal/domain/entities"
	domainerrors "problem-hunt.backend/internal/domain/errors"
	"problem-hunt.backend/internal/infrastructure/models"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	m := &models.User{
		ID:           user.ID,
		Email:        user.Email.Ptr(),
		Name:         user.Name,
		PasswordHash: user.PasswordHash.Ptr(),
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	}

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// GetByEmail gets a user by email
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return userToEntity(&m), nil
}

// Update updates a user's mutable fields
func (r *UserRepository) Update(ctx context.Context, user *entities.User) error {
	updates := map[string]interface{}{
		"name":       user.Name,
		"updated_at": time.Now(),
	}
	if user.Email.Valid {
		updates["email"] = user.Email.String
	}
	if user.PasswordHash.Valid {
		updates["password_hash"] = user.PasswordHash.String
	}

	result := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// Delete removes a user. Used to clean up the losing side of a concurrent
// wallet sign-up race before the user gains any other data.
func (r *UserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.User{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func userToEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:           m.ID,
		Email:        null.StringFromPtr(m.Email),
		Name:         m.Name,
		PasswordHash: null.StringFromPtr(m.PasswordHash),
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

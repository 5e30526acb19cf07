package repository

import (
	"context"
	"strings"
	"time"

	"github.com/amirasaad/fintechflow/pkg/domain/user"
	"github.com/amirasaad/fintechflow/pkg/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a UserRepository bound to db.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u User
	if err := r.db.WithContext(ctx).First(&u, "id = ?", id).Error; err != nil {
		return nil, notFoundAs(err, user.ErrUserNotFound)
	}
	return mapUserModelToDomain(&u), nil
}

func (r *userRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&u, "id = ?", id).Error
	if err != nil {
		return nil, notFoundAs(err, user.ErrUserNotFound)
	}
	return mapUserModelToDomain(&u), nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var u User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&u).Error
	if err != nil {
		return nil, notFoundAs(err, user.ErrUserNotFound)
	}
	return mapUserModelToDomain(&u), nil
}

func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	m := mapUserDomainToModel(u)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return duplicateAs(err, user.ErrEmailAlreadyRegistered)
	}
	return nil
}

func (r *userRepository) SetKYCStatus(ctx context.Context, id uuid.UUID, status user.KYCStatus) error {
	return r.update(ctx, id, map[string]any{"kyc_status": string(status)})
}

func (r *userRepository) SetRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	return r.update(ctx, id, map[string]any{"role": string(role)})
}

func (r *userRepository) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	fields["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func mapUserDomainToModel(u *user.User) User {
	return User{
		ID:             u.ID,
		Email:          u.Email,
		FullName:       u.FullName,
		Phone:          u.Phone,
		HashedPassword: u.HashedPassword,
		KYCStatus:      string(u.KYCStatus),
		Role:           string(u.Role),
		IsActive:       u.IsActive,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func mapUserModelToDomain(m *User) *user.User {
	return &user.User{
		ID:             m.ID,
		Email:          m.Email,
		FullName:       m.FullName,
		Phone:          m.Phone,
		HashedPassword: m.HashedPassword,
		KYCStatus:      user.KYCStatus(m.KYCStatus),
		Role:           user.Role(m.Role),
		IsActive:       m.IsActive,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

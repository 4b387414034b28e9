package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// UserRepositoryImpl implements domain.UserRepository using GORM
type UserRepositoryImpl struct {
	db *gorm.DB
}

// DBUser represents the database model for User (with GORM tags).
// Phone and email are nullable so the unique indexes ignore accounts without them.
type DBUser struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Role         string    `gorm:"index;size:16;not null"`
	Phone        *string   `gorm:"uniqueIndex;size:32"`
	Email        *string   `gorm:"uniqueIndex;size:255"`
	PasswordHash *string   `gorm:"size:255"`
	CreatedAt    time.Time `gorm:"index"`
}

// TableName returns the table name for GORM
func (DBUser) TableName() string {
	return "users"
}

// BeforeCreate assigns an opaque id
func (u *DBUser) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepositoryImpl {
	return &UserRepositoryImpl{db: db}
}

// Create implements domain.UserRepository. A unique violation surfaces as gorm.ErrDuplicatedKey.
func (r *UserRepositoryImpl) Create(ctx context.Context, cmd domain.CreateUserCommand) (*domain.User, error) {
	dbUser := &DBUser{
		Role:         string(cmd.Role),
		Phone:        nullable(cmd.Phone),
		Email:        nullable(cmd.Email),
		PasswordHash: nullable(cmd.PasswordHash),
	}
	if err := r.db.WithContext(ctx).Create(dbUser).Error; err != nil {
		return nil, err
	}
	return r.dbToDomain(dbUser), nil
}

// FindByID implements domain.UserRepository
func (r *UserRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByPhone implements domain.UserRepository
func (r *UserRepositoryImpl) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	return r.findOne(ctx, "phone = ?", phone)
}

// FindByEmail implements domain.UserRepository
func (r *UserRepositoryImpl) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// List implements domain.UserRepository, newest first
func (r *UserRepositoryImpl) List(ctx context.Context) ([]*domain.User, error) {
	var rows []DBUser
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(rows))
	for i := range rows {
		users = append(users, r.dbToDomain(&rows[i]))
	}
	return users, nil
}

func (r *UserRepositoryImpl) findOne(ctx context.Context, query string, arg string) (*domain.User, error) {
	if arg == "" {
		return nil, domain.ErrUserNotFound
	}
	var dbUser DBUser
	err := r.db.WithContext(ctx).Where(query, arg).First(&dbUser).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbUser), nil
}

// dbToDomain converts database user to domain user
func (r *UserRepositoryImpl) dbToDomain(dbUser *DBUser) *domain.User {
	return &domain.User{
		ID:           dbUser.ID,
		Role:         domain.Role(dbUser.Role),
		Phone:        deref(dbUser.Phone),
		Email:        deref(dbUser.Email),
		PasswordHash: deref(dbUser.PasswordHash),
		CreatedAt:    dbUser.CreatedAt,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ domain.UserRepository = (*UserRepositoryImpl)(nil)

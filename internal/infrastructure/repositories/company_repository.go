package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// DBCompany represents the database model for Company
type DBCompany struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:255;not null"`
	Description string    `gorm:"type:text"`
	OwnerUserID *string   `gorm:"index;size:36"`
	CreatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBCompany) TableName() string {
	return "companies"
}

// CompanyRepositoryImpl implements domain.CompanyRepository using GORM
type CompanyRepositoryImpl struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *gorm.DB) *CompanyRepositoryImpl {
	return &CompanyRepositoryImpl{db: db}
}

// Create implements domain.CompanyRepository
func (r *CompanyRepositoryImpl) Create(ctx context.Context, cmd domain.CreateCompanyCommand) (*domain.Company, error) {
	row := &DBCompany{
		ID:          uuid.NewString(),
		Name:        cmd.Name,
		Description: cmd.Description,
		OwnerUserID: nullable(cmd.OwnerUserID),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return toCompany(row), nil
}

// FindByID implements domain.CompanyRepository
func (r *CompanyRepositoryImpl) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOwner implements domain.CompanyRepository. The oldest company wins if a user owns several.
func (r *CompanyRepositoryImpl) FindByOwner(ctx context.Context, userID string) (*domain.Company, error) {
	return r.findOne(ctx, "owner_user_id = ?", userID)
}

// Update implements domain.CompanyRepository
func (r *CompanyRepositoryImpl) Update(ctx context.Context, id string, cmd domain.UpdateCompanyCommand) (*domain.Company, error) {
	updates := map[string]interface{}{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.Description != nil {
		updates["description"] = *cmd.Description
	}
	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&DBCompany{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.FindByID(ctx, id)
}

func (r *CompanyRepositoryImpl) findOne(ctx context.Context, query, arg string) (*domain.Company, error) {
	if arg == "" {
		return nil, domain.ErrCompanyNotFound
	}
	var row DBCompany
	err := r.db.WithContext(ctx).Where(query, arg).Order("created_at ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrCompanyNotFound
		}
		return nil, err
	}
	return toCompany(&row), nil
}

func toCompany(row *DBCompany) *domain.Company {
	return &domain.Company{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		OwnerUserID: deref(row.OwnerUserID),
		CreatedAt:   row.CreatedAt,
	}
}

var _ domain.CompanyRepository = (*CompanyRepositoryImpl)(nil)

package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/larkes/communities-api/domain"
)

// DBOTP represents the database model for a one-time code
type DBOTP struct {
	ID        string    `gorm:"primaryKey;size:36"`
	Phone     string    `gorm:"index:idx_otps_phone_issued,priority:1;size:32;not null"`
	Code      string    `gorm:"size:16;not null"`
	IssuedAt  time.Time `gorm:"index:idx_otps_phone_issued,priority:2;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Consumed  bool      `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (DBOTP) TableName() string {
	return "otps"
}

// OTPRepositoryImpl implements domain.OTPRepository using GORM
type OTPRepositoryImpl struct {
	db *gorm.DB
}

// NewOTPRepository creates a new OTP repository
func NewOTPRepository(db *gorm.DB) *OTPRepositoryImpl {
	return &OTPRepositoryImpl{db: db}
}

// Issue implements domain.OTPRepository. Earlier codes for the phone are left in place.
func (r *OTPRepositoryImpl) Issue(ctx context.Context, cmd domain.IssueOTPCommand) (*domain.OTPRecord, error) {
	row := &DBOTP{
		ID:        uuid.NewString(),
		Phone:     cmd.Phone,
		Code:      cmd.Code,
		IssuedAt:  cmd.IssuedAt.UTC(),
		ExpiresAt: cmd.ExpiresAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return toOTPRecord(row), nil
}

// FindLatestUnconsumed implements domain.OTPRepository
func (r *OTPRepositoryImpl) FindLatestUnconsumed(ctx context.Context, phone string) (*domain.OTPRecord, error) {
	var row DBOTP
	err := r.db.WithContext(ctx).
		Where("phone = ? AND consumed = ?", phone, false).
		Order("issued_at DESC").
		Order("expires_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOTPNotFound
		}
		return nil, err
	}
	return toOTPRecord(&row), nil
}

// MarkConsumed implements domain.OTPRepository with a single conditional UPDATE
func (r *OTPRepositoryImpl) MarkConsumed(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&DBOTP{}).
		Where("id = ? AND consumed = ?", id, false).
		Update("consumed", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func toOTPRecord(row *DBOTP) *domain.OTPRecord {
	return &domain.OTPRecord{
		ID:        row.ID,
		Phone:     row.Phone,
		Code:      row.Code,
		IssuedAt:  row.IssuedAt,
		ExpiresAt: row.ExpiresAt,
		Consumed:  row.Consumed,
	}
}

var _ domain.OTPRepository = (*OTPRepositoryImpl)(nil)

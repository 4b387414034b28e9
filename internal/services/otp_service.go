package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/larkes/communities-api/domain"
)

// OTPServiceImpl implements domain.OTPService on top of the credential store.
// The Redis throttle is optional; without it there is no resend window or attempt limit.
type OTPServiceImpl struct {
	repo            domain.OTPRepository
	throttle        domain.OTPThrottle
	notificationSvc domain.NotificationService
	logger          *logrus.Logger
	config          OTPConfig
}

type OTPConfig struct {
	Length       int
	TTL          time.Duration
	MaxAttempts  int
	ResendWindow time.Duration
	// FixedCode replaces the random draw; development only
	FixedCode string
	Now       func() time.Time
}

// NewOTPService creates a new OTP service. throttle may be nil.
func NewOTPService(
	repo domain.OTPRepository,
	throttle domain.OTPThrottle,
	notificationSvc domain.NotificationService,
	logger *logrus.Logger,
	config OTPConfig,
) *OTPServiceImpl {
	if config.Now == nil {
		config.Now = time.Now
	}
	if config.Length <= 0 {
		config.Length = 6
	}
	return &OTPServiceImpl{
		repo:            repo,
		throttle:        throttle,
		notificationSvc: notificationSvc,
		logger:          logger,
		config:          config,
	}
}

// Issue implements domain.OTPService.
// Earlier outstanding codes are not touched; they go stale because Verify only looks at the newest one.
func (s *OTPServiceImpl) Issue(ctx context.Context, phone string) error {
	log := s.logger.WithField("phone", domain.MaskPhone(phone))

	if s.throttle != nil && s.config.ResendWindow > 0 {
		ok, err := s.throttle.AcquireResendSlot(ctx, phone, s.config.ResendWindow)
		switch {
		case err != nil:
			log.WithError(err).Warn("resend throttle unavailable, issuing anyway")
		case !ok:
			log.Debug("resend window active, no new code issued")
			return nil
		}
	}

	code, err := s.nextCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP code: %w", err)
	}

	now := s.config.Now()
	rec, err := s.repo.Issue(ctx, domain.IssueOTPCommand{
		Phone:     phone,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.TTL),
	})
	if err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	message := fmt.Sprintf("Your verification code is: %s. Valid for %d minutes.", code, ttlMinutes(s.config.TTL))
	if err := s.notificationSvc.SendSMS(phone, message); err != nil {
		// The code stays valid; the caller still gets the same answer
		log.WithError(err).WithField("otp_id", rec.ID).Warn("failed to deliver OTP SMS")
	}
	return nil
}

// Verify implements domain.OTPService
func (s *OTPServiceImpl) Verify(ctx context.Context, phone, code string) (bool, error) {
	rec, err := s.repo.FindLatestUnconsumed(ctx, phone)
	if errors.Is(err, domain.ErrOTPNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load OTP: %w", err)
	}

	now := s.config.Now()
	if rec.Expired(now) {
		return false, nil
	}

	if s.attemptsExhausted(ctx, rec) {
		return false, nil
	}

	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(code)) != 1 {
		s.recordFailure(ctx, rec, now)
		return false, nil
	}

	consumed, err := s.repo.MarkConsumed(ctx, rec.ID)
	if err != nil {
		return false, fmt.Errorf("failed to consume OTP: %w", err)
	}
	return consumed, nil
}

func (s *OTPServiceImpl) attemptsExhausted(ctx context.Context, rec *domain.OTPRecord) bool {
	if s.throttle == nil || s.config.MaxAttempts <= 0 {
		return false
	}
	n, err := s.throttle.Failures(ctx, rec.ID)
	if err != nil {
		s.logger.WithError(err).Warn("attempt counter unavailable")
		return false
	}
	return n >= int64(s.config.MaxAttempts)
}

func (s *OTPServiceImpl) recordFailure(ctx context.Context, rec *domain.OTPRecord, now time.Time) {
	if s.throttle == nil || s.config.MaxAttempts <= 0 {
		return
	}
	if _, err := s.throttle.RecordFailure(ctx, rec.ID, rec.ExpiresAt.Sub(now)); err != nil {
		s.logger.WithError(err).Warn("failed to record OTP attempt")
	}
}

func (s *OTPServiceImpl) nextCode() (string, error) {
	if s.config.FixedCode != "" {
		return s.config.FixedCode, nil
	}
	return generateSecureCode(s.config.Length)
}

// generateSecureCode draws a fixed-width numeric code from crypto/rand
func generateSecureCode(length int) (string, error) {
	digits := make([]byte, length)
	for i := range digits {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("failed to generate random digit: %w", err)
		}
		digits[i] = byte('0' + num.Int64())
	}
	return string(digits), nil
}

func ttlMinutes(ttl time.Duration) int {
	m := int(ttl.Round(time.Minute) / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}

var _ domain.OTPService = (*OTPServiceImpl)(nil)

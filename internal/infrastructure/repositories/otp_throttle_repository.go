package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/larkes/communities-api/domain"
)

// OTPThrottleRepositoryImpl implements domain.OTPThrottle using Redis
type OTPThrottleRepositoryImpl struct {
	client *redis.Client
	prefix string
}

// NewOTPThrottleRepository creates a new Redis-backed OTP throttle
func NewOTPThrottleRepository(client *redis.Client) *OTPThrottleRepositoryImpl {
	return &OTPThrottleRepositoryImpl{
		client: client,
		prefix: "otp:",
	}
}

// AcquireResendSlot implements domain.OTPThrottle. It returns false while a previous slot for phone is still held.
func (r *OTPThrottleRepositoryImpl) AcquireResendSlot(ctx context.Context, phone string, window time.Duration) (bool, error) {
	key := r.prefix + "res:" + phone
	ok, err := r.client.SetNX(ctx, key, 1, window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to set resend throttle: %w", err)
	}
	return ok, nil
}

// RecordFailure implements domain.OTPThrottle and returns the failure count for the code
func (r *OTPThrottleRepositoryImpl) RecordFailure(ctx context.Context, otpID string, ttl time.Duration) (int64, error) {
	key := r.prefix + "att:" + otpID

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	return incr.Val(), nil
}

// Failures implements domain.OTPThrottle
func (r *OTPThrottleRepositoryImpl) Failures(ctx context.Context, otpID string) (int64, error) {
	key := r.prefix + "att:" + otpID
	n, err := r.client.Get(ctx, key).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read attempts: %w", err)
	}
	return n, nil
}

var _ domain.OTPThrottle = (*OTPThrottleRepositoryImpl)(nil)

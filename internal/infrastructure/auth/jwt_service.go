package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/larkes/communities-api/domain"
)

// sessionClaims is the wire form of a session token
type sessionClaims struct {
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTServiceImpl implements domain.TokenService
type JWTServiceImpl struct {
	secretKey      []byte
	method         jwt.SigningMethod
	issuer         string
	accessTokenTTL time.Duration
	now            func() time.Time
}

// NewJWTService creates a new JWT service. Only HMAC algorithms are accepted.
func NewJWTService(secretKey, algorithm, issuer string, accessTTL time.Duration) (*JWTServiceImpl, error) {
	if secretKey == "" {
		return nil, domain.ErrMissingSigningSecret
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, domain.ErrUnsupportedAlgorithm
	}
	return &JWTServiceImpl{
		secretKey:      []byte(secretKey),
		method:         method,
		issuer:         issuer,
		accessTokenTTL: accessTTL,
		now:            time.Now,
	}, nil
}

// Issue implements domain.TokenService
func (j *JWTServiceImpl) Issue(req domain.TokenRequest) (string, error) {
	if req.Subject == "" {
		return "", errors.New("token subject is required")
	}
	ttl := req.TTL
	if ttl == 0 {
		ttl = j.accessTokenTTL
	}

	now := j.now()
	claims := sessionClaims{
		Role:      string(req.Role),
		CompanyID: req.CompanyID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   req.Subject,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(j.method, claims)
	return token.SignedString(j.secretKey)
}

// Verify implements domain.TokenService. Every failure maps to domain.ErrTokenInvalid.
func (j *JWTServiceImpl) Verify(tokenString string) (*domain.TokenClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	}
	if j.issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.issuer))
	}

	var claims sessionClaims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		return j.secretKey, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}

	if claims.Subject == "" || !domain.Role(claims.Role).Valid() {
		return nil, domain.ErrTokenInvalid
	}

	tokenClaims := &domain.TokenClaims{
		Subject:   claims.Subject,
		Role:      domain.Role(claims.Role),
		CompanyID: claims.CompanyID,
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if claims.IssuedAt != nil {
		tokenClaims.IssuedAt = claims.IssuedAt.Unix()
	}
	return tokenClaims, nil
}

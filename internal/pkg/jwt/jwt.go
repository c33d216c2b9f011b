package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"

	"github.com/cmlabs-hris/teams-worktime/internal/domain/auth"
	"github.com/cmlabs-hris/teams-worktime/internal/pkg/validator"
)

const (
	ClaimEmCode = "em_code"
	ClaimType   = "type"
	TypeAccess  = "access"
)

type Service interface {
	GenerateAccessToken(emCode string) (token string, expiresAt int64, err error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) GenerateAccessToken(emCode string) (token string, expiresAt int64, err error) {
	if !validator.IsValidEmCode(emCode) {
		return "", 0, auth.ErrInvalidEmCode
	}

	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		ClaimEmCode: emCode,
		ClaimType:   TypeAccess,
		"iat":       time.Now().Unix(),
		"exp":       expiresAt,
	})
	return tokenString, expiresAt, err
}

// EmCodeFromContext returns the em_code claim of the verified request token.
func EmCodeFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	emCode, ok := claims[ClaimEmCode].(string)
	if !ok || emCode == "" {
		return "", auth.ErrMissingEmCode
	}

	return emCode, nil
}

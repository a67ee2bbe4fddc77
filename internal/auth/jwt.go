package auth

import (
	"context"
	"fmt"

	"catalog-service/internal/apperr"

	"github.com/golang-jwt/jwt/v5"
)

type accessClaims struct {
	UserID userID `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HMAC-signed tokens with a shared secret
type JWTVerifier struct {
	secret []byte
	method jwt.SigningMethod
}

// NewJWTVerifier creates a verifier for algorithm (HS256, HS384 or HS512)
func NewJWTVerifier(secret, algorithm string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	return &JWTVerifier{secret: []byte(secret), method: method}, nil
}

func (v *JWTVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	claims := &accessClaims{}
	_, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != v.method {
				return nil, fmt.Errorf("unexpected signing method %s", t.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{v.method.Alg()}),
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeUnauthorized, err, "invalid or expired token")
	}

	return identityPayload{UserID: claims.UserID, Sub: claims.Subject, Role: claims.Role}.identity(), nil
}

// Sign issues a token for identity. Used by tooling and tests.
func (v *JWTVerifier) Sign(identity Identity, claims jwt.RegisteredClaims) (string, error) {
	token := jwt.NewWithClaims(v.method, accessClaims{UserID: userID(identity.UserID), Role: identity.Role, RegisteredClaims: claims})
	signed, err := token.SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("signing jwt: %w", err)
	}
	return signed, nil
}

package httpapi

import (
	"errors"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"retailpos/backend/internal/domain"
)

// Authenticator verifies bearer tokens issued by the identity service. It
// never issues tokens itself.
type Authenticator struct {
	secret []byte
}

type actorClaims struct {
	jwtlib.RegisteredClaims
	Role       string `json:"role"`
	LocationID string `json:"location_id"`
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &actorClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}), jwtlib.WithExpirationRequired())
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	role := strings.ToLower(strings.TrimSpace(claims.Role))
	location := strings.TrimSpace(claims.LocationID)
	if role == "" || location == "" {
		return domain.Actor{}, errors.New("token is missing role or location")
	}

	return domain.Actor{UserID: sub, Role: role, LocationID: location}, nil
}

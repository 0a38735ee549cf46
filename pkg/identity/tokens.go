package identity

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	accessTokenTTL  = 24 * time.Hour
	refreshTokenTTL = 30 * 24 * time.Hour

	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

// Claims are the custom payload in issued JWTs. TokenUse keeps refresh
// tokens from being replayed as access tokens.
type Claims struct {
	TokenUse string `json:"token_use"`
	jwt.RegisteredClaims
}

type tokenIssuer struct {
	secret []byte
	now    func() time.Time
}

func (ti *tokenIssuer) issuePair(identityID string) (TokenPair, error) {
	access, err := ti.sign(identityID, tokenUseAccess, accessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := ti.sign(identityID, tokenUseRefresh, refreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (ti *tokenIssuer) sign(identityID, use string, ttl time.Duration) (string, error) {
	now := ti.now()
	claims := Claims{
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identityID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ti.secret)
}

// parse validates the signature and expiry and checks the token is of the
// expected use.
func (ti *tokenIssuer) parse(tokenStr, expectedUse string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return ti.secret, nil
	}, jwt.WithTimeFunc(ti.now))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.TokenUse != expectedUse || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

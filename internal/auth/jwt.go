package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims represents the service token payload sent to the backend.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// ServiceToken signs short-lived HS256 bearer tokens identifying the
// dashboard to the backend API. Tokens are reused until close to expiry.
type ServiceToken struct {
	key     []byte
	issuer  string
	subject string
	ttl     time.Duration
	now     func() time.Time

	mu     sync.Mutex
	cached string
	exp    time.Time
}

// NewServiceToken returns nil when key is empty, meaning requests go out
// without an Authorization header.
func NewServiceToken(key, issuer string, ttl time.Duration) *ServiceToken {
	if key == "" {
		return nil
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &ServiceToken{
		key:     []byte(key),
		issuer:  issuer,
		subject: "dashboard",
		ttl:     ttl,
		now:     time.Now,
	}
}

// Token returns a valid signed token, issuing a new one when the cached
// token has less than a tenth of its lifetime left.
func (s *ServiceToken) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.cached != "" && now.Add(s.ttl/10).Before(s.exp) {
		return s.cached, nil
	}

	exp := now.Add(s.ttl)
	claims := Claims{
		Role: "viewer",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   s.subject,
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", err
	}
	s.cached, s.exp = signed, exp
	return signed, nil
}

// Parse validates a token and returns claims.
func Parse(tokenStr, key, issuer string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(key), nil
	})
	if err != nil {
		return Claims{}, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if issuer != "" && claims.Issuer != issuer {
		return Claims{}, errors.New("issuer mismatch")
	}
	return *claims, nil
}

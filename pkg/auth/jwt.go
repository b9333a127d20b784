package auth

import (
	"errors"
	"time"

	"gift-core/pkg/errno"

	"github.com/golang-jwt/jwt/v5"
)

// Claims access token 载荷: sub 为账户 ID，role 为账户角色
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Manager 签发与校验 HS256 access token
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// WithClock 替换时间来源，测试用
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

func (m *Manager) Issue(accountID, role string) (string, error) {
	now := m.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			Issuer:    "gift-core",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Parse 校验签名与有效期，失败统一返回 ErrTokenInvalid
func (m *Manager) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithIssuer("gift-core"),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errno.ErrTokenInvalid.WithMessage("Token expired")
		}
		return nil, errno.ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, errno.ErrTokenInvalid.WithMessage("Token has no subject")
	}
	return claims, nil
}

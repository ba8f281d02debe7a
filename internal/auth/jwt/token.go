package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims for player session tokens. A token is only valid for one room.
type Claims struct {
	PlayerID    uuid.UUID `json:"player_id"`
	RoomCode    string    `json:"room_code"`
	DisplayName string    `json:"display_name"`
	IsHost      bool      `json:"is_host"`
	jwt.RegisteredClaims
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token expired")
)

// TokenConfig holds JWT signing configuration.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration // default: 6 hours
	Issuer string
}

// Manager handles session token generation and validation.
type Manager struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

// NewManager creates a JWT token manager.
func NewManager(cfg TokenConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = 6 * time.Hour
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "coupsurcoup"
	}

	return &Manager{
		secret: cfg.Secret,
		ttl:    cfg.TTL,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Session is the seat a token grants.
type Session struct {
	PlayerID    uuid.UUID
	RoomCode    string
	DisplayName string
	IsHost      bool
}

// GenerateSessionToken signs a token for one seat in one room.
func (m *Manager) GenerateSessionToken(s Session) (string, error) {
	now := m.now()
	claims := Claims{
		PlayerID:    s.PlayerID,
		RoomCode:    s.RoomCode,
		DisplayName: s.DisplayName,
		IsHost:      s.IsHost,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   s.PlayerID.String(),
			Audience:  jwt.ClaimStrings{s.RoomCode},
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateSessionToken parses and validates a session token.
func (m *Manager) ValidateSessionToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithTimeFunc(m.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.PlayerID == uuid.Nil || claims.RoomCode == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"formbuilder/internal/model"
)

const (
	// DefaultAccessTokenExpiry is the validity window of login tokens.
	DefaultAccessTokenExpiry = 24 * time.Hour
	// DefaultResetTokenExpiry is the validity window of password reset tokens.
	DefaultResetTokenExpiry = time.Hour

	PurposeAccess        = "access"
	PurposePasswordReset = "password_reset"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongPurpose   = errors.New("token not valid for this purpose")
	ErrMissingTokenID = errors.New("token ID not found")
)

// Claims represents JWT claims. The id/email/role triple is the caller identity.
type Claims struct {
	UserID  uint   `json:"id"`
	Email   string `json:"email,omitempty"`
	Role    string `json:"role,omitempty"`
	Purpose string `json:"purpose"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller attached to a request.
type Identity struct {
	ID    uint       `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// Identity extracts the caller identity from access token claims.
func (c *Claims) Identity() Identity {
	return Identity{ID: c.UserID, Email: c.Email, Role: model.Role(c.Role)}
}

// IssuedToken is a signed access token plus the metadata persisted in its session row.
type IssuedToken struct {
	Token     string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret    []byte
	accessTTL time.Duration
	resetTTL  time.Duration
}

// NewJWTService creates a new JWT service with the given secret and lifetimes.
func NewJWTService(secret string, accessTTL, resetTTL time.Duration) *JWTService {
	return &JWTService{
		secret:    []byte(secret),
		accessTTL: accessTTL,
		resetTTL:  resetTTL,
	}
}

// Secret returns the HMAC signing key.
func (s *JWTService) Secret() []byte {
	return s.secret
}

// GenerateAccessToken issues a login token embedding {id, email, role}.
func (s *JWTService) GenerateAccessToken(user *model.User) (IssuedToken, error) {
	now := time.Now()
	issued := IssuedToken{
		TokenID:   uuid.New().String(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.accessTTL),
	}
	claims := &Claims{
		UserID:  user.ID,
		Email:   user.Email,
		Role:    string(user.Role),
		Purpose: PurposeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        issued.TokenID,
			ExpiresAt: jwt.NewNumericDate(issued.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return IssuedToken{}, err
	}
	issued.Token = token
	return issued, nil
}

// GenerateResetToken issues a short-lived token usable only for password reset.
func (s *JWTService) GenerateResetToken(userID uint) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID:  userID,
		Purpose: PurposePasswordReset,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.resetTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// ValidateToken validates signature and expiry and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, s.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccessToken validates a login token.
func (s *JWTService) ParseAccessToken(tokenString string) (*Claims, error) {
	return s.parsePurpose(tokenString, PurposeAccess)
}

// ParseResetToken validates a password reset token.
func (s *JWTService) ParseResetToken(tokenString string) (*Claims, error) {
	return s.parsePurpose(tokenString, PurposePasswordReset)
}

func (s *JWTService) parsePurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose {
		return nil, ErrWrongPurpose
	}
	if claims.ID == "" {
		return nil, ErrMissingTokenID
	}
	return claims, nil
}

func (s *JWTService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("unexpected signing method")
	}
	return s.secret, nil
}

package middleware

import (
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"formbuilder/internal/auth"
	apperrors "formbuilder/internal/errors"
	"formbuilder/internal/model"
)

const (
	tokenContextKey    = "user"
	identityContextKey = "identity"
)

// JWT verifies the bearer token signature and expiry.
func JWT(secret []byte) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey: secret,
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return apperrors.ErrNoToken
			}
			return apperrors.ErrAuthenticationFailed
		},
	})
}

// Identity attaches the caller identity once JWT has run. Tokens that are not
// login tokens, or whose ID is on the revocation list, are rejected.
func Identity(store auth.TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := CurrentClaims(c)
			if !ok || claims.Purpose != auth.PurposeAccess || claims.ID == "" {
				return apperrors.ErrAuthenticationFailed
			}

			revoked, err := store.IsTokenRevoked(c.Request().Context(), claims.ID)
			if err == nil && revoked {
				return apperrors.ErrAuthenticationFailed
			}

			SetIdentity(c, claims.Identity())
			return next(c)
		}
	}
}

// RequireRole rejects callers whose role is not in roles.
func RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := CurrentIdentity(c)
			if !ok {
				return apperrors.ErrNotAuthenticated
			}
			for _, role := range roles {
				if identity.Role == role {
					return next(c)
				}
			}
			return apperrors.ErrNotAuthorized
		}
	}
}

// SetIdentity attaches identity to the request context.
func SetIdentity(c echo.Context, identity auth.Identity) {
	c.Set(identityContextKey, identity)
}

// CurrentIdentity returns the identity attached by Identity.
func CurrentIdentity(c echo.Context) (auth.Identity, bool) {
	identity, ok := c.Get(identityContextKey).(auth.Identity)
	return identity, ok
}

// CurrentClaims returns the verified claims of the presented token.
func CurrentClaims(c echo.Context) (*auth.Claims, bool) {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return nil, false
	}
	claims, ok := token.Claims.(*auth.Claims)
	return claims, ok
}

// CurrentToken returns the raw bearer token of the request.
func CurrentToken(c echo.Context) string {
	token, ok := c.Get(tokenContextKey).(*jwt.Token)
	if !ok || token == nil {
		return ""
	}
	return token.Raw
}

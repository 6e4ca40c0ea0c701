package middleware

import (
	"campusEvents/domain"
	"campusEvents/pkg/logger"
	"campusEvents/pkg/utils"
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	jsonres "campusEvents/pkg/response"

	"github.com/labstack/echo/v4"
)

// TokenValidator checks that a token still has a live session.
type TokenValidator interface {
	ValidateTokenFromRedis(ctx context.Context, token string) (string, error)
}

const sessionLookupTimeout = 5 * time.Second

var (
	errMissingHeader = errors.New("missing authorization header")
	errBadFormat     = errors.New("invalid authorization format")
	errBadToken      = errors.New("invalid token")
	errExpired       = errors.New("token expired")
	errNoSession     = errors.New("token expired or invalid")
)

type principal struct {
	userID uint
	role   string
	token  string
}

// authenticate parses the bearer token and checks it against the session store.
func authenticate(c echo.Context, tokenValidator TokenValidator) (principal, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return principal{}, errMissingHeader
	}

	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return principal{}, errBadFormat
	}
	tokenString := tokenParts[1]

	claims, err := utils.ParseJWT(tokenString)
	if err != nil {
		logger.Error("Failed to parse JWT", err)
		return principal{}, errBadToken
	}

	expAt, err := claims.GetExpirationTime()
	if err != nil || expAt == nil || time.Now().After(expAt.Time) {
		return principal{}, errExpired
	}

	if tokenValidator != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), sessionLookupTimeout)
		defer cancel()

		userID, err := tokenValidator.ValidateTokenFromRedis(ctx, tokenString)
		if err != nil {
			logger.Warn("Token has no live session", "error", err)
			return principal{}, errNoSession
		}
		if userID != claims.UserID {
			logger.Error("UserID mismatch between JWT and session")
			return principal{}, errBadToken
		}
	}

	userIDUint, err := strconv.ParseUint(claims.UserID, 10, 64)
	if err != nil {
		logger.Error("Invalid user ID in token", err)
		return principal{}, errBadToken
	}

	return principal{userID: uint(userIDUint), role: claims.Role, token: tokenString}, nil
}

func (p principal) bind(c echo.Context) {
	c.Set("user_id", p.userID)
	c.Set("role", p.role)
	c.Set("token", p.token)
}

// AuthMiddlewareWithRedis requires a valid JWT whose session is still stored.
func AuthMiddlewareWithRedis(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, err := authenticate(c, tokenValidator)
			if err != nil {
				status := http.StatusUnauthorized
				code := "UNAUTHORIZED"
				if errors.Is(err, errExpired) {
					status, code = http.StatusForbidden, "FORBIDDEN"
				}
				return c.JSON(status, jsonres.Error(code, err.Error(), nil))
			}

			p.bind(c)
			return next(c)
		}
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through otherwise.
func OptionalAuth(tokenValidator TokenValidator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get("Authorization") == "" {
				return next(c)
			}
			if p, err := authenticate(c, tokenValidator); err == nil {
				p.bind(c)
			}
			return next(c)
		}
	}
}

// RequireRoles lets through only callers whose role is one of roles.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[strings.ToLower(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleStr, ok := c.Get("role").(string)
			if !ok {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Invalid role", nil,
				))
			}
			if _, ok := allowed[strings.ToLower(roleStr)]; !ok {
				return c.JSON(http.StatusForbidden, jsonres.Error(
					"FORBIDDEN", "Insufficient role", nil,
				))
			}

			return next(c)
		}
	}
}

// AdminOnly is RequireRoles(domain.RoleAdmin).
func AdminOnly() echo.MiddlewareFunc {
	return RequireRoles(domain.RoleAdmin)
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/identity"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const IdentityKey = "identity"

// Claims is the caller assertion carried by every access token. Tokens are
// issued by the upstream identity provider; this service only verifies them.
type Claims struct {
	UserID       string `json:"user_id"`
	Role         string `json:"role"`
	IsAdmin      bool   `json:"is_admin"`
	IsSuperAdmin bool   `json:"is_super_admin"`
	jwt.RegisteredClaims
}

// Identity converts verified claims into the core's caller type.
func (c *Claims) Identity() (identity.Identity, error) {
	id, err := uuid.Parse(c.UserID)
	if err != nil {
		return identity.Identity{}, err
	}
	return identity.Identity{
		UserID:       id,
		Role:         identity.Role(c.Role),
		IsAdmin:      c.IsAdmin,
		IsSuperAdmin: c.IsSuperAdmin,
	}, nil
}

// Authenticate validates the Bearer token on every protected route and
// stores the resulting identity in the Gin context.
func Authenticate(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("authentication required"))
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid or expired token"))
			return
		}

		who, err := claims.Identity()
		if err != nil || !who.Role.Valid() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("invalid token claims"))
			return
		}

		c.Set(IdentityKey, who)
		c.Next()
	}
}

// RequireAdmin rejects callers without administrative rights.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !GetIdentity(c).Admin() {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.Forbidden("administrator rights required").Envelope())
			return
		}
		c.Next()
	}
}

// GetIdentity is a helper to retrieve the caller from the Gin context.
// It returns the zero identity, which resolves to no visibility, when unset.
func GetIdentity(c *gin.Context) identity.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return identity.Identity{}
	}
	who, _ := v.(identity.Identity)
	return who
}

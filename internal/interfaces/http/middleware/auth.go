package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"problem-hunt.backend/pkg/jwt"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// WalletAddressKey is the context key for the session's wallet address
	WalletAddressKey = "walletAddress"
	// WalletChainKey is the context key for the session's wallet chain
	WalletChainKey = "walletChain"
)

// AuthMiddleware validates the bearer token and stores the session claims in
// the gin context. Wallet sessions additionally carry the signed-in address.
func AuthMiddleware(jwtService *jwt.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header is required",
			})
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization format. Use: Bearer <token>",
			})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, BearerPrefix)
		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrExpiredToken) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has expired",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		c.Set(UserIDKey, claims.UserID)
		c.Set(UserEmailKey, claims.Email)
		if claims.WalletAddress != "" {
			c.Set(WalletAddressKey, claims.WalletAddress)
			c.Set(WalletChainKey, claims.Chain)
		}

		c.Next()
	}
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

// GetWalletAddress gets the session wallet address from context
func GetWalletAddress(c *gin.Context) (string, bool) {
	address, exists := c.Get(WalletAddressKey)
	if !exists {
		return "", false
	}
	return address.(string), true
}

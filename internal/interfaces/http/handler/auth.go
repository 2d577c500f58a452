package handler

import (
	"crypto/subtle"

	"github.com/fulfil/backend/internal/infrastructure/auth"
	"github.com/fulfil/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthHandler handles token issuance for warehouse devices
type AuthHandler struct {
	BaseHandler
	jwtService     *auth.JWTService
	tokenBlacklist auth.TokenBlacklist
	deviceKey      string
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(jwtService *auth.JWTService, tokenBlacklist auth.TokenBlacklist, deviceKey string) *AuthHandler {
	return &AuthHandler{
		jwtService:     jwtService,
		tokenBlacklist: tokenBlacklist,
		deviceKey:      deviceKey,
	}
}

// Login exchanges credentials for a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req DeviceLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if h.deviceKey == "" || subtle.ConstantTimeCompare([]byte(req.DeviceKey), []byte(h.deviceKey)) != 1 {
		h.Unauthorized(c, "Invalid device key")
		return
	}

	storeID, err := uuid.Parse(req.StoreID)
	if err != nil {
		h.BadRequest(c, "Invalid store ID format")
		return
	}
	actorID, err := uuid.Parse(req.ActorID)
	if err != nil {
		h.BadRequest(c, "Invalid actor ID format")
		return
	}

	pair, err := h.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		StoreID:   storeID,
		ActorID:   actorID,
		ActorName: req.ActorName,
	})
	if err != nil {
		h.InternalError(c, "Failed to issue tokens")
		return
	}

	h.Success(c, LoginResponse{
		Token: TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
			TokenType:             pair.TokenType,
		},
		StoreID:   storeID.String(),
		ActorID:   actorID.String(),
		ActorName: req.ActorName,
	})
}

// RefreshToken exchanges a refresh token for a new token pair
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	pair, err := h.jwtService.RefreshTokenPair(req.RefreshToken)
	if err != nil {
		h.Unauthorized(c, "Invalid refresh token")
		return
	}

	h.Success(c, RefreshTokenResponse{
		Token: TokenResponse{
			AccessToken:           pair.AccessToken,
			RefreshToken:          pair.RefreshToken,
			AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
			RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
			TokenType:             pair.TokenType,
		},
	})
}

// Logout revokes the caller's refresh token
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	if h.tokenBlacklist != nil && claims.ID != "" {
		if ttl := claims.GetRemainingTTL(); ttl > 0 {
			if err := h.tokenBlacklist.AddToBlacklist(c.Request.Context(), claims.ID, ttl); err != nil {
				h.InternalError(c, "Failed to revoke token")
				return
			}
		}
	}

	h.Success(c, LogoutResponse{
		Message: "Logged out successfully",
	})
}

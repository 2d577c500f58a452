package handler

import "time"

// DeviceLoginRequest represents the request body for a warehouse device login
type DeviceLoginRequest struct {
	StoreID   string `json:"store_id" binding:"required,uuid"`
	ActorID   string `json:"actor_id" binding:"required,uuid"`
	ActorName string `json:"actor_name" binding:"required,min=1,max=100"`
	DeviceKey string `json:"device_key" binding:"required"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse represents the token data in auth responses
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse represents the response body for successful login
type LoginResponse struct {
	Token     TokenResponse `json:"token"`
	StoreID   string        `json:"store_id"`
	ActorID   string        `json:"actor_id"`
	ActorName string        `json:"actor_name"`
}

// RefreshTokenResponse represents the response body for successful token refresh
type RefreshTokenResponse struct {
	Token TokenResponse `json:"token"`
}

// LogoutResponse represents the response body for logout
type LogoutResponse struct {
	Message string `json:"message"`
}

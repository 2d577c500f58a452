package middleware

import (
	"net/http"
	"strings"

	"github.com/fulfil/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StoreContextKey is the key used to store store information in gin.Context
const (
	StoreIDKey     = "store_id"
	StoreCodeKey   = "store_code"
	StoreHeaderKey = "X-Store-ID"
)

// StoreInfo holds the extracted store information
type StoreInfo struct {
	ID   uuid.UUID `json:"id"`
	Code string    `json:"code"`
}

// StoreExtractor defines the interface for extracting store information
type StoreExtractor interface {
	ExtractStoreID(c *gin.Context) (string, error)
}

// StoreValidator defines the interface for validating store
type StoreValidator interface {
	ValidateStore(storeID string) (*StoreInfo, error)
}

// StoreMiddlewareConfig holds configuration for store middleware
type StoreMiddlewareConfig struct {
	// HeaderEnabled enables X-Store-ID header extraction
	HeaderEnabled bool
	// JWTEnabled enables JWT claim extraction (requires JWT middleware to run first)
	JWTEnabled bool
	// SubdomainEnabled enables subdomain extraction
	SubdomainEnabled bool
	// BaseDomain is the base domain for subdomain extraction (e.g., "fulfil.io")
	BaseDomain string
	// SkipPaths are paths that don't require store context (e.g., health check)
	SkipPaths []string
	// Required determines if store context is mandatory
	Required bool
	// Validator is an optional validator to check if store exists and is active
	Validator StoreValidator
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultStoreConfig returns default store middleware configuration
func DefaultStoreConfig() StoreMiddlewareConfig {
	return StoreMiddlewareConfig{
		HeaderEnabled:    true,
		JWTEnabled:       true,
		SubdomainEnabled: false,
		BaseDomain:       "",
		SkipPaths:        []string{"/health", "/healthz", "/ready", "/metrics", "/api/v1/health"},
		Required:         true,
		Validator:        nil,
		Logger:           nil,
	}
}

// StoreMiddleware extracts store information from the request
// Extraction order: JWT claims > X-Store-ID header > subdomain
func StoreMiddleware() gin.HandlerFunc {
	return StoreMiddlewareWithConfig(DefaultStoreConfig())
}

// StoreMiddlewareWithConfig returns store middleware with custom configuration
func StoreMiddlewareWithConfig(cfg StoreMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Check if path should be skipped
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath || strings.HasPrefix(path, skipPath+"/") {
				c.Next()
				return
			}
		}

		var storeID string
		var extractionMethod string

		// Priority 1: JWT claims (if JWT middleware has already run)
		if cfg.JWTEnabled {
			if jwtStoreID, exists := c.Get("jwt_store_id"); exists {
				if tid, ok := jwtStoreID.(string); ok && tid != "" {
					storeID = tid
					extractionMethod = "jwt"
				}
			}
		}

		// Priority 2: X-Store-ID header
		if storeID == "" && cfg.HeaderEnabled {
			if headerStoreID := c.GetHeader(StoreHeaderKey); headerStoreID != "" {
				storeID = headerStoreID
				extractionMethod = "header"
			}
		}

		// Priority 3: Subdomain extraction
		if storeID == "" && cfg.SubdomainEnabled && cfg.BaseDomain != "" {
			if subdomainStoreID := extractStoreFromSubdomain(c.Request.Host, cfg.BaseDomain); subdomainStoreID != "" {
				storeID = subdomainStoreID
				extractionMethod = "subdomain"
			}
		}

		// Validate store ID format if present
		if storeID != "" {
			if err := validateStoreIDFormat(storeID); err != nil {
				respondUnauthorized(c, "Invalid store ID format")
				return
			}
		}

		// Check if store is required
		if storeID == "" && cfg.Required {
			respondUnauthorized(c, "Store identification required")
			return
		}

		// Optional: Validate store exists and is active
		var storeInfo *StoreInfo
		if storeID != "" && cfg.Validator != nil {
			var err error
			storeInfo, err = cfg.Validator.ValidateStore(storeID)
			if err != nil {
				log := cfg.Logger
				if log == nil {
					log = logger.FromContext(c.Request.Context())
				}
				log.Warn("Store validation failed",
					zap.String("store_id", storeID),
					zap.Error(err),
				)
				respondUnauthorized(c, "Invalid or inactive store")
				return
			}
		}

		// Set store information in context
		if storeID != "" {
			// Set in gin context for easy access in handlers
			c.Set(StoreIDKey, storeID)
			if storeInfo != nil {
				c.Set(StoreCodeKey, storeInfo.Code)
			}

			// Set in request context for service layer access
			ctx := c.Request.Context()
			log := logger.FromContext(ctx)
			ctx, _ = logger.WithStoreID(ctx, log, storeID)
			c.Request = c.Request.WithContext(ctx)

			// Log extraction method for debugging
			if cfg.Logger != nil {
				cfg.Logger.Debug("Store identified",
					zap.String("store_id", storeID),
					zap.String("method", extractionMethod),
				)
			}
		}

		c.Next()
	}
}

// extractStoreFromSubdomain extracts store code from subdomain
// e.g., "acme.fulfil.io" with baseDomain "fulfil.io" returns "acme"
func extractStoreFromSubdomain(host, baseDomain string) string {
	// Remove port if present
	if idx := strings.Index(host, ":"); idx != -1 {
		host = host[:idx]
	}

	// Check if host ends with base domain
	if !strings.HasSuffix(host, baseDomain) {
		return ""
	}

	// Extract subdomain
	subdomain := strings.TrimSuffix(host, "."+baseDomain)
	if subdomain == host || subdomain == "" || subdomain == "www" {
		return ""
	}

	// Return the first part of subdomain (in case of multi-level subdomains)
	parts := strings.Split(subdomain, ".")
	return parts[0]
}

// validateStoreIDFormat validates that the store ID is a valid UUID
func validateStoreIDFormat(storeID string) error {
	_, err := uuid.Parse(storeID)
	return err
}

// respondUnauthorized sends an unauthorized response
func respondUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "UNAUTHORIZED",
			"message": message,
		},
	})
}

// GetStoreID retrieves the store ID from gin.Context
func GetStoreID(c *gin.Context) string {
	if storeID, exists := c.Get(StoreIDKey); exists {
		if tid, ok := storeID.(string); ok {
			return tid
		}
	}
	return ""
}

// GetStoreUUID retrieves the store ID as UUID from gin.Context
func GetStoreUUID(c *gin.Context) (uuid.UUID, error) {
	storeID := GetStoreID(c)
	if storeID == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(storeID)
}

// GetStoreCode retrieves the store code from gin.Context
func GetStoreCode(c *gin.Context) string {
	if storeCode, exists := c.Get(StoreCodeKey); exists {
		if code, ok := storeCode.(string); ok {
			return code
		}
	}
	return ""
}

// MustGetStoreID retrieves the store ID from gin.Context or panics if not found
// Use this only in handlers where store is guaranteed to exist
func MustGetStoreID(c *gin.Context) string {
	storeID := GetStoreID(c)
	if storeID == "" {
		panic("store_id not found in context")
	}
	return storeID
}

// MustGetStoreUUID retrieves the store ID as UUID or panics if not found
func MustGetStoreUUID(c *gin.Context) uuid.UUID {
	storeUUID, err := GetStoreUUID(c)
	if err != nil || storeUUID == uuid.Nil {
		panic("valid store_id not found in context")
	}
	return storeUUID
}

// OptionalStoreMiddleware creates middleware that doesn't require store
func OptionalStoreMiddleware() gin.HandlerFunc {
	cfg := DefaultStoreConfig()
	cfg.Required = false
	return StoreMiddlewareWithConfig(cfg)
}

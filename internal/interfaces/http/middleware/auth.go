// internal/interfaces/http/middleware/auth.go
//
// Bearer-token authentication.  The token is an HS256 JWT; the configured
// claim carries the caller's user id, which handlers read back with UserID.
// With auth disabled the X-User-ID header stands in for the token so local
// runs and tests can act as any user.

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/turtacn/KeyIP-Renewals/internal/config"
	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Renewals/pkg/errors"
)

const (
	userIDKey = "renewals.user_id"

	// HeaderUserID identifies the caller when authentication is disabled.
	HeaderUserID = "X-User-ID"

	defaultUserClaim = "sub"
)

// Claims is the identity extracted from a validated token.
type Claims struct {
	UserID string
}

// TokenValidator validates bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*Claims, error)
}

// ─────────────────────────────────────────────────────────────────────────────
// JWT validator
// ─────────────────────────────────────────────────────────────────────────────

// JWTValidator checks HMAC-signed tokens against a shared secret.
type JWTValidator struct {
	secret    []byte
	issuer    string
	userClaim string
}

// NewJWTValidator builds a validator from the auth section.
func NewJWTValidator(cfg config.AuthConfig) *JWTValidator {
	claim := cfg.UserClaim
	if claim == "" {
		claim = defaultUserClaim
	}
	return &JWTValidator{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer, userClaim: claim}
}

// ValidateToken parses token, verifies signature, expiry and issuer, and
// returns the user id claim.
func (v *JWTValidator) ValidateToken(token string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeUnauthorized, "invalid token")
	}
	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Unauthorized("unexpected claims type")
	}
	userID, _ := mc[v.userClaim].(string)
	if userID == "" {
		return nil, errors.Unauthorized("token carries no user").WithDetail(v.userClaim)
	}
	return &Claims{UserID: userID}, nil
}

// Sign issues a token for userID.  Used by the CLI and tests.
func (v *JWTValidator) Sign(userID string, claims jwt.MapClaims) (string, error) {
	if claims == nil {
		claims = jwt.MapClaims{}
	}
	claims[v.userClaim] = userID
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// AuthMiddleware resolves the caller for every request outside SkipPaths.
type AuthMiddleware struct {
	validator TokenValidator
	enabled   bool
	skipPaths []string
	logger    logging.Logger
}

// NewAuthMiddleware returns the middleware.  validator may be nil when auth is
// disabled.
func NewAuthMiddleware(validator TokenValidator, enabled bool, skipPaths []string, logger logging.Logger) *AuthMiddleware {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &AuthMiddleware{validator: validator, enabled: enabled, skipPaths: skipPaths, logger: logger}
}

// Authenticate aborts with 401 when no caller can be established.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.shouldSkip(c.Request.URL.Path) {
			c.Next()
			return
		}

		if !m.enabled {
			if id := strings.TrimSpace(c.GetHeader(HeaderUserID)); id != "" {
				c.Set(userIDKey, id)
				c.Next()
				return
			}
			abortUnauthorized(c, "missing "+HeaderUserID+" header")
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			abortUnauthorized(c, "authentication required")
			return
		}
		claims, err := m.validator.ValidateToken(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				logging.String("path", c.Request.URL.Path),
				logging.Err(err))
			abortUnauthorized(c, "invalid or expired token")
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func (m *AuthMiddleware) shouldSkip(path string) bool {
	for _, skip := range m.skipPaths {
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
	}
	return false
}

// UserID returns the caller set by Authenticate, or "".
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"code":    errors.ErrCodeUnauthorized,
		"message": msg,
	})
}

//Personal.AI order the ending

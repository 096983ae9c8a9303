package router

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/internal/service"
	"julianmorley.ca/con-plar/petmart/pkg/global"
)

const (
	sessionCookieName = "petmart_session"
	sessionIDKey      = "sid"
	// SessionHeader lets API clients without cookies carry their session id
	SessionHeader = "X-Session-ID"

	ctxSessionID = "session_id"
	ctxClaims    = "claims"
)

// Claims is the bearer token payload. Subject carries the user id.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Authenticator issues and verifies HS256 bearer tokens
type Authenticator struct {
	secret []byte
	ttl    time.Duration
}

func NewAuthenticator(secret string, ttl time.Duration) *Authenticator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl}
}

func (a *Authenticator) IssueToken(userID, email, role string, now time.Time) (string, error) {
	claims := Claims{
		Email: strings.ToLower(strings.TrimSpace(email)),
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    "petmart",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

func (a *Authenticator) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !parsed.Valid || claims.Subject == "" {
		return nil, errors.New("token has no subject")
	}
	return claims, nil
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, global.ErrorResponse(message, []global.ValidationError{
		{Field: "Authorization", Message: message, Code: "unauthenticated"},
	}))
}

// SessionMiddleware binds a session id to every request. The X-Session-ID
// header wins over the signed cookie and must hold a UUID; a new id is issued
// when neither exists.
func SessionMiddleware(store sessions.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sid := strings.TrimSpace(c.GetHeader(SessionHeader)); sid != "" {
			parsed, err := uuid.Parse(sid)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest, global.ErrorResponse("Invalid session id", []global.ValidationError{
					{Field: SessionHeader, Message: "session id must be a UUID", Code: "invalid_format"},
				}))
				return
			}
			sid = parsed.String()
			c.Header(SessionHeader, sid)
			c.Set(ctxSessionID, sid)
			c.Next()
			return
		}

		session, err := store.Get(c.Request, sessionCookieName)
		if err != nil {
			// a cookie signed with an old secret still yields a fresh session
			logger.Debug("discarding unreadable session cookie", zap.Error(err))
		}
		sid, _ := session.Values[sessionIDKey].(string)
		if sid == "" {
			sid = uuid.NewString()
			session.Values[sessionIDKey] = sid
			if err := session.Save(c.Request, c.Writer); err != nil {
				logger.Warn("failed to save session cookie", zap.Error(err))
			}
		}
		c.Header(SessionHeader, sid)
		c.Set(ctxSessionID, sid)
		c.Next()
	}
}

// AuthMiddleware reads an optional bearer token. A present but invalid token
// is rejected rather than treated as anonymous.
func AuthMiddleware(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthenticated(c, "Authorization header must use the Bearer scheme")
			return
		}
		claims, err := auth.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthenticated(c, "Invalid or expired token")
			return
		}
		c.Set(ctxClaims, claims)
		c.Next()
	}
}

func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !callerFrom(c).Authenticated() {
			abortUnauthenticated(c, "Authentication required")
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		caller := callerFrom(c)
		if !caller.Authenticated() {
			abortUnauthenticated(c, "Authentication required")
			return
		}
		if !caller.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, global.ErrorResponse("Admin access required", []global.ValidationError{
				{Field: "role", Message: "admin role is required", Code: string(global.KindForbidden)},
			}))
			return
		}
		c.Next()
	}
}

// RequestLogger writes one line per request
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("session_id", c.GetString(ctxSessionID)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case status >= http.StatusBadRequest:
			logger.Info("request", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

func callerFrom(c *gin.Context) service.Caller {
	caller := service.Caller{SessionID: c.GetString(ctxSessionID)}
	if v, ok := c.Get(ctxClaims); ok {
		if claims, ok := v.(*Claims); ok {
			caller.UserID = claims.Subject
			caller.Email = claims.Email
			caller.Role = claims.Role
		}
	}
	return caller
}

// BearerHeader formats a token for the Authorization header
func BearerHeader(token string) string {
	return fmt.Sprintf("Bearer %s", token)
}

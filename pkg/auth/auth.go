package auth

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"ml-backend-settings/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CookieName holds the session token
	CookieName = "ml_session"

	sessionTTL = 12 * time.Hour
	issuer     = "ml-settings"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// Claims represents JWT claims
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Auth guards the settings panel with a signed session cookie
type Auth struct {
	config *config.AuthConfig
	now    func() time.Time
}

// New creates a new Auth instance
func New(cfg *config.AuthConfig) *Auth {
	return &Auth{config: cfg, now: time.Now}
}

// ValidateCredentials validates username and password
func (a *Auth) ValidateCredentials(username, password string) error {
	if username == a.config.Username && password == a.config.Password {
		return nil
	}
	return ErrInvalidCredentials
}

// GenerateToken signs a session token for the user
func (a *Auth) GenerateToken(username string) (string, error) {
	now := a.now()
	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(a.config.JWTSecret))
}

// ValidateToken checks signature, issuer and expiry and returns the claims
func (a *Auth) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(a.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, ErrInvalidToken
}

// SetSession writes the session cookie
func (a *Auth) SetSession(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, int(sessionTTL.Seconds()), "/", "", false, true)
}

// ClearSession removes the session cookie
func (a *Auth) ClearSession(c *gin.Context) {
	c.SetCookie(CookieName, "", -1, "/", "", false, true)
}

func isPublic(path string) bool {
	return path == "/login" ||
		path == "/api/login" ||
		path == "/healthz" ||
		strings.HasPrefix(path, "/static/")
}

func tokenFrom(c *gin.Context) string {
	if token, err := c.Cookie(CookieName); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// Middleware returns a Gin middleware for authentication
func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublic(c.Request.URL.Path) {
			c.Next()
			return
		}

		tokenString := tokenFrom(c)
		if tokenString == "" {
			a.reject(c)
			return
		}

		claims, err := a.ValidateToken(tokenString)
		if err != nil {
			a.reject(c)
			return
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

func (a *Auth) reject(c *gin.Context) {
	switch {
	case c.GetHeader("HX-Request") != "":
		// htmx follows HX-Redirect instead of swapping the 401 body
		c.Header("HX-Redirect", "/login")
		c.AbortWithStatus(http.StatusUnauthorized)
	case strings.HasPrefix(c.Request.URL.Path, "/api/"):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	default:
		c.Redirect(http.StatusTemporaryRedirect, "/login")
		c.Abort()
	}
}

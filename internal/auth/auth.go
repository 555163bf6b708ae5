package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"pet_portrait_go_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	gocache "github.com/patrickmn/go-cache"
)

// Signing certificates change rarely; caching them avoids a JWKS round trip
// per request. Authorization and quota state are never cached here.
var certCache = gocache.New(12*time.Hour, 1*time.Hour)

func SetupRoutes(r *gin.Engine, accessService *services.AccessService) {
	auth := r.Group("/auth")
	{
		auth.GET("/user", AuthMiddleware(accessService), getUser)
	}
}

// AuthMiddleware requires a valid bearer token, resolves the account's
// authorization state and stores both in the request context. Routes that
// need an allowlisted or admin caller chain RequireAllowlisted/RequireAdmin.
func AuthMiddleware(accessService *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := verifyToken(bearerToken[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		resolvePrincipal(c, accessService, claims)
	}
}

// OptionalAuthMiddleware resolves the caller when credentials are present and
// lets anonymous requests through untouched. A present-but-invalid token is
// still rejected rather than silently downgraded to anonymous.
func OptionalAuthMiddleware(accessService *services.AccessService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		bearerToken := strings.Split(authHeader, " ")
		if len(bearerToken) != 2 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			c.Abort()
			return
		}

		claims, err := verifyToken(bearerToken[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		resolvePrincipal(c, accessService, claims)
	}
}

func resolvePrincipal(c *gin.Context, accessService *services.AccessService, claims jwt.MapClaims) {
	authID, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)

	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is missing an email claim"})
		c.Abort()
		return
	}

	authz, err := accessService.ResolveAuthorization(authID, email, name)
	if err != nil {
		// Fail closed: the caller is treated as not authorized, not crashed.
		c.JSON(http.StatusForbidden, gin.H{"error": "Unable to verify account access"})
		c.Abort()
		return
	}

	c.Set("account", authz.Account)
	c.Set("authz", authz)
	c.Next()
}

// RequireAllowlisted gates a route on allowlist (or admin) membership.
func RequireAllowlisted() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, exists := GetAuthz(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !authz.Allowed {
			c.JSON(http.StatusForbidden, gin.H{"error": "Account is not allowlisted yet"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates a route on admin membership.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authz, exists := GetAuthz(c)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !authz.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetAuthz fetches the resolved authorization status from the gin context.
func GetAuthz(c *gin.Context) (*services.AuthorizationStatus, bool) {
	value, exists := c.Get("authz")
	if !exists {
		return nil, false
	}
	authz, ok := value.(*services.AuthorizationStatus)
	return authz, ok
}

// ClientIP derives the best-effort caller address for anonymous quota keying.
// Precedence: first X-Forwarded-For segment, X-Real-IP, X-Client-IP, the
// transport remote address, loopback.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if clientIP := strings.TrimSpace(r.Header.Get("X-Client-IP")); clientIP != "" {
		return clientIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "127.0.0.1"
}

func getUser(c *gin.Context) {
	authz, exists := GetAuthz(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in context"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"account":        authz.Account,
		"is_admin":       authz.IsAdmin,
		"is_waitlisted":  authz.IsWaitlisted,
		"is_allowlisted": authz.Allowed && !authz.IsAdmin,
		"allowed":        authz.Allowed,
	})
}

func verifyToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}

		cert, err := getPemCert(token)
		if err != nil {
			return nil, err
		}

		return jwt.ParseRSAPublicKeyFromPEM([]byte(cert))
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, errors.New("invalid token")
}

func getPemCert(token *jwt.Token) (string, error) {
	kid, _ := token.Header["kid"].(string)
	if kid != "" {
		if cached, found := certCache.Get(kid); found {
			return cached.(string), nil
		}
	}

	cert := ""
	resp, err := http.Get(fmt.Sprintf("https://%s/.well-known/jwks.json", os.Getenv("AUTH0_DOMAIN")))
	if err != nil {
		return cert, err
	}
	defer resp.Body.Close()

	var jwks = struct {
		Keys []struct {
			Kty string   `json:"kty"`
			Kid string   `json:"kid"`
			Use string   `json:"use"`
			N   string   `json:"n"`
			E   string   `json:"e"`
			X5c []string `json:"x5c"`
		} `json:"keys"`
	}{}

	err = json.NewDecoder(resp.Body).Decode(&jwks)
	if err != nil {
		return cert, err
	}

	for k := range jwks.Keys {
		if token.Header["kid"] == jwks.Keys[k].Kid {
			cert = "-----BEGIN CERTIFICATE-----\n" + jwks.Keys[k].X5c[0] + "\n-----END CERTIFICATE-----"
		}
	}

	if cert == "" {
		return cert, errors.New("unable to find appropriate key")
	}

	if kid != "" {
		certCache.Set(kid, cert, gocache.DefaultExpiration)
	}

	return cert, nil
}

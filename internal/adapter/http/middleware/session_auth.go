package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	SessionCookie   = "session_token"
	sessionTokenKey = "session_token"
)

// SessionAuth extracts the customer's session token from the bearer header
// or, for gateway redirects which carry no headers, the session cookie.
// Validity is checked by the use cases, not here.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		}
		if token == "" {
			if ck, err := c.Cookie(SessionCookie); err == nil {
				token = ck
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   "session_expired",
				"message": "your session has expired, please scan the QR code again",
				"action":  "rescan_qr",
			})
			return
		}
		c.Set(sessionTokenKey, token)
		c.Next()
	}
}

// SessionToken returns the token stored by SessionAuth.
func SessionToken(c *gin.Context) string {
	return c.GetString(sessionTokenKey)
}

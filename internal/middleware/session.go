package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookieName = "pollapp_session"
	sessionContextKey = "session_key"

	// Long-lived on purpose: eligibility for once-only polls is tracked
	// by this token, so it should outlast the visit.
	sessionCookieMaxAge = 365 * 24 * 60 * 60
)

// ParticipantSession guarantees every participant request carries a
// session token, minting one on first contact.
func ParticipantSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, err := c.Cookie(sessionCookieName)
		if err != nil || key == "" {
			key = uuid.NewString()
			c.SetCookie(sessionCookieName, key, sessionCookieMaxAge, "/", "", false, true)
		}
		c.Set(sessionContextKey, key)
		c.Next()
	}
}

// SessionKey returns the token ParticipantSession stored on the context.
func SessionKey(c *gin.Context) string {
	return c.GetString(sessionContextKey)
}

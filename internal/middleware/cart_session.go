package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	// SessionHeader carries the cart session for API clients.
	SessionHeader = "X-Cart-Session"
	// SessionCookie carries the cart session for browsers.
	SessionCookie = "cart_session"

	sessionLocalsKey = "cart_session"
	sessionCookieAge = 30 * 24 * time.Hour
)

// CartSession resolves the shopping session of the request. An existing id is
// taken from the X-Cart-Session header, then from the cart_session cookie; a
// new one is issued otherwise. The id is echoed back in both places.
func CartSession() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := strings.TrimSpace(c.Get(SessionHeader))
		if !validSessionID(sessionID) {
			sessionID = strings.TrimSpace(c.Cookies(SessionCookie))
		}
		if !validSessionID(sessionID) {
			sessionID = uuid.NewString()
		}

		c.Locals(sessionLocalsKey, sessionID)
		c.Set(SessionHeader, sessionID)
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sessionID,
			Path:     "/",
			MaxAge:   int(sessionCookieAge.Seconds()),
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
		return c.Next()
	}
}

// SessionID returns the session stored by CartSession, or "" outside it.
func SessionID(c *fiber.Ctx) string {
	id, _ := c.Locals(sessionLocalsKey).(string)
	return id
}

func validSessionID(v string) bool {
	if v == "" {
		return false
	}
	_, err := uuid.Parse(v)
	return err == nil
}

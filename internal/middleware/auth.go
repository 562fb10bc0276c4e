package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/security"
)

// CookieName is the browser cookie carrying the encrypted identity.
const CookieName = "user"

// CookieMaxAge — 3 days, matching the login flow.
const CookieMaxAge = 3 * 24 * 60 * 60

const identityKey = "identity"

// Identity resolves the current identity once per request from the
// "user" cookie and stores it in the request context. An absent or
// undecodable cookie simply stores nothing, so a stale login can never
// leak into a request that lacks a valid cookie. Handlers read the
// result via CurrentIdentity; there is no ambient session state.
func Identity(key []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.Cookie(CookieName)
		if err == nil && raw != "" {
			if id := security.Decode(raw, key); id != nil {
				c.Set(identityKey, id)
			}
		}
		c.Next()
	}
}

// CurrentIdentity returns the resolved identity for this request, or
// nil for an anonymous visitor.
func CurrentIdentity(c *gin.Context) *models.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, ok := v.(*models.Identity)
	if !ok {
		return nil
	}
	return id
}

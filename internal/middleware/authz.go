package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/authz"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

// RequireAuth halts the request with a redirect to the login page when
// no identity was resolved. Terminal: nothing past it runs on failure.
func RequireAuth() gin.HandlerFunc {
	return requireDecision()
}

// RequireRoles applies RequireAuth semantics, then exact role
// membership. "admin or doctor" routes list both roles explicitly;
// there is no role hierarchy.
func RequireRoles(allowed ...authz.Role) gin.HandlerFunc {
	return requireDecision(allowed...)
}

func requireDecision(allowed ...authz.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var role authz.Role
		if id := CurrentIdentity(c); id != nil {
			role = id.Role
		}
		switch authz.Check(role, allowed...) {
		case authz.DecisionAllow:
			c.Next()
		case authz.DecisionNeedLogin:
			c.Redirect(http.StatusFound, LoginPath)
			c.Abort()
		default:
			c.Redirect(http.StatusFound, UnauthorizedPath)
			c.Abort()
		}
	}
}

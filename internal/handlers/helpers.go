package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/middleware"
	"github.com/ramyslait/Medical-Q-A-MIU-sub000/internal/models"
)

const (
	flashCookie = "flash"
	formCookie  = "ask_form"
)

func currentIdentity(c *gin.Context) *models.Identity {
	return middleware.CurrentIdentity(c)
}

// setFlash stores a one-shot status message; the next page load pops
// it. 60s is plenty for a redirect round-trip.
func setFlash(c *gin.Context, msg string) {
	c.SetCookie(flashCookie, url.QueryEscape(msg), 60, "/", "", false, false)
}

// popFlash reads and clears the pending flash message, if any.
func popFlash(c *gin.Context) string {
	raw, err := c.Cookie(flashCookie)
	if err != nil || raw == "" {
		return ""
	}
	c.SetCookie(flashCookie, "", -1, "/", "", false, false)
	msg, err := url.QueryUnescape(raw)
	if err != nil {
		return ""
	}
	return msg
}

// redirectWithFlash is the page-flow failure/success contract: status
// message via flash cookie, then a see-other redirect.
func redirectWithFlash(c *gin.Context, location, msg string) {
	setFlash(c, msg)
	c.Redirect(http.StatusSeeOther, location)
}

// preserveForm keeps the submitted values across a validation-failure
// redirect so the form can be re-rendered without data loss.
func preserveForm(c *gin.Context, values any) {
	b, err := json.Marshal(values)
	if err != nil {
		return
	}
	c.SetCookie(formCookie, base64.StdEncoding.EncodeToString(b), 120, "/", "", false, false)
}

// popForm returns the preserved form values (and clears them).
func popForm(c *gin.Context, into any) bool {
	raw, err := c.Cookie(formCookie)
	if err != nil || raw == "" {
		return false
	}
	c.SetCookie(formCookie, "", -1, "/", "", false, false)
	b, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return false
	}
	return json.Unmarshal(b, into) == nil
}

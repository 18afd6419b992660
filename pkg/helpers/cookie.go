package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const TokenCookieName = "token"

// Manager writes the session cookie. Secure is only set in production-like
// configuration; SameSite=None allows the cross-site frontend to send it.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetToken(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(TokenCookieName, token, maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteNoneMode)
	c.SetCookie(TokenCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Round(time.Second).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}

package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Cookie is a Store bound to one HTTP exchange: Get reads the request cookie,
// Set writes the response cookie.
type Cookie struct {
	ctx    *gin.Context
	maxAge int
	secure bool
}

func NewCookie(c *gin.Context, maxAge int, secure bool) *Cookie {
	return &Cookie{ctx: c, maxAge: maxAge, secure: secure}
}

func (c *Cookie) Get() (string, bool) {
	v, err := c.ctx.Cookie(CookieName)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (c *Cookie) Set(id string) error {
	c.ctx.SetSameSite(http.SameSiteLaxMode)
	c.ctx.SetCookie(CookieName, id, c.maxAge, "/", "", c.secure, true)
	return nil
}

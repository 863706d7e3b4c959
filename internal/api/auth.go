package api

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado/internal/models"
)

const (
	sessionName = "mp_session"
	writerKey   = "writer"
)

// Authorizer enforces the write policy. When required is false every write
// is allowed; otherwise the request needs the bearer token or a session
// opened with it.
type Authorizer struct {
	required  bool
	tokenHash string
}

// NewAuthorizer takes the bcrypt hash of the write token.
func NewAuthorizer(required bool, tokenHash string) *Authorizer {
	return &Authorizer{required: required, tokenHash: tokenHash}
}

// Required reports whether writes need credentials.
func (a *Authorizer) Required() bool {
	return a.required
}

// Valid reports whether token is the write token.
func (a *Authorizer) Valid(token string) bool {
	return models.CheckToken(a.tokenHash, token)
}

// mustWriter rejects writes without valid credentials.
func (a *Authorizer) mustWriter() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.required || isWriterSession(c) {
			c.Next()
			return
		}
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok || !a.Valid(token) {
			abortWithError(c, ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func isWriterSession(c *gin.Context) bool {
	v, _ := sessions.Default(c).Get(writerKey).(bool)
	return v
}

type sessionRequest struct {
	Token string `json:"token"`
}

// openSession implements POST /api/session: a valid token marks the cookie
// session as allowed to write, so the sell page does not keep the token.
func (a *Authorizer) openSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, ErrMalformedBody)
		return
	}
	if !a.Valid(req.Token) {
		abortWithError(c, ErrUnauthorized)
		return
	}
	sess := sessions.Default(c)
	sess.Set(writerKey, true)
	if err := sess.Save(); err != nil {
		abortWithError(c, err)
		return
	}
	zap.L().Info("writer session opened", zap.String("request_id", requestID(c)))
	c.Status(http.StatusNoContent)
}

// closeSession implements DELETE /api/session.
func (a *Authorizer) closeSession(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Clear()
	sess.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := sess.Save(); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Package api serves the marketplace JSON API and the static frontend.
package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mercado/internal/models"
	"mercado/internal/store"
	"mercado/internal/validate"
)

const (
	createdMessage = "Producto agregado"
	maxBodyBytes   = 1 << 20
)

// Options configures the router.
type Options struct {
	Store         store.Store
	Auth          *Authorizer
	StaticDir     string
	SessionSecret string
	WriteRate     float64
	WriteBurst    int
	// TrustedProxies may set X-Forwarded-For. Empty means the client IP is
	// always the connection's remote address.
	TrustedProxies []string
}

// Handler exposes the product and repair endpoints.
type Handler struct {
	store store.Store
	auth  *Authorizer
}

// NewRouter wires middleware, API routes and static pages onto a gin engine.
func NewRouter(opts Options) *gin.Engine {
	h := &Handler{store: opts.Store, auth: opts.Auth}
	if h.auth == nil {
		h.auth = NewAuthorizer(false, "")
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		zap.L().Warn("ignoring trusted proxies", zap.Error(err))
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery(), withRequestID(), accessLog(), cors())

	cookies := cookie.NewStore([]byte(opts.SessionSecret))
	cookies.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((12 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, cookies))

	writes := limitWrites(opts.WriteRate, opts.WriteBurst)

	r.GET("/health", h.health)

	api := r.Group("/api")
	api.GET("/products", h.listProducts)
	api.POST("/products", writes, h.auth.mustWriter(), h.createProduct)
	api.GET("/repairs", h.listRepairs)
	api.POST("/session", writes, h.auth.openSession)
	api.DELETE("/session", h.auth.closeSession)

	registerStatic(r, opts.StaticDir)
	return r
}

func (h *Handler) health(c *gin.Context) {
	if p, ok := h.store.(store.Pinger); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// listProducts implements GET /api/products.
func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.store.Load(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

// createProduct implements POST /api/products.
func (h *Handler) createProduct(c *gin.Context) {
	raw, err := decodeObject(c.Request)
	if err != nil {
		abortWithError(c, err)
		return
	}
	p, err := validate.Product(raw)
	if err != nil {
		abortWithError(c, err)
		return
	}
	p, err = h.store.Create(c.Request.Context(), p)
	if err != nil {
		abortWithError(c, err)
		return
	}

	zap.L().Info("product created",
		zap.String("request_id", requestID(c)),
		zap.Int("id", p.ID),
		zap.String("category", p.Category))
	c.JSON(http.StatusCreated, gin.H{"message": createdMessage, "product": p})
}

// listRepairs implements GET /api/repairs.
func (h *Handler) listRepairs(c *gin.Context) {
	c.JSON(http.StatusOK, models.Repairs())
}

// decodeObject reads a single JSON object from the body. Numbers are kept
// as json.Number so price parsing sees the literal text.
func decodeObject(r *http.Request) (map[string]any, error) {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil || raw == nil {
		return nil, ErrMalformedBody
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, ErrMalformedBody
	}
	return raw, nil
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/server/handlers"
	"github.com/mamadbah2/telelbirds/internal/server/middleware"
)

const (
	requestIDHeader = "X-Request-ID"

	// DefaultRateLimit applies per client IP to login and mailing list signup.
	DefaultRateLimit  = 10
	DefaultRateWindow = time.Minute
)

// Handlers groups everything mounted on the engine.
type Handlers struct {
	Core      *handlers.CoreHandler
	Blog      *handlers.BlogHandler
	Accounts  *handlers.AccountHandler
	Reports   *handlers.ReportHandler
	Resources []handlers.Routes
}

// Deps are the cross-cutting collaborators of the middleware chain. A nil
// Limiter falls back to an in-process one. Forwarded client addresses are
// only read from TrustedProxies; with none the peer address is the client.
type Deps struct {
	Tokens         middleware.TokenParser
	Limiter        middleware.Limiter
	TrustedProxies []string
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if deps.Limiter == nil {
		deps.Limiter = middleware.NewMemoryLimiter(DefaultRateLimit, DefaultRateWindow)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		if logger != nil {
			logger.Error("invalid trusted proxies, trusting none", zap.Error(err))
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(middleware.Authenticate(deps.Tokens))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/api/site", h.Core.Site)
	r.GET("/sitemap.xml", h.Core.Sitemap)

	help := r.Group("/help", middleware.RequireUser())
	help.GET("/", h.Core.HelpForm)
	help.POST("/", h.Core.SendHelp)

	r.POST("/mailing-list-signup-ajax-view/", middleware.RateLimit(deps.Limiter, "mailing-list", logger), h.Core.MailingListSignup)

	// feed/ and tag/ win over :slug as static segments.
	b := r.Group("/blog")
	b.GET("/", h.Blog.List)
	b.GET("/feed/", h.Blog.Feed)
	b.GET("/tag/:tag/", h.Blog.ListByTag)
	b.GET("/:slug/", h.Blog.Detail)

	r.POST("/api/auth/login", middleware.RateLimit(deps.Limiter, "login", logger), h.Accounts.Login)

	me := r.Group("/api/accounts", middleware.RequireUser())
	me.GET("/me", h.Accounts.Me)
	me.PUT("/me", h.Accounts.UpdateSettings)

	admin := r.Group("/api/admin", middleware.RequireStaff())
	admin.POST("/users", middleware.RequireSuperuser(), h.Accounts.CreateUser)
	h.Blog.Register(admin)
	h.Reports.Register(admin)
	for _, res := range h.Resources {
		res.Register(admin)
	}

	if logger != nil {
		logger.Info("router initialized", zap.Int("admin_resources", len(h.Resources)))
	}

	return r
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", c.GetString("request_id")))
	}
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
	"github.com/mamadbah2/telelbirds/internal/server/middleware"
	"github.com/mamadbah2/telelbirds/internal/service/blog"
	"github.com/mamadbah2/telelbirds/internal/service/core"
)

// BlogHandler serves the public blog pages, the feed and post administration.
type BlogHandler struct {
	svc     *blog.Service
	site    *core.Service
	baseURL string
	logger  *zap.Logger
}

func NewBlogHandler(svc *blog.Service, site *core.Service, baseURL string, logger *zap.Logger) *BlogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlogHandler{svc: svc, site: site, baseURL: baseURL, logger: logger}
}

type listPage struct {
	Site core.SiteContext `json:"site"`
	*blog.ListPage
}

type detailPage struct {
	Site core.SiteContext `json:"site"`
	*blog.DetailPage
}

func pageNumber(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("page"))
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// List handles GET /blog/.
func (h *BlogHandler) List(c *gin.Context) {
	page, err := h.svc.List(c.Request.Context(), pageNumber(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listPage{Site: h.site.SiteContext(), ListPage: page})
}

// ListByTag handles GET /blog/tag/:tag/.
func (h *BlogHandler) ListByTag(c *gin.Context) {
	page, err := h.svc.ListByTag(c.Request.Context(), c.Param("tag"), pageNumber(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listPage{Site: h.site.SiteContext(), ListPage: page})
}

// Detail handles GET /blog/:slug/.
func (h *BlogHandler) Detail(c *gin.Context) {
	var viewer blog.Viewer
	if claims := middleware.GetClaims(c); claims != nil {
		viewer = blog.Viewer{UserID: middleware.UserID(c), Superuser: claims.Superuser}
	}

	page, err := h.svc.Detail(c.Request.Context(), c.Param("slug"), viewer)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detailPage{Site: h.site.SiteContext(), DetailPage: page})
}

// Feed handles GET /blog/feed/.
func (h *BlogHandler) Feed(c *gin.Context) {
	body, err := h.svc.Feed(c.Request.Context(), h.site.SiteContext().SiteName, h.baseURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", body)
}

// Register mounts the post administration under /blogs.
func (h *BlogHandler) Register(g *gin.RouterGroup) {
	r := g.Group("/blogs")
	r.GET("", h.AdminList)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
}

func (h *BlogHandler) AdminList(c *gin.Context) {
	f := postgres.BlogFilter{
		Status: models.BlogStatus(c.Query("status")),
		Tag:    c.Query("tag"),
		Search: c.Query("q"),
	}
	if author, err := strconv.ParseUint(c.Query("author"), 10, 64); err == nil {
		f.AuthorID = uint(author)
	}

	p := paginate(c)
	posts, total, err := h.svc.AdminList(c.Request.Context(), f, p.window())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[blog.AdminPost]{Results: posts, Count: total, pagination: p})
}

func (h *BlogHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	post, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) Create(c *gin.Context) {
	var in blog.PostInput
	if !bindAndValidate(c, &in) {
		return
	}

	post, err := h.svc.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

func (h *BlogHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var in blog.PostInput
	if !bindAndValidate(c, &in) {
		return
	}

	post, err := h.svc.Update(c.Request.Context(), id, in)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, post)
}

func (h *BlogHandler) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

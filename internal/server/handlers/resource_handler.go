package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/service/farm"
	"github.com/mamadbah2/telelbirds/internal/service/media"
)

// PhotoUploader stores an uploaded image and returns its public URL.
type PhotoUploader interface {
	UploadPhoto(ctx context.Context, dir string, r io.Reader) (string, error)
}

// Routes is implemented by handlers mounted under the admin group.
type Routes interface {
	Register(g *gin.RouterGroup)
}

// ResourceHandler exposes CRUD and photo uploads for one farm table.
type ResourceHandler[T any, PT farm.Entity[T]] struct {
	name   string
	svc    *farm.Service[T, PT]
	photos PhotoUploader
	logger *zap.Logger
}

// NewResourceHandler mounts svc under /<name>. photos may be nil when no
// bucket is configured; uploads then answer 503.
func NewResourceHandler[T any, PT farm.Entity[T]](name string, svc *farm.Service[T, PT], photos PhotoUploader, logger *zap.Logger) *ResourceHandler[T, PT] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler[T, PT]{name: name, svc: svc, photos: photos, logger: logger}
}

func (h *ResourceHandler[T, PT]) Register(g *gin.RouterGroup) {
	r := g.Group("/" + h.name)
	r.GET("", h.List)
	r.POST("", h.Create)
	r.GET("/:id", h.Get)
	r.PUT("/:id", h.Update)
	r.DELETE("/:id", h.Delete)
	r.POST("/:id/photos/:field", h.UploadPhoto)
}

func (h *ResourceHandler[T, PT]) List(c *gin.Context) {
	p := paginate(c)
	recs, total, err := h.svc.List(c.Request.Context(), p.window())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[T]{Results: recs, Count: total, pagination: p})
}

func (h *ResourceHandler[T, PT]) Create(c *gin.Context) {
	rec := new(T)
	if !bindAndValidate(c, rec) {
		return
	}

	stored, err := h.svc.Create(c.Request.Context(), rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("record created", zap.String("resource", h.name), zap.Uint("id", PT(stored).GetID()))
	c.JSON(http.StatusCreated, stored)
}

func (h *ResourceHandler[T, PT]) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	rec, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// Update is a full save: omitted fields are reset to their zero value.
func (h *ResourceHandler[T, PT]) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	rec := new(T)
	if !bindAndValidate(c, rec) {
		return
	}

	stored, err := h.svc.Update(c.Request.Context(), id, rec)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, stored)
}

func (h *ResourceHandler[T, PT]) Delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	h.logger.Info("record deleted", zap.String("resource", h.name), zap.Uint("id", id))
	c.Status(http.StatusNoContent)
}

// UploadPhoto stores the multipart "file" into the :field photo column.
func (h *ResourceHandler[T, PT]) UploadPhoto(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if h.photos == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "photo storage is not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, media.MaxUploadBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field \"file\" is required"})
		return
	}
	file, err := fh.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer file.Close()

	ctx := c.Request.Context()
	rec, err := h.svc.AttachPhoto(ctx, id, c.Param("field"), func(dir string) (string, error) {
		return h.photos.UploadPhoto(ctx, dir, file)
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/service/reporting"
)

// ReportHandler exposes the farm snapshots.
type ReportHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

func NewReportHandler(svc *reporting.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

func (h *ReportHandler) Register(g *gin.RouterGroup) {
	r := g.Group("/reports")
	r.GET("/snapshot", h.Snapshot)
	r.GET("/snapshots", h.Snapshots)
}

// Snapshot computes the live snapshot without archiving it.
func (h *ReportHandler) Snapshot(c *gin.Context) {
	snap, err := h.svc.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Snapshots lists archived snapshots, newest first.
func (h *ReportHandler) Snapshots(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)

	snaps, err := h.svc.Snapshots(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": snaps, "count": len(snaps)})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/server/middleware"
	"github.com/mamadbah2/telelbirds/internal/service/accounts"
)

// AccountHandler handles sign in, the current user and user administration.
type AccountHandler struct {
	svc    *accounts.Service
	logger *zap.Logger
}

func NewAccountHandler(svc *accounts.Service, logger *zap.Logger) *AccountHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Login handles POST /api/auth/login.
func (h *AccountHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.logger.Info("login rejected", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, token)
}

// Me handles GET /api/accounts/me.
func (h *AccountHandler) Me(c *gin.Context) {
	user, err := h.svc.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateSettings handles PUT /api/accounts/me.
func (h *AccountHandler) UpdateSettings(c *gin.Context) {
	var req accounts.SettingsUpdate
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.UpdateSettings(c.Request.Context(), middleware.UserID(c), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// CreateUser handles POST /api/admin/users.
func (h *AccountHandler) CreateUser(c *gin.Context) {
	var req accounts.NewUser
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.svc.CreateUser(c.Request.Context(), req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

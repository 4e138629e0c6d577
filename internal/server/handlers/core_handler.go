package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/server/middleware"
	"github.com/mamadbah2/telelbirds/internal/service/core"
)

// UserLookup loads the signed-in user.
type UserLookup interface {
	Me(ctx context.Context, id uint) (*models.User, error)
}

// CoreHandler serves the site-wide pages: site context, sitemap, help form and
// mailing list signup.
type CoreHandler struct {
	svc     *core.Service
	users   UserLookup
	baseURL string
	logger  *zap.Logger
}

func NewCoreHandler(svc *core.Service, users UserLookup, baseURL string, logger *zap.Logger) *CoreHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CoreHandler{svc: svc, users: users, baseURL: baseURL, logger: logger}
}

// Site handles GET /api/site.
func (h *CoreHandler) Site(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.SiteContext())
}

// Sitemap handles GET /sitemap.xml.
func (h *CoreHandler) Sitemap(c *gin.Context) {
	body, err := h.svc.Sitemap(c.Request.Context(), h.baseURL)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", body)
}

// HelpForm handles GET /help/ with the form prefilled with the user's address.
func (h *CoreHandler) HelpForm(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"site": h.svc.SiteContext(),
		"form": core.HelpRequest{Email: user.Email},
	})
}

// SendHelp handles POST /help/. The form is accepted url-encoded or as JSON.
func (h *CoreHandler) SendHelp(c *gin.Context) {
	var req core.HelpRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"level": "warning", "message": core.HelpFailedMessage, "error": err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		body := gin.H{"level": "warning", "message": core.HelpFailedMessage}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			body["fields"] = fieldErrors(verrs)
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	username := ""
	if claims := middleware.GetClaims(c); claims != nil {
		username = claims.Username
	}
	if err := h.svc.SendHelp(username, req); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"level": "warning", "message": core.HelpFailedMessage})
		return
	}
	c.JSON(http.StatusOK, gin.H{"level": "success", "message": core.HelpSentMessage})
}

type subscribeRequest struct {
	Email string `json:"email" form:"email"`
}

// MailingListSignup handles POST /mailing-list-signup-ajax-view/. Only AJAX
// requests are served.
func (h *CoreHandler) MailingListSignup(c *gin.Context) {
	if c.GetHeader("X-Requested-With") != "XMLHttpRequest" {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "ajax requests only"})
		return
	}

	var req subscribeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
		return
	}

	msg, err := h.svc.Subscribe(c.Request.Context(), req.Email)
	switch {
	case errors.Is(err, core.ErrEmptyEmail):
		c.JSON(http.StatusBadRequest, gin.H{"message": "email is required"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"message": core.SubscribeFailed})
	default:
		c.JSON(http.StatusOK, gin.H{"message": msg})
	}
}

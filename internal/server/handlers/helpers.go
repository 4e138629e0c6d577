package handlers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/telelbirds/internal/domain/models"
	"github.com/mamadbah2/telelbirds/internal/repository/postgres"
	"github.com/mamadbah2/telelbirds/internal/service/accounts"
	"github.com/mamadbah2/telelbirds/internal/service/farm"
	"github.com/mamadbah2/telelbirds/internal/service/media"
	"github.com/mamadbah2/telelbirds/internal/service/reporting"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var validate = validator.New()

func init() {
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs the validator tags. It writes
// the error response itself; callers return when it reports false.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON: " + err.Error()})
		return false
	}
	return validateStruct(c, req)
}

func validateStruct(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "validation failed", "fields": fieldErrors(verrs)})
	return false
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	return fields
}

// respondError maps service errors to status codes. Unknown errors are
// logged and hidden behind a generic message.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var fieldErr *models.FieldError
	switch {
	case errors.As(err, &fieldErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "validation failed",
			"fields": map[string]string{fieldErr.Field: fieldErr.Message},
		})
	case errors.Is(err, postgres.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, postgres.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": "record already exists"})
	case errors.Is(err, postgres.ErrForeignKey):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "referenced record does not exist"})
	case errors.Is(err, accounts.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
	case errors.Is(err, farm.ErrNoPhotos):
		c.JSON(http.StatusNotFound, gin.H{"error": "this record type has no photos"})
	case errors.Is(err, reporting.ErrArchiveDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "snapshot archive is not configured"})
	case errors.Is(err, media.ErrUnsupportedImage):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "file must be a JPEG, PNG or GIF image"})
	default:
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// parseID reads the :id path parameter, answering 400 when it is malformed.
func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

// pagination reads the page and page_size query parameters.
type pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func paginate(c *gin.Context) pagination {
	p := pagination{Page: 1, PageSize: defaultPageSize}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		p.Page = n
	}
	if n, err := strconv.Atoi(c.Query("page_size")); err == nil && n > 0 {
		p.PageSize = min(n, maxPageSize)
	}
	return p
}

func (p pagination) window() postgres.Page {
	return postgres.Page{Limit: p.PageSize, Offset: (p.Page - 1) * p.PageSize}
}

type listResponse[T any] struct {
	Results []T   `json:"results"`
	Count   int64 `json:"count"`
	pagination
}

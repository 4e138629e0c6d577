package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/telelbirds/internal/server/handlers"
	"github.com/mamadbah2/telelbirds/internal/server/middleware"
)

func newTestRouter(proxies []string) *gin.Engine {
	return New(Handlers{
		Core:     handlers.NewCoreHandler(nil, nil, "", nil),
		Blog:     handlers.NewBlogHandler(nil, nil, "", nil),
		Accounts: handlers.NewAccountHandler(nil, nil),
		Reports:  handlers.NewReportHandler(nil, nil),
	}, Deps{
		Limiter:        middleware.NewMemoryLimiter(1, time.Minute),
		TrustedProxies: proxies,
	}, nil)
}

func signup(r *gin.Engine, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodPost, "/mailing-list-signup-ajax-view/", nil)
	req.Header.Set("X-Forwarded-For", forwardedFor)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitIgnoresForwardedForFromUntrustedPeer(t *testing.T) {
	r := newTestRouter(nil)

	assert.Equal(t, http.StatusMethodNotAllowed, signup(r, "198.51.100.1"))
	assert.Equal(t, http.StatusTooManyRequests, signup(r, "198.51.100.2"))
}

func TestRateLimitUsesForwardedForFromTrustedProxy(t *testing.T) {
	// httptest requests come from 192.0.2.1.
	r := newTestRouter([]string{"192.0.2.0/24"})

	assert.Equal(t, http.StatusMethodNotAllowed, signup(r, "198.51.100.1"))
	assert.Equal(t, http.StatusMethodNotAllowed, signup(r, "198.51.100.2"))
	assert.Equal(t, http.StatusTooManyRequests, signup(r, "198.51.100.1"))
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

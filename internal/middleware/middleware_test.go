// internal/middleware/middleware_test.go
package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/larderline/larder-backend/internal/i18n"
	"github.com/larderline/larder-backend/internal/metrics"
	"github.com/larderline/larder-backend/internal/models"
	"github.com/larderline/larder-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := i18n.Initialize("en"); err != nil {
		panic(err)
	}
}

func perform(r http.Handler, method, path string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	utils.SetJWTIssuer("larder-test")

	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/private", AuthRequired(), func(c *gin.Context) {
		actor, _ := utils.GetActorFromContext(c)
		c.String(http.StatusOK, actor)
	})

	w := perform(r, http.MethodGet, "/private", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Authentication required")

	w = perform(r, http.MethodGet, "/private", nil, map[string]string{"Authorization": "Bearer junk", "Accept-Language": "es"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token inválido")

	expired, err := utils.GenerateJWT("staff-1", "", "Chef Ana", -time.Minute)
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/private", nil, map[string]string{"Authorization": "Bearer " + expired})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token has expired")

	token, err := utils.GenerateJWT("staff-1", "ana@example.com", "Chef Ana", time.Minute)
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/private", nil, map[string]string{"Authorization": "bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Chef Ana", w.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	utils.SetJWTIssuer("larder-test")

	r := gin.New()
	r.GET("/open", OptionalAuth(), func(c *gin.Context) {
		id, ok := utils.GetUserIDFromContext(c)
		if !ok {
			id = "anonymous"
		}
		c.String(http.StatusOK, id)
	})

	w := perform(r, http.MethodGet, "/open", nil, map[string]string{"Authorization": "Bearer junk"})
	assert.Equal(t, "anonymous", w.Body.String())

	token, err := utils.GenerateJWT("staff-2", "", "", time.Minute)
	require.NoError(t, err)
	w = perform(r, http.MethodGet, "/open", nil, map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, "staff-2", w.Body.String())
}

func TestNegotiateLanguage(t *testing.T) {
	assert.Equal(t, "es", negotiateLanguage("es-MX,es;q=0.9,en;q=0.8", "en"))
	assert.Equal(t, "en", negotiateLanguage("fr-FR, en-GB;q=0.5", "en"))
	assert.Equal(t, "en", negotiateLanguage("zh-TW", "en"))
	assert.Equal(t, "es", negotiateLanguage("", "es"))
	assert.Equal(t, "en", negotiateLanguage("-,;", "en"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(rate.Every(time.Hour), 2)

	r := gin.New()
	r.Use(limiter.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil, nil).Code)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil, nil).Code)
	w := perform(r, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "RATE_LIMITED")

	limiter.cleanupVisitors(time.Now().Add(visitorTTL + time.Second))
	assert.Empty(t, limiter.visitors)
	assert.Equal(t, http.StatusNoContent, perform(r, http.MethodGet, "/", nil, nil).Code)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		limiter.Run(ctx)
		close(done)
	}()
	cancel()
	<-done
}

type captureRecorder struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	signal  chan struct{}
}

func (r *captureRecorder) Record(_ context.Context, entry *models.AuditLog) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	r.signal <- struct{}{}
	return nil
}

func TestAuditLogMiddleware(t *testing.T) {
	recorder := &captureRecorder{signal: make(chan struct{}, 4)}

	r := gin.New()
	r.Use(RequestID(), AuditLogMiddleware(recorder))
	r.POST("/v1/house-items/:id/adjust-stock", func(c *gin.Context) {
		c.Set("user_id", "staff-9")
		c.Status(http.StatusOK)
	})
	r.GET("/v1/house-items", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := perform(r, http.MethodPost, "/v1/house-items/42/adjust-stock", []byte(`{"adjustment":2}`), map[string]string{RequestIDHeader: "req-abc"})
	assert.Equal(t, "req-abc", w.Header().Get(RequestIDHeader))

	select {
	case <-recorder.signal:
	case <-time.After(2 * time.Second):
		t.Fatal("audit entry was not recorded")
	}

	perform(r, http.MethodGet, "/v1/house-items", nil, nil)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	require.Len(t, recorder.entries, 1)
	entry := recorder.entries[0]
	assert.Equal(t, "req-abc", entry.RequestID)
	assert.Equal(t, "staff-9", entry.UserID)
	assert.Equal(t, "house-items", entry.ResourceType)
	require.NotNil(t, entry.ResourceID)
	assert.Equal(t, int64(42), *entry.ResourceID)
	assert.Equal(t, 2.0, entry.NewValues["adjustment"])
	assert.Equal(t, http.StatusOK, entry.StatusCode)
}

func TestRequestLoggerFeedsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := gin.New()
	r.Use(RequestID(), RequestLogger(metrics.New(reg)))
	r.GET("/v1/house-items/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := perform(r, http.MethodGet, "/v1/house-items/7", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	mfs, err := reg.Gather()
	require.NoError(t, err)
	found := false
	for _, mf := range mfs {
		if mf.GetName() != "larder_http_requests_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "route" && label.GetValue() == "/v1/house-items/:id" {
					found = true
				}
			}
		}
	}
	assert.True(t, found)
}

func TestExtractResource(t *testing.T) {
	assert.Equal(t, "vendor-selections", extractResourceType("/v1/vendor-selections/validate"))
	assert.Equal(t, "health", extractResourceType("/health"))
	assert.Equal(t, "unknown", extractResourceType("/"))
	assert.Nil(t, extractResourceID("/v1/vendor-selections/validate"))
	id := extractResourceID("/v1/house-orders/items/17/override-vendor-selection")
	require.NotNil(t, id)
	assert.Equal(t, int64(17), *id)
}

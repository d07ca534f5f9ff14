// internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/config"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLanguage(t *testing.T) {
	assert.Equal(t, "en", parseLanguage(""))
	assert.Equal(t, "zh_TW", parseLanguage("zh-TW,zh;q=0.9,en;q=0.8"))
	assert.Equal(t, "zh_TW", parseLanguage("zh-Hant"))
	assert.Equal(t, "en", parseLanguage("fr-FR"))
}

func TestExtractResource(t *testing.T) {
	path := "/v1/scholarships/0x00000000000000000000000000000000000000c3/apply"
	assert.Equal(t, "scholarships", extractResourceType(path))
	assert.Equal(t, "0x00000000000000000000000000000000000000c3", extractResourceID(path))
	assert.Equal(t, "", extractResourceID("/v1/upkeep/perform"))
}

func TestAuthRequired(t *testing.T) {
	utils.SetJWTSecret("middleware-secret")
	addr := models.NamedAddress("company")

	r := gin.New()
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		caller, _ := utils.GetCallerFromContext(c)
		c.String(http.StatusOK, caller.Hex())
	})

	token, err := utils.GenerateJWT(addr, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, _ := http.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.want, w.Code)
			if tt.want == http.StatusOK {
				assert.Equal(t, addr.Hex(), w.Body.String())
			}
		})
	}
}

func TestOperatorRequired(t *testing.T) {
	operator := models.NamedAddress("operator")

	r := gin.New()
	r.Use(func(c *gin.Context) {
		if h := c.GetHeader("X-Caller"); h != "" {
			c.Set(utils.ContextCaller, models.MustHexToAddress(h))
		}
		c.Next()
	})
	r.GET("/admin", OperatorRequired(operator), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req, _ := http.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Caller", operator.Hex())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)

	req, _ = http.NewRequest("GET", "/admin", nil)
	req.Header.Set("X-Caller", models.NamedAddress("someone").Hex())
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGeneralRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(GeneralRateLimit(config.RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 3)
	for i := range codes {
		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes[i] = w.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type recorder struct {
	mu      sync.Mutex
	entries []*models.AuditLog
	done    chan struct{}
}

func (r *recorder) Enabled() bool { return true }

func (r *recorder) RecordAudit(entry *models.AuditLog) error {
	r.mu.Lock()
	r.entries = append(r.entries, entry)
	r.mu.Unlock()
	close(r.done)
	return nil
}

func TestAuditLogMiddleware(t *testing.T) {
	rec := &recorder{done: make(chan struct{})}
	caller := models.NamedAddress("company")

	r := gin.New()
	r.Use(RequestID(), AuditLogMiddleware(rec))
	r.POST("/v1/scholarships/:address/apply", func(c *gin.Context) {
		c.Set(utils.ContextCaller, caller)
		c.Status(http.StatusCreated)
	})
	r.GET("/v1/scholarships", func(c *gin.Context) { c.Status(http.StatusOK) })

	req, _ := http.NewRequest("GET", "/v1/scholarships", nil)
	r.ServeHTTP(httptest.NewRecorder(), req)

	target := "0x00000000000000000000000000000000000000c3"
	req, _ = http.NewRequest("POST", "/v1/scholarships/"+target+"/apply", strings.NewReader(`{"impact_score":5}`))
	r.ServeHTTP(httptest.NewRecorder(), req)

	select {
	case <-rec.done:
	case <-time.After(time.Second):
		t.Fatal("audit entry was not recorded")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "POST /v1/scholarships/:address/apply", entry.Action)
	assert.Equal(t, "scholarships", entry.ResourceType)
	assert.Equal(t, target, entry.ResourceID)
	assert.Equal(t, caller.Hex(), entry.Caller)
	assert.Equal(t, http.StatusCreated, entry.Status)
	assert.NotEmpty(t, entry.RequestID)
	assert.Equal(t, float64(5), entry.NewValues["impact_score"])
}

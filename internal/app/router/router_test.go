package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acquisitions/internal/platform/http/handler"
	"acquisitions/internal/platform/http/middleware"
	"acquisitions/internal/platform/logger"
	"acquisitions/internal/shared/ratelimiter"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// stubMount records the routes a group registers and answers its own 404.
type stubMount struct {
	name string
}

func (s *stubMount) Register(rg *gin.RouterGroup) {
	rg.POST("/sign-in", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"group": s.name})
	})
	rg.GET("/:id", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"group": s.name, "id": c.Param("id")})
	})
}

func (s *stubMount) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": s.name + " route not found"})
}

type testEnv struct {
	r      *gin.Engine
	app    *bytes.Buffer
	access *bytes.Buffer
}

func newTestEnv() testEnv {
	app, access := &bytes.Buffer{}, &bytes.Buffer{}
	log := logger.New(app, "test")
	r := NewRouter(Deps{
		Logger:    log,
		AccessLog: access,
		System:    handler.NewSystemHandler(log, time.Now()),
		Auth:      &stubMount{name: "auth"},
		Users:     &stubMount{name: "users"},
	})
	return testEnv{r: r, app: app, access: access}
}

func (e testEnv) do(method, path string, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func TestRouter_Root(t *testing.T) {
	t.Parallel()

	env := newTestEnv()
	w := env.do(http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hello from acquisitions", w.Body.String())

	lines := strings.Split(strings.TrimSpace(env.app.String()), "\n")
	require.Len(t, lines, 1, "GET / should emit exactly one application log event")
	assert.Contains(t, lines[0], `"message":"hello from acquisition"`)
	assert.Contains(t, lines[0], `"level":"info"`)
}

func TestRouter_Health(t *testing.T) {
	t.Parallel()

	w := newTestEnv().do(http.MethodGet, "/health", "", nil)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	ts, ok := body["timestamp"].(string)
	require.True(t, ok)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
	uptime, ok := body["uptime"].(float64)
	require.True(t, ok)
	assert.GreaterOrEqual(t, uptime, 0.0)
}

func TestRouter_API(t *testing.T) {
	t.Parallel()

	w := newTestEnv().do(http.MethodGet, "/api", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Acquisitions API is running!"}`, w.Body.String())
}

func TestRouter_HeadAndTrailingSlash(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodHead, "/"},
		{http.MethodHead, "/health"},
		{http.MethodHead, "/api"},
		{http.MethodGet, "/health/"},
		{http.MethodGet, "/api/"},
		{http.MethodHead, "/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "", nil)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Empty(t, w.Header().Get("Location"), "must not redirect")
		})
	}
}

func TestRouter_FallbackNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/nope"},
		{http.MethodPost, "/"},
		{http.MethodDelete, "/health"},
		{http.MethodPut, "/api"},
		{http.MethodPatch, "/unknown/deeper/path"},
		{http.MethodGet, "/api/authx"},
		{http.MethodGet, "/api/usersettings"},
		{http.MethodGet, "/nope/"},
		{http.MethodHead, "/nope"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "", nil)

			assert.Equal(t, http.StatusNotFound, w.Code)
			assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
		})
	}
}

func TestRouter_MountedGroupsNeverHitGlobalNotFound(t *testing.T) {
	t.Parallel()

	env := newTestEnv()

	tests := []struct {
		method   string
		path     string
		wantCode int
		wantBody string
	}{
		{http.MethodPost, "/api/auth/sign-in", http.StatusOK, `{"group":"auth"}`},
		{http.MethodGet, "/api/users/42", http.StatusOK, `{"group":"users","id":"42"}`},
		{http.MethodGet, "/api/auth", http.StatusNotFound, `{"error":"auth route not found"}`},
		{http.MethodDelete, "/api/auth/sign-in", http.StatusNotFound, `{"error":"auth route not found"}`},
		{http.MethodGet, "/api/auth/a/b/c", http.StatusNotFound, `{"error":"auth route not found"}`},
		{http.MethodPatch, "/api/users/42", http.StatusNotFound, `{"error":"users route not found"}`},
		{http.MethodGet, "/api/users/1/2", http.StatusNotFound, `{"error":"users route not found"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := env.do(tt.method, tt.path, "", nil)

			assert.Equal(t, tt.wantCode, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestRouter_Pipeline(t *testing.T) {
	t.Parallel()

	t.Run("security headers on every response", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		for _, path := range []string{"/", "/api", "/missing"} {
			w := env.do(http.MethodGet, path, "", nil)
			assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"), path)
			assert.NotEmpty(t, w.Header().Get("Content-Security-Policy"), path)
			assert.Empty(t, w.Header().Get("X-Powered-By"), path)
		}
	})

	t.Run("cors allows any origin", func(t *testing.T) {
		t.Parallel()

		w := newTestEnv().do(http.MethodGet, "/api", "", map[string]string{"Origin": "https://elsewhere.example"})
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("malformed json is rejected", func(t *testing.T) {
		t.Parallel()

		w := newTestEnv().do(http.MethodPost, "/api/auth/sign-in", `{"email":`, map[string]string{"Content-Type": "application/json"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"invalid JSON body"}`, w.Body.String())
	})

	t.Run("access log goes to its own writer", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv()
		env.do(http.MethodGet, "/api", "", map[string]string{"User-Agent": "curl/8.5.0"})
		env.do(http.MethodGet, "/missing", "", nil)

		lines := strings.Split(strings.TrimSpace(env.access.String()), "\n")
		require.Len(t, lines, 2)
		assert.Contains(t, lines[0], `"GET /api HTTP/1.1" 200`)
		assert.Contains(t, lines[0], `"curl/8.5.0"`)
		assert.Contains(t, lines[1], `"GET /missing HTTP/1.1" 404`)
		assert.Empty(t, env.app.String(), "access lines must not reach the application log")
	})
}

func TestRouter_DefaultAccessLogUsesLogger(t *testing.T) {
	t.Parallel()

	var app bytes.Buffer
	log := logger.New(&app, "test")
	r := NewRouter(Deps{Logger: log, System: handler.NewSystemHandler(log, time.Now())})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, app.String(), `GET /api HTTP/1.1\" 200`)
}

func TestRouter_RecoversFromPanic(t *testing.T) {
	t.Parallel()

	r := NewRouter(Deps{Logger: logger.Nop(), AccessLog: &bytes.Buffer{}, System: handler.NewSystemHandler(nil, time.Now()), Auth: panicMount{}})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/auth/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// limitedMount applies the auth rate limit the way the auth routes do.
type limitedMount struct {
	limit *ratelimiter.RateLimiter
}

func (m limitedMount) Register(rg *gin.RouterGroup) {
	rg.Use(middleware.RateLimit(m.limit))
	rg.POST("/sign-in", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ip": c.ClientIP()})
	})
}

func (m limitedMount) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "auth route not found"})
}

func TestRouter_RateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	t.Parallel()

	signIn := func(r *gin.Engine, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/sign-in", nil)
		req.RemoteAddr = "10.0.0.1:54321"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	t.Run("untrusted peer shares one window", func(t *testing.T) {
		t.Parallel()

		r := NewRouter(Deps{
			AccessLog: &bytes.Buffer{},
			System:    handler.NewSystemHandler(nil, time.Now()),
			Auth:      limitedMount{limit: ratelimiter.NewRateLimiter(1, time.Minute)},
		})

		var codes []int
		for _, xff := range []string{"1.1.1.1", "2.2.2.2", "3.3.3.3"} {
			codes = append(codes, signIn(r, xff).Code)
		}

		assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests, http.StatusTooManyRequests}, codes)
	})

	t.Run("configured proxy forwards the client ip", func(t *testing.T) {
		t.Parallel()

		r := NewRouter(Deps{
			AccessLog:      &bytes.Buffer{},
			System:         handler.NewSystemHandler(nil, time.Now()),
			Auth:           limitedMount{limit: ratelimiter.NewRateLimiter(1, time.Minute)},
			TrustedProxies: []string{"10.0.0.0/8"},
		})

		for _, xff := range []string{"1.1.1.1", "2.2.2.2"} {
			w := signIn(r, xff)
			require.Equal(t, http.StatusOK, w.Code, xff)
			assert.JSONEq(t, `{"ip":"`+xff+`"}`, w.Body.String())
		}
		assert.Equal(t, http.StatusTooManyRequests, signIn(r, "1.1.1.1").Code)
	})

	t.Run("invalid proxy list trusts none", func(t *testing.T) {
		t.Parallel()

		var app bytes.Buffer
		r := NewRouter(Deps{
			Logger:         logger.New(&app, "test"),
			AccessLog:      &bytes.Buffer{},
			System:         handler.NewSystemHandler(nil, time.Now()),
			Auth:           limitedMount{limit: ratelimiter.NewRateLimiter(5, time.Minute)},
			TrustedProxies: []string{"not-an-ip"},
		})

		w := signIn(r, "1.1.1.1")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ip":"10.0.0.1"}`, w.Body.String())
		assert.Contains(t, app.String(), "invalid trusted proxies")
	})
}

type panicMount struct{}

func (panicMount) Register(rg *gin.RouterGroup) {
	rg.GET("/boom", func(*gin.Context) { panic("boom") })
}

func (panicMount) NotFound(c *gin.Context) { c.Status(http.StatusNotFound) }

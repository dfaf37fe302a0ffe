package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"tasklist/internal/config"
	"tasklist/internal/repo"
	"tasklist/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

type downRepo struct{ repo.TaskRepo }

func (downRepo) Ping(context.Context) error { return errors.New("no reachable servers") }

func testConfig() config.Config {
	cfg := config.Config{}
	cfg.App.Env = "test"
	cfg.App.Version = "1.2.3"
	cfg.Store.Driver = config.DriverMemory
	cfg.HTTP.AllowOrigins = []string{"*"}
	return cfg
}

func newTestRouter(t *testing.T, r repo.TaskRepo) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return newRouter(testConfig(), log.New(io.Discard), service.NewTaskService(r, nil))
}

func serve(r http.Handler, method, path string, body string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestInfoRoutes(t *testing.T) {
	r := newTestRouter(t, repo.NewMemoryTaskRepo())

	for _, path := range []string{"/", "/health", "/readyz", "/version", "/swagger-doc.json"} {
		w := serve(r, http.MethodGet, path, "")
		if w.Code != http.StatusOK {
			t.Fatalf("GET %s: status=%d body=%s", path, w.Code, w.Body.String())
		}
	}

	w := serve(r, http.MethodGet, "/version", "")
	var v map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v["version"] != "1.2.3" {
		t.Fatalf("version=%q", v["version"])
	}

	w = serve(r, http.MethodGet, "/swagger-doc.json", "")
	if !strings.Contains(w.Body.String(), `"/tasks/{id}"`) {
		t.Fatalf("swagger doc missing task routes: %s", w.Body.String())
	}
}

func TestReadyz_StoreDown(t *testing.T) {
	r := newTestRouter(t, downRepo{TaskRepo: repo.NewMemoryTaskRepo()})

	w := serve(r, http.MethodGet, "/readyz", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
}

func TestUI_Served(t *testing.T) {
	r := newTestRouter(t, repo.NewMemoryTaskRepo())

	w := serve(r, http.MethodGet, "/ui/", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/tasks") {
		t.Fatalf("expected the client page, got %s", w.Body.String())
	}
}

func TestTaskRoutes_RoundTrip(t *testing.T) {
	r := newTestRouter(t, repo.NewMemoryTaskRepo())

	w := serve(r, http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("X-Request-Id") == "" {
		t.Fatalf("expected request id header")
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}

	w = serve(r, http.MethodPut, "/api/tasks/"+created.ID, `{"completed":true}`)
	if w.Code != http.StatusOK {
		t.Fatalf("update status=%d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodDelete, "/api/tasks/"+created.ID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("delete status=%d body=%s", w.Code, w.Body.String())
	}

	w = serve(r, http.MethodGet, "/api/tasks", "")
	if strings.TrimSpace(w.Body.String()) != "[]" {
		t.Fatalf("expected empty list, got %s", w.Body.String())
	}
}

func TestCORS_Preflight(t *testing.T) {
	r := newTestRouter(t, repo.NewMemoryTaskRepo())

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow origin=%q", got)
	}
}

func TestNew_MemoryDriver(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a, err := New(testConfig(), log.New(io.Discard))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(context.Background())

	w := serve(a.Router(), http.MethodPost, "/api/tasks", `{"title":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var msg struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &msg)
	if msg.Message != "Title is required" {
		t.Fatalf("message=%q", msg.Message)
	}
}

func TestNew_WithRedisCachesList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()

	var logs strings.Builder
	a, err := New(cfg, log.New(&logs))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(context.Background())

	if w := serve(a.Router(), http.MethodPost, "/api/tasks", `{"title":"Buy milk"}`); w.Code != http.StatusCreated {
		t.Fatalf("create status=%d body=%s", w.Code, w.Body.String())
	}
	w := serve(a.Router(), http.MethodGet, "/api/tasks", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "Buy milk") {
		t.Fatalf("list status=%d body=%s", w.Code, w.Body.String())
	}
	if !mr.Exists("task:list") {
		t.Fatalf("expected list to be cached in redis")
	}
	if !strings.Contains(logs.String(), "task list cache enabled") {
		t.Fatalf("missing cache log line: %s", logs.String())
	}
}

func TestNew_UnreachableRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis.Addr = mr.Addr()
	mr.Close()

	if _, err := New(cfg, log.New(io.Discard)); err == nil || !strings.Contains(err.Error(), "redis ping") {
		t.Fatalf("expected redis ping error, got %v", err)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"KanbanService/handlers"
	"KanbanService/models"
	"KanbanService/store"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

type fixture struct {
	srv     *httptest.Server
	store   *store.Store
	metrics *Metrics
	project int
	author  int
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{Driver: store.DriverSQLite, Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.EnsureSchema(ctx))

	user := &models.User{Username: "alice"}
	require.NoError(t, st.CreateUser(ctx, user))
	project := &models.Project{Name: "Apollo"}
	require.NoError(t, st.CreateProject(ctx, project))

	logger, _ := logtest.NewNullLogger()
	if opts.Log == nil {
		opts.Log = logger
	}
	if opts.RateLimit == 0 {
		opts.RateLimit = rate.Inf
	}
	m := NewMetrics()
	srv := httptest.NewServer(New(handlers.New(st, opts.Log), m, opts))
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: st, metrics: m, project: project.Id, author: user.UserId}
}

func (f *fixture) send(t *testing.T, method, path, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func TestTaskLifecycle(t *testing.T) {
	f := newFixture(t, Options{})

	body := fmt.Sprintf(`{"title":"Design board","tags":"ui,dnd","projectId":%d,"authorUserId":%d}`, f.project, f.author)
	res := f.send(t, http.MethodPost, "/tasks", body)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var created models.Task
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	assert.Equal(t, models.StatusToDo, created.Status)

	res = f.send(t, http.MethodPatch, fmt.Sprintf("/tasks/%d/status", created.Id), `{"status":"Work In Progress"}`)
	require.Equal(t, http.StatusOK, res.StatusCode)

	res = f.send(t, http.MethodGet, fmt.Sprintf("/tasks?projectId=%d", f.project), "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	var tasks []models.Task
	require.NoError(t, json.NewDecoder(res.Body).Decode(&tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, models.StatusWorkInProgress, tasks[0].Status)
	require.NotNil(t, tasks[0].Author)
	assert.Equal(t, "alice", tasks[0].Author.Username)

	res = f.send(t, http.MethodPatch, "/tasks/999/status", `{"status":"Completed"}`)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.EndPointCounter.WithLabelValues("/tasks")))
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.ErrorCounter.WithLabelValues("/tasks/{id}/status")))
}

func TestRateLimiter(t *testing.T) {
	f := newFixture(t, Options{RateLimit: rate.Every(1e12), Burst: 1})

	res := f.send(t, http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	res = f.send(t, http.MethodGet, "/projects", "")
	assert.Equal(t, http.StatusTooManyRequests, res.StatusCode)
	data, _ := io.ReadAll(res.Body)
	assert.JSONEq(t, `{"message":"The API is at capacity, try again later."}`, string(data))
}

func TestRequestID(t *testing.T) {
	f := newFixture(t, Options{})

	res := f.send(t, http.MethodGet, "/", "")
	assert.NotEmpty(t, res.Header.Get(RequestIDHeader))

	req, _ := http.NewRequest(http.MethodGet, f.srv.URL+"/", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	res2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res2.Body.Close()
	assert.Equal(t, "req-42", res2.Header.Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t, Options{})
	req, err := http.NewRequest(http.MethodOptions, f.srv.URL+"/tasks/1/status", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3001")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Allow-Methods"), http.MethodPatch)
}

func TestCORSActualRequest(t *testing.T) {
	f := newFixture(t, Options{})
	req, err := http.NewRequest(http.MethodGet, f.srv.URL+"/projects", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3001")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, res.Header.Get("Access-Control-Expose-Headers"), RequestIDHeader)
}

func TestHealthAndMetrics(t *testing.T) {
	var down atomic.Bool
	f := newFixture(t, Options{Health: func(ctx context.Context) error {
		if down.Load() {
			return errors.New("db down")
		}
		return nil
	}})

	res := f.send(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, res.StatusCode)

	down.Store(true)
	res = f.send(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusServiceUnavailable, res.StatusCode)

	f.send(t, http.MethodGet, fmt.Sprintf("/tasks?projectId=%d", f.project), "")
	res = f.send(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, res.StatusCode)
	data, _ := io.ReadAll(res.Body)
	assert.Contains(t, string(data), `kanban_endpoint_calls_total{endpoint="/tasks"} 1`)
}

func TestRecovererReturns500(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	h := middleware.Recoverer(RequestID(logPanics(logger)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))))
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	req.Header.Set(RequestIDHeader, "req-7")
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "handler panicked", entry.Message)
	assert.Equal(t, "req-7", entry.Data["request_id"])
	assert.Equal(t, "boom", entry.Data["panic"])
}

func TestRequestIDGeneratesUUID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		seen = RequestIDFrom(req.Context())
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(seen)
	require.NoError(t, err)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

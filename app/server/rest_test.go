package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"

	"bot/app/models"
)

type fakeSessions struct {
	active int
	err    error
}

func (f *fakeSessions) GetOrCreate(ctx context.Context, userID string) (*models.Session, error) {
	return models.NewSession(userID), nil
}

func (f *fakeSessions) Save(ctx context.Context, session *models.Session) error {
	return nil
}

func (f *fakeSessions) Active(ctx context.Context) (int, error) {
	return f.active, f.err
}

type apiBody struct {
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doGet(t *testing.T, sessions *fakeSessions, path string) *apiBody {
	t.Helper()

	rest := &Rest{
		Router:    chi.NewRouter(),
		Sessions:  sessions,
		StartedAt: time.Now(),
	}
	rest.Route()

	rec := httptest.NewRecorder()
	rest.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	body := new(apiBody)
	if err := json.Unmarshal(rec.Body.Bytes(), body); err != nil {
		t.Fatalf("failed to unmarshal a response body: %s", err)
	}
	return body
}

func TestHealth(t *testing.T) {
	body := doGet(t, &fakeSessions{}, "/api/v1/health")

	health := new(models.Health)
	if err := json.Unmarshal(body.Result, health); err != nil {
		t.Fatalf("failed to unmarshal a health result: %s", err)
	}
	if health.Status != "ok" {
		t.Errorf("wrong health status, expected: ok, have: %s", health.Status)
	}
}

func TestStats(t *testing.T) {
	body := doGet(t, &fakeSessions{active: 3}, "/api/v1/stats")

	stats := new(models.Stats)
	if err := json.Unmarshal(body.Result, stats); err != nil {
		t.Fatalf("failed to unmarshal a stats result: %s", err)
	}
	if stats.ActiveSessions != 3 {
		t.Errorf("wrong active session count, expected: 3, have: %d", stats.ActiveSessions)
	}
	if stats.Uptime == "" {
		t.Error("stats carry no uptime")
	}
}

func TestStatsStoreFailure(t *testing.T) {
	body := doGet(t, &fakeSessions{err: errors.New("store is down")}, "/api/v1/stats")

	if body.Error == nil {
		t.Fatal("expected an error body")
	}
	if body.Error.Code != 503 {
		t.Errorf("wrong error code, expected: 503, have: %d", body.Error.Code)
	}
	if body.Error.Message != "failed to count active sessions" {
		t.Errorf("wrong error message: %s", body.Error.Message)
	}
}

func TestUnknownRoute(t *testing.T) {
	body := doGet(t, &fakeSessions{}, "/api/v1/nope")

	if body.Error == nil {
		t.Fatal("expected an error body")
	}
	if body.Error.Code != 404 {
		t.Errorf("wrong error code, expected: 404, have: %d", body.Error.Code)
	}
}

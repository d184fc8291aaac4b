package routes_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/franckjack156-lang/GestiHotel-sub002/internal/core/domain"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/config"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/infra/security"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/repository"
	httproutes "github.com/franckjack156-lang/GestiHotel-sub002/internal/transport/http/routes"
	"github.com/franckjack156-lang/GestiHotel-sub002/internal/usecase"
)

type staticUsers map[string]*domain.User

func (s staticUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := s[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s staticUsers) UpdateCurrentEstablishment(context.Context, string, string, time.Time) error {
	return nil
}

type staticEstablishments []domain.Establishment

func (s staticEstablishments) List(context.Context) ([]domain.Establishment, error) {
	return s, nil
}

func (s staticEstablishments) GetByID(_ context.Context, id string) (*domain.Establishment, error) {
	for i := range s {
		if s[i].ID == id {
			est := s[i]
			return &est, nil
		}
	}
	return nil, repository.ErrNotFound
}

type noopSyncer struct{}

func (noopSyncer) SyncAll(context.Context, string) (domain.SyncReport, error) {
	return domain.SyncReport{}, nil
}

func TestHealthEndpoint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, _ := zap.NewDevelopment()
	cfg := &config.AppConfig{App: config.AppSettings{Env: "test"}}

	r := httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: logger,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)

	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func newAPI(t *testing.T) (*gin.Engine, *security.IdentityVerifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := security.NewIdentityVerifier("routes-secret", "gestihotel")
	if err != nil {
		t.Fatalf("verifier: %v", err)
	}

	users := staticUsers{"manager": {ID: "manager", Role: domain.RoleManager, EstablishmentIDs: []string{"est-a"}}}
	establishments := usecase.NewEstablishmentService(staticEstablishments{{ID: "est-a", Name: "Hôtel A", Active: true}}, users, nil, zap.NewNop())

	cfg := &config.AppConfig{
		App:  config.AppSettings{Name: "gestihotel-api", Env: "test"},
		Sync: config.SyncSettings{ForceRatePerMinute: 1},
	}

	r := httproutes.Register(httproutes.Dependencies{
		Config: cfg,
		Logger: zap.NewNop(),
		Services: httproutes.ServiceSet{
			Establishments: establishments,
			Sync:           usecase.NewSyncRegistry(noopSyncer{}, nil, nil, nil, zap.NewNop(), usecase.SyncOptions{}),
		},
		Verifier: verifier,
		Users:    users,
	})
	return r, verifier
}

func TestAPIRequiresIdentity(t *testing.T) {
	r, _ := newAPI(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/establishments", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if w.Header().Get("X-Trace-ID") == "" {
		t.Fatalf("expected trace id header")
	}
}

func TestAPIEstablishmentsAndForceSyncLimit(t *testing.T) {
	r, verifier := newAPI(t)

	token, err := verifier.Issue("manager", "manager@hotel.test", time.Hour)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	do := func(method, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	if w := do(http.MethodGet, "/api/v1/establishments"); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Never mounted, so the first force sync is rejected as offline.
	if w := do(http.MethodPost, "/api/v1/sync"); w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if w := do(http.MethodPost, "/api/v1/sync"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 on second force sync, got %d", w.Code)
	}
}

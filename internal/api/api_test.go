package api

import (
	"alcyxob/coach-plans/internal/config"
	"alcyxob/coach-plans/internal/domain"
	"alcyxob/coach-plans/internal/logging"
	"alcyxob/coach-plans/internal/repository/memory"
	"alcyxob/coach-plans/internal/service"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type testServer struct {
	t      *testing.T
	router *gin.Engine
	store  *memory.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.New()
	logger := zerolog.Nop()

	require.NoError(t, service.SeedCatalog(context.Background(), service.CatalogSeedDeps{
		Exercises: store.Exercises(),
		Sections:  store.Sections(),
		Logger:    logger,
	}))

	svc := Services{
		Auth:     service.NewAuthService(store.Users(), store.Coaches(), store.Clients(), "api-test-secret", time.Hour, logger),
		Identity: service.NewIdentityResolver(store.Coaches(), store.Clients()),
		Clients:  service.NewClientService(store.Users(), store.Coaches(), store.Clients(), store.Plans(), logger),
		Plans: service.NewPlanService(service.PlanServiceDeps{
			Plans:            store.Plans(),
			Templates:        store.PlanTemplates(),
			Clients:          store.Clients(),
			Exercises:        store.Exercises(),
			Sections:         store.Sections(),
			ProgressionTypes: store.ProgressionTypes(),
			Logger:           logger,
		}),
		Templates: service.NewPlanTemplateService(store.PlanTemplates(), store.Exercises(), store.Sections(), store.ProgressionTypes(), logger),
		Exercises: service.NewExerciseService(store.Exercises()),
		Catalog:   service.NewCatalogService(store.ProgressionTypes(), store.Sections()),
	}
	return &testServer{t: t, router: NewRouter(svc, logger, true), store: store}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// signUp registers a user and returns their token and ID.
func (s *testServer) signUp(name, email string, role domain.Role) (string, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", service.RegisterInput{
		Name: name, Email: email, Password: "password123", Role: role,
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: email, Password: "password123"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var resp LoginResponse
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token, resp.User.ID
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, service.KindUnauthenticated, decode[ErrorResponse](t, w).Code)

	w = s.do(http.MethodGet, "/api/v1/plans/mine", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeResolvesRoleFromProfile(t *testing.T) {
	s := newTestServer(t)
	token, userID := s.signUp("Coach", "coach@example.com", domain.RoleCoach)

	w := s.do(http.MethodGet, "/api/v1/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[MeResponse](t, w)
	assert.Equal(t, userID, me.UserID)
	assert.Equal(t, domain.RoleCoach, me.Role)
	assert.NotEmpty(t, w.Header().Get(logging.RequestIDHeader))
}

func TestRegisterConflictAndValidation(t *testing.T) {
	s := newTestServer(t)
	s.signUp("Coach", "coach@example.com", domain.RoleCoach)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", service.RegisterInput{
		Name: "Again", Email: "coach@example.com", Password: "password123", Role: domain.RoleClient,
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", map[string]string{"name": "X", "email": "x@example.com", "password": "short", "role": "coach"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "coach@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlanFlowOverHTTP(t *testing.T) {
	s := newTestServer(t)
	coachToken, _ := s.signUp("Coach", "coach@example.com", domain.RoleCoach)
	otherToken, _ := s.signUp("Other Coach", "other@example.com", domain.RoleCoach)
	clientToken, clientID := s.signUp("Client", "client@example.com", domain.RoleClient)

	// Coach claims the self-registered client.
	w := s.do(http.MethodPost, "/api/v1/clients", coachToken, service.CreateClientInput{Email: "client@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/exercises", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	exercises := decode[[]domain.Exercise](t, w)
	require.NotEmpty(t, exercises)

	w = s.do(http.MethodGet, "/api/v1/sections", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	sections := decode[[]domain.Section](t, w)
	require.NotEmpty(t, sections)

	body := map[string]any{
		"clientId":  clientID,
		"title":     "March block",
		"dateStart": "2026-03-01T00:00:00Z",
		"dateEnd":   "2026-03-31T00:00:00Z",
		"days": []map[string]any{{
			"dayIndex": 1,
			"sections": []map[string]any{{
				"sectionId": sections[0].ID.Hex(),
				"sortOrder": 1,
				"blocks": []map[string]any{{
					"blockType": "series",
					"sortOrder": 1,
					"exercises": []map[string]any{{
						"exerciseId":  exercises[0].ID.Hex(),
						"sortOrder":   1,
						"microcycles": []map[string]any{{"microIndex": 1, "sets": 3, "reps": "8-10"}},
					}},
				}},
			}},
		}},
	}
	w = s.do(http.MethodPost, "/api/v1/plans", coachToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	plan := decode[domain.Plan](t, w)
	assert.Equal(t, 1, plan.PlanNumberPerClient)
	assert.Equal(t, sections[0].Name, plan.Days[0].Sections[0].SectionNameSnapshot)

	planPath := "/api/v1/plans/" + plan.ID.Hex()

	w = s.do(http.MethodGet, planPath, clientToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, planPath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, service.KindForbidden, decode[ErrorResponse](t, w).Code)

	w = s.do(http.MethodGet, "/api/v1/plans/"+primitive.NewObjectID().Hex(), coachToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/api/v1/plans/not-an-id", coachToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, planPath+"/duplicate", coachToken, map[string]string{"title": "April block"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, 2, decode[domain.Plan](t, w).PlanNumberPerClient)

	w = s.do(http.MethodGet, "/api/v1/plans/mine", clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.PlanSummary](t, w), 2)

	w = s.do(http.MethodGet, "/api/v1/clients/"+clientID+"/plans", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.PlanSummary](t, w), 2)

	w = s.do(http.MethodGet, planPath, clientToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"exercise":{`)

	// No bucket is configured in tests.
	w = s.do(http.MethodPost, planPath+"/export", coachToken, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	exportErr := decode[ErrorResponse](t, w)
	assert.Equal(t, service.KindUnavailable, exportErr.Code)
	assert.Equal(t, "plan export is not configured", exportErr.Error)

	w = s.do(http.MethodDelete, planPath, clientToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodDelete, planPath, coachToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestInvalidTreeIsBadRequest(t *testing.T) {
	s := newTestServer(t)
	coachToken, _ := s.signUp("Coach", "coach@example.com", domain.RoleCoach)
	_, clientID := s.signUp("Client", "client@example.com", domain.RoleClient)
	w := s.do(http.MethodPost, "/api/v1/clients", coachToken, map[string]string{"userId": clientID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/plans", coachToken, map[string]any{
		"clientId":  clientID,
		"title":     "Broken",
		"dateStart": "2026-03-01T00:00:00Z",
		"dateEnd":   "2026-03-31T00:00:00Z",
		"days":      []map[string]any{{"dayIndex": 1}, {"dayIndex": 1}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.KindValidation, decode[ErrorResponse](t, w).Code)

	w = s.do(http.MethodGet, "/api/v1/clients/"+clientID+"/plans", coachToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", strings.TrimSpace(w.Body.String()))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/ping", "", nil)

	w := s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "coach_plans_http_requests_total")
}

func TestUnhandledErrorLogCarriesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := logging.NewWithWriter(config.LogConfig{Level: "info"}, &buf)

	router := gin.New()
	router.Use(logging.RequestLogger(logger))
	router.GET("/boom", func(c *gin.Context) {
		respondError(c, logger, errors.New("disk on fire"))
	})

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(logging.RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode[ErrorResponse](t, w).Error)

	var found bool
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		if entry["message"] == "unhandled error" {
			found = true
			assert.Equal(t, "req-42", entry["request_id"])
			assert.Equal(t, "disk on fire", entry["error"])
		}
	}
	assert.True(t, found, buf.String())
}

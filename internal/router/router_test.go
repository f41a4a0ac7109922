package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/chronosync/internal/filter"
	appointmentHandler "github.com/jwalitptl/chronosync/internal/handler/appointment"
	appointmentTypeHandler "github.com/jwalitptl/chronosync/internal/handler/appointmenttype"
	authHandler "github.com/jwalitptl/chronosync/internal/handler/auth"
	clientHandler "github.com/jwalitptl/chronosync/internal/handler/client"
	firmHandler "github.com/jwalitptl/chronosync/internal/handler/firm"
	"github.com/jwalitptl/chronosync/internal/handler/health"
	"github.com/jwalitptl/chronosync/internal/handler/prometheus"
	userHandler "github.com/jwalitptl/chronosync/internal/handler/user"
	"github.com/jwalitptl/chronosync/internal/middleware"
	"github.com/jwalitptl/chronosync/internal/model"
	"github.com/jwalitptl/chronosync/internal/policy"
	"github.com/jwalitptl/chronosync/internal/principal"
	"github.com/jwalitptl/chronosync/internal/query"
	"github.com/jwalitptl/chronosync/internal/repository/memory"
	"github.com/jwalitptl/chronosync/internal/router"
	appointmentService "github.com/jwalitptl/chronosync/internal/service/appointment"
	appointmentTypeService "github.com/jwalitptl/chronosync/internal/service/appointmenttype"
	authService "github.com/jwalitptl/chronosync/internal/service/auth"
	clientService "github.com/jwalitptl/chronosync/internal/service/client"
	firmService "github.com/jwalitptl/chronosync/internal/service/firm"
	userService "github.com/jwalitptl/chronosync/internal/service/user"
	"github.com/jwalitptl/chronosync/pkg/auth"
	"github.com/jwalitptl/chronosync/pkg/httputil"
	"github.com/jwalitptl/chronosync/pkg/metrics"
	"github.com/jwalitptl/chronosync/pkg/security"
)

const (
	adminPassword = "change-me-now"
	userPassword  = "correct horse"
)

// TestResponse is the decoded API envelope of one request.
type TestResponse struct {
	StatusCode int             `json:"-"`
	Body       []byte          `json:"-"`
	Success    bool            `json:"success"`
	Data       json.RawMessage `json:"data"`
	Error      *httputil.Error `json:"error"`
}

type testServer struct {
	engine *gin.Engine
	store  *memory.Store
}

func newServer(t *testing.T, limits middleware.RateLimiterConfig) *testServer {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	hasher := security.NewBcryptHasher(4)

	firms := firmService.NewService(store.Firms, store.Users, store, hasher)
	created, err := firms.Bootstrap(ctx, firmService.Administrator{FirmName: "Acme", Username: "admin", Password: adminPassword})
	require.NoError(t, err)
	require.True(t, created)

	registry := promclient.NewRegistry()
	m := metrics.NewMetrics("test", registry)
	policies, err := policy.NewDefaultRegistry(policy.Deps{Users: store.Users, Appointments: store.Appointments})
	require.NoError(t, err)
	enforcer := policy.NewEnforcer(policies, m)

	principals := principal.NewAccessor(store.Users, time.Minute)
	authSvc := authService.NewService(store.Users, store.Tokens, auth.NewJWTService("test-secret", "chronosync", time.Hour), hasher, m)

	r := router.NewRouter(
		router.Config{Mode: gin.TestMode},
		middleware.NewAuthMiddleware(authSvc, principals),
		middleware.NewRateLimiter(limits),
		authHandler.NewHandler(authSvc),
		health.NewHandler(map[string]health.Check{
			"database": func(context.Context) error { return nil },
		}),
		prometheus.New("test", registry),
		userHandler.NewHandler(userService.NewService(store.Users, store.Tokens, hasher, principals, 0), enforcer),
		clientHandler.NewHandler(clientService.NewService(store.Clients), enforcer),
		appointmentTypeHandler.NewHandler(appointmentTypeService.NewService(store.AppointmentTypes), enforcer),
		appointmentHandler.NewHandler(appointmentService.NewService(store.Appointments, store.Clients, store.AppointmentTypes, store.Users, store), enforcer),
		firmHandler.NewHandler(firms),
	)
	r.Setup()

	return &testServer{engine: r.Engine(), store: store}
}

func generousLimits() middleware.RateLimiterConfig {
	return middleware.RateLimiterConfig{Rate: rate.Inf, Burst: 1}
}

func (s *testServer) makeRequest(t *testing.T, method, path string, body any, token string) *TestResponse {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.10:4321"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	resp := &TestResponse{StatusCode: w.Code, Body: w.Body.Bytes()}
	_ = json.Unmarshal(resp.Body, resp)
	return resp
}

func decode[T any](t *testing.T, resp *TestResponse) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(resp.Data, &out), string(resp.Body))
	return out
}

func (s *testServer) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	return decode[model.LoginResponse](t, resp).Token
}

func userBody(first, last string, role model.Role) map[string]any {
	return map[string]any{
		"first_name":        first,
		"last_name":         last,
		"address":           "Main St 1",
		"phone":             "555-0100",
		"email":             "staff@example.com",
		"password":          userPassword,
		"unique_identifier": "ID-" + last,
		"role":              role,
		"is_enabled":        true,
	}
}

func TestSchedulingFlow(t *testing.T) {
	s := newServer(t, generousLimits())
	adminToken := s.login(t, "admin", adminPassword)

	var managerToken, employeeToken string
	var employee, colleague model.UserResponse
	var clientID, typeID int64
	var colleagueAppt int64

	t.Run("administrator creates manager", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/create", userBody("John", "Doe", model.RoleManager), adminToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

		manager := decode[model.UserResponse](t, resp)
		assert.NotZero(t, manager.ID)
		assert.Equal(t, "jdoe", manager.Username)
		assert.Equal(t, model.RoleManager, manager.Role)
		assert.NotContains(t, string(resp.Body), "password")

		managerToken = s.login(t, "jdoe", userPassword)
	})

	t.Run("manager cannot create administrator", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/create", userBody("Ada", "Root", model.RoleAdministrator), managerToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		require.NotNil(t, resp.Error)
		assert.Equal(t, policy.ReasonManagerCreate, resp.Error.Message)
		assert.Equal(t, "forbidden", resp.Error.Type)
	})

	t.Run("manager creates employees", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/create", userBody("Eve", "Adams", model.RoleEmployee), managerToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		employee = decode[model.UserResponse](t, resp)

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/user/create", userBody("Carl", "Brown", model.RoleEmployee), managerToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		colleague = decode[model.UserResponse](t, resp)

		employeeToken = s.login(t, employee.Username, userPassword)
	})

	t.Run("manager user search hides administrators", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/search", map[string]any{}, managerToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

		page := decode[filter.Page[model.UserResponse]](t, resp)
		assert.Equal(t, int64(3), page.TotalElements)
		for _, u := range page.Content {
			assert.NotEqual(t, model.RoleAdministrator, u.Role)
		}
	})

	t.Run("employee is kept off the user routes", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/search", nil, employeeToken)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("duplicate client conflicts", func(t *testing.T) {
		body := map[string]any{"first_name": "Ann", "last_name": "Lee", "email": "a@x.com", "phone": "555"}

		resp := s.makeRequest(t, http.MethodPost, "/api/v1/client/create", body, employeeToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		clientID = decode[model.Client](t, resp).ID

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/client/create", body, employeeToken)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, clientService.ReasonDuplicate, resp.Error.Message)
	})

	t.Run("employee cannot delete clients", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/client?id=%d", clientID), nil, employeeToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, policy.ReasonClientDelete, resp.Error.Message)
	})

	t.Run("appointment types are managed by managers", func(t *testing.T) {
		body := map[string]any{"name": "Consult", "duration_minutes": 45, "price": 60, "currency": "EUR", "color_code": "#336699"}

		resp := s.makeRequest(t, http.MethodPost, "/api/v1/appointment-type/create", body, employeeToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/appointment-type/create", body, managerToken)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		typeID = decode[model.AppointmentType](t, resp).ID

		resp = s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/appointment-type/%d", typeID), nil, employeeToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
		assert.Equal(t, 45, decode[model.AppointmentType](t, resp).DurationMinutes)
	})

	t.Run("employee sees only own appointments", func(t *testing.T) {
		book := func(token string, employeeID *int64, start time.Time) *TestResponse {
			body := map[string]any{
				"start_time":          start,
				"client_id":           clientID,
				"appointment_type_id": typeID,
			}
			if employeeID != nil {
				body["employee_id"] = *employeeID
			}
			return s.makeRequest(t, http.MethodPost, "/api/v1/appointment/create", body, token)
		}
		start := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

		resp := book(employeeToken, nil, start)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		own := decode[model.Appointment](t, resp)
		assert.Equal(t, employee.ID, own.EmployeeID)
		assert.Equal(t, start.Add(45*time.Minute), own.EndTime)

		resp = book(employeeToken, &colleague.ID, start)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)

		resp = book(managerToken, &colleague.ID, start)
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))
		colleagueAppt = decode[model.Appointment](t, resp).ID

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/appointment/search", nil, employeeToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
		page := decode[filter.Page[model.Appointment]](t, resp)
		require.Len(t, page.Content, 1)
		assert.Equal(t, own.ID, page.Content[0].ID)

		resp = s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/appointment/%d", colleagueAppt), nil, employeeToken)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/appointment/search", nil, managerToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int64(2), decode[filter.Page[model.Appointment]](t, resp).TotalElements)
	})

	t.Run("employee cannot delete a colleague's appointment", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/appointment?id=%d", colleagueAppt), nil, employeeToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, policy.ReasonOwnAppointments, resp.Error.Message)
	})

	t.Run("deleting a missing appointment never reaches storage", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodDelete, "/api/v1/appointment?id=424242", nil, managerToken)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, appointmentService.ReasonNotFound, resp.Error.Message)
		assert.Equal(t, 0, s.store.Appointments.Calls("Delete"))
	})

	t.Run("manager cannot disable the administrator", func(t *testing.T) {
		admin, err := s.store.Users.FindOne(context.Background(), query.UsernameExact("admin"))
		require.NoError(t, err)

		resp := s.makeRequest(t, http.MethodPut, "/api/v1/user", map[string]any{"id": admin.ID, "is_enabled": false}, managerToken)
		require.Equal(t, http.StatusForbidden, resp.StatusCode, string(resp.Body))
		assert.Equal(t, policy.ReasonManagerUpdate, resp.Error.Message)

		stored, err := s.store.Users.Get(context.Background(), admin.ID)
		require.NoError(t, err)
		assert.True(t, stored.Enabled)
		assert.Equal(t, 0, s.store.Users.Calls("Update"))
	})

	t.Run("disabling a user ends access at once", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodPut, "/api/v1/user", map[string]any{"id": colleague.ID, "is_enabled": false}, managerToken)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))

		colleagueResp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"username": colleague.Username,
			"password": userPassword,
		}, "")
		assert.Equal(t, http.StatusForbidden, colleagueResp.StatusCode)
	})

	t.Run("logout revokes the token", func(t *testing.T) {
		resp := s.makeRequest(t, http.MethodGet, "/api/v1/auth/validate-token", nil, employeeToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		status := decode[model.TokenStatus](t, resp)
		assert.True(t, status.Valid)
		assert.Equal(t, employee.ID, status.UserID)

		resp = s.makeRequest(t, http.MethodPost, "/api/v1/auth/logout", nil, employeeToken)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		resp = s.makeRequest(t, http.MethodGet, "/api/v1/auth/validate-token", nil, employeeToken)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})
}

func TestRequestErrors(t *testing.T) {
	s := newServer(t, generousLimits())
	adminToken := s.login(t, "admin", adminPassword)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		token  string
		status int
		kind   string
	}{
		{name: "missing token", method: http.MethodPost, path: "/api/v1/client/search", status: http.StatusUnauthorized, kind: "unauthorized"},
		{name: "malformed token", method: http.MethodPost, path: "/api/v1/client/search", token: "garbage", status: http.StatusUnauthorized, kind: "unauthorized"},
		{name: "invalid field", method: http.MethodPost, path: "/api/v1/user/create", body: map[string]any{"email": "not-an-email"}, token: adminToken, status: http.StatusBadRequest, kind: "bad_request"},
		{name: "empty entity", method: http.MethodPost, path: "/api/v1/client/create", body: map[string]any{}, token: adminToken, status: http.StatusBadRequest, kind: "bad_request"},
		{name: "negative page", method: http.MethodPost, path: "/api/v1/client/search", body: map[string]any{"page": -1}, token: adminToken, status: http.StatusBadRequest, kind: "bad_request"},
		{name: "unknown sort field", method: http.MethodPost, path: "/api/v1/client/search", body: map[string]any{"sort": []map[string]string{{"field": "secret"}}}, token: adminToken, status: http.StatusBadRequest, kind: "bad_request"},
		{name: "missing delete id", method: http.MethodDelete, path: "/api/v1/client", token: adminToken, status: http.StatusBadRequest, kind: "bad_request"},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nothing", status: http.StatusNotFound, kind: "not_found"},
		{name: "wrong credentials", method: http.MethodPost, path: "/api/v1/auth/login", body: map[string]string{"username": "admin", "password": "nope-nope"}, status: http.StatusUnauthorized, kind: "unauthorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.makeRequest(t, tt.method, tt.path, tt.body, tt.token)
			require.Equal(t, tt.status, resp.StatusCode, string(resp.Body))
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.kind, resp.Error.Type)
			assert.Equal(t, tt.status, resp.Error.Code)
		})
	}
}

func TestFirmRoutesNeedAdministrator(t *testing.T) {
	s := newServer(t, generousLimits())
	adminToken := s.login(t, "admin", adminPassword)

	resp := s.makeRequest(t, http.MethodPost, "/api/v1/user/create", userBody("John", "Doe", model.RoleManager), adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	managerToken := s.login(t, "jdoe", userPassword)

	resp = s.makeRequest(t, http.MethodPost, "/api/v1/firm/create", map[string]string{"name": "Globex"}, managerToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = s.makeRequest(t, http.MethodPost, "/api/v1/firm/create", map[string]string{"name": "Globex"}, adminToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(resp.Body))

	resp = s.makeRequest(t, http.MethodPost, "/api/v1/firm/search", nil, adminToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(2), decode[filter.Page[model.Firm]](t, resp).TotalElements)
}

func TestLoginIsRateLimited(t *testing.T) {
	s := newServer(t, middleware.RateLimiterConfig{Rate: rate.Every(time.Hour), Burst: 2})
	body := map[string]string{"username": "admin", "password": "wrong-password"}

	for i := 0; i < 2; i++ {
		resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", body, "")
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", body, "")
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "rate_limited", resp.Error.Type)
}

func TestOperationalEndpoints(t *testing.T) {
	s := newServer(t, generousLimits())

	resp := s.makeRequest(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = s.makeRequest(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"status":"UP","components":{"database":"UP"}}`, string(resp.Body))

	resp = s.makeRequest(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), "test_http_requests_total")
}

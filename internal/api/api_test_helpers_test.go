package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/task-manager-api/internal/config"
	"github.com/phrazzld/task-manager-api/internal/mocks"
	"github.com/phrazzld/task-manager-api/internal/service"
	"github.com/phrazzld/task-manager-api/internal/service/auth"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testPassword = "Corr3ct-Horse-Battery"

// testServer runs the real router over in-memory stores.
type testServer struct {
	handler http.Handler
	users   *mocks.MockUserStore
	tasks   *mocks.MockTaskStore
	sender  *mocks.MockLoginCodeSender
	db      *fakePinger
}

type fakePinger struct {
	err error
}

func (p *fakePinger) PingContext(_ context.Context) error {
	return p.err
}

var userSeq atomic.Int64

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "api-test-secret-that-is-long-enough-0123",
		TokenLifetimeMinutes: 60,
		RefreshLifetimeHours: 168,
	})
	require.NoError(t, err)

	users := mocks.NewMockUserStore()
	tasks := mocks.NewMockTaskStore()
	codes, err := auth.NewLoginCodeService(
		mocks.NewMockLoginCodeStore(),
		config.OTPConfig{TTLSeconds: 300, MaxAttempts: 5},
		nil,
	)
	require.NoError(t, err)

	sender := &mocks.MockLoginCodeSender{}
	sender.On("SendLoginCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	accounts, err := service.NewAccountService(users, jwtService, auth.NewBcryptVerifier(), codes, sender, nil)
	require.NoError(t, err)
	taskService, err := service.NewTaskService(tasks, mocks.Transactor{}, nil)
	require.NoError(t, err)

	db := &fakePinger{}
	return &testServer{
		handler: NewRouter(RouterDeps{Accounts: accounts, Tasks: taskService, DB: db}),
		users:   users,
		tasks:   tasks,
		sender:  sender,
		db:      db,
	}
}

// do sends a JSON request and returns the recorder.
func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// registerUser creates a fresh account and returns its access token and
// response body.
func (s *testServer) registerUser(t *testing.T) (string, RegisterResponse) {
	t.Helper()

	n := userSeq.Add(1)
	w := s.do(t, http.MethodPost, "/register", "", map[string]string{
		"email":        fmt.Sprintf("user%d@example.com", n),
		"phone_number": fmt.Sprintf("+1555%07d", n),
		"name":         fmt.Sprintf("User %d", n),
		"password":     testPassword,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp RegisterResponse
	decodeBody(t, w, &resp)
	return resp.Access, resp
}

// createTask creates a task for token and returns the response.
func (s *testServer) createTask(t *testing.T, token string, body map[string]interface{}) TaskResponse {
	t.Helper()

	w := s.do(t, http.MethodPost, "/tasks", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var task TaskResponse
	decodeBody(t, w, &task)
	return task
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// errorBody is the decoded error envelope.
type errorBody struct {
	Detail  string              `json:"detail"`
	Errors  map[string][]string `json:"errors"`
	TraceID string              `json:"trace_id"`
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	decodeBody(t, w, &body)
	return body
}

func mustParseUUID(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/RealZimboGuy/approvalflow/internal/config"
	"github.com/RealZimboGuy/approvalflow/internal/util"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow"
	"github.com/RealZimboGuy/approvalflow/pkg/approvalflow/models"
	"github.com/stretchr/testify/require"
)

const AdminPassword = "admin-pass-1"

// Harness runs a wired App behind an httptest server. The audit recorder runs
// in the background, the sweeper is only triggered through the API.
type Harness struct {
	t      *testing.T
	App    *approvalflow.App
	Server *httptest.Server
	Clock  *FakeClock
}

// Configure sets the settings every integration test shares on top of the
// database settings the caller already applied.
func Configure() {
	config.Set(config.AUTH_JWT_SECRET, "integration-test-secret-0123456789")
	config.Set(config.AUTH_ADMIN_PASSWORD, AdminPassword)
	config.Set(config.AUTH_SEED_DEMO_USERS, true)
	config.Set(config.SWEEP_ENABLED, false)
	config.Set(config.SWEEP_STALE_AFTER, 24*time.Hour)
}

func NewHarness(t *testing.T, clock *FakeClock) *Harness {
	t.Helper()
	app, err := approvalflow.New(context.Background(), nil, clock)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Audit.Run(ctx) }()

	srv := httptest.NewServer(app.Mux)
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
		app.Close()
		config.Reset()
	})
	return &Harness{t: t, App: app, Server: srv, Clock: clock}
}

// Do sends a JSON request; token may be empty for public endpoints.
func (h *Harness) Do(method, path, token string, body any) *http.Response {
	h.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(h.t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, h.Server.URL+path, reader)
	require.NoError(h.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := h.Server.Client().Do(req)
	require.NoError(h.t, err)
	return resp
}

func (h *Harness) Login(username, password string) string {
	h.t.Helper()
	resp := h.Do(http.MethodPost, "/api/auth/login", "", models.LoginRequest{Username: username, Password: password})
	require.Equal(h.t, http.StatusOK, resp.StatusCode)
	login, err := util.DecodeJSONBodyResponse[models.LoginResponse](resp)
	require.NoError(h.t, err)
	return login.Token
}

// Decode reads a JSON body after checking the status code.
func Decode[T any](t *testing.T, resp *http.Response, status int) T {
	t.Helper()
	if resp.StatusCode != status {
		body, _ := util.DecodeJSONBodyResponse[models.ErrorResponse](resp)
		require.Failf(t, "unexpected status", "want %d got %d: %s %s", status, resp.StatusCode, body.Code, body.Message)
	}
	out, err := util.DecodeJSONBodyResponse[T](resp)
	require.NoError(t, err)
	return out
}

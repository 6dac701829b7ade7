//go:build e2e

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	registerEndpoint = "/api/auth/register"
	loginEndpoint    = "/api/auth/login"
	meEndpoint       = "/api/auth/me"
	notesEndpoint    = "/api/notes"
	tasksEndpoint    = "/api/tasks"
	profileEndpoint  = "/api/profile"

	e2eSecret = "test-e2e-secret-with-32-plus-characters-for-hs256-validation"
	e2eDB     = "e2e"

	msgFailedToCloseResponseBody = "failed to close response body: %v"
)

// tailBuffer keeps the last max bytes written to it. Writes never fail so a
// chatty server cannot block on a full stderr pipe.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}

// TestEnvironment is a running server backed by a throwaway Mongo container.
type TestEnvironment struct {
	BaseURL string
	Client  *http.Client
}

// SetupTestEnvironment starts Mongo and the server and blocks until /health
// answers. Everything is torn down through t.Cleanup.
func SetupTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	t.Cleanup(cancel)

	mongoURI := startMongo(ctx, t)
	baseURL, logs := startServer(ctx, t, mongoURI)

	client := &http.Client{Timeout: 5 * time.Second}
	if err := waitHealthy(ctx, client, baseURL, 30*time.Second); err != nil {
		t.Logf("server stderr:\n%s", logs.String())
		require.NoError(t, err)
	}

	return &TestEnvironment{BaseURL: baseURL, Client: client}
}

func startMongo(ctx context.Context, t *testing.T) string {
	t.Helper()

	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:8.0",
			ExposedPorts: []string{"27017/tcp"},
			Env: map[string]string{
				"MONGO_INITDB_ROOT_USERNAME": "root",
				"MONGO_INITDB_ROOT_PASSWORD": "example",
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("27017/tcp"),
				wait.ForExec([]string{"mongosh", "--quiet", "--eval", "db.adminCommand('ping')"}),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	endpoint, err := ctr.PortEndpoint(ctx, "27017/tcp", "")
	require.NoError(t, err)

	return fmt.Sprintf("mongodb://root:example@%s/", endpoint)
}

// startServer runs the prebuilt binary from BIN_SERVER, or `go run` as a local fallback.
func startServer(ctx context.Context, t *testing.T, mongoURI string) (string, *tailBuffer) {
	t.Helper()

	port, err := freePort()
	require.NoError(t, err)

	srvCtx, srvCancel := context.WithCancel(ctx)

	var cmd *exec.Cmd
	if bin := os.Getenv("BIN_SERVER"); bin != "" {
		cmd = exec.CommandContext(srvCtx, bin)
	} else {
		cmd = exec.CommandContext(srvCtx, "go", "run", "./cmd/server")
		cmd.Dir = "../"
	}

	// own process group so cleanup reaches the child of `go run` too
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Env = append([]string{
		"MONGO_URI=" + mongoURI,
		"MONGO_DB_NAME=" + e2eDB,
		"JWT_SECRET=" + e2eSecret,
		"BCRYPT_COST=10",
		"LOG_LEVEL=warn",
		"APP_PORT=" + port,
	}, os.Environ()...)

	logs := &tailBuffer{max: 64 << 10}
	cmd.Stdout = io.Discard
	cmd.Stderr = logs

	t.Logf("starting server on :%s", port)
	if err := cmd.Start(); err != nil {
		srvCancel()
		require.NoError(t, err)
	}

	t.Cleanup(func() {
		srvCancel()
		if pgid, err := syscall.Getpgid(cmd.Process.Pid); err == nil {
			_ = syscall.Kill(-pgid, syscall.SIGKILL)
		}

		done := make(chan struct{})
		go func() {
			_ = cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			_ = cmd.Process.Kill()
			<-done
		}

		if t.Failed() {
			t.Logf("server stderr:\n%s", logs.String())
		}
	})

	return "http://127.0.0.1:" + port, logs
}

func freePort() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	return strconv.Itoa(l.Addr().(*net.TCPAddr).Port), nil
}

// waitHealthy polls /health until it reports OK.
func waitHealthy(ctx context.Context, client *http.Client, baseURL string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	for {
		if healthy(ctx, client, baseURL+"/health") {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server at %s never became healthy: %w", baseURL, ctx.Err())
		case <-tick.C:
		}
	}
}

func healthy(ctx context.Context, client *http.Client, url string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	var body struct {
		Status string `json:"status"`
	}
	return resp.StatusCode == http.StatusOK &&
		json.NewDecoder(resp.Body).Decode(&body) == nil &&
		body.Status == "OK"
}

// httpJSON sends payload as JSON with the given headers.
func httpJSON(method, url string, payload any, headers map[string]string) (*http.Response, error) {
	var body io.Reader = http.NoBody
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	return client.Do(req)
}

// doRequest sends a JSON request, asserts the status and decodes the body into out when non-nil.
func doRequest(t *testing.T, method, url string, payload any, headers map[string]string, wantStatus int, out any) {
	t.Helper()
	resp, err := httpJSON(method, url, payload, headers)
	require.NoError(t, err)
	defer func() {
		if err := resp.Body.Close(); err != nil {
			t.Errorf(msgFailedToCloseResponseBody, err)
		}
	}()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, wantStatus, resp.StatusCode, "body: %s", raw)

	if out != nil {
		require.NoError(t, json.Unmarshal(raw, out), "body: %s", raw)
	}
}

// registerUser creates an account and returns its token.
func registerUser(t *testing.T, env *TestEnvironment, fullName, email, password string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	doRequest(t, http.MethodPost, env.BaseURL+registerEndpoint, map[string]string{
		"fullName": fullName,
		"email":    email,
		"password": password,
	}, nil, http.StatusCreated, &resp)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func loginExpect(t *testing.T, env *TestEnvironment, email, password string, want int) {
	t.Helper()
	doRequest(t, http.MethodPost, env.BaseURL+loginEndpoint, map[string]string{
		"email":    email,
		"password": password,
	}, nil, want, nil)
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

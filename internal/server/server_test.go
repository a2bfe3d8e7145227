package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/ShayCichocki/architect/internal/exec"
	"github.com/ShayCichocki/architect/internal/heal"
	"github.com/ShayCichocki/architect/internal/orchestrator"
	"github.com/ShayCichocki/architect/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeRunner fails the first run of "node app.js" with a missing module and
// succeeds everything else.
type fakeRunner struct {
	mu    sync.Mutex
	runs  int
	calls []string
}

func (r *fakeRunner) RunShell(_ context.Context, _, command string) (exec.Output, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, command)
	if command == "node app.js" {
		r.runs++
		if r.runs == 1 {
			return exec.Output{Stderr: "Error: Cannot find module 'express'"}, errors.New("exit status 1")
		}
	}
	return exec.Output{Stdout: "ok"}, nil
}

// blockingRunner holds every command until its context is canceled.
type blockingRunner struct {
	started  chan struct{}
	canceled chan struct{}
}

func newBlockingRunner() *blockingRunner {
	return &blockingRunner{started: make(chan struct{}), canceled: make(chan struct{})}
}

func (r *blockingRunner) RunShell(ctx context.Context, _, _ string) (exec.Output, error) {
	close(r.started)
	<-ctx.Done()
	close(r.canceled)
	return exec.Output{}, ctx.Err()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	engine := orchestrator.New(orchestrator.WithExecRunner(&fakeRunner{}))
	return New(":0", engine, WithWorkDir(t.TempDir()))
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestRequestIDIsPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w := httptest.NewRecorder()

	newTestServer(t).Handler().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestOrchestrateEndpoint(t *testing.T) {
	body, err := json.Marshal(orchestrateRequest{
		Specification: "Add a login form\nDocument the API",
		Files: []models.SourceFile{
			{Path: "src/login.tsx", Content: "export function LoginForm() { return login() }"},
		},
	})
	require.NoError(t, err)

	w := do(t, newTestServer(t), http.MethodPost, "/api/orchestrate", string(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result models.OrchestrationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Len(t, result.Plan, 2)
	assert.Equal(t, "step-1", result.Plan[0].ID)
	assert.Equal(t, []string{"step-1"}, result.Plan[1].Dependencies)
	assert.Len(t, result.CodingNotes, 3)
	assert.Len(t, result.ReviewNotes, 2)
	assert.Equal(t, []string{"npm run build", "npm test", "npm run lint"}, result.SuggestedCommands)
}

func TestOrchestrateEndpoint_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"blank specification", `{"specification":"   ","files":[]}`, "specification_required"},
		{"missing specification", `{"files":[]}`, "specification_required"},
		{"malformed json", `{bad json`, "invalid_request"},
	}

	srv := newTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/orchestrate", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func TestQueryEndpoint(t *testing.T) {
	body := `{"query":"invoice total customer","files":[
		{"path":"billing.go","content":"func invoice(customer) total"},
		{"path":"readme.md","content":"unrelated words here"}]}`

	w := do(t, newTestServer(t), http.MethodPost, "/api/query", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp queryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Hits)
	assert.Equal(t, "billing.go", resp.Hits[0].Path)
}

func TestQueryEndpoint_BlankQuery(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/query", `{"query":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"query_required"}`, w.Body.String())
}

func TestTerminalEndpoint(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/terminal", `{"command":"node app.js"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var result models.CommandRunResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.Attempts)
	assert.Equal(t, []string{"npm install express"}, result.FixesApplied)
	assert.Equal(t, models.TerminationSucceeded, result.Termination)
}

func TestTerminalEndpoint_BlankCommand(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodPost, "/api/terminal", `{"command":""}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"command_required"}`, w.Body.String())
}

func TestUnknownRoute(t *testing.T) {
	w := do(t, newTestServer(t), http.MethodGet, "/api/orchestrate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	srv := newTestServer(t)
	h := srv.withRecover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"unexpected_error","message":"boom"}`, w.Body.String())
}

func TestTerminalWebSocket(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/terminal/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.NotEmpty(t, resp.Header.Get(RequestIDHeader))
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	runData, err := json.Marshal(terminalRequest{Command: "node app.js"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsMessage{Type: wsMsgRun, Data: runData}))

	var attempts []heal.AttemptEvent
	for {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == wsMsgAttempt {
			var ev heal.AttemptEvent
			require.NoError(t, json.Unmarshal(msg.Data, &ev))
			attempts = append(attempts, ev)
			continue
		}

		require.Equal(t, wsMsgResult, msg.Type)
		var result models.CommandRunResult
		require.NoError(t, json.Unmarshal(msg.Data, &result))
		assert.True(t, result.Success)
		assert.Equal(t, 2, result.Attempts)
		break
	}

	require.Len(t, attempts, 2)
	assert.Equal(t, "npm install express", attempts[0].Fix)
	assert.True(t, attempts[1].Success)
}

func TestTerminalWebSocket_Errors(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/terminal/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(10*time.Second)))

	cases := []struct {
		send []byte
		want string
	}{
		{[]byte(`not json`), "invalid message format"},
		{[]byte(`{"type":"dance"}`), "unknown message type: dance"},
		{[]byte(`{"type":"run","data":{"command":" "}}`), "command_required"},
	}
	for _, c := range cases {
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, c.send))

		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		assert.Equal(t, wsMsgError, msg.Type)

		var payload map[string]string
		require.NoError(t, json.Unmarshal(msg.Data, &payload))
		assert.Equal(t, c.want, payload["message"])
	}
}

func TestTerminalWebSocket_EchoesRequestID(t *testing.T) {
	ts := httptest.NewServer(newTestServer(t).Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/terminal/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{RequestIDHeader: {"ws-42"}})
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "ws-42", resp.Header.Get(RequestIDHeader))
}

func TestTerminalWebSocket_DisconnectCancelsRun(t *testing.T) {
	runner := newBlockingRunner()
	srv := New(":0", orchestrator.New(orchestrator.WithExecRunner(runner)), WithWorkDir(t.TempDir()))
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/terminal/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)

	runData, err := json.Marshal(terminalRequest{Command: "npm install"})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(wsMessage{Type: wsMsgRun, Data: runData}))

	select {
	case <-runner.started:
	case <-time.After(5 * time.Second):
		t.Fatal("command never started")
	}
	require.NoError(t, conn.Close())

	select {
	case <-runner.canceled:
	case <-time.After(5 * time.Second):
		t.Fatal("run kept going after the client disconnected")
	}
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	engine := orchestrator.New(orchestrator.WithExecRunner(&fakeRunner{}))
	srv := New("127.0.0.1:0", engine)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}

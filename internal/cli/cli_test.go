// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/agent"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/logging"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/model"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/storage"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/ui/chat"
	"github.com/nashihabdul/simple-agentic-zus-coffee/internal/viz"
)

// =============================================================================
// HELPERS
// =============================================================================

// testHome isolates the state directory and the ZUSCHAT_* environment.
func testHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("ZUSCHAT_HOME", home)
	for _, k := range []string{
		"ZUSCHAT_AGENT_URL", "ZUSCHAT_API_KEY", "ZUSCHAT_VIZ_BASE_URL",
		"ZUSCHAT_VIZ_SOURCE", "ZUSCHAT_THEME", "ZUSCHAT_STORAGE_BACKEND", "ZUSCHAT_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("NO_COLOR", "1")
	return home
}

// runCLI runs one command line and returns everything written to stdout
// and stderr.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root, a := newRootCmd()
	t.Cleanup(a.close)

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// agentServer is a fake agent endpoint recording every request.
type agentServer struct {
	*httptest.Server

	mu       sync.Mutex
	requests []agent.Request
}

func newAgentServer(t *testing.T, handler func(req agent.Request) (int, any)) *agentServer {
	t.Helper()
	s := &agentServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req agent.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(s.Close)
	t.Setenv("ZUSCHAT_AGENT_URL", s.URL)
	t.Setenv("ZUSCHAT_API_KEY", "test-key")
	return s
}

func (s *agentServer) lastRequest(t *testing.T) agent.Request {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.requests)
	return s.requests[len(s.requests)-1]
}

func answer(text string) func(agent.Request) (int, any) {
	return func(agent.Request) (int, any) {
		return http.StatusOK, agent.Response{Status: "success", Answer: text, ElapsedTime: 1.5}
	}
}

func openTestStore(t *testing.T, home string) storage.Store {
	t.Helper()
	store, err := storage.NewJSONStore(filepath.Join(home, "data"))
	require.NoError(t, err)
	return store
}

func writeVizFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "visualization_config.json")
	doc := `[
  {"id": 7, "name": "Drinks Sold", "type": "pie", "data": [
    {"label": "Latte", "value": 120, "unit": "cups"},
    {"label": "Mocha", "value": "80", "unit": "cups"}
  ]},
  {"id": "8", "name": "Outlets", "type": "map", "data": []}
]`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))
	return path
}

// =============================================================================
// ASK
// =============================================================================

func TestAskRawPrintsTrimmedAnswer(t *testing.T) {
	testHome(t)
	srv := newAgentServer(t, answer("  **Hi** there  "))

	out, err := runCLI(t, "", "ask", "--raw", "Which", "outlets?")
	require.NoError(t, err)
	assert.Equal(t, "**Hi** there\n", out)

	req := srv.lastRequest(t)
	assert.Equal(t, "test-key", req.APIKey)
	assert.Equal(t, []string{"Which outlets?"}, req.Messages)
}

func TestAskJSON(t *testing.T) {
	testHome(t)
	newAgentServer(t, answer("Hello"))

	out, err := runCLI(t, "", "ask", "--json", "hi")
	require.NoError(t, err)

	var resp agent.Response
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "Hello", resp.Answer)
	assert.InDelta(t, 1.5, resp.ElapsedTime, 0.001)
}

func TestAskThreadSendsAndStoresWholeConversation(t *testing.T) {
	home := testHome(t)
	srv := newAgentServer(t, func(req agent.Request) (int, any) {
		return http.StatusOK, agent.Response{Status: "success", Answer: "reply " + req.Messages[len(req.Messages)-1]}
	})

	_, err := runCLI(t, "", "ask", "--raw", "--thread", "first")
	require.NoError(t, err)
	_, err = runCLI(t, "", "ask", "--raw", "-t", "second")
	require.NoError(t, err)

	assert.Equal(t, []string{"first", "reply first", "second"}, srv.lastRequest(t).Messages)

	msgs, err := openTestStore(t, home).LoadHistory(context.Background())
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	assert.Equal(t, model.RoleBot, msgs[3].Role)
	assert.Equal(t, "reply second", msgs[3].Message)
}

func TestAskWithoutThreadDoesNotStore(t *testing.T) {
	home := testHome(t)
	newAgentServer(t, answer("ok"))

	_, err := runCLI(t, "", "ask", "--raw", "hello")
	require.NoError(t, err)

	msgs, err := openTestStore(t, home).LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestAskAgentErrorMessage(t *testing.T) {
	testHome(t)
	newAgentServer(t, func(agent.Request) (int, any) {
		return http.StatusInternalServerError, map[string]string{"error": "Menu service unavailable"}
	})

	_, err := runCLI(t, "", "ask", "hello")
	require.Error(t, err)
	assert.Equal(t, "Menu service unavailable", err.Error())
}

func TestAskStatusErrorIsFailure(t *testing.T) {
	testHome(t)
	newAgentServer(t, func(agent.Request) (int, any) {
		return http.StatusOK, agent.Response{Status: "error", Answer: "Invalid API key"}
	})

	_, err := runCLI(t, "", "ask", "hello")
	require.Error(t, err)
	assert.Equal(t, "Invalid API key", err.Error())
}

// =============================================================================
// CONFIG
// =============================================================================

func TestConfigSetWritesFileAndGetReadsIt(t *testing.T) {
	home := testHome(t)

	out, err := runCLI(t, "", "config", "set", "ui.theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "ui.theme = dark_mode")

	data, err := os.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "dark_mode")

	out, err = runCLI(t, "", "config", "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "dark_mode\n", out)
}

func TestConfigSetDoesNotPersistEnvironment(t *testing.T) {
	home := testHome(t)
	t.Setenv("ZUSCHAT_API_KEY", "from-env")
	t.Setenv("ZUSCHAT_AGENT_URL", "http://env.example")

	_, err := runCLI(t, "", "config", "set", "storage.backend", "sqlite")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(home, "config.toml"))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "from-env")
	assert.NotContains(t, string(data), "env.example")
	assert.Contains(t, string(data), "sqlite")
}

func TestConfigSetRejectsBadInput(t *testing.T) {
	testHome(t)

	_, err := runCLI(t, "", "config", "set", "no.such", "x")
	assert.Error(t, err)
	_, err = runCLI(t, "", "config", "set", "storage.backend", "redis")
	assert.Error(t, err)
}

func TestConfigPathAndKeys(t *testing.T) {
	home := testHome(t)

	out, err := runCLI(t, "", "config", "path")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "config.toml")+"\n", out)

	out, err = runCLI(t, "", "config", "keys")
	require.NoError(t, err)
	assert.Contains(t, out, "agent.url")
	assert.Contains(t, out, "viz.base_url")
}

func TestThemeFlagOverridesConfig(t *testing.T) {
	testHome(t)

	out, err := runCLI(t, "", "--theme", "dark", "config", "get", "ui.theme")
	require.NoError(t, err)
	assert.Equal(t, "dark_mode\n", out)

	_, err = runCLI(t, "", "--storage", "redis", "config", "path")
	assert.Error(t, err)
}

// =============================================================================
// HISTORY
// =============================================================================

func seedHistory(t *testing.T, home string) {
	t.Helper()
	store := openTestStore(t, home)
	ctx := context.Background()
	require.NoError(t, store.SaveHistory(ctx, []*model.Message{
		model.NewUserMessage("Where is the nearest outlet?"),
		model.NewBotMessage("ZUS Coffee **SS2** is 300m away."),
	}))
	require.NoError(t, store.SavePrefs(ctx, storage.Prefs{ChatsActive: true, ThreadID: "t-1"}))
}

func TestHistoryList(t *testing.T) {
	home := testHome(t)

	out, err := runCLI(t, "", "history", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No saved messages.")

	seedHistory(t, home)
	out, err = runCLI(t, "", "history", "list", "-n", "1")
	require.NoError(t, err)
	assert.NotContains(t, out, "nearest outlet")
	assert.Contains(t, out, "SS2")
}

func TestHistoryExport(t *testing.T) {
	home := testHome(t)
	seedHistory(t, home)

	out, err := runCLI(t, "", "history", "export", "-f", "json")
	require.NoError(t, err)
	var msgs []*model.Message
	require.NoError(t, json.Unmarshal([]byte(out), &msgs))
	require.Len(t, msgs, 2)
	assert.Equal(t, "Where is the nearest outlet?", msgs[0].Message)

	file := filepath.Join(t.TempDir(), "chat.md")
	_, err = runCLI(t, "", "history", "export", "-o", file)
	require.NoError(t, err)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Where is the nearest outlet?")

	_, err = runCLI(t, "", "history", "export", "-f", "csv")
	assert.Error(t, err)
}

func TestHistoryClearKeepsThreadID(t *testing.T) {
	home := testHome(t)
	seedHistory(t, home)

	out, err := runCLI(t, "", "history", "clear", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "All chats deleted.")

	store := openTestStore(t, home)
	msgs, err := store.LoadHistory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, msgs)
	prefs, err := store.LoadPrefs(context.Background())
	require.NoError(t, err)
	assert.False(t, prefs.ChatsActive)
	assert.Equal(t, "t-1", prefs.ThreadID)
}

// =============================================================================
// VIZ
// =============================================================================

func TestVizListFallsBackToSamples(t *testing.T) {
	testHome(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	out, err := runCLI(t, "", "--viz-source", missing, "viz", "list")
	require.NoError(t, err)
	for _, cfg := range viz.SampleConfigs() {
		assert.Contains(t, out, cfg.Name)
	}
	assert.Contains(t, out, "13,500,000 people")
}

func TestVizListFromFile(t *testing.T) {
	testHome(t)
	path := writeVizFile(t)

	out, err := runCLI(t, "", "--viz-source", "file://"+filepath.ToSlash(path), "viz", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Drinks Sold")
	assert.Contains(t, out, "200 cups")
	assert.Contains(t, out, "Outlets")
}

func TestVizOptionIsJSON(t *testing.T) {
	testHome(t)
	path := writeVizFile(t)

	out, err := runCLI(t, "", "--viz-source", path, "viz", "option", "7")
	require.NoError(t, err)
	assert.True(t, json.Valid([]byte(out)), out)
	assert.Contains(t, out, "Latte")

	_, err = runCLI(t, "", "--viz-source", path, "viz", "option", "99")
	assert.ErrorIs(t, err, viz.ErrNotFound)
}

func TestVizExportXLSX(t *testing.T) {
	testHome(t)
	path := writeVizFile(t)
	out := filepath.Join(t.TempDir(), "drinks.xlsx")

	_, err := runCLI(t, "", "--viz-source", path, "viz", "export", "7", "-f", "xlsx", "-o", out)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("PK")), "xlsx is a zip archive")
}

func TestVizExportPNGToStdout(t *testing.T) {
	testHome(t)
	missing := filepath.Join(t.TempDir(), "missing.json")

	out, err := runCLI(t, "", "--viz-source", missing, "viz", "export", "2", "-o", "-")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "\x89PNG"))
}

func TestVizExportRejectsUnknownFormat(t *testing.T) {
	testHome(t)

	_, err := runCLI(t, "", "viz", "export", "1", "-f", "gif")
	assert.Error(t, err)
}

func TestVizShowRejectsMap(t *testing.T) {
	testHome(t)
	path := writeVizFile(t)

	_, err := runCLI(t, "", "--viz-source", path, "viz", "show", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "map")
}

func TestExportName(t *testing.T) {
	cases := []struct {
		name string
		cfg  viz.Config
		f    viz.Format
		want string
	}{
		{"spaces", viz.Config{ID: "2", Name: "Market Share 2025"}, viz.FormatPNG, "market-share-2025.png"},
		{"slashes", viz.Config{ID: "3", Name: "Sales / Month"}, viz.FormatXLSX, "sales-_-month.xlsx"},
		{"empty", viz.Config{ID: "4"}, viz.FormatSVG, "data.svg"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, exportName(tc.cfg, tc.f))
		})
	}
}

// =============================================================================
// APIKEY AND VERSION
// =============================================================================

func TestAPIKeyLifecycle(t *testing.T) {
	testHome(t)

	out, err := runCLI(t, "", "apikey", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "none")

	out, err = runCLI(t, "  secret-key \n", "apikey", "set", "--stdin")
	require.NoError(t, err)
	assert.Contains(t, out, logging.Fingerprint("secret-key"))

	out, err = runCLI(t, "", "apikey", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "saved")
	assert.Contains(t, out, logging.Fingerprint("secret-key"))

	_, err = runCLI(t, "", "apikey", "clear")
	require.NoError(t, err)
	out, err = runCLI(t, "", "apikey", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "none")
}

func TestAPIKeySetRejectsEmpty(t *testing.T) {
	testHome(t)

	_, err := runCLI(t, "\n", "apikey", "set", "--stdin")
	assert.Error(t, err)
}

func TestAPIKeyStatusPrefersEnvironment(t *testing.T) {
	testHome(t)
	t.Setenv("ZUSCHAT_API_KEY", "env-key")

	out, err := runCLI(t, "", "apikey", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "ZUSCHAT_API_KEY")
	assert.Contains(t, out, logging.Fingerprint("env-key"))
}

func TestVersion(t *testing.T) {
	testHome(t)

	out, err := runCLI(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "zuschat "+Version)
	assert.Contains(t, out, "Platform")
}

// =============================================================================
// REPL
// =============================================================================

type fakeAsker struct {
	answer string
	err    error
	calls  [][]string
}

func (f *fakeAsker) Ask(ctx context.Context, apiKey string, messages []string) (*agent.Response, error) {
	f.calls = append(f.calls, append([]string(nil), messages...))
	if f.err != nil {
		return nil, f.err
	}
	return &agent.Response{Status: "success", Answer: f.answer}, nil
}

func newTestRepl(t *testing.T, asker chat.Asker) (*repl, *bytes.Buffer) {
	t.Helper()
	conv, err := newConversation(context.Background(), nil, asker, "key", logging.Nop())
	require.NoError(t, err)
	var out bytes.Buffer
	return &repl{conv: conv, out: &out, width: 80}, &out
}

func TestReplHandleLine(t *testing.T) {
	asker := &fakeAsker{answer: "  Try the Spanish Latte.  "}
	r, out := newTestRepl(t, asker)
	ctx := context.Background()

	assert.True(t, r.handleLine(ctx, "   "))
	assert.Empty(t, asker.calls)

	assert.True(t, r.handleLine(ctx, "What should I drink?"))
	assert.Contains(t, out.String(), "Thinking..")
	assert.Contains(t, out.String(), "Try the Spanish Latte.\n")
	assert.Equal(t, 2, r.conv.history.Len())

	assert.True(t, r.handleLine(ctx, "and to eat?"))
	assert.Equal(t, []string{"What should I drink?", "Try the Spanish Latte.", "and to eat?"}, asker.calls[1])

	out.Reset()
	assert.True(t, r.handleLine(ctx, "/history"))
	assert.Contains(t, out.String(), "What should I drink?")

	assert.True(t, r.handleLine(ctx, "/clear"))
	assert.True(t, r.conv.history.IsEmpty())

	out.Reset()
	assert.True(t, r.handleLine(ctx, "/bogus"))
	assert.Contains(t, out.String(), "Unknown command")

	assert.False(t, r.handleLine(ctx, "/quit"))
	assert.False(t, r.handleLine(ctx, "EXIT"))
	assert.False(t, r.interrupt())
}

func TestReplFailureKeepsUserMessage(t *testing.T) {
	r, out := newTestRepl(t, &fakeAsker{err: &agent.AgentError{Status: 401, Message: "Invalid API key"}})

	assert.True(t, r.handleLine(context.Background(), "hello"))
	assert.Contains(t, out.String(), "Invalid API key")
	require.Equal(t, 1, r.conv.history.Len())
	assert.True(t, r.conv.history.Last().IsUser())
}

func TestFailureText(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"cancelled", agent.ErrCancelled, chat.StoppedText},
		{"agent message", &agent.AgentError{Status: 500, Message: "boom"}, "boom"},
		{"timeout", agent.ErrTimeout, "The agent took too long to respond."},
		{"other", errors.New("dial tcp: refused"), "Unexpected error: dial tcp: refused"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, failureText(tc.err))
		})
	}
}

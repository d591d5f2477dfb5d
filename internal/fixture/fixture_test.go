package fixture

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func post(t *testing.T, url, body string) gjson.Result {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return gjson.ParseBytes(raw)
}

// ---- Seed ---------------------------------------------------------------------

func TestDefaultSeed_IsValid(t *testing.T) {
	t.Parallel()

	snap := DefaultSeed().Snapshot()
	require.NoError(t, snap.Validate())
	assert.Len(t, snap.Phases, 3)
	assert.Len(t, snap.Tasks, 8)
}

func TestLoadSeed_YAML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "seed.yaml", `
message: "Octopuses have three hearts."
phases:
  - name: Setup
    tasks:
      - name: Pick a name
        completed: true
  - name: Build
    tasks:
      - id: "b1"
        name: Ship it
`)
	s, err := LoadSeed(path)
	require.NoError(t, err)
	assert.Equal(t, "Octopuses have three hearts.", s.Message)

	snap := s.Snapshot()
	require.Len(t, snap.Phases, 2)
	assert.Equal(t, 1, snap.Phases[0].Order)
	assert.Equal(t, "2", snap.Phases[1].PhaseID)
	require.Len(t, snap.Tasks, 2)
	assert.Equal(t, "1.1", snap.Tasks[0].TaskID)
	assert.True(t, snap.Tasks[0].IsCompleted)
	assert.Equal(t, "b1", snap.Tasks[1].TaskID)
}

func TestLoadSeed_TOML(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "seed.toml", `
[[phases]]
id = "p1"
name = "Setup"
order = 1

[[phases.tasks]]
id = "t1"
name = "Pick a name"
`)
	s, err := LoadSeed(path)
	require.NoError(t, err)
	snap := s.Snapshot()
	require.Len(t, snap.Tasks, 1)
	assert.Equal(t, "p1", snap.Tasks[0].PhaseID)
}

func TestLoadSeed_Errors(t *testing.T) {
	t.Parallel()

	_, err := LoadSeed(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "phases: [")
	_, err = LoadSeed(bad)
	assert.Error(t, err)

	dup := writeFile(t, "dup.yaml", `
phases:
  - {id: "1", name: A, order: 1}
  - {id: "2", name: B, order: 1}
`)
	_, err = LoadSeed(dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "share order")
}

// ---- Server -------------------------------------------------------------------

func TestServer_LoadQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewServer(DefaultSeed()).Router())
	t.Cleanup(srv.Close)

	res := post(t, srv.URL+GraphQLPath, `{"query":"query GetAllPhasesAndTasks { returnAllPhases { phaseId } returnAllTasks { taskId } }"}`)
	assert.Equal(t, int64(3), res.Get("data.returnAllPhases.#").Int())
	assert.Equal(t, int64(8), res.Get("data.returnAllTasks.#").Int())
	assert.Equal(t, "Foundation", res.Get("data.returnAllPhases.0.name").String())
	assert.False(t, res.Get("errors").Exists())
}

func TestServer_UpdateMutation(t *testing.T) {
	t.Parallel()

	fx := NewServer(DefaultSeed())
	srv := httptest.NewServer(fx.Router())
	t.Cleanup(srv.Close)

	res := post(t, srv.URL, `{"query":"mutation updateTaskIsCompleted($taskId: ID!, $isCompleted: Boolean!) { updateTaskIsCompleted(data: {taskId: $taskId, isCompleted: $isCompleted}) { phaseId isCompleted } }","variables":{"taskId":"5","isCompleted":true}}`)
	assert.Equal(t, "2", res.Get("data.updateTaskIsCompleted.phaseId").String())
	assert.True(t, res.Get("data.updateTaskIsCompleted.isCompleted").Bool())
	assert.Equal(t, 1, fx.Updates())
	assert.True(t, fx.Snapshot().Tasks[4].IsCompleted)
}

func TestServer_UpdateUnknownTask(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewServer(DefaultSeed()).Router())
	t.Cleanup(srv.Close)

	res := post(t, srv.URL, `{"query":"mutation { updateTaskIsCompleted }","variables":{"taskId":"404","isCompleted":true}}`)
	assert.Contains(t, res.Get("errors.0.message").String(), "not found")
}

func TestServer_BadRequests(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(NewServer(DefaultSeed()).Router())
	t.Cleanup(srv.Close)

	res := post(t, srv.URL, `not json`)
	assert.True(t, res.Get("errors").Exists())

	res = post(t, srv.URL, `{"query":"{ somethingElse }"}`)
	assert.Equal(t, "unsupported operation", res.Get("errors.0.message").String())
}

func TestServer_FactAndHealth(t *testing.T) {
	t.Parallel()

	seed := DefaultSeed()
	seed.Message = "Honey never spoils."
	srv := httptest.NewServer(NewServer(seed).Router())
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL + FactPath)
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, "Honey never spoils.", gjson.GetBytes(raw, "text").String())

	resp, err = http.Get(srv.URL + HealthPath)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_ListenAndServeStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)

	go func() {
		done <- NewServer(DefaultSeed()).ListenAndServe(ctx, "127.0.0.1:0", ready)
	}()

	var addr string
	select {
	case addr = <-ready:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get("http://" + addr + HealthPath)
	require.NoError(t, err)
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not stop")
	}
}

package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbdelazizMoustafa10m/Waypoint/internal/config"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/fixture"
	"github.com/AbdelazizMoustafa10m/Waypoint/internal/progress"
)

// completedIDs lists the task IDs the fixture reports as completed.
func completedIDs(srv *fixture.Server) []string {
	var ids []string
	for _, task := range srv.Snapshot().Tasks {
		if task.IsCompleted {
			ids = append(ids, task.TaskID)
		}
	}
	return ids
}

// stubSelect replaces the interactive picker for the duration of the test.
func stubSelect(t *testing.T, fn func([]progress.Checkbox, bool) ([]string, error)) {
	t.Helper()
	orig := selectTasks
	selectTasks = fn
	t.Cleanup(func() { selectTasks = orig })
}

// stubGateway makes buildModel use gw for the duration of the test.
func stubGateway(t *testing.T, gw progress.Gateway) {
	t.Helper()
	orig := newGateway
	newGateway = func(*config.Config) progress.Gateway { return gw }
	t.Cleanup(func() { newGateway = orig })
}

func TestCheckCmd_Flags(t *testing.T) {
	for _, name := range []string{"check", "uncheck"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.NotNil(t, cmd.Flags().Lookup("force"))
		assert.NotNil(t, cmd.Flags().Lookup("gating"))
		f := cmd.Flags().Lookup("concurrency")
		require.NotNil(t, f)
		assert.Equal(t, "4", f.DefValue)
	}
}

func TestCheckCmd_UnlocksPhaseInOrder(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, fixture.DefaultSeed())

	// Task 5 is in Discovery, which unlocks once 1-4 are applied.
	out, err := runCLI(t, "check", "--config", cfg, "1", "2", "3", "4", "5")
	require.NoError(t, err)

	assert.Contains(t, out, "[x] Setup virtual office")
	assert.Contains(t, out, "[x] Create roadmap")
	assert.ElementsMatch(t, []string{"1", "2", "3", "4", "5"}, completedIDs(srv))
	assert.Equal(t, 5, srv.Updates())
}

func TestCheckCmd_LockedPhaseRefused(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, fixture.DefaultSeed())

	_, err := runCLI(t, "check", "--config", cfg, "5")
	require.Error(t, err)
	assert.ErrorIs(t, err, progress.ErrPhaseLocked)
	assert.Zero(t, srv.Updates(), "nothing is written when a task is refused")
}

func TestCheckCmd_ForceBypassesGating(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, fixture.DefaultSeed())

	_, err := runCLI(t, "check", "--config", cfg, "--force", "8")
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, completedIDs(srv))
}

func TestCheckCmd_UnknownTask(t *testing.T) {
	resetRootCmd(t)
	_, cfg := startBackend(t, fixture.DefaultSeed())

	_, err := runCLI(t, "check", "--config", cfg, "404")
	require.Error(t, err)
	assert.ErrorIs(t, err, progress.ErrNotFound)
}

func TestCheckCmd_InvalidConcurrency(t *testing.T) {
	resetRootCmd(t)
	_, cfg := startBackend(t, fixture.DefaultSeed())

	_, err := runCLI(t, "check", "--config", cfg, "--concurrency", "0", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--concurrency must be at least 1")
}

func TestCheckCmd_AllDoneShowsClosingMessage(t *testing.T) {
	resetRootCmd(t)
	_, cfg := startBackend(t, fixture.DefaultSeed())

	out, err := runCLI(t, "check", "--config", cfg, "1", "2", "3", "4", "5", "6", "7", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "[x] Release MVP")
	assert.Contains(t, out, "All done! "+fixture.DefaultMessage)
}

func TestUncheckCmd(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, completedSeed())

	out, err := runCLI(t, "uncheck", "--config", cfg, "8")
	require.NoError(t, err)
	assert.Contains(t, out, "[ ] Release MVP")
	assert.NotContains(t, completedIDs(srv), "8")
	assert.Len(t, completedIDs(srv), 7)
}

func TestUncheckCmd_CascadeUncheck(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, completedSeed())

	_, err := runCLI(t, "uncheck", "--config", cfg, "--cascade-uncheck", "1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"2", "3", "4"}, completedIDs(srv),
		"later phases are reopened along with the task")
}

func TestCheckCmd_InteractivePicker(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, fixture.DefaultSeed())

	var offered []string
	stubSelect(t, func(candidates []progress.Checkbox, isCompleted bool) ([]string, error) {
		assert.True(t, isCompleted)
		for _, c := range candidates {
			offered = append(offered, c.ID)
		}
		return []string{"2"}, nil
	})

	_, err := runCLI(t, "check", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4"}, offered, "only unlocked, unchecked tasks are offered")
	assert.Equal(t, []string{"2"}, completedIDs(srv))
}

func TestCheckCmd_InteractivePickerCancelled(t *testing.T) {
	resetRootCmd(t)
	srv, cfg := startBackend(t, fixture.DefaultSeed())
	stubSelect(t, func([]progress.Checkbox, bool) ([]string, error) { return nil, nil })

	_, err := runCLI(t, "check", "--config", cfg)
	require.NoError(t, err)
	assert.Zero(t, srv.Updates())
}

func TestCheckCmd_NothingToChange(t *testing.T) {
	resetRootCmd(t)
	_, cfg := startBackend(t, completedSeed())
	stubSelect(t, func([]progress.Checkbox, bool) ([]string, error) {
		t.Fatal("picker must not open with no candidates")
		return nil, nil
	})

	_, err := runCLI(t, "check", "--config", cfg)
	require.NoError(t, err)
}

func TestCheckCmd_PersistFailure(t *testing.T) {
	resetRootCmd(t)
	gw := progress.NewMockGateway(fixture.DefaultSeed().Snapshot())
	gw.SetErr = errors.New("boom")
	stubGateway(t, gw)
	cfg := writeConfig(t, "")

	_, err := runCLI(t, "check", "--config", cfg, "1", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "saving 2 of 2 tasks failed")
	assert.Contains(t, err.Error(), "task 1: boom")
	assert.Len(t, gw.Completions(), 2)
}

func TestChangeableTasks(t *testing.T) {
	gw := progress.NewMockGateway(fixture.DefaultSeed().Snapshot())
	model := progress.NewModel(gw, progress.Options{MountCheck: progress.MountCheckOff})
	_, err := model.Loaded(gw.Snapshot, nil)
	require.NoError(t, err)

	assert.Len(t, changeableTasks(model, true, false), 4)
	assert.Len(t, changeableTasks(model, true, true), 8)
	assert.Empty(t, changeableTasks(model, false, true), "nothing is completed yet")
}

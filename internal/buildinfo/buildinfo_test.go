package buildinfo

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info Info
		want string
	}{
		{"dev build", Info{Version: "dev", Commit: "unknown", Date: "unknown"}, "waypoint vdev (commit: unknown, built: unknown)"},
		{"release", Info{Version: "0.3.0", Commit: "a1b2c3d", Date: "2026-10-01T10:00:00Z"}, "waypoint v0.3.0 (commit: a1b2c3d, built: 2026-10-01T10:00:00Z)"},
		{"zero value", Info{}, "waypoint v (commit: , built: )"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestGetInfo_ReportsGoVersion(t *testing.T) {
	t.Parallel()

	info := GetInfo()
	assert.NotEmpty(t, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestResolve_StampedVersionSkipsBuildInfo(t *testing.T) {
	t.Parallel()

	called := false
	info := resolve("1.2.0", "abc1234", "today", func() (*debug.BuildInfo, bool) {
		called = true
		return nil, false
	})
	assert.False(t, called)
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, "abc1234", info.Commit)
}

func TestResolve_DevFallsBackToModuleVersion(t *testing.T) {
	t.Parallel()

	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			Main: debug.Module{Version: "v0.4.1"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "0123456789abcdef"},
				{Key: "vcs.time", Value: "2026-09-30T12:00:00Z"},
			},
		}, true
	}
	info := resolve("dev", "unknown", "unknown", read)

	assert.Equal(t, "v0.4.1", info.Version)
	assert.Equal(t, "0123456", info.Commit)
	assert.Equal(t, "2026-09-30T12:00:00Z", info.Date)
}

func TestResolve_DevelModuleKeepsDev(t *testing.T) {
	t.Parallel()

	read := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}, true
	}
	info := resolve("dev", "unknown", "unknown", read)
	assert.Equal(t, "dev", info.Version)
	assert.Equal(t, "unknown", info.Commit)
}

func TestInfoJSON_Keys(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Info{Version: "1", Commit: "c", Date: "d", GoVersion: "go1.24"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1","commit":"c","date":"d","goVersion":"go1.24"}`, string(data))
}

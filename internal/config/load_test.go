package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeConfig writes body to dir/waypoint.toml and returns its path.
func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

const fullConfig = `
[backend]
endpoint = "http://api.internal:4000/graphql"
timeout = "3s"
user_agent = "waypoint-test"
verbose = true
max_body_log_size = 512

[message]
endpoint = "http://facts.internal/random.json"
timeout = "1500ms"

[progress]
title = "Launch Plan"
gating = "chain"
mount_check = "after-load"
cascade_uncheck = true

[serve]
addr = ":8080"
seed = "seed.yaml"

[ui]
log_file = "waypoint.log"
`

func TestLoadFromFile_Full(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, t.TempDir(), fullConfig)

	cfg, md, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.internal:4000/graphql", cfg.Backend.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "waypoint-test", cfg.Backend.UserAgent)
	assert.True(t, cfg.Backend.Verbose)
	assert.Equal(t, 512, cfg.Backend.MaxBodyLogSize)

	assert.Equal(t, "http://facts.internal/random.json", cfg.Message.Endpoint)
	assert.Equal(t, 1500*time.Millisecond, cfg.Message.Timeout)

	assert.Equal(t, "Launch Plan", cfg.Progress.Title)
	assert.Equal(t, "chain", cfg.Progress.Gating)
	assert.Equal(t, "after-load", cfg.Progress.MountCheck)
	assert.True(t, cfg.Progress.CascadeUncheck)

	assert.Equal(t, ":8080", cfg.Serve.Addr)
	assert.Equal(t, "seed.yaml", cfg.Serve.Seed)
	assert.Equal(t, "waypoint.log", cfg.UI.LogFile)

	assert.Empty(t, md.Undecoded())
}

func TestLoadFromFile_Partial(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, t.TempDir(), "[progress]\ngating = \"chain\"\n")

	cfg, _, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "chain", cfg.Progress.Gating)
	assert.Empty(t, cfg.Backend.Endpoint)
	assert.Zero(t, cfg.Backend.Timeout)
}

func TestLoadFromFile_UnknownKeys(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, t.TempDir(), "[backend]\nendpoint = \"http://x/\"\nretries = 3\n\n[extra]\nfoo = 1\n")

	_, md, err := LoadFromFile(path)
	require.NoError(t, err)

	var keys []string
	for _, k := range md.Undecoded() {
		keys = append(keys, k.String())
	}
	assert.Contains(t, keys, "backend.retries")
	assert.Contains(t, keys, "extra.foo")
}

func TestLoadFromFile_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, _, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading config")
	})

	t.Run("invalid syntax", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "[backend\nendpoint = ")
		_, _, err := LoadFromFile(path)
		require.Error(t, err)
	})

	t.Run("wrong type", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, t.TempDir(), "[progress]\ncascade_uncheck = \"yes\"\n")
		_, _, err := LoadFromFile(path)
		require.Error(t, err)
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	want := writeConfig(t, root, "")
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	t.Run("same directory", func(t *testing.T) {
		t.Parallel()
		got, err := FindConfigFile(root)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("walks up from nested directory", func(t *testing.T) {
		t.Parallel()
		got, err := FindConfigFile(nested)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestFindConfigFile_NotFound(t *testing.T) {
	t.Parallel()

	// A temp dir may sit below a directory holding waypoint.toml on odd
	// machines; only assert no error and no match inside the temp tree.
	dir := t.TempDir()
	got, err := FindConfigFile(dir)
	require.NoError(t, err)
	if got != "" {
		assert.NotContains(t, got, dir)
	}
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	d := NewDefaults()

	assert.Equal(t, "http://localhost:3000/", d.Backend.Endpoint)
	assert.Equal(t, 10*time.Second, d.Backend.Timeout)
	assert.Equal(t, "https://uselessfacts.jsph.pl/random.json", d.Message.Endpoint)
	assert.Equal(t, "My Startup Progress", d.Progress.Title)
	assert.Equal(t, "previous", d.Progress.Gating)
	assert.Equal(t, "before-load", d.Progress.MountCheck)
	assert.False(t, d.Progress.CascadeUncheck)
	assert.Equal(t, "127.0.0.1:3000", d.Serve.Addr)

	vr := Validate(d, nil)
	assert.False(t, vr.HasErrors(), "defaults must validate: %v", vr.Issues)
}

func TestLoadFromFile_TooLarge(t *testing.T) {
	t.Parallel()

	body := "# " + strings.Repeat("x", maxConfigFileSize) + "\n"
	path := writeConfig(t, t.TempDir(), body)
	_, _, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestLocate(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	found := writeConfig(t, root, "")
	other := filepath.Join(t.TempDir(), "other.toml")
	require.NoError(t, os.WriteFile(other, nil, 0o644))
	envWith := func(v string) EnvFunc {
		return func(key string) (string, bool) {
			if key == ConfigEnvVar {
				return v, true
			}
			return "", false
		}
	}

	t.Run("explicit wins over env", func(t *testing.T) {
		t.Parallel()
		got, err := Locate(other, envWith(found), root)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("env wins over search", func(t *testing.T) {
		t.Parallel()
		got, err := Locate("", envWith(other), root)
		require.NoError(t, err)
		assert.Equal(t, other, got)
	})

	t.Run("empty env falls back to search", func(t *testing.T) {
		t.Parallel()
		got, err := Locate("", envWith(""), root)
		require.NoError(t, err)
		assert.Equal(t, found, got)
	})

	t.Run("missing explicit file", func(t *testing.T) {
		t.Parallel()
		_, err := Locate(filepath.Join(root, "nope.toml"), nil, root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--config")
	})

	t.Run("missing env file", func(t *testing.T) {
		t.Parallel()
		_, err := Locate("", envWith(filepath.Join(root, "nope.toml")), root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ConfigEnvVar)
	})

	t.Run("directory rejected", func(t *testing.T) {
		t.Parallel()
		_, err := Locate(root, nil, root)
		require.Error(t, err)
	})
}

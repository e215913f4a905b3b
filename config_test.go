package mdblog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdblog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: Field Notes
url: https://notes.test/
log_level: warn
posts: [first, "", second]
worker:
  version: "2024-05-01-10-00"
  network_timeout: 5s
pages:
  about:
    title: About me
    content: Hi.
`), 0o644))
	t.Setenv("MDBLOG_DESCRIPTION", "Notes from the field")
	t.Setenv("MDBLOG_WORKER__CACHE_PATH", "/tmp/cache.db")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "Field Notes", cfg.Name)
	assert.Equal(t, "https://notes.test", cfg.URL)
	assert.Equal(t, "Notes from the field", cfg.Description)
	assert.Equal(t, log.WARN, cfg.Level())
	assert.Equal(t, []string{"first", "second"}, cfg.Posts)
	assert.Equal(t, "2024-05-01-10-00", cfg.Worker.Version)
	assert.Equal(t, "/tmp/cache.db", cfg.Worker.CachePath)
	assert.Equal(t, 5*time.Second, cfg.Worker.NetworkTimeout)
	assert.Equal(t, "About me", cfg.Pages["about"].Title)

	// defaults
	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, DefaultCategories, cfg.Categories)
	assert.Equal(t, 6, cfg.PostsPerPage)
	assert.Equal(t, 24*time.Hour, cfg.Worker.CleanMaxAge)
	assert.Equal(t, 7*24*time.Hour, cfg.Worker.SweepMaxAge)
	assert.Contains(t, cfg.Worker.Precache, "/")
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "Blog", cfg.Name)
	assert.Equal(t, "http://localhost:3000", cfg.URL)
	assert.Equal(t, "1", cfg.Worker.Version)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad url", "url: ftp://blog.test\n"},
		{"bad log level", "log_level: loud\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "mdblog.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))
			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSiteConfig_SaveRoundTrip(t *testing.T) {
	cfg := SiteConfig{Name: "Round Trip", URL: "https://rt.test"}
	cfg.setDefaults()
	cfg.Worker.Version = "2024-06-01-09-30"

	path := filepath.Join(t.TempDir(), "mdblog.yaml")
	require.NoError(t, cfg.Save(path))

	got, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Name, got.Name)
	assert.Equal(t, cfg.URL, got.URL)
	assert.Equal(t, cfg.Categories, got.Categories)
	assert.Equal(t, cfg.Worker.Version, got.Worker.Version)
	assert.Equal(t, cfg.Worker.Precache, got.Worker.Precache)
	assert.Equal(t, cfg.Worker.NetworkTimeout, got.Worker.NetworkTimeout)
	assert.Equal(t, cfg.PostCacheTTL, got.PostCacheTTL)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/mdblog"
	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
)

func TestCreatePost(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 5, 17, 9, 0, 0, 0, time.UTC)

	path, err := createPost(dir, "Hello, World!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "hello-world.md"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	p := markdown.NewParser().Parse(string(raw), "hello-world")
	assert.Equal(t, "Hello, World!", p.Title)
	assert.Equal(t, "2024-05-17", p.Date)

	_, err = createPost(dir, "Hello World", now)
	assert.Error(t, err, "existing slug")

	_, err = createPost(dir, "!!!", now)
	assert.Error(t, err, "empty slug")
}

func TestWriteSitemap(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.md"), []byte("# A"), 0o644))
	slugs, err := content.DirStore{Dir: src}.Slugs()
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "public")
	cfg := mdblog.SiteConfig{URL: "https://blog.test", Categories: []string{"life"}}
	require.NoError(t, writeSitemap(out, cfg, slugs))

	sitemap, err := os.ReadFile(filepath.Join(out, "sitemap.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(sitemap), "<loc>https://blog.test/post/a</loc>")
	assert.Contains(t, string(sitemap), "<loc>https://blog.test/category/life</loc>")

	robots, err := os.ReadFile(filepath.Join(out, "robots.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(string(robots), "Sitemap: https://blog.test/sitemap.xml\n"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"version"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "mdblog dev\n", out.String())
}

func TestCacheVersionCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mdblog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: https://blog.test\nworker:\n  version: old\n"), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"cache-version", "--config", path})
	require.NoError(t, rootCmd.Execute())

	cfg, err := mdblog.LoadConfig(path)
	require.NoError(t, err)
	assert.NotEqual(t, "old", cfg.Worker.Version)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}-\d{2}-\d{2}$`, cfg.Worker.Version)
	assert.Contains(t, out.String(), "old -> "+cfg.Worker.Version)
	assert.Equal(t, "https://blog.test", cfg.URL)
}

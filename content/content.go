// Package content loads raw markdown post sources, either over HTTP from the
// origin that serves /posts/<slug>.md or from a directory on disk.
package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/eringen/mdblog/post"
)

// ErrInvalidSlug is returned for slugs that could escape the posts directory.
var ErrInvalidSlug = errors.New("invalid slug")

// maxPostSize caps the size of a single markdown source.
const maxPostSize = 4 << 20

// ValidSlug reports whether slug is safe to use as a file name.
func ValidSlug(slug string) bool {
	if slug == "" || slug == "." || slug == ".." {
		return false
	}
	return !strings.ContainsAny(slug, `/\`) && !strings.Contains(slug, "..")
}

// HTTPStore fetches <BaseURL>/posts/<slug>.md. Point Client.Transport at a
// worker.Worker to route the fetches through the cache.
type HTTPStore struct {
	BaseURL string
	Client  *http.Client
}

var _ post.ContentStore = (*HTTPStore)(nil)

// NewHTTPStore returns an HTTPStore using client, or http.DefaultClient when
// client is nil.
func NewHTTPStore(baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

// URL returns the source URL for slug.
func (s *HTTPStore) URL(slug string) string {
	return s.BaseURL + "/posts/" + slug + ".md"
}

func (s *HTTPStore) Load(ctx context.Context, slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL(slug), nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", slug, err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", slug, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%w: %s", post.ErrNotFound, slug)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("fetching %s: unexpected status %d", slug, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPostSize))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", slug, err)
	}
	return string(body), nil
}

// DirStore reads <Dir>/<slug>.md from disk.
type DirStore struct {
	Dir string
}

var _ post.ContentStore = DirStore{}

func (s DirStore) Load(_ context.Context, slug string) (string, error) {
	if !ValidSlug(slug) {
		return "", fmt.Errorf("%w: %q", ErrInvalidSlug, slug)
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, slug+".md"))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", post.ErrNotFound, slug)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", slug, err)
	}
	return string(b), nil
}

// Slugs lists the slug of every *.md file in Dir, sorted.
func (s DirStore) Slugs() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", s.Dir, err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".md" {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(slugs)
	return slugs, nil
}

package post_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/eringen/mdblog/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore serves raw "markdown" that is simply the slug; failing slugs
// return an error the way a non-2xx fetch would.
type fakeStore struct {
	failing map[string]bool
	loads   atomic.Int32
}

func (s *fakeStore) Load(ctx context.Context, slug string) (string, error) {
	s.loads.Add(1)
	if s.failing[slug] {
		return "", fmt.Errorf("HTTP 404 for %s", slug)
	}
	return slug, nil
}

// fakeParser returns canned posts keyed by slug.
type fakeParser map[string]post.Post

func (p fakeParser) Parse(raw, slug string) post.Post {
	out := p[raw]
	out.Slug = slug
	return out
}

func newRepo(t *testing.T, posts fakeParser, slugs []string, failing ...string) (*post.Repository, *fakeStore) {
	t.Helper()
	store := &fakeStore{failing: map[string]bool{}}
	for _, f := range failing {
		store.failing[f] = true
	}
	return post.NewRepository(store, posts, slugs), store
}

func slugsOf(posts []post.Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.Slug
	}
	return out
}

func TestRepository_GetAllPosts(t *testing.T) {
	t.Parallel()

	parser := fakeParser{
		"old":    {Title: "Old", Date: "2024-01-01"},
		"new":    {Title: "New", Date: "2025-06-01"},
		"middle": {Title: "Middle", Date: "2024-09-15"},
		"twin":   {Title: "Twin", Date: "2024-09-15"},
	}
	slugs := []string{"old", "new", "middle", "twin"}

	t.Run("sorts by date descending and keeps enumeration order for ties", func(t *testing.T) {
		t.Parallel()
		repo, _ := newRepo(t, parser, slugs)

		posts, err := repo.GetAllPosts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "middle", "twin", "old"}, slugsOf(posts))
	})

	t.Run("removing one post's availability removes exactly that post", func(t *testing.T) {
		t.Parallel()
		repo, _ := newRepo(t, parser, slugs, "middle")

		posts, err := repo.GetAllPosts(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "twin", "old"}, slugsOf(posts))
	})

	t.Run("returns an empty list when every load fails", func(t *testing.T) {
		t.Parallel()
		repo, _ := newRepo(t, parser, slugs, slugs...)

		posts, err := repo.GetAllPosts(context.Background())
		require.NoError(t, err)
		assert.Empty(t, posts)
	})

	t.Run("returns the context error when cancelled", func(t *testing.T) {
		t.Parallel()
		repo, _ := newRepo(t, parser, slugs)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := repo.GetAllPosts(ctx)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestRepository_TTL(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failing: map[string]bool{}}
	repo := post.NewRepository(store, fakeParser{"a": {Date: "2024-01-01"}}, []string{"a"}, post.WithTTL(time.Minute))

	_, err := repo.GetAllPosts(context.Background())
	require.NoError(t, err)
	_, err = repo.GetAllPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), store.loads.Load())

	repo.Invalidate()
	_, err = repo.GetAllPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), store.loads.Load())
}

func TestRepository_CallersCannotMutateMemo(t *testing.T) {
	t.Parallel()

	store := &fakeStore{failing: map[string]bool{}}
	repo := post.NewRepository(store, fakeParser{"a": {Tags: []string{"go", "web"}}}, []string{"a"}, post.WithTTL(time.Minute))
	ctx := context.Background()

	first, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	first[0].Tags[0] = "mutated"
	first[0].Tags = append(first[0].Tags, "extra")

	again, err := repo.GetAllPosts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, again[0].Tags)
	assert.Equal(t, int32(1), store.loads.Load(), "served from memo")
}

func TestRepository_GetPostBySlug(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t, fakeParser{"hello": {Title: "Hello"}}, []string{"hello"}, "gone")

	p, err := repo.GetPostBySlug(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "Hello", p.Title)
	assert.Equal(t, "hello", p.Slug)

	_, err = repo.GetPostBySlug(context.Background(), "gone")
	assert.True(t, errors.Is(err, post.ErrNotFound))
}

func TestRepository_ListAllSlugs(t *testing.T) {
	t.Parallel()

	slugs := []string{"b", "a"}
	repo, _ := newRepo(t, fakeParser{}, slugs)
	got := repo.ListAllSlugs()
	assert.Equal(t, []string{"b", "a"}, got)

	got[0] = "mutated"
	assert.Equal(t, []string{"b", "a"}, repo.ListAllSlugs())
}

func TestRepository_GetPostsByCategory(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t, fakeParser{
		"a": {Date: "2024-01-01", Category: "reviews"},
		"b": {Date: "2024-01-02", Category: "finance"},
		"c": {Date: "2024-01-03", Category: "reviews"},
	}, []string{"a", "b", "c"})

	posts, err := repo.GetPostsByCategory(context.Background(), "reviews")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a"}, slugsOf(posts))
}

func TestRepository_GetRelatedPosts(t *testing.T) {
	t.Parallel()

	parser := fakeParser{
		"a": {Date: "2024-01-03", Tags: []string{"x", "y"}},
		"b": {Date: "2024-01-02", Tags: []string{"x"}},
		"c": {Date: "2024-01-01", Tags: []string{"x", "y", "z"}},
		"d": {Date: "2024-01-04", Tags: []string{"w"}},
	}
	repo, _ := newRepo(t, parser, []string{"a", "b", "c", "d"})

	current, err := repo.GetPostBySlug(context.Background(), "a")
	require.NoError(t, err)

	related, err := repo.GetRelatedPosts(context.Background(), current)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, slugsOf(related))
}

func TestRepository_GetPostStats(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t, fakeParser{
		"a": {Content: "<p>one two</p>\n<p>three</p>"},
		"b": {Content: "<h1>four</h1>"},
	}, []string{"a", "b", "missing"}, "missing")

	stats, err := repo.GetPostStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, post.Stats{TotalPosts: 2, TotalWords: 4}, stats)
}

func TestRepository_GetTagsWithFrequency(t *testing.T) {
	t.Parallel()

	repo, _ := newRepo(t, fakeParser{
		"a": {Tags: []string{"go", "web"}},
		"b": {Tags: []string{"go"}},
		"c": {Tags: []string{"go", "db", "web"}},
	}, []string{"a", "b", "c"})

	tags, err := repo.GetTagsWithFrequency(context.Background())
	require.NoError(t, err)
	require.Len(t, tags, 3)
	assert.Equal(t, post.TagFrequency{Name: "go", Count: 3, Size: post.MaxTagSize}, tags[0])
	assert.Equal(t, "web", tags[1].Name)
	assert.InDelta(t, 1.7, tags[1].Size, 1e-9)
	assert.Equal(t, post.TagFrequency{Name: "db", Count: 1, Size: post.MinTagSize}, tags[2])

	all, err := repo.GetAllTags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"db", "go", "web"}, all)
}

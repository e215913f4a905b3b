package post_test

import (
	"testing"

	"github.com/eringen/mdblog/post"
	"github.com/stretchr/testify/assert"
)

func TestFilterPosts(t *testing.T) {
	t.Parallel()

	posts := []post.Post{
		{Slug: "rust", Title: "Rust Basics", Tags: []string{"rust", "systems"}, Category: "information"},
		{Slug: "go", Title: "Go Routines", Tags: []string{"concurrency"}, Category: "information"},
		{Slug: "trip", Title: "Kyoto", Summary: "Autumn leaves", Content: "<p>temples</p>", Tags: []string{"travel"}, Category: "travel"},
	}

	tests := []struct {
		name   string
		filter post.Filter
		want   []string
	}{
		{"no filter keeps everything", post.Filter{}, []string{"rust", "go", "trip"}},
		{"search is case-insensitive on title", post.Filter{Search: "go"}, []string{"go"}},
		{"search matches summary", post.Filter{Search: "AUTUMN"}, []string{"trip"}},
		{"search matches rendered content", post.Filter{Search: "temple"}, []string{"trip"}},
		{"search matches tag substrings", post.Filter{Search: "system"}, []string{"rust"}},
		{"tag requires exact membership", post.Filter{Tag: "sys"}, nil},
		{"tag filter", post.Filter{Tag: "travel"}, []string{"trip"}},
		{"category filter", post.Filter{Category: "information"}, []string{"rust", "go"}},
		{"all filters must match", post.Filter{Search: "rust", Category: "travel"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := post.FilterPosts(posts, tt.filter)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, slugsOf(got))
		})
	}
}

func TestRelatedPosts(t *testing.T) {
	t.Parallel()

	a := post.Post{Slug: "a", Tags: []string{"x", "y"}}
	posts := []post.Post{
		a,
		{Slug: "b", Tags: []string{"x"}},
		{Slug: "c", Tags: []string{"x", "y", "z"}},
		{Slug: "d", Tags: []string{"q"}},
		{Slug: "e", Tags: []string{"y"}},
		{Slug: "f", Tags: []string{"x", "y"}},
	}

	related := post.RelatedPosts(a, posts, post.MaxRelated)

	assert.Equal(t, []string{"c", "f", "b"}, slugsOf(related))
	for _, p := range related {
		assert.NotEqual(t, a.Slug, p.Slug)
	}
}

func TestRelatedPosts_RepeatedTagCountsOnce(t *testing.T) {
	t.Parallel()

	current := post.Post{Slug: "cur", Tags: []string{"go", "web"}}
	posts := []post.Post{
		current,
		{Slug: "dup", Tags: []string{"go", "go"}},
		{Slug: "two", Tags: []string{"go", "web"}},
	}

	assert.Equal(t, []string{"two", "dup"}, slugsOf(post.RelatedPosts(current, posts, post.MaxRelated)))
}

func TestRelatedPosts_NoSharedTags(t *testing.T) {
	t.Parallel()

	a := post.Post{Slug: "a"}
	related := post.RelatedPosts(a, []post.Post{a, {Slug: "b", Tags: []string{"x"}}}, post.MaxRelated)
	assert.Empty(t, related)
}

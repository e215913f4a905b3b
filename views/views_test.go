package views

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/mdblog/post"
)

var site = SiteConfig{Name: "Blog", URL: "https://blog.test", Author: "Ada", Categories: []string{"travel"}}

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestIndex(t *testing.T) {
	posts := []post.Post{
		{Slug: "kyoto", Title: "Kyoto <Autumn>", Date: "2024-05-01", Summary: "Leaves", Tags: []string{"travel"}, Category: "travel", Content: "<p>x</p>"},
	}
	out := renderString(t, Index(IndexData{
		Site:  site,
		Page:  post.Page{Posts: posts, Number: 2, TotalPages: 3, Total: 13},
		Links: post.PaginationRange(2, 3),
		Tags:  []post.TagFrequency{{Name: "travel", Count: 1, Size: post.MinTagSize}},
		Tag:   "travel",
	}))

	assert.Contains(t, out, `<a href="/post/kyoto">Kyoto &lt;Autumn&gt;</a>`)
	assert.NotContains(t, out, "<Autumn>")
	assert.Contains(t, out, `href="/category/travel"`)
	assert.Contains(t, out, `<span class="current">2</span>`)
	assert.Contains(t, out, `href="/?page=3&amp;tag=travel"`)
	assert.Contains(t, out, `href="/?tag=travel"`)
	assert.Contains(t, out, "font-size: 1.20rem")
	assert.Contains(t, out, `<script src="/assets/app.js" defer></script>`)
}

func TestIndexEmpty(t *testing.T) {
	out := renderString(t, Index(IndexData{Site: site, Category: "finance"}))
	assert.Contains(t, out, "No posts found.")
	assert.Contains(t, out, "<title>Finance | Blog</title>")
	assert.NotContains(t, out, `class="pagination"`)
}

func TestPost(t *testing.T) {
	d := PostData{
		Site:     site,
		Post:     post.Post{Slug: "a", Title: "A", Date: "2024-01-02", Tags: []string{"go"}, Content: "<p>Body <em>text</em></p>"},
		Related:  []post.Post{{Slug: "b", Title: "B"}},
		ReadTime: 4,
	}
	out := renderString(t, Post(d))

	assert.Contains(t, out, "<p>Body <em>text</em></p>")
	assert.Contains(t, out, "4 min read")
	assert.Contains(t, out, `<a href="/post/b">B</a>`)
	assert.Contains(t, out, `<link rel="canonical" href="https://blog.test/post/a">`)
	assert.Contains(t, out, `content="article"`)

	var ld map[string]any
	require.NoError(t, json.Unmarshal([]byte(BlogPostingJsonLD(d)), &ld))
	assert.Equal(t, "BlogPosting", ld["@type"])
	assert.Equal(t, "https://blog.test/post/a", ld["url"])
	assert.Equal(t, "PT4M", ld["timeRequired"])
}

func TestNotFoundAndError(t *testing.T) {
	assert.Contains(t, renderString(t, NotFound(site)), "<h1>404</h1>")
	assert.Contains(t, renderString(t, ServerError(site)), "Something went wrong")
}

func TestPageHref(t *testing.T) {
	tests := []struct {
		data     IndexData
		n        int
		expected string
	}{
		{IndexData{}, 1, "/"},
		{IndexData{}, 2, "/?page=2"},
		{IndexData{Category: "travel"}, 1, "/category/travel"},
		{IndexData{Search: "go lang"}, 3, "/?page=3&search=go+lang"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, pageHref(tt.data, tt.n))
	}
}

package post_test

import (
	"fmt"
	"testing"

	"github.com/eringen/mdblog/post"
	"github.com/stretchr/testify/assert"
)

func makePosts(n int) []post.Post {
	posts := make([]post.Post, n)
	for i := range posts {
		posts[i] = post.Post{Slug: fmt.Sprintf("p%d", i+1)}
	}
	return posts
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	posts := makePosts(14)

	page := post.Paginate(posts, 2, 6)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 14, page.Total)
	assert.Equal(t, []string{"p7", "p8", "p9", "p10", "p11", "p12"}, slugsOf(page.Posts))

	last := post.Paginate(posts, 99, 6)
	assert.Equal(t, 3, last.Number)
	assert.Equal(t, []string{"p13", "p14"}, slugsOf(last.Posts))

	first := post.Paginate(posts, 0, 0)
	assert.Equal(t, 1, first.Number)
	assert.Len(t, first.Posts, post.DefaultPerPage)

	empty := post.Paginate(nil, 1, 6)
	assert.Equal(t, 0, empty.TotalPages)
	assert.Empty(t, empty.Posts)
}

func TestPaginationRange(t *testing.T) {
	t.Parallel()

	gap := post.PageLink{Gap: true}
	n := func(i int) post.PageLink { return post.PageLink{Number: i} }

	tests := []struct {
		current, total int
		want           []post.PageLink
	}{
		{1, 1, []post.PageLink{n(1)}},
		{1, 3, []post.PageLink{n(1), n(2), n(3)}},
		{1, 10, []post.PageLink{n(1), n(2), gap, n(10)}},
		{5, 10, []post.PageLink{n(1), gap, n(4), n(5), n(6), gap, n(10)}},
		{10, 10, []post.PageLink{n(1), gap, n(9), n(10)}},
		{1, 0, nil},
	}
	for _, tt := range tests {
		got := post.PaginationRange(tt.current, tt.total)
		assert.Equal(t, tt.want, got, "PaginationRange(%d, %d)", tt.current, tt.total)
	}
}

func TestReadTimeAndWordCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, post.WordCount("<p>one <strong>two</strong></p>\n<p>three</p>"))
	assert.Equal(t, 1, post.ReadTime(post.Post{Content: "<p>short</p>"}))

	long := ""
	for i := 0; i < 401; i++ {
		long += "word "
	}
	assert.Equal(t, 3, post.ReadTime(post.Post{Content: long}))
}

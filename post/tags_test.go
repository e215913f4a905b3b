package post_test

import (
	"testing"

	"github.com/eringen/mdblog/post"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagFrequencies(t *testing.T) {
	t.Parallel()

	posts := []post.Post{
		{Tags: []string{"a", "b", "c"}},
		{Tags: []string{"a", "b"}},
		{Tags: []string{"a"}},
		{Tags: []string{"d"}},
	}

	tags := post.TagFrequencies(posts)

	memberships := 0
	for _, p := range posts {
		memberships += len(p.Tags)
	}
	sum := 0
	for _, tf := range tags {
		sum += tf.Count
		assert.GreaterOrEqual(t, tf.Size, post.MinTagSize)
		assert.LessOrEqual(t, tf.Size, post.MaxTagSize)
	}
	assert.Equal(t, memberships, sum)

	require.Len(t, tags, 4)
	assert.Equal(t, "a", tags[0].Name)
	assert.Equal(t, post.MaxTagSize, tags[0].Size)
	assert.Equal(t, "b", tags[1].Name)
	assert.InDelta(t, 1.7, tags[1].Size, 1e-9)
	assert.Equal(t, []string{"c", "d"}, []string{tags[2].Name, tags[3].Name})
}

func TestTagFrequencies_EqualCounts(t *testing.T) {
	t.Parallel()

	tags := post.TagFrequencies([]post.Post{{Tags: []string{"x", "y"}}})

	require.Len(t, tags, 2)
	for _, tf := range tags {
		assert.Equal(t, post.MinTagSize, tf.Size)
	}
}

func TestTagFrequencies_CountsPostsNotRepeats(t *testing.T) {
	t.Parallel()

	tags := post.TagFrequencies([]post.Post{
		{Slug: "dup", Tags: []string{"go", "go"}},
		{Slug: "other", Tags: []string{"rust"}},
	})

	require.Len(t, tags, 2)
	for _, tf := range tags {
		assert.Equal(t, 1, tf.Count, tf.Name)
		assert.Equal(t, post.MinTagSize, tf.Size, tf.Name)
	}
}

func TestTagFrequencies_NoPosts(t *testing.T) {
	t.Parallel()

	assert.Empty(t, post.TagFrequencies(nil))
}

func TestAllTags(t *testing.T) {
	t.Parallel()

	got := post.AllTags([]post.Post{{Tags: []string{"web", "go"}}, {Tags: []string{"go"}}})
	assert.Equal(t, []string{"go", "web"}, got)
}

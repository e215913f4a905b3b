// Package post holds the blog's content model and the repository that loads,
// parses and derives views (search, tags, related posts, stats) over posts.
package post

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a slug has no backing markdown resource.
var ErrNotFound = errors.New("post not found")

// DateLayout is the layout of front-matter dates and of the default date.
const DateLayout = "2006-01-02"

// Post is a parsed markdown document. Slug is assigned by the loader and is
// never read from front-matter.
type Post struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Content  string   `json:"content"`
	Category string   `json:"category,omitempty"`
}

// Link returns the post's page path.
func (p Post) Link() string {
	return "/post/" + p.Slug
}

// Time parses Date. Unparseable dates yield the zero time.
func (p Post) Time() time.Time {
	for _, layout := range []string{DateLayout, time.RFC3339, "2006-01-02 15:04", "2006/01/02"} {
		if t, err := time.Parse(layout, p.Date); err == nil {
			return t
		}
	}
	return time.Time{}
}

// HasTag reports exact membership of tag in the post's tags.
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// TagFrequency is one entry of the tag cloud.
type TagFrequency struct {
	Name  string  `json:"name"`
	Count int     `json:"count"`
	Size  float64 `json:"size"`
}

// Stats aggregates over all posts.
type Stats struct {
	TotalPosts int `json:"totalPosts"`
	TotalWords int `json:"totalWords"`
}

// Filter narrows a post list. Empty fields impose no constraint.
type Filter struct {
	Search   string
	Tag      string
	Category string
}

// ContentStore returns the raw markdown for a slug.
type ContentStore interface {
	Load(ctx context.Context, slug string) (string, error)
}

// Parser turns raw markdown into a Post.
type Parser interface {
	Parse(raw, slug string) Post
}

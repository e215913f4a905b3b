package views

import "github.com/eringen/mdblog/post"

// SiteConfig holds the site-wide settings every page needs.
type SiteConfig struct {
	Name        string
	URL         string
	Description string
	Author      string
	Categories  []string
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	JSONLD      string
}

// IndexData is the post list, optionally filtered.
type IndexData struct {
	Site     SiteConfig
	Page     post.Page
	Links    []post.PageLink
	Tags     []post.TagFrequency
	Tag      string
	Category string
	Search   string
}

// PostData is a single post with its related posts.
type PostData struct {
	Site     SiteConfig
	Post     post.Post
	Related  []post.Post
	ReadTime int
}

// TagsData is the tag cloud.
type TagsData struct {
	Site SiteConfig
	Tags []post.TagFrequency
}

// PageData is a static page; Content is rendered HTML.
type PageData struct {
	Site    SiteConfig
	Path    string
	Title   string
	Content string
}

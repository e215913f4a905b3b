package views

import (
	"fmt"
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/mdblog/post"
)

// Index lists a page of posts with the tag sidebar and pagination.
func Index(d IndexData) templ.Component {
	meta := PageMeta{URL: buildURL(d.Site.URL)}
	heading := "Latest posts"
	switch {
	case d.Category != "":
		heading = titleCase(d.Category)
		meta.Title = heading
		meta.URL = buildURL(d.Site.URL, "category", d.Category)
	case d.Tag != "":
		heading = "#" + d.Tag
		meta.Title = heading
	case d.Search != "":
		heading = "Search: " + d.Search
		meta.Title = heading
	}

	return page(d.Site, meta, func(h *htmlWriter) {
		h.raw(`<section class="posts"><h1>`)
		h.text(heading)
		h.raw("</h1>")
		h.raw(`<form class="search" action="/" method="get"><input type="search" name="search" placeholder="Search posts"`)
		h.attr("value", d.Search)
		h.raw("></form>")

		if len(d.Page.Posts) == 0 {
			h.raw(`<p class="empty">No posts found.</p>`)
		}
		for _, p := range d.Page.Posts {
			postCard(h, p)
		}
		pagination(h, d)
		h.raw("</section>")

		if len(d.Tags) > 0 {
			h.raw(`<aside class="sidebar"><h2>Tags</h2>`)
			tagCloud(h, d.Tags)
			h.raw("</aside>")
		}
	})
}

func postCard(h *htmlWriter, p post.Post) {
	h.raw(`<article class="post-card"><h2>`)
	h.link(p.Link(), p.Title, "")
	h.raw(`</h2><p class="meta"><time`)
	h.attr("datetime", p.Date)
	h.raw(">")
	h.text(p.Date)
	h.raw("</time>")
	if p.Category != "" {
		h.raw(" · ")
		h.link("/category/"+PathEscape(p.Category), p.Category, "category")
	}
	h.raw(" · ", strconv.Itoa(post.ReadTime(p)), " min read</p>")
	if p.Summary != "" {
		h.raw(`<p class="summary">`)
		h.text(p.Summary)
		h.raw("</p>")
	}
	tagLinks(h, p.Tags)
	h.raw("</article>")
}

func pagination(h *htmlWriter, d IndexData) {
	if d.Page.TotalPages <= 1 {
		return
	}
	h.raw(`<nav class="pagination">`)
	if d.Page.Number > 1 {
		h.link(pageHref(d, d.Page.Number-1), "Previous", "prev")
	}
	for _, l := range d.Links {
		switch {
		case l.Gap:
			h.raw(`<span class="gap">…</span>`)
		case l.Number == d.Page.Number:
			h.raw(`<span class="current">`, strconv.Itoa(l.Number), "</span>")
		default:
			h.link(pageHref(d, l.Number), strconv.Itoa(l.Number), "")
		}
	}
	if d.Page.Number < d.Page.TotalPages {
		h.link(pageHref(d, d.Page.Number+1), "Next", "next")
	}
	h.raw("</nav>")
}

func tagCloud(h *htmlWriter, tags []post.TagFrequency) {
	h.raw(`<div class="tag-cloud">`)
	for _, t := range tags {
		h.raw("<a")
		h.attr("href", "/?tag="+PathEscape(t.Name))
		h.attr("style", fmt.Sprintf("font-size: %.2frem", t.Size))
		h.attr("title", strconv.Itoa(t.Count)+" posts")
		h.raw(">")
		h.text(t.Name)
		h.raw("</a> ")
	}
	h.raw("</div>")
}

// Post renders one post. Its content is trusted HTML from the markdown
// renderer.
func Post(d PostData) templ.Component {
	meta := PageMeta{
		Title:       d.Post.Title,
		Description: d.Post.Summary,
		URL:         buildURL(d.Site.URL, "post", d.Post.Slug),
		OGType:      "article",
		JSONLD:      BlogPostingJsonLD(d),
	}
	return page(d.Site, meta, func(h *htmlWriter) {
		h.raw(`<article class="post"><header><h1>`)
		h.text(d.Post.Title)
		h.raw(`</h1><p class="meta"><time`)
		h.attr("datetime", d.Post.Date)
		h.raw(">")
		h.text(d.Post.Date)
		h.raw("</time>")
		if d.Post.Category != "" {
			h.raw(" · ")
			h.link("/category/"+PathEscape(d.Post.Category), d.Post.Category, "category")
		}
		h.raw(" · ", strconv.Itoa(d.ReadTime), " min read</p>")
		tagLinks(h, d.Post.Tags)
		h.raw(`</header><div class="content">`, d.Post.Content, "</div></article>")

		if len(d.Related) > 0 {
			h.raw(`<section class="related"><h2>Related posts</h2><ul>`)
			for _, r := range d.Related {
				h.raw("<li>")
				h.link(r.Link(), r.Title, "")
				h.raw("</li>")
			}
			h.raw("</ul></section>")
		}
	})
}

// Tags renders the tag cloud page.
func Tags(d TagsData) templ.Component {
	meta := PageMeta{Title: "Tags", URL: buildURL(d.Site.URL, "tags")}
	return page(d.Site, meta, func(h *htmlWriter) {
		h.raw("<section><h1>Tags</h1>")
		if len(d.Tags) == 0 {
			h.raw(`<p class="empty">No tags yet.</p>`)
		} else {
			tagCloud(h, d.Tags)
		}
		h.raw("</section>")
	})
}

// Page renders a static page such as /about.
func Page(d PageData) templ.Component {
	meta := PageMeta{Title: d.Title, URL: buildURL(d.Site.URL, d.Path)}
	return page(d.Site, meta, func(h *htmlWriter) {
		h.raw(`<article class="page"><h1>`)
		h.text(d.Title)
		h.raw(`</h1><div class="content">`, d.Content, "</div></article>")
	})
}

func NotFound(site SiteConfig) templ.Component {
	return page(site, PageMeta{Title: "Not found"}, func(h *htmlWriter) {
		h.raw(`<section class="not-found"><h1>404</h1><p>This page does not exist.</p><a href="/">Back to home</a></section>`)
	})
}

func ServerError(site SiteConfig) templ.Component {
	return page(site, PageMeta{Title: "Error"}, func(h *htmlWriter) {
		h.raw(`<section class="server-error"><h1>Something went wrong</h1><p>Please try again later.</p><a href="/">Back to home</a></section>`)
	})
}

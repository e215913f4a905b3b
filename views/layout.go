package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// htmlWriter writes markup and remembers the first error.
type htmlWriter struct {
	w   io.Writer
	err error
}

func (h *htmlWriter) raw(parts ...string) {
	for _, s := range parts {
		if h.err != nil {
			return
		}
		_, h.err = io.WriteString(h.w, s)
	}
}

func (h *htmlWriter) text(s string) {
	h.raw(templ.EscapeString(s))
}

func (h *htmlWriter) attr(name, value string) {
	h.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (h *htmlWriter) link(href, label, class string) {
	h.raw("<a")
	h.attr("href", href)
	if class != "" {
		h.attr("class", class)
	}
	h.raw(">")
	h.text(label)
	h.raw("</a>")
}

func page(site SiteConfig, meta PageMeta, body func(*htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		title := site.Name
		if meta.Title != "" && meta.Title != site.Name {
			title = meta.Title + " | " + site.Name
		}
		description := meta.Description
		if description == "" {
			description = site.Description
		}
		ogType := meta.OGType
		if ogType == "" {
			ogType = "website"
		}
		jsonLD := meta.JSONLD
		if jsonLD == "" {
			jsonLD = WebsiteJsonLD(site)
		}

		h.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.raw("<title>")
		h.text(title)
		h.raw("</title>")
		h.raw(`<meta name="description"`)
		h.attr("content", description)
		h.raw(">")
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.attr("href", meta.URL)
			h.raw(">")
			h.raw(`<meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(">")
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", title)
		h.raw(`><meta property="og:type"`)
		h.attr("content", ogType)
		h.raw(">")
		h.raw(`<link rel="stylesheet" href="/assets/style.css">`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml">`)
		h.raw(`<script type="application/ld+json">`, jsonLD, `</script>`)
		h.raw(`<script src="/assets/app.js" defer></script>`)
		h.raw("</head><body>")

		h.raw(`<header class="site-header"><nav>`)
		h.link("/", site.Name, "brand")
		h.link("/tags", "Tags", "")
		h.link("/about", "About", "")
		h.link("/friends", "Friends", "")
		h.raw("</nav>")
		if len(site.Categories) > 0 {
			h.raw(`<nav class="categories">`)
			for _, c := range site.Categories {
				h.link("/category/"+PathEscape(c), c, "")
			}
			h.raw("</nav>")
		}
		h.raw("</header><main>")
		body(h)
		h.raw(`</main><footer class="site-footer"><p>`)
		h.text(site.Name)
		if site.Author != "" {
			h.text(" by " + site.Author)
		}
		h.raw(` · <a href="/feed.xml">RSS</a></p></footer></body></html>`)
		return h.err
	})
}

func tagLinks(h *htmlWriter, tags []string) {
	if len(tags) == 0 {
		return
	}
	h.raw(`<ul class="tags">`)
	for _, t := range tags {
		h.raw("<li>")
		h.link("/?tag="+PathEscape(t), "#"+t, "tag")
		h.raw("</li>")
	}
	h.raw("</ul>")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

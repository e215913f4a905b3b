package views

import (
	"encoding/json"
	"net/url"
	"path"
	"strconv"
)

// buildURL joins path segments onto a base URL.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if u.Path == "/" || u.Path == "." {
		u.Path = ""
	}
	return u.String()
}

// PathEscape wraps url.PathEscape for use in links.
func PathEscape(s string) string {
	return url.PathEscape(s)
}

// pageHref links to page n of the current listing, keeping its filters.
func pageHref(d IndexData, n int) string {
	base := "/"
	if d.Category != "" {
		base = "/category/" + PathEscape(d.Category)
	}
	q := url.Values{}
	if d.Tag != "" {
		q.Set("tag", d.Tag)
	}
	if d.Search != "" {
		q.Set("search", d.Search)
	}
	if n > 1 {
		q.Set("page", strconv.Itoa(n))
	}
	if len(q) == 0 {
		return base
	}
	return base + "?" + q.Encode()
}

// WebsiteJsonLD returns a JSON-LD string for a WebSite schema using SiteConfig.
func WebsiteJsonLD(cfg SiteConfig) string {
	data := map[string]interface{}{
		"@context":    "https://schema.org",
		"@type":       "WebSite",
		"name":        cfg.Name,
		"url":         buildURL(cfg.URL),
		"description": cfg.Description,
	}
	if cfg.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  cfg.Author,
		}
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// BlogPostingJsonLD returns a JSON-LD string for a BlogPosting schema.
func BlogPostingJsonLD(d PostData) string {
	postURL := buildURL(d.Site.URL, "post", d.Post.Slug)
	data := map[string]interface{}{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      d.Post.Title,
		"description":   d.Post.Summary,
		"datePublished": d.Post.Date,
		"url":           postURL,
		"timeRequired":  "PT" + strconv.Itoa(d.ReadTime) + "M",
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if d.Site.Author != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  d.Site.Author,
		}
	}
	if d.Site.Name != "" {
		data["publisher"] = map[string]string{
			"@type": "Organization",
			"name":  d.Site.Name,
		}
	}
	if d.Post.Category != "" {
		data["articleSection"] = d.Post.Category
	}
	if len(d.Post.Tags) > 0 {
		data["keywords"] = d.Post.Tags
	}
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}

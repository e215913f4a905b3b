package mdblog

import (
	"encoding/xml"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StaticRoutes are listed in every sitemap besides posts and categories.
var StaticRoutes = []string{"", "/tags", "/about", "/friends"}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

func buildSitemap(base string, categories, slugs []string) sitemapURLSet {
	urls := make([]sitemapURL, 0, len(StaticRoutes)+len(categories)+len(slugs))
	for _, route := range StaticRoutes {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, route), ChangeFreq: "monthly", Priority: "0.6"})
	}
	for _, cat := range categories {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "category", cat), ChangeFreq: "weekly", Priority: "0.7"})
	}
	for _, slug := range slugs {
		urls = append(urls, sitemapURL{Loc: BuildURL(base, "post", slug), ChangeFreq: "monthly", Priority: "0.8"})
	}
	return sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
}

// WriteSitemap writes a sitemap of the static routes, the category pages,
// and one entry per post slug.
func WriteSitemap(w io.Writer, base string, categories, slugs []string) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(buildSitemap(base, categories, slugs)); err != nil {
		return fmt.Errorf("encoding sitemap: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// Robots returns a robots.txt allowing everything and pointing at the
// sitemap.
func Robots(base string) string {
	return "User-agent: *\nAllow: /\n\nSitemap: " + BuildURL(base, "sitemap.xml") + "\n"
}

func (a *App) renderSitemap(c echo.Context, slugs []string) error {
	c.Response().Header().Set(echo.HeaderContentType, "application/xml; charset=utf-8")
	c.Response().WriteHeader(http.StatusOK)
	return WriteSitemap(c.Response(), a.Config.URL, a.Config.Categories, slugs)
}

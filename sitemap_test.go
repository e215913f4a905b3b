package mdblog

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSitemap(t *testing.T, data []byte) map[string][2]string {
	t.Helper()
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(data))
	root := doc.SelectElement("urlset")
	require.NotNil(t, root)
	assert.Equal(t, "http://www.sitemaps.org/schemas/sitemap/0.9", root.SelectAttrValue("xmlns", ""))

	out := make(map[string][2]string)
	for _, u := range root.SelectElements("url") {
		out[u.SelectElement("loc").Text()] = [2]string{
			u.SelectElement("changefreq").Text(),
			u.SelectElement("priority").Text(),
		}
	}
	return out
}

func TestWriteSitemap(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSitemap(&buf, "https://blog.test", []string{"travel"}, []string{"lisbon"}))

	urls := parseSitemap(t, buf.Bytes())
	assert.Equal(t, map[string][2]string{
		"https://blog.test":                 {"monthly", "0.6"},
		"https://blog.test/tags":            {"monthly", "0.6"},
		"https://blog.test/about":           {"monthly", "0.6"},
		"https://blog.test/friends":         {"monthly", "0.6"},
		"https://blog.test/category/travel": {"weekly", "0.7"},
		"https://blog.test/post/lisbon":     {"monthly", "0.8"},
	}, urls)
}

func TestSitemapRoute(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, http.MethodGet, "/sitemap.xml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/xml")

	urls := parseSitemap(t, rec.Body.Bytes())
	assert.Contains(t, urls, "http://blog.test/post/go-concurrency")
	assert.Contains(t, urls, "http://blog.test/post/lisbon")
	for _, cat := range DefaultCategories {
		assert.Contains(t, urls, "http://blog.test/category/"+cat)
	}
	assert.Len(t, urls, len(StaticRoutes)+len(DefaultCategories)+2)
}

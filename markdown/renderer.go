// Package markdown turns post sources into post.Post values: it splits the
// front-matter header and renders the body to HTML with goldmark.
package markdown

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
)

// DefaultCodeStyle is the chroma style used for fenced code blocks.
const DefaultCodeStyle = "github"

// Renderer converts markdown to HTML. Line breaks inside a paragraph become
// <br>, raw HTML passes through, images are wrapped in a captioned container
// and external links open in a new tab.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

type renderConfig struct {
	codeStyle string
	sanitize  bool
}

// RenderOption configures a Renderer.
type RenderOption func(*renderConfig)

// WithCodeStyle sets the highlighting style. An empty style disables
// highlighting.
func WithCodeStyle(style string) RenderOption {
	return func(c *renderConfig) { c.codeStyle = style }
}

// WithSanitize runs the rendered HTML through a UGC policy that keeps the
// markup this renderer emits.
func WithSanitize(on bool) RenderOption {
	return func(c *renderConfig) { c.sanitize = on }
}

// NewRenderer returns a Renderer with GFM enabled.
func NewRenderer(opts ...RenderOption) *Renderer {
	cfg := renderConfig{codeStyle: DefaultCodeStyle}
	for _, opt := range opts {
		opt(&cfg)
	}

	exts := []goldmark.Extender{extension.GFM}
	if cfg.codeStyle != "" {
		exts = append(exts, highlighting.NewHighlighting(highlighting.WithStyle(cfg.codeStyle)))
	}

	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(exts...),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
				renderer.WithNodeRenderers(util.Prioritized(&postNodeRenderer{}, 100)),
			),
		),
	}
	if cfg.sanitize {
		r.policy = newPolicy()
	}
	return r
}

// Render converts markdown source to HTML.
func (r *Renderer) Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	if r.policy != nil {
		return r.policy.Sanitize(buf.String()), nil
	}
	return buf.String(), nil
}

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(false)
	p.AllowAttrs("target").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).OnElements("div", "p", "code", "pre", "span")
	p.AllowAttrs("style").OnElements("pre", "span")
	return p
}

// postNodeRenderer overrides image and link output.
type postNodeRenderer struct{}

func (r *postNodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(ast.KindImage, r.renderImage)
	reg.Register(ast.KindLink, r.renderLink)
	reg.Register(ast.KindAutoLink, r.renderAutoLink)
}

func (r *postNodeRenderer) renderImage(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Image)
	alt := plainText(n, source)

	_, _ = w.WriteString(`<div class="image-container"><img src="`)
	writeURL(w, n.Destination)
	_ = w.WriteByte('"')
	if alt != "" {
		_, _ = w.WriteString(` alt="`)
		_, _ = w.Write(util.EscapeHTML([]byte(alt)))
		_ = w.WriteByte('"')
	}
	if len(n.Title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_ = w.WriteByte('"')
	}
	_, _ = w.WriteString(` loading="lazy" />`)
	if len(n.Title) > 0 {
		_, _ = w.WriteString(`<p class="image-caption">`)
		_, _ = w.Write(util.EscapeHTML(n.Title))
		_, _ = w.WriteString(`</p>`)
	}
	_, _ = w.WriteString(`</div>`)
	return ast.WalkSkipChildren, nil
}

func (r *postNodeRenderer) renderLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		_, _ = w.WriteString("</a>")
		return ast.WalkContinue, nil
	}
	n := node.(*ast.Link)
	openAnchor(w, n.Destination, n.Title)
	return ast.WalkContinue, nil
}

func (r *postNodeRenderer) renderAutoLink(w util.BufWriter, source []byte, node ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		return ast.WalkContinue, nil
	}
	n := node.(*ast.AutoLink)
	url := n.URL(source)
	if n.AutoLinkType == ast.AutoLinkEmail && !bytes.HasPrefix(bytes.ToLower(url), []byte("mailto:")) {
		url = append([]byte("mailto:"), url...)
	}
	openAnchor(w, url, nil)
	_, _ = w.Write(util.EscapeHTML(n.Label(source)))
	_, _ = w.WriteString("</a>")
	return ast.WalkContinue, nil
}

func openAnchor(w util.BufWriter, dest, title []byte) {
	_, _ = w.WriteString(`<a href="`)
	writeURL(w, dest)
	_ = w.WriteByte('"')
	if len(title) > 0 {
		_, _ = w.WriteString(` title="`)
		_, _ = w.Write(util.EscapeHTML(title))
		_ = w.WriteByte('"')
	}
	if bytes.HasPrefix(dest, []byte("http")) {
		_, _ = w.WriteString(` target="_blank" rel="noopener noreferrer"`)
	}
	_ = w.WriteByte('>')
}

// writeURL writes dest escaped for an attribute, or nothing for
// javascript:-style URLs.
func writeURL(w util.BufWriter, dest []byte) {
	if html.IsDangerousURL(dest) {
		return
	}
	_, _ = w.Write(util.EscapeHTML(util.URLEscape(dest, true)))
}

// plainText flattens the inline children of n, used for image alt text.
func plainText(n ast.Node, source []byte) string {
	var b bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
		case *ast.String:
			b.Write(t.Value)
		default:
			b.WriteString(plainText(c, source))
		}
	}
	return b.String()
}

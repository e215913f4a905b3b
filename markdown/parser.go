package markdown

import (
	"html"
	"time"

	"github.com/eringen/mdblog/post"
)

// DefaultTitle is used when a post has no title in its front-matter.
const DefaultTitle = "Untitled"

// Parser builds posts from raw markdown sources.
type Parser struct {
	renderer *Renderer
	now      func() time.Time
}

var _ post.Parser = (*Parser)(nil)

// ParserOption configures a Parser.
type ParserOption func(*Parser)

// WithRenderer replaces the default renderer.
func WithRenderer(r *Renderer) ParserOption {
	return func(p *Parser) { p.renderer = r }
}

// WithClock sets the clock used for the default date.
func WithClock(now func() time.Time) ParserOption {
	return func(p *Parser) { p.now = now }
}

// NewParser returns a Parser using NewRenderer() and the system clock.
func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	if p.renderer == nil {
		p.renderer = NewRenderer()
	}
	return p
}

// Parse converts a raw source into a post. Missing title and date default to
// DefaultTitle and today's UTC date. It never fails: a body that cannot be
// rendered is returned escaped inside <pre>.
func (p *Parser) Parse(raw, slug string) post.Post {
	fm, body := SplitFrontMatter(raw)

	content, err := p.renderer.Render(body)
	if err != nil {
		content = "<pre>" + html.EscapeString(body) + "</pre>"
	}

	out := post.Post{
		Slug:     slug,
		Title:    fm.Title,
		Date:     fm.Date,
		Summary:  fm.Summary,
		Category: fm.Category,
		Tags:     fm.Tags,
		Content:  content,
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}
	if out.Date == "" {
		out.Date = p.now().UTC().Format(post.DateLayout)
	}
	if out.Tags == nil {
		out.Tags = []string{}
	}
	return out
}

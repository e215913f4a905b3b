// Package scaffold provides the embedded templates the mdblog CLI uses to
// create new content.
package scaffold

import (
	"embed"
	"fmt"
	"io"
	"text/template"
)

// Templates contains all scaffold template files.
// Files use Go text/template syntax and have a .tmpl suffix.
//
//go:embed all:templates
var Templates embed.FS

var postTemplate = template.Must(template.ParseFS(Templates, "templates/post.md.tmpl"))

// PostData holds the front-matter values of a new post.
type PostData struct {
	Title    string
	Date     string
	Summary  string
	Category string
	Tags     []string
}

// WritePost renders a markdown post skeleton with a front-matter header.
func WritePost(w io.Writer, d PostData) error {
	if err := postTemplate.Execute(w, d); err != nil {
		return fmt.Errorf("execute post template: %w", err)
	}
	return nil
}

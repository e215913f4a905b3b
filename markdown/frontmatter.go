package markdown

import (
	"regexp"
	"strings"
)

// FrontMatter is the metadata header of a post.
type FrontMatter struct {
	Title    string
	Date     string
	Summary  string
	Category string
	Tags     []string
	// Extra holds unrecognized keys.
	Extra map[string]string
}

var reField = regexp.MustCompile(`^(\w+):\s*(.*)$`)

// SplitFrontMatter separates the front-matter block from the body. The block
// lies between the first two lines whose trimmed text is exactly "---". With
// fewer than two such lines the whole input is body and the front-matter is
// empty. Malformed lines are skipped; it never fails.
func SplitFrontMatter(raw string) (FrontMatter, string) {
	lines := strings.Split(raw, "\n")
	start, end := -1, -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "---" {
			continue
		}
		if start < 0 {
			start = i
			continue
		}
		end = i
		break
	}

	fm := FrontMatter{}
	if start < 0 || end < 0 {
		return fm, raw
	}
	for _, line := range lines[start+1 : end] {
		m := reField.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		key, value := m[1], strings.TrimSpace(m[2])
		switch key {
		case "title":
			fm.Title = value
		case "date":
			fm.Date = value
		case "summary":
			fm.Summary = value
		case "category":
			fm.Category = value
		case "tags":
			fm.Tags = splitTags(value)
		default:
			if fm.Extra == nil {
				fm.Extra = make(map[string]string)
			}
			fm.Extra[key] = value
		}
	}
	return fm, strings.Join(lines[end+1:], "\n")
}

// splitTags splits a comma-separated tag list, also accepting the [a, b]
// form. Empty segments and repeats are dropped; first occurrences keep their
// order.
func splitTags(value string) []string {
	value = strings.TrimSpace(value)
	value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
	var tags []string
	seen := make(map[string]bool)
	for _, t := range strings.Split(value, ",") {
		if t = strings.TrimSpace(t); t != "" && !seen[t] {
			seen[t] = true
			tags = append(tags, t)
		}
	}
	return tags
}

package post

import (
	"regexp"
	"strings"
)

// WordsPerMinute is the reading speed used by ReadTime.
const WordsPerMinute = 200

// reTag is deliberately naive; bracket soup in content leaks through.
var reTag = regexp.MustCompile(`<[^>]*>`)

// StripTags removes anything that looks like an HTML tag.
func StripTags(html string) string {
	return reTag.ReplaceAllString(html, "")
}

// WordCount approximates the number of words in rendered HTML by counting
// whitespace-delimited tokens after stripping tags.
func WordCount(html string) int {
	return len(strings.Fields(StripTags(html)))
}

// ComputeStats counts posts and sums their word counts.
func ComputeStats(posts []Post) Stats {
	s := Stats{TotalPosts: len(posts)}
	for _, p := range posts {
		s.TotalWords += WordCount(p.Content)
	}
	return s
}

// ReadTime estimates the minutes needed to read a post, at least one.
func ReadTime(p Post) int {
	words := WordCount(p.Content)
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

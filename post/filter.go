package post

import (
	"sort"
	"strings"
)

// MaxRelated is the number of related posts shown under a post.
const MaxRelated = 3

// FilterPosts keeps the posts that match every non-empty field of f. Search is
// a case-insensitive substring match on title, summary, content or any tag;
// Tag requires exact membership; Category requires equality.
func FilterPosts(posts []Post, f Filter) []Post {
	search := strings.ToLower(f.Search)
	var out []Post
	for _, p := range posts {
		if search != "" && !matchesSearch(p, search) {
			continue
		}
		if f.Tag != "" && !p.HasTag(f.Tag) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p Post, lower string) bool {
	if strings.Contains(strings.ToLower(p.Title), lower) ||
		strings.Contains(strings.ToLower(p.Summary), lower) ||
		strings.Contains(strings.ToLower(p.Content), lower) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), lower) {
			return true
		}
	}
	return false
}

// RelatedPosts ranks the other posts by the number of tags they share with
// current and returns at most limit of them. Posts sharing no tag are
// excluded; equal scores keep the order of posts.
func RelatedPosts(current Post, posts []Post, limit int) []Post {
	type scored struct {
		post      Post
		relevance int
	}
	var candidates []scored
	for _, p := range posts {
		if p.Slug == current.Slug {
			continue
		}
		shared := 0
		for t := range tagSet(p) {
			if current.HasTag(t) {
				shared++
			}
		}
		if shared > 0 {
			candidates = append(candidates, scored{post: p, relevance: shared})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].relevance > candidates[j].relevance
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	related := make([]Post, 0, len(candidates))
	for _, c := range candidates {
		related = append(related, c.post)
	}
	return related
}

package post

import "sort"

// Tag cloud display sizes, in rem.
const (
	MinTagSize = 1.2
	MaxTagSize = 2.2
)

func tagSet(p Post) map[string]struct{} {
	set := make(map[string]struct{}, len(p.Tags))
	for _, t := range p.Tags {
		set[t] = struct{}{}
	}
	return set
}

// TagFrequencies counts how many posts carry each tag and sizes each tag
// linearly between MinTagSize and MaxTagSize by its count. When every tag has
// the same count all tags get MinTagSize. The result is ordered by count
// descending, then by name.
func TagFrequencies(posts []Post) []TagFrequency {
	counts := make(map[string]int)
	for _, p := range posts {
		for t := range tagSet(p) {
			counts[t]++
		}
	}
	if len(counts) == 0 {
		return []TagFrequency{}
	}

	minCount, maxCount := -1, 0
	for _, c := range counts {
		if minCount < 0 || c < minCount {
			minCount = c
		}
		if c > maxCount {
			maxCount = c
		}
	}

	tags := make([]TagFrequency, 0, len(counts))
	for name, count := range counts {
		size := MinTagSize
		if maxCount > minCount {
			frac := float64(count-minCount) / float64(maxCount-minCount)
			size = MinTagSize*(1-frac) + MaxTagSize*frac
		}
		tags = append(tags, TagFrequency{Name: name, Count: count, Size: size})
	}
	sort.Slice(tags, func(i, j int) bool {
		if tags[i].Count != tags[j].Count {
			return tags[i].Count > tags[j].Count
		}
		return tags[i].Name < tags[j].Name
	})
	return tags
}

// AllTags returns the distinct tags of posts in ascending order.
func AllTags(posts []Post) []string {
	set := make(map[string]struct{})
	for _, p := range posts {
		for _, t := range p.Tags {
			set[t] = struct{}{}
		}
	}
	tags := make([]string, 0, len(set))
	for t := range set {
		tags = append(tags, t)
	}
	sort.Strings(tags)
	return tags
}

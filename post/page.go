package post

// DefaultPerPage is the number of posts on one listing page.
const DefaultPerPage = 6

// Page is one slice of a paginated post list.
type Page struct {
	Posts      []Post `json:"posts"`
	Number     int    `json:"page"`
	TotalPages int    `json:"totalPages"`
	Total      int    `json:"total"`
}

// PageLink is one entry of a pagination bar. Gap entries render as an ellipsis.
type PageLink struct {
	Number int  `json:"number,omitempty"`
	Gap    bool `json:"gap,omitempty"`
}

// Paginate returns page number (1-based) of posts. Out-of-range numbers are
// clamped into [1, TotalPages].
func Paginate(posts []Post, number, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(posts)
	pages := (total + perPage - 1) / perPage
	if number > pages {
		number = pages
	}
	if number < 1 {
		number = 1
	}
	start := (number - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}
	return Page{
		Posts:      posts[start:end],
		Number:     number,
		TotalPages: pages,
		Total:      total,
	}
}

// PaginationRange lists the links of a pagination bar: the first page, the
// pages adjacent to current, the last page, and gaps between them.
func PaginationRange(current, total int) []PageLink {
	if total <= 0 {
		return nil
	}
	const delta = 1
	left := max(2, current-delta)
	right := min(total-1, current+delta)

	links := []PageLink{{Number: 1}}
	if left > 2 {
		links = append(links, PageLink{Gap: true})
	}
	for i := left; i <= right; i++ {
		links = append(links, PageLink{Number: i})
	}
	if right < total-1 {
		links = append(links, PageLink{Gap: true})
	}
	if total > 1 {
		links = append(links, PageLink{Number: total})
	}
	return links
}

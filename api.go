package mdblog

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdblog/post"
)

// postSummary is a list entry: a post without its rendered content.
type postSummary struct {
	Slug     string   `json:"slug"`
	Title    string   `json:"title"`
	Date     string   `json:"date"`
	Summary  string   `json:"summary"`
	Tags     []string `json:"tags"`
	Category string   `json:"category,omitempty"`
	ReadTime int      `json:"readTime"`
}

func summarize(posts []post.Post) []postSummary {
	out := make([]postSummary, 0, len(posts))
	for _, p := range posts {
		out = append(out, postSummary{
			Slug:     p.Slug,
			Title:    p.Title,
			Date:     p.Date,
			Summary:  p.Summary,
			Tags:     p.Tags,
			Category: p.Category,
			ReadTime: post.ReadTime(p),
		})
	}
	return out
}

type postListResponse struct {
	Posts      []postSummary   `json:"posts"`
	Page       int             `json:"page"`
	TotalPages int             `json:"totalPages"`
	Total      int             `json:"total"`
	Pages      []post.PageLink `json:"pages"`
}

type postResponse struct {
	Post     post.Post     `json:"post"`
	Related  []postSummary `json:"related"`
	ReadTime int           `json:"readTime"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *App) handleAPIPosts(c echo.Context) error {
	posts, err := a.Repo.GetAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	filtered := post.FilterPosts(posts, post.Filter{
		Search:   c.QueryParam("search"),
		Tag:      c.QueryParam("tag"),
		Category: c.QueryParam("category"),
	})
	page := post.Paginate(filtered, queryInt(c, "page", 1), a.Config.PostsPerPage)
	return c.JSON(http.StatusOK, postListResponse{
		Posts:      summarize(page.Posts),
		Page:       page.Number,
		TotalPages: page.TotalPages,
		Total:      page.Total,
		Pages:      post.PaginationRange(page.Number, page.TotalPages),
	})
}

func (a *App) handleAPIPost(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := a.Repo.GetPostBySlug(ctx, c.Param("slug"))
	if errors.Is(err, post.ErrNotFound) {
		return c.JSON(http.StatusNotFound, errorResponse{Error: "post not found"})
	}
	if err != nil {
		return err
	}
	related, err := a.Repo.GetRelatedPosts(ctx, p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, postResponse{
		Post:     p,
		Related:  summarize(related),
		ReadTime: post.ReadTime(p),
	})
}

func (a *App) handleAPICategory(c echo.Context) error {
	posts, err := a.Repo.GetPostsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summarize(posts))
}

func (a *App) handleAPITags(c echo.Context) error {
	tags, err := a.Repo.GetTagsWithFrequency(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tags)
}

func (a *App) handleAPIStats(c echo.Context) error {
	stats, err := a.Repo.GetPostStats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

package mdblog

import (
	"errors"
	"io/fs"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/post"
	"github.com/eringen/mdblog/views"
)

func (a *App) setupRoutes() {
	e := a.Echo

	// Origin: raw sources and static files the worker caches.
	e.GET("/posts/:name", a.handleRawPost)
	assets, _ := fs.Sub(EmbeddedAssets, "embedded")
	e.GET("/assets/*", echo.WrapHandler(http.StripPrefix("/assets/", http.FileServer(http.FS(assets)))))
	e.Static("/images", a.Config.ImagesDir)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Shell pages.
	e.GET("/", a.handleHome)
	e.GET("/category/:category", a.handleHome)
	e.GET("/post/:slug", a.handlePost)
	e.GET("/tags", a.handleTags)
	e.GET("/about", a.handleStaticPage("about"))
	e.GET("/friends", a.handleStaticPage("friends"))

	// Read API.
	api := e.Group("/api")
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:slug", a.handleAPIPost)
	api.GET("/categories/:category", a.handleAPICategory)
	api.GET("/tags", a.handleAPITags)
	api.GET("/stats", a.handleAPIStats)

	a.registerWorkerRoutes(e.Group("/sw"))
}

func (a *App) handleRawPost(c echo.Context) error {
	name := c.Param("name")
	if !strings.HasSuffix(name, ".md") {
		return echo.ErrNotFound
	}
	raw, err := a.sources.Load(c.Request().Context(), strings.TrimSuffix(name, ".md"))
	if errors.Is(err, post.ErrNotFound) || errors.Is(err, content.ErrInvalidSlug) {
		return echo.ErrNotFound
	}
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "text/markdown; charset=utf-8", []byte(raw))
}

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	filter := post.Filter{
		Search:   c.QueryParam("search"),
		Tag:      c.QueryParam("tag"),
		Category: c.Param("category"),
	}
	posts, err := a.Repo.GetAllPosts(ctx)
	if err != nil {
		return err
	}
	tags, err := a.Repo.GetTagsWithFrequency(ctx)
	if err != nil {
		return err
	}
	page := post.Paginate(post.FilterPosts(posts, filter), queryInt(c, "page", 1), a.Config.PostsPerPage)
	return Render(c, a.Views.Index(views.IndexData{
		Site:     a.site(),
		Page:     page,
		Links:    post.PaginationRange(page.Number, page.TotalPages),
		Tags:     tags,
		Tag:      filter.Tag,
		Category: filter.Category,
		Search:   filter.Search,
	}))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := a.Repo.GetPostBySlug(ctx, c.Param("slug"))
	if errors.Is(err, post.ErrNotFound) {
		return a.notFound(c)
	}
	if err != nil {
		return err
	}
	related, err := a.Repo.GetRelatedPosts(ctx, p)
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(views.PostData{
		Site:     a.site(),
		Post:     p,
		Related:  related,
		ReadTime: post.ReadTime(p),
	}))
}

func (a *App) handleTags(c echo.Context) error {
	tags, err := a.Repo.GetTagsWithFrequency(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.Tags(views.TagsData{Site: a.site(), Tags: tags}))
}

func (a *App) handleStaticPage(key string) echo.HandlerFunc {
	return func(c echo.Context) error {
		pg, ok := a.Config.Pages[key]
		if !ok {
			return a.notFound(c)
		}
		html, err := a.renderer.Render(pg.Content)
		if err != nil {
			return err
		}
		title := pg.Title
		if title == "" {
			title = strings.ToUpper(key[:1]) + key[1:]
		}
		return Render(c, a.Views.Page(views.PageData{Site: a.site(), Path: key, Title: title, Content: html}))
	}
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, Robots(a.Config.URL))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c, a.Repo.ListAllSlugs())
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Repo.GetAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	he, ok := err.(*echo.HTTPError)
	path := c.Request().URL.Path
	wantsJSON := strings.HasPrefix(path, "/api/") || strings.HasPrefix(path, "/sw/")
	if ok && he.Code == http.StatusNotFound && !wantsJSON {
		_ = a.notFound(c)
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		c.Logger().Errorf("server error: %v", err)
		if !wantsJSON {
			_ = a.serverError(c, code)
			return
		}
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}

// Package mdblog is an offline-first markdown blog built with Go, Echo, and
// templ. Posts are markdown files with a front-matter header. Every read goes
// through a caching router (package worker) that keeps the site usable when
// the origin is unreachable.
package mdblog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"github.com/eringen/mdblog/content"
	"github.com/eringen/mdblog/markdown"
	"github.com/eringen/mdblog/post"
	"github.com/eringen/mdblog/sqlite"
	"github.com/eringen/mdblog/views"
	"github.com/eringen/mdblog/worker"
)

// ViewFuncs holds the templ components the app renders. Replace any of them
// with WithViews to customize the markup.
type ViewFuncs struct {
	Index       func(views.IndexData) templ.Component
	Post        func(views.PostData) templ.Component
	Tags        func(views.TagsData) templ.Component
	Page        func(views.PageData) templ.Component
	NotFound    func(views.SiteConfig) templ.Component
	ServerError func(views.SiteConfig) templ.Component
}

// DefaultViews returns the built-in components.
func DefaultViews() ViewFuncs {
	return ViewFuncs{
		Index:       views.Index,
		Post:        views.Post,
		Tags:        views.Tags,
		Page:        views.Page,
		NotFound:    views.NotFound,
		ServerError: views.ServerError,
	}
}

// App is the central application. It wires the content directory, the
// caching worker, the post repository, handlers, and middleware.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Repo   *post.Repository
	Worker *worker.Worker
	Views  ViewFuncs
	Logger *log.Logger

	sources       content.DirStore
	renderer      *markdown.Renderer
	storage       worker.Storage
	network       http.RoundTripper
	closeStorage  func() error
	notifications *worker.NotificationLog
	clients       *worker.ClientRegistry
	limiter       *Limiter
	customRoutes  []func(*App)
	ready         bool
}

// New creates an App with the given configuration.
func New(cfg SiteConfig, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config:  cfg,
		Echo:    echo.New(),
		Views:   DefaultViews(),
		network: http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(a)
	}

	a.Logger = log.New("mdblog")
	a.Logger.SetLevel(cfg.Level())
	a.Echo.HideBanner = true
	a.Echo.Logger.SetLevel(cfg.Level())
	return a
}

// Setup builds the cache storage, worker, and repository, registers
// middleware and routes, and installs and activates the worker. It is
// called by Start; tests call it directly and drive a.Echo.
func (a *App) Setup(ctx context.Context) error {
	if a.ready {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return fmt.Errorf("mdblog: %w", err)
	}
	cfg := a.Config

	if a.storage == nil {
		if cfg.Worker.CachePath == "" {
			a.storage = worker.NewMemoryStorage()
		} else {
			s, err := sqlite.Open(cfg.Worker.CachePath)
			if err != nil {
				return fmt.Errorf("mdblog: init cache: %w", err)
			}
			a.storage = s
			a.closeStorage = s.Close
		}
	}

	a.sources = content.DirStore{Dir: cfg.ContentDir}
	slugs := cfg.Posts
	if len(slugs) == 0 {
		found, err := a.sources.Slugs()
		if err != nil {
			a.Logger.Warnf("no posts discovered: %v", err)
		}
		slugs = found
	}

	a.notifications = worker.NewNotificationLog(50)
	a.clients = &worker.ClientRegistry{}
	wlog := log.New("worker")
	wlog.SetLevel(cfg.Level())
	w, err := worker.New(cfg.Worker.Version, cfg.URL, a.storage,
		worker.WithNetwork(a.originTransport()),
		worker.WithLogger(wlog),
		worker.WithPrecache(cfg.Worker.Precache...),
		worker.WithFonts(cfg.Worker.Fonts...),
		worker.WithNetworkTimeout(cfg.Worker.NetworkTimeout),
		worker.WithSweep(cfg.Worker.SweepInterval, cfg.Worker.SweepMaxAge),
		worker.WithCleanMaxAge(cfg.Worker.CleanMaxAge),
		worker.WithNotifier(a.notifications),
		worker.WithClients(a.clients),
	)
	if err != nil {
		return fmt.Errorf("mdblog: init worker: %w", err)
	}
	a.Worker = w

	a.renderer = markdown.NewRenderer(
		markdown.WithCodeStyle(cfg.CodeStyle),
		markdown.WithSanitize(cfg.Sanitize),
	)
	plog := log.New("post")
	plog.SetLevel(cfg.Level())
	a.Repo = post.NewRepository(
		content.NewHTTPStore(cfg.URL, &http.Client{Transport: a.Worker}),
		markdown.NewParser(markdown.WithRenderer(a.renderer)),
		slugs,
		post.WithLogger(plog),
		post.WithTTL(cfg.PostCacheTTL),
	)

	a.limiter = NewLimiter(cfg.Worker.MessageLimit, cfg.Worker.MessageWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}

	report, err := a.Worker.Start(ctx)
	if err != nil {
		return fmt.Errorf("mdblog: start worker: %w", err)
	}
	if len(report.Failed) > 0 {
		a.Logger.Warnf("worker installed with %d of %d precache entries missing", len(report.Failed), len(report.Failed)+len(report.Cached))
	}
	a.ready = true
	return nil
}

// Start sets the app up, runs the worker's message loop, and serves HTTP
// until ctx is canceled.
func (a *App) Start(ctx context.Context) error {
	if err := a.Setup(ctx); err != nil {
		return err
	}
	go func() {
		if err := a.Worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			a.Logger.Errorf("worker stopped: %v", err)
		}
	}()

	errc := make(chan error, 1)
	go func() { errc <- a.Echo.Start(a.Config.Addr) }()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	}
}

// Close cleans up resources. Call this when the app is shutting down.
func (a *App) Close() error {
	if a.Worker != nil {
		a.Worker.Close()
	}
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.closeStorage != nil {
		return a.closeStorage()
	}
	return nil
}

func (a *App) site() views.SiteConfig {
	return views.SiteConfig{
		Name:        a.Config.Name,
		URL:         a.Config.URL,
		Description: a.Config.Description,
		Author:      a.Config.Author,
		Categories:  a.Config.Categories,
	}
}

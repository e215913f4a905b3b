package post

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds parallel slug loads in GetAllPosts.
const DefaultConcurrency = 4

// Repository enumerates the known slugs, loads them through a ContentStore and
// derives the views the UI reads. A failing slug never fails an aggregate call;
// it is logged and left out.
type Repository struct {
	store       ContentStore
	parser      Parser
	slugs       []string
	logger      *log.Logger
	concurrency int

	mu      sync.RWMutex
	posts   []Post
	fetched time.Time
	ttl     time.Duration
}

// Option configures a Repository.
type Option func(*Repository)

// WithLogger sets the logger used to report skipped posts.
func WithLogger(l *log.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithTTL keeps the loaded post set in memory for ttl. Zero disables it.
func WithTTL(ttl time.Duration) Option {
	return func(r *Repository) {
		r.ttl = ttl
	}
}

// WithConcurrency bounds the number of slugs loaded in parallel.
func WithConcurrency(n int) Option {
	return func(r *Repository) {
		r.concurrency = n
	}
}

// NewRepository creates a Repository over the hand-maintained slug list.
func NewRepository(store ContentStore, parser Parser, slugs []string, opts ...Option) *Repository {
	r := &Repository{
		store:       store,
		parser:      parser,
		slugs:       append([]string(nil), slugs...),
		concurrency: DefaultConcurrency,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.New("post")
	}
	if r.concurrency <= 0 {
		r.concurrency = 1
	}
	return r
}

// ListAllSlugs returns the known post identifiers in enumeration order.
func (r *Repository) ListAllSlugs() []string {
	return append([]string(nil), r.slugs...)
}

func (r *Repository) valid() bool {
	return r.posts != nil && r.ttl > 0 && time.Since(r.fetched) < r.ttl
}

// Invalidate drops the memoized post set so the next read reloads.
func (r *Repository) Invalidate() {
	r.mu.Lock()
	r.posts = nil
	r.mu.Unlock()
}

// GetAllPosts loads every slug and returns the posts sorted by date, newest
// first. Posts with equal dates keep enumeration order. The only error is a
// cancelled context.
func (r *Repository) GetAllPosts(ctx context.Context) ([]Post, error) {
	r.mu.RLock()
	if r.valid() {
		posts := r.posts
		r.mu.RUnlock()
		return clonePosts(posts), nil
	}
	r.mu.RUnlock()

	posts, err := r.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	if r.ttl > 0 {
		r.mu.Lock()
		r.posts = posts
		r.fetched = time.Now()
		r.mu.Unlock()
	}
	return clonePosts(posts), nil
}

func (r *Repository) loadAll(ctx context.Context) ([]Post, error) {
	loaded := make([]*Post, len(r.slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, slug := range r.slugs {
		g.Go(func() error {
			p, err := r.load(gctx, slug)
			if err != nil {
				r.logger.Warnf("skip post %s: %v", slug, err)
				return nil
			}
			loaded[i] = &p
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	posts := make([]Post, 0, len(loaded))
	for _, p := range loaded {
		if p != nil {
			posts = append(posts, *p)
		}
	}
	SortByDate(posts)
	return posts, nil
}

func (r *Repository) load(ctx context.Context, slug string) (Post, error) {
	raw, err := r.store.Load(ctx, slug)
	if err != nil {
		return Post{}, err
	}
	return r.parser.Parse(raw, slug), nil
}

// GetPostBySlug loads a single post. Any load failure is reported as
// ErrNotFound.
func (r *Repository) GetPostBySlug(ctx context.Context, slug string) (Post, error) {
	p, err := r.load(ctx, slug)
	if err != nil {
		r.logger.Warnf("load post %s: %v", slug, err)
		return Post{}, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return p, nil
}

// GetPostsByCategory returns the posts whose category equals category.
func (r *Repository) GetPostsByCategory(ctx context.Context, category string) ([]Post, error) {
	posts, err := r.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return FilterPosts(posts, Filter{Category: category}), nil
}

// GetRelatedPosts returns up to MaxRelated posts sharing tags with current.
func (r *Repository) GetRelatedPosts(ctx context.Context, current Post) ([]Post, error) {
	posts, err := r.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return RelatedPosts(current, posts, MaxRelated), nil
}

// GetPostStats counts posts and approximate words.
func (r *Repository) GetPostStats(ctx context.Context) (Stats, error) {
	posts, err := r.GetAllPosts(ctx)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(posts), nil
}

// GetTagsWithFrequency tallies tags across all posts for the tag cloud.
func (r *Repository) GetTagsWithFrequency(ctx context.Context) ([]TagFrequency, error) {
	posts, err := r.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return TagFrequencies(posts), nil
}

// GetAllTags returns every distinct tag, sorted.
func (r *Repository) GetAllTags(ctx context.Context) ([]string, error) {
	posts, err := r.GetAllPosts(ctx)
	if err != nil {
		return nil, err
	}
	return AllTags(posts), nil
}

// SortByDate sorts posts newest first, keeping input order for equal dates.
func SortByDate(posts []Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].Time().After(posts[j].Time())
	})
}

// clonePosts copies posts deep enough that callers cannot reach the
// memoized tag slices.
func clonePosts(posts []Post) []Post {
	out := make([]Post, len(posts))
	for i, p := range posts {
		p.Tags = append([]string(nil), p.Tags...)
		out[i] = p
	}
	return out
}

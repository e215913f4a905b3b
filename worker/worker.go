// Package worker is an offline-first caching router. A Worker is an
// http.RoundTripper that sits between a client and the network and answers
// GET requests from versioned cache partitions using a per-resource-class
// strategy: cache-first for fonts, images and static assets,
// stale-while-revalidate for markdown posts and network-first for the rest.
package worker

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultNetworkTimeout = 3 * time.Second
	DefaultSweepInterval  = 24 * time.Hour
	DefaultSweepMaxAge    = 7 * 24 * time.Hour
	DefaultCleanMaxAge    = 24 * time.Hour
	DefaultConcurrency    = 4

	// VersionLayout formats cache version tags from a build time.
	VersionLayout = "2006-01-02-15-04"
)

// ErrInvalidState is returned when a lifecycle step runs out of order.
var ErrInvalidState = errors.New("invalid worker state")

// State is a lifecycle phase.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Partitions are the cache names of one version.
type Partitions struct {
	Static  string `json:"static"`
	Dynamic string `json:"dynamic"`
	Images  string `json:"images"`
	Fonts   string `json:"fonts"`
}

// PartitionsFor returns the four partition names for version.
func PartitionsFor(version string) Partitions {
	return Partitions{
		Static:  "static-v" + version,
		Dynamic: "dynamic-v" + version,
		Images:  "images-v" + version,
		Fonts:   "fonts-v" + version,
	}
}

// All lists the partitions in lookup order.
func (p Partitions) All() []string {
	return []string{p.Static, p.Dynamic, p.Images, p.Fonts}
}

// Has reports whether name is one of the partitions.
func (p Partitions) Has(name string) bool {
	for _, n := range p.All() {
		if n == name {
			return true
		}
	}
	return false
}

// NewVersion returns a version tag for t.
func NewVersion(t time.Time) string {
	return t.UTC().Format(VersionLayout)
}

// Worker routes requests through the cache. Create one with New, then
// Install and Activate it; until it is activated every request passes
// straight to the network.
type Worker struct {
	storage    Storage
	network    http.RoundTripper
	logger     *log.Logger
	notifier   Notifier
	clients    Clients
	partitions Partitions
	origin     *url.URL
	now        func() time.Time

	precache    []string
	fonts       []string
	staticPaths map[string]bool
	assetPrefix string

	timeout       time.Duration
	sweepInterval time.Duration
	sweepMaxAge   time.Duration
	cleanMaxAge   time.Duration
	concurrency   int
	skipWaiting   bool

	rules    []rule
	messages chan Message
	bg       sync.WaitGroup

	mu     sync.RWMutex
	state  State
	closed bool
}

// Option configures a Worker.
type Option func(*Worker)

// WithNetwork sets the transport used for network fetches.
func WithNetwork(rt http.RoundTripper) Option {
	return func(w *Worker) { w.network = rt }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(w *Worker) { w.logger = l }
}

// WithNotifier sets where push notifications are shown.
func WithNotifier(n Notifier) Option {
	return func(w *Worker) { w.notifier = n }
}

// WithClients sets the window registry used on notification clicks.
func WithClients(c Clients) Option {
	return func(w *Worker) { w.clients = c }
}

// WithPrecache lists shell URLs fetched into the static partition on
// install. Relative URLs resolve against the origin. Their paths also join
// the static allowlist.
func WithPrecache(urls ...string) Option {
	return func(w *Worker) { w.precache = append(w.precache, urls...) }
}

// WithFonts lists font URLs fetched into the fonts partition on install.
func WithFonts(urls ...string) Option {
	return func(w *Worker) { w.fonts = append(w.fonts, urls...) }
}

// WithStaticPaths adds exact paths served cache-first from the static
// partition.
func WithStaticPaths(paths ...string) Option {
	return func(w *Worker) {
		for _, p := range paths {
			w.staticPaths[p] = true
		}
	}
}

// WithAssetPrefix sets the path prefix of build output served cache-first.
func WithAssetPrefix(prefix string) Option {
	return func(w *Worker) { w.assetPrefix = prefix }
}

// WithNetworkTimeout bounds network-first fetches.
func WithNetworkTimeout(d time.Duration) Option {
	return func(w *Worker) { w.timeout = d }
}

// WithSweep sets how often Run sweeps the dynamic partition and the age
// beyond which entries are dropped. A zero interval disables the sweep.
func WithSweep(interval, maxAge time.Duration) Option {
	return func(w *Worker) {
		w.sweepInterval = interval
		w.sweepMaxAge = maxAge
	}
}

// WithCleanMaxAge sets the age threshold of the CLEAN_CACHE message.
func WithCleanMaxAge(d time.Duration) Option {
	return func(w *Worker) { w.cleanMaxAge = d }
}

// WithConcurrency bounds parallel fetches during install.
func WithConcurrency(n int) Option {
	return func(w *Worker) { w.concurrency = n }
}

// WithSkipWaiting makes Start activate right after install.
func WithSkipWaiting(on bool) Option {
	return func(w *Worker) { w.skipWaiting = on }
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(w *Worker) { w.now = now }
}

// New creates a Worker for the given cache version. origin is the site the
// worker serves; relative precache URLs and the offline shell resolve
// against it.
func New(version, origin string, storage Storage, opts ...Option) (*Worker, error) {
	if version == "" {
		return nil, errors.New("worker: empty cache version")
	}
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("worker: parsing origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("worker: origin %q is not absolute", origin)
	}

	w := &Worker{
		storage:       storage,
		network:       http.DefaultTransport,
		partitions:    PartitionsFor(version),
		origin:        u,
		now:           time.Now,
		staticPaths:   make(map[string]bool),
		assetPrefix:   "/assets/",
		timeout:       DefaultNetworkTimeout,
		sweepInterval: DefaultSweepInterval,
		sweepMaxAge:   DefaultSweepMaxAge,
		cleanMaxAge:   DefaultCleanMaxAge,
		concurrency:   DefaultConcurrency,
		skipWaiting:   true,
		messages:      make(chan Message, 16),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New("worker")
	}
	if w.concurrency <= 0 {
		w.concurrency = 1
	}
	if w.timeout <= 0 {
		w.timeout = DefaultNetworkTimeout
	}
	for _, raw := range w.precache {
		if ref, err := u.Parse(raw); err == nil && ref.Host == u.Host {
			w.staticPaths[ref.Path] = true
		}
	}
	w.rules = w.defaultRules()
	return w, nil
}

// Partitions returns the current cache names.
func (w *Worker) Partitions() Partitions { return w.partitions }

// State returns the lifecycle phase.
func (w *Worker) State() State {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.state
}

// Controlling reports whether requests are being intercepted.
func (w *Worker) Controlling() bool {
	return w.State() == StateActivated
}

func (w *Worker) transition(from, to State) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != from {
		return fmt.Errorf("%w: %s, want %s", ErrInvalidState, w.state, from)
	}
	w.state = to
	return nil
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

// InstallReport lists the outcome of precaching.
type InstallReport struct {
	Cached []string
	Failed map[string]error
}

// Install opens the current partitions and precaches the shell and font
// URLs. A URL that fails to fetch is recorded in the report and does not
// stop the others. Install fails only when storage is unusable or ctx ends,
// leaving the worker redundant.
func (w *Worker) Install(ctx context.Context) (InstallReport, error) {
	report := InstallReport{Failed: make(map[string]error)}
	if err := w.transition(StateParsed, StateInstalling); err != nil {
		return report, err
	}
	for _, name := range w.partitions.All() {
		if err := w.storage.Open(ctx, name); err != nil {
			w.setState(StateRedundant)
			return report, fmt.Errorf("opening %s: %w", name, err)
		}
	}

	var mu sync.Mutex
	record := func(u string, err error) {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Failed[u] = err
			return
		}
		report.Cached = append(report.Cached, u)
	}

	g := new(errgroup.Group)
	g.SetLimit(w.concurrency)
	add := func(partition string, urls []string) {
		for _, raw := range urls {
			g.Go(func() error {
				record(raw, w.precacheOne(ctx, partition, raw))
				return nil
			})
		}
	}
	add(w.partitions.Static, w.precache)
	add(w.partitions.Fonts, w.fonts)
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		w.setState(StateRedundant)
		return report, err
	}
	for u, err := range report.Failed {
		w.logger.Warnf("precache %s: %v", u, err)
	}
	w.setState(StateInstalled)
	w.logger.Infof("installed %s: %d cached, %d failed", w.partitions.Static, len(report.Cached), len(report.Failed))
	return report, nil
}

func (w *Worker) precacheOne(ctx context.Context, partition, raw string) error {
	u, err := w.origin.Parse(raw)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	e, err := w.fetch(req)
	if err != nil {
		return err
	}
	if !ok(e.Status) {
		return fmt.Errorf("status %d", e.Status)
	}
	return w.store(ctx, partition, e)
}

// Activate deletes every partition that does not belong to the current
// version and starts intercepting requests.
func (w *Worker) Activate(ctx context.Context) error {
	if err := w.transition(StateInstalled, StateActivating); err != nil {
		return err
	}
	names, err := w.storage.Keys(ctx)
	if err != nil {
		w.setState(StateRedundant)
		return fmt.Errorf("listing caches: %w", err)
	}
	for _, name := range names {
		if w.partitions.Has(name) {
			continue
		}
		if _, err := w.storage.Delete(ctx, name); err != nil {
			w.setState(StateRedundant)
			return fmt.Errorf("deleting cache %s: %w", name, err)
		}
		w.logger.Infof("deleted old cache %s", name)
	}
	w.setState(StateActivated)
	if w.clients != nil {
		if err := w.clients.Claim(ctx); err != nil {
			w.logger.Warnf("claiming clients: %v", err)
		}
	}
	return nil
}

// Start installs the worker and, when skip-waiting is on, activates it.
func (w *Worker) Start(ctx context.Context) (InstallReport, error) {
	report, err := w.Install(ctx)
	if err != nil {
		return report, err
	}
	if w.skipWaiting {
		return report, w.Activate(ctx)
	}
	return report, nil
}

// Close stops interception and waits for background work. Work requested
// after Close is dropped.
func (w *Worker) Close() error {
	w.mu.Lock()
	w.state = StateRedundant
	w.closed = true
	w.mu.Unlock()
	w.Wait()
	return nil
}

// Wait blocks until background cache writes have finished.
func (w *Worker) Wait() {
	w.bg.Wait()
}

package worker

import (
	"context"
	"errors"
	"io"
	"net/http"
	"path"
	"strings"
	"time"
)

// PlaceholderSVG is served for images that are neither cached nor reachable.
const PlaceholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="400" height="300" viewBox="0 0 400 300">` +
	`<rect width="400" height="300" fill="#f3f4f6"/>` +
	`<text x="200" y="150" text-anchor="middle" dominant-baseline="middle" font-family="sans-serif" font-size="18" fill="#9ca3af">Image not available</text>` +
	`</svg>`

var errClosed = errors.New("worker closed")

// OfflinePostNotice is served for posts that are neither cached nor reachable.
const OfflinePostNotice = "# Offline\n\nThis post is not available offline. Reconnect and try again."

var fontHosts = map[string]bool{
	"fonts.googleapis.com": true,
	"fonts.gstatic.com":    true,
}

var fontTypes = map[string]string{
	".woff2": "font/woff2",
	".woff":  "font/woff",
	".ttf":   "font/ttf",
	".otf":   "font/otf",
	".eot":   "application/vnd.ms-fontobject",
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".avif": true, ".ico": true,
}

type strategy func(*http.Request) (*http.Response, error)

// rule pairs a request predicate with the strategy that answers it.
type rule struct {
	name   string
	match  func(*http.Request) bool
	handle strategy
}

func (w *Worker) defaultRules() []rule {
	return []rule{
		{"font", isFont, w.font},
		{"image", isImage, w.image},
		{"static", w.isStatic, w.static},
		{"markdown", isMarkdown, w.markdown},
		{"other", func(*http.Request) bool { return true }, w.networkFirst},
	}
}

func isFont(r *http.Request) bool {
	return fontHosts[r.URL.Hostname()]
}

func isImage(r *http.Request) bool {
	return strings.Contains(r.URL.Path, "/images/") || imageExts[strings.ToLower(path.Ext(r.URL.Path))]
}

func (w *Worker) isStatic(r *http.Request) bool {
	if r.URL.Host != "" && r.URL.Host != w.origin.Host {
		return false
	}
	return w.staticPaths[r.URL.Path] || (w.assetPrefix != "" && strings.HasPrefix(r.URL.Path, w.assetPrefix))
}

func isMarkdown(r *http.Request) bool {
	return strings.Contains(r.URL.Path, "/posts/") && strings.HasSuffix(r.URL.Path, ".md")
}

// RoundTrip answers GET requests from the cache according to the first rule
// that matches. Other methods, and every request before activation, go to
// the network untouched.
func (w *Worker) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet || !w.Controlling() {
		return w.network.RoundTrip(req)
	}
	for _, r := range w.rules {
		if r.match(req) {
			return r.handle(req)
		}
	}
	return w.network.RoundTrip(req)
}

// Classify returns the name of the rule that would handle req.
func (w *Worker) Classify(req *http.Request) string {
	for _, r := range w.rules {
		if r.match(req) {
			return r.name
		}
	}
	return ""
}

func (w *Worker) font(req *http.Request) (*http.Response, error) {
	resp, err := w.cacheFirst(req, w.partitions.Fonts)
	if err == nil {
		return resp, nil
	}
	w.logger.Warnf("font %s unavailable: %v", req.URL, err)
	ct := fontTypes[strings.ToLower(path.Ext(req.URL.Path))]
	if ct == "" {
		ct = "text/css"
	}
	return synthesize(req, http.StatusOK, ct, ""), nil
}

func (w *Worker) image(req *http.Request) (*http.Response, error) {
	resp, err := w.cacheFirst(req, w.partitions.Images)
	if err == nil {
		return resp, nil
	}
	w.logger.Warnf("image %s unavailable: %v", req.URL, err)
	return synthesize(req, http.StatusOK, "image/svg+xml", PlaceholderSVG), nil
}

func (w *Worker) static(req *http.Request) (*http.Response, error) {
	return w.cacheFirst(req, w.partitions.Static)
}

// cacheFirst answers from any current partition, otherwise fetches and
// stores 2xx responses into partition.
func (w *Worker) cacheFirst(req *http.Request, partition string) (*http.Response, error) {
	ctx := req.Context()
	key := CacheKey(req.URL)
	if e, err := w.matchAny(ctx, key, partition); err == nil {
		return e.Response(req), nil
	}
	e, err := w.fetch(req)
	if err != nil {
		return nil, err
	}
	if ok(e.Status) {
		if err := w.store(ctx, partition, e); err != nil {
			w.logger.Warnf("caching %s: %v", key, err)
		}
	}
	return e.Response(req), nil
}

// markdown serves a cached post immediately and refreshes it in the
// background. On a miss it waits for the network.
func (w *Worker) markdown(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	key := CacheKey(req.URL)
	if cached, err := w.matchAny(ctx, key, w.partitions.Dynamic); err == nil {
		bgReq := req.Clone(context.WithoutCancel(ctx))
		w.background(func() {
			e, err := w.fetch(bgReq)
			if err != nil {
				w.logger.Debugf("revalidating %s: %v", key, err)
				return
			}
			if ok(e.Status) {
				if err := w.store(bgReq.Context(), w.partitions.Dynamic, e); err != nil {
					w.logger.Warnf("caching %s: %v", key, err)
				}
			}
		})
		return cached.Response(req), nil
	}

	e, err := w.fetch(req)
	if err != nil {
		w.logger.Warnf("post %s unavailable: %v", key, err)
		return synthesize(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", OfflinePostNotice), nil
	}
	if ok(e.Status) {
		if err := w.store(ctx, w.partitions.Dynamic, e); err != nil {
			w.logger.Warnf("caching %s: %v", key, err)
		}
	}
	return e.Response(req), nil
}

// networkFirst fetches with a timeout and stores successes in the
// background. On failure it falls back to a cached copy, then to the cached
// shell for HTML requests, then to a 503.
func (w *Worker) networkFirst(req *http.Request) (*http.Response, error) {
	e, err := w.fetchWithin(req, w.timeout)
	if err == nil {
		if ok(e.Status) {
			stored := e
			w.background(func() {
				if err := w.store(context.WithoutCancel(req.Context()), w.partitions.Dynamic, stored); err != nil {
					w.logger.Warnf("caching %s: %v", stored.URL, err)
				}
			})
		}
		return e.Response(req), nil
	}

	key := CacheKey(req.URL)
	w.logger.Debugf("network failed for %s: %v", key, err)
	if cached, err := w.matchAny(req.Context(), key, w.partitions.Dynamic); err == nil {
		return cached.Response(req), nil
	}
	if strings.Contains(req.Header.Get("Accept"), "text/html") {
		shell := *req.URL
		shell.Path, shell.RawPath, shell.RawQuery = "/", "", ""
		if cached, err := w.matchAny(req.Context(), CacheKey(&shell), w.partitions.Static); err == nil {
			return cached.Response(req), nil
		}
	}
	return synthesize(req, http.StatusServiceUnavailable, "text/plain; charset=utf-8", "Service Unavailable"), nil
}

// matchAny looks in the preferred partition first, then the other current
// ones.
func (w *Worker) matchAny(ctx context.Context, key, preferred string) (*Entry, error) {
	names := append([]string{preferred}, w.partitions.All()...)
	for i, name := range names {
		if i > 0 && name == preferred {
			continue
		}
		e, err := w.storage.Match(ctx, name, key)
		if err == nil {
			return e, nil
		}
		if !errors.Is(err, ErrCacheMiss) {
			w.logger.Warnf("matching %s in %s: %v", key, name, err)
		}
	}
	return nil, ErrCacheMiss
}

// fetch performs the network request and buffers the whole body.
func (w *Worker) fetch(req *http.Request) (*Entry, error) {
	resp, err := w.network.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Entry{
		URL:    CacheKey(req.URL),
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   body,
	}, nil
}

// store writes e into partition, stamping a Date header when absent.
func (w *Worker) store(ctx context.Context, partition string, e *Entry) error {
	c := e.clone()
	now := w.now()
	if c.Header == nil {
		c.Header = make(http.Header)
	}
	if c.Header.Get("Date") == "" {
		c.Header.Set("Date", now.UTC().Format(http.TimeFormat))
	}
	c.StoredAt = now
	return w.storage.Put(ctx, partition, c)
}

// fetchWithin races fetch against a timer. A response arriving after the
// deadline is read, closed and discarded by the fetching goroutine, even when
// the network ignores the request context.
func (w *Worker) fetchWithin(req *http.Request, timeout time.Duration) (*Entry, error) {
	ctx, cancel := context.WithTimeout(req.Context(), timeout)
	defer cancel()

	type result struct {
		e   *Entry
		err error
	}
	done := make(chan result, 1)
	timed := req.WithContext(ctx)
	started := w.background(func() {
		e, err := w.fetch(timed)
		done <- result{e, err}
	})
	if !started {
		return nil, errClosed
	}
	select {
	case r := <-done:
		return r.e, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// background runs fn on a tracked goroutine and reports whether it started.
// Nothing starts once the worker is closed.
func (w *Worker) background(fn func()) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return false
	}
	w.bg.Add(1)
	go func() {
		defer w.bg.Done()
		fn()
	}()
	return true
}

func ok(status int) bool {
	return status >= 200 && status <= 299
}

func synthesize(req *http.Request, status int, contentType, body string) *http.Response {
	e := &Entry{
		URL:    CacheKey(req.URL),
		Status: status,
		Header: http.Header{"Content-Type": {contentType}},
		Body:   []byte(body),
	}
	return e.Response(req)
}

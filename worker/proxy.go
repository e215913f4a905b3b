package worker

import (
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
)

// Proxy returns a reverse proxy to origin whose upstream requests go through
// the worker, so the cache can front any site from a standalone process.
func (w *Worker) Proxy(origin string) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("parsing proxy origin: %w", err)
	}
	rp := httputil.NewSingleHostReverseProxy(target)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	rp.Transport = w
	rp.ErrorHandler = func(rw http.ResponseWriter, r *http.Request, err error) {
		w.logger.Errorf("proxy %s: %v", r.URL, err)
		http.Error(rw, "Bad Gateway", http.StatusBadGateway)
	}
	return rp, nil
}

package worker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrCacheMiss is returned by Storage.Match when no entry exists.
var ErrCacheMiss = errors.New("cache miss")

// Entry is a stored response.
type Entry struct {
	URL      string
	Status   int
	Header   http.Header
	Body     []byte
	StoredAt time.Time
}

// Date parses the entry's Date header. ok is false when it is missing or
// malformed.
func (e *Entry) Date() (t time.Time, ok bool) {
	t, err := http.ParseTime(e.Header.Get("Date"))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// Response builds a fresh response for req from the entry. Each call returns
// an independent body.
func (e *Entry) Response(req *http.Request) *http.Response {
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        e.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Header = e.Header.Clone()
	c.Body = append([]byte(nil), e.Body...)
	return &c
}

// Storage is a set of named cache partitions, each a URL-keyed map of
// responses with overwrite-on-write semantics.
type Storage interface {
	// Open creates the partition if it does not exist.
	Open(ctx context.Context, name string) error
	// Keys lists partition names.
	Keys(ctx context.Context) ([]string, error)
	// Delete removes a partition and reports whether it existed.
	Delete(ctx context.Context, name string) (bool, error)
	// Match returns the entry for url or ErrCacheMiss.
	Match(ctx context.Context, name, url string) (*Entry, error)
	// Put stores e under e.URL, creating the partition if needed.
	Put(ctx context.Context, name string, e *Entry) error
	// URLs lists the keys stored in a partition.
	URLs(ctx context.Context, name string) ([]string, error)
	// Remove deletes one entry.
	Remove(ctx context.Context, name, url string) error
}

// CacheKey is the storage key for u: the URL without its fragment.
func CacheKey(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	return c.String()
}

package mdblog

import (
	"bytes"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// originTransport answers requests for the site's own host by dispatching
// them to the Echo router in process. Other hosts go to the network. It is
// the worker's view of "the network" when the app is its own origin.
type originTransport struct {
	host    string
	handler http.Handler
	next    http.RoundTripper
}

func (a *App) originTransport() http.RoundTripper {
	host := ""
	if u, err := url.Parse(a.Config.URL); err == nil {
		host = u.Host
	}
	return &originTransport{host: host, handler: a.Echo, next: a.network}
}

func (t *originTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Host != t.host {
		return t.next.RoundTrip(req)
	}
	if err := req.Context().Err(); err != nil {
		return nil, err
	}

	in := req.Clone(req.Context())
	in.RequestURI = req.URL.RequestURI()
	if in.Body == nil {
		in.Body = http.NoBody
	}
	if in.RemoteAddr == "" {
		in.RemoteAddr = "127.0.0.1:0"
	}
	rec := &responseBuffer{header: make(http.Header)}
	t.handler.ServeHTTP(rec, in)

	if rec.status == 0 {
		rec.status = http.StatusOK
	}
	return &http.Response{
		Status:        strconv.Itoa(rec.status) + " " + http.StatusText(rec.status),
		StatusCode:    rec.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        rec.header,
		Body:          io.NopCloser(bytes.NewReader(rec.body.Bytes())),
		ContentLength: int64(rec.body.Len()),
		Request:       req,
	}, nil
}

// responseBuffer is an in-memory http.ResponseWriter.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *responseBuffer) Header() http.Header { return b.header }

func (b *responseBuffer) WriteHeader(code int) {
	if b.status == 0 {
		b.status = code
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

func (b *responseBuffer) Flush() {}

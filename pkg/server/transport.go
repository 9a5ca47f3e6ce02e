package server

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Transport is an http.RoundTripper that answers the router's routes in memory
// and sends every other request through Base untouched.
type Transport struct {
	Router *Router
	// Base defaults to http.DefaultTransport
	Base http.RoundTripper
}

// NewTransport returns a Transport in front of base.
func NewTransport(rt *Router, base http.RoundTripper) *Transport {
	return &Transport{Router: rt, Base: base}
}

// NewClient returns an http.Client whose requests go through a Transport.
func NewClient(rt *Router, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: NewTransport(rt, base)}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	h, ok := t.Router.Match(req)
	if !ok {
		return t.base().RoundTrip(req)
	}

	if req.Body != nil {
		defer req.Body.Close()
	}

	rw := newResponseBuffer()
	h.ServeHTTP(rw, req)

	return rw.response(req), nil
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}

	return http.DefaultTransport
}

// responseBuffer collects what a handler writes so it can be turned into an
// *http.Response without going through a connection.
type responseBuffer struct {
	header      http.Header
	status      int
	wroteHeader bool
	body        bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: http.Header{}, status: http.StatusOK}
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.wroteHeader {
		return
	}

	b.status = status
	b.wroteHeader = true
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	b.WriteHeader(http.StatusOK)

	return b.body.Write(p)
}

func (b *responseBuffer) response(req *http.Request) *http.Response {
	body := b.body.Bytes()
	length := int64(len(body))

	if cl := b.header.Get("Content-Length"); cl != "" {
		if n, err := strconv.ParseInt(cl, 10, 64); err == nil {
			length = n
		}
	}

	if req.Method == http.MethodHead {
		body = nil
	}

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", b.status, http.StatusText(b.status)),
		StatusCode:    b.status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        b.header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: length,
		Request:       req,
	}
}

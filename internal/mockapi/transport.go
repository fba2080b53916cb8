package mockapi

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/nurse24/platform/internal/observability/metrics"
)

// Transport adapts the mock backend into an http.RoundTripper so the
// API client can be pointed at it without opening a socket. Metrics,
// when given, count how many calls the mock absorbed.
func (s *Server) Transport(m *metrics.APIMetrics) http.RoundTripper {
	return &handlerTransport{handler: s.Handler(), metrics: m}
}

type handlerTransport struct {
	handler http.Handler
	metrics *metrics.APIMetrics
}

func (t *handlerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	t.metrics.ObserveMockHit()

	// The mock handler is rooted at "/", while the client dials the
	// real server's "/api" base path. Strip it before dispatch.
	req = req.Clone(req.Context())
	req.URL.Path = strings.TrimPrefix(req.URL.Path, "/api")

	rec := &responseRecorder{header: make(http.Header)}
	t.handler.ServeHTTP(rec, req)

	status := rec.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        rec.header,
		Body:          io.NopCloser(bytes.NewReader(rec.body.Bytes())),
		ContentLength: int64(rec.body.Len()),
		Request:       req,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
	}, nil
}

// responseRecorder is the minimal ResponseWriter the in-process
// transport needs.
type responseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) Write(p []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.body.Write(p)
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
}

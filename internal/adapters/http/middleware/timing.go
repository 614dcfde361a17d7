package middleware

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"clubhub/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is used when Timing is given a non-positive threshold.
const DefaultSlowRequestMs = 200

var requestSeq atomic.Uint64

// untimed paths are health checks or long-lived connections whose duration says
// nothing about handler latency.
var untimed = map[string]bool{
	"/healthz":     true,
	"/api/chat/ws": true,
}

// statusWriter records the status code written by the handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Hijack lets websocket upgrades take over the connection.
func (sw *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := sw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	sw.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

var statusWriterPool = sync.Pool{
	New: func() any { return &statusWriter{} },
}

// EndpointKey names the operation a request targets. The API dispatches on
// the action or module query parameter, so it is part of the key.
func EndpointKey(r *http.Request) string {
	key := r.Method + " " + r.URL.Path
	q := r.URL.Query()
	if a := q.Get("action"); a != "" {
		return key + "?action=" + a
	}
	if m := q.Get("module"); m != "" {
		return key + "?module=" + m
	}
	return key
}

// Timing logs each request's duration and records it in collector when
// one is given. Requests at or above slowMs log at WARN, the rest at DEBUG.
func Timing(collector *perf.Collector, slowMs int) func(http.Handler) http.Handler {
	if slowMs <= 0 {
		slowMs = DefaultSlowRequestMs
	}
	threshold := float64(slowMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if untimed[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			key := EndpointKey(r)
			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK

			defer func() {
				ms := float64(time.Since(start).Microseconds()) / 1000
				level := slog.LevelDebug
				msg := "request"
				if ms >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", requestSeq.Add(1),
					"endpoint", key,
					"status", sw.status,
					"duration_ms", ms,
				)
				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Key:        key,
						StatusCode: sw.status,
						DurationMs: ms,
						Timestamp:  start,
					})
				}
				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}

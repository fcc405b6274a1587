package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/okian/clanstats/pkg/metrics"
)

// MetricsMiddleware records request count and latency for next under the
// endpoint label. An empty label falls back to the matched route pattern.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next(sw, r)

		label := endpoint
		if label == "" {
			label = r.Pattern
		}
		if label == "" {
			label = "unmatched"
		}
		code := strconv.Itoa(sw.status)
		elapsedMs := float64(time.Since(start).Microseconds()) / 1000

		metrics.RecordHTTPRequest(label, r.Method, code)
		metrics.RecordHTTPRequestDuration(label, r.Method, code, elapsedMs)
	}
}

// statusWriter remembers the first status code sent to the client.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wroteHeader {
		sw.status = code
		sw.wroteHeader = true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wroteHeader = true
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

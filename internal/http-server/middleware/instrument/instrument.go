package instrument

import (
	"WhatsGrapp/internal/metrics"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// Metrics counts requests and their latency.
func Metrics(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.HTTPRequest(r.Method, status, time.Since(start))
	}
	return http.HandlerFunc(fn)
}

package devserver

import (
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/felixge/httpsnoop"

	"github.com/faciam-dev/crudkit/internal/metrics"
)

// MetricsMW records API request metrics labelled by route template.
func MetricsMW(ctx huma.Context, next func(huma.Context)) {
	r, w := humachi.Unwrap(ctx)
	m := httpsnoop.CaptureMetricsFn(w, func(w http.ResponseWriter) {
		next(humachi.NewContext(ctx.Operation(), r, w))
	})
	path := r.URL.Path
	if op := ctx.Operation(); op != nil {
		path = op.Path
	}
	metrics.APIRequests.WithLabelValues(r.Method, path, strconv.Itoa(m.Code)).Inc()
	metrics.APILatency.WithLabelValues(r.Method, path).Observe(m.Duration.Seconds())
}

package httpapi

import (
	"net/http"

	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

// Health reports liveness and dependency status. It answers 503 only when a
// store is down; an unreachable source or lock backend leaves it at 200 with "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Health")
	defer span.End()

	if h.health == nil {
		writeSuccess(ctx, w, http.StatusOK, usecase.HealthReport{Status: usecase.HealthStatusOK})
		return
	}

	report := h.health.Check(ctx)
	status := http.StatusOK
	if report.Status == usecase.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	writeSuccess(ctx, w, status, report)
}

package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
)

func (h *Handler) ListLiveScores(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveScores")
	defer span.End()

	snapshots, err := h.live.Recent(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list live scores failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]liveSnapshotDTO, 0, len(snapshots))
	for _, s := range snapshots {
		items = append(items, snapshotToDTO(s))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListLiveScoresWithUpdates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLiveScoresWithUpdates")
	defer span.End()

	limit, _ := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("limit")))
	items, err := h.live.WithUpdates(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list live scores with updates failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]liveWithUpdatesDTO, 0, len(items))
	for _, item := range items {
		dto := liveWithUpdatesDTO{
			liveSnapshotDTO: snapshotToDTO(item.Snapshot),
			Updates:         make([]liveUpdateDTO, 0, len(item.Updates)),
		}
		for _, update := range item.Updates {
			dto.Updates = append(dto.Updates, eventToDTO(update))
		}
		out = append(out, dto)
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

// IngestLiveUpdates accepts pushed live events from an internal job.
func (h *Handler) IngestLiveUpdates(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestLiveUpdates")
	defer span.End()

	var req liveUpdatesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	events := make([]livescore.Event, 0, len(req.Updates))
	for _, update := range req.Updates {
		events = append(events, update.toEvent())
	}

	result, err := h.live.Ingest(ctx, events)
	if err != nil {
		h.logger.ErrorContext(ctx, "ingest live updates failed", "received", result.Received, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusAccepted, result)
}

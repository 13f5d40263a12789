package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	values := r.URL.Query()
	req := listMatchesRequest{
		IsFixture:   strings.TrimSpace(values.Get("isFixture")),
		Competition: strings.TrimSpace(values.Get("competition")),
		StartDate:   strings.TrimSpace(values.Get("startDate")),
		EndDate:     strings.TrimSpace(values.Get("endDate")),
		Limit:       strings.TrimSpace(values.Get("limit")),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	query, err := h.toMatchQuery(ctx, req)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	list, err := h.matches.List(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		Matches:   matchesToDTO(list.Records),
		Count:     len(list.Records),
		Source:    list.Source,
		Stale:     list.Stale,
		LastFetch: formatTime(list.LastFetch),
	})
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStats")
	defer span.End()

	stats, err := h.matches.Stats(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "match stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsToDTO(stats))
}

func (h *Handler) ListTodaysFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTodaysFixtures")
	defer span.End()

	items, err := h.matches.TodaysFixtures(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list todays fixtures failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, fixturesToDTO(items))
}

func (h *Handler) toMatchQuery(ctx context.Context, req listMatchesRequest) (usecase.MatchQuery, error) {
	_, span := startSpan(ctx, "httpapi.Handler.toMatchQuery")
	defer span.End()

	var query usecase.MatchQuery
	query.Competition = req.Competition

	if req.IsFixture != "" {
		isFixture := req.IsFixture == "true" || req.IsFixture == "1"
		query.IsFixture = &isFixture
	}
	if req.Limit != "" {
		limit, err := strconv.Atoi(req.Limit)
		if err != nil {
			return usecase.MatchQuery{}, fmt.Errorf("%w: limit must be an integer", usecase.ErrInvalidInput)
		}
		query.Limit = limit
	}
	if req.StartDate != "" {
		start, _, err := parseDateParam(req.StartDate, h.location)
		if err != nil {
			return usecase.MatchQuery{}, fmt.Errorf("%w: startDate: %v", usecase.ErrInvalidInput, err)
		}
		query.StartDate = &start
	}
	if req.EndDate != "" {
		end, dateOnly, err := parseDateParam(req.EndDate, h.location)
		if err != nil {
			return usecase.MatchQuery{}, fmt.Errorf("%w: endDate: %v", usecase.ErrInvalidInput, err)
		}
		if dateOnly {
			end = end.Add(24*time.Hour - time.Nanosecond)
		}
		query.EndDate = &end
	}
	return query, nil
}

// parseDateParam accepts YYYY-MM-DD, read in loc, or an RFC3339 timestamp.
func parseDateParam(value string, loc *time.Location) (time.Time, bool, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return t, true, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("expected YYYY-MM-DD or RFC3339, got %q", value)
	}
	return t, false, nil
}

package httpapi

import (
	"errors"
	"net/http"

	"github.com/riskibarqy/gaa-fixtures/internal/domain/crawl"
	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

// RefreshMatches forces a crawl. The rate limit is skipped but an in-flight
// crawl is never doubled up.
func (h *Handler) RefreshMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshMatches")
	defer span.End()

	trigger := "api:" + r.URL.Path
	result, err := h.crawls.Crawl(ctx, usecase.CrawlInput{Force: true, Trigger: trigger})
	out := crawlResultToDTO(result)

	var limited *crawl.RateLimitedError
	switch {
	case err == nil:
		writeSuccess(ctx, w, http.StatusOK, out)
	case errors.As(err, &limited):
		out.RateLimited = true
		out.NextEligibleAt = formatTime(limited.NextEligibleAt)
		writeSuccess(ctx, w, http.StatusOK, out)
	case errors.Is(err, crawl.ErrCrawlInProgress):
		out.InProgress = true
		writeSuccess(ctx, w, http.StatusOK, out)
	case len(result.Records) > 0:
		h.logger.WarnContext(ctx, "crawl failed, serving cached matches", "records", len(result.Records), "error", err)
		out.Error = err.Error()
		writeSuccess(ctx, w, http.StatusOK, out)
	default:
		h.logger.ErrorContext(ctx, "crawl failed with no cached matches", "error", err)
		writeError(ctx, w, err)
	}
}

func (h *Handler) GetScrapeStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetScrapeStatus")
	defer span.End()

	status, err := h.crawls.Status(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "scrape status failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statusToDTO(status))
}

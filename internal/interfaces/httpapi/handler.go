package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/livescore"
	"github.com/riskibarqy/gaa-fixtures/internal/domain/match"
	"github.com/riskibarqy/gaa-fixtures/internal/platform/logging"
	"github.com/riskibarqy/gaa-fixtures/internal/usecase"
)

const maxRequestBodyBytes = 1 << 20

type MatchReader interface {
	List(ctx context.Context, query usecase.MatchQuery) (usecase.MatchList, error)
	Stats(ctx context.Context) (match.Stats, error)
	TodaysFixtures(ctx context.Context) ([]usecase.FixtureWithScore, error)
}

type CrawlRunner interface {
	Crawl(ctx context.Context, input usecase.CrawlInput) (usecase.CrawlResult, error)
	Status(ctx context.Context) (usecase.ScrapeStatus, error)
}

type LiveReader interface {
	Recent(ctx context.Context) ([]livescore.Snapshot, error)
	WithUpdates(ctx context.Context, limit int) ([]livescore.MatchWithUpdates, error)
	Ingest(ctx context.Context, events []livescore.Event) (usecase.LiveIngestResult, error)
}

type HealthChecker interface {
	Check(ctx context.Context) usecase.HealthReport
}

type Handler struct {
	matches   MatchReader
	crawls    CrawlRunner
	live      LiveReader
	health    HealthChecker
	location  *time.Location
	logger    *logging.Logger
	validator *validator.Validate
}

func NewHandler(
	matches MatchReader,
	crawls CrawlRunner,
	live LiveReader,
	health HealthChecker,
	location *time.Location,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if location == nil {
		location = time.UTC
	}

	return &Handler{
		matches:   matches,
		crawls:    crawls,
		live:      live,
		health:    health,
		location:  location,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSON(r *http.Request, target any) error {
	decoder := sonic.ConfigDefault.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

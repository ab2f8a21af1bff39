package httpapi

import (
	"net/http"

	"github.com/scoutline/scoutline/internal/platform/logging"
)

func NewRouter(
	handler *Handler,
	logger *logging.Logger,
	internalJobToken string,
) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler)
	registerOperatorRoutes(mux, handler)
	registerInternalIngestRoutes(mux, handler, internalJobToken)
	registerInternalJobRoutes(mux, handler, internalJobToken)

	return RequestTracing(RequestLogging(logger, recoverPanic(logger, mux)))
}

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerOperatorRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/players/{playerID}/ratings", handler.ListPlayerRatings)
	mux.HandleFunc("GET /v1/competitions/{competitionID}/ratings", handler.GetCompetitionRatings)
	mux.HandleFunc("GET /v1/review-items", handler.ListReviewItems)
	mux.HandleFunc("POST /v1/review-items/{source}/{sourceID}/resolve", handler.ResolveReviewItem)
	mux.HandleFunc("POST /v1/review-items/{source}/{sourceID}/reject", handler.RejectReviewItem)
	mux.HandleFunc("GET /v1/players/{playerID}/conflicts", handler.ListFieldConflicts)
	mux.HandleFunc("POST /v1/players/{playerID}/conflicts/resolve", handler.ResolveFieldConflict)
}

func registerInternalIngestRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/ingest/players", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestPlayer)))
	mux.Handle("POST /v1/internal/ingest/appearances", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.IngestAppearances)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/enrich", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunEnrichmentJob)))
	mux.Handle("POST /v1/internal/jobs/recompute", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRecomputeJob)))
	mux.Handle("GET /v1/internal/jobs/runs/{runID}", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.GetEnrichmentRun)))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.recoverPanic")
		defer span.End()

		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

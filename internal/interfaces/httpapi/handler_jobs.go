package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/enrichment"
	"github.com/scoutline/scoutline/internal/usecase"
)

type enrichJobRequest struct {
	Source string `json:"source" validate:"omitempty,max=64"`
}

type recomputeJobRequest struct {
	CompetitionID string `json:"competition_id" validate:"omitempty,max=64"`
}

type enrichmentRunDTO struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	Status          string `json:"status"`
	Processed       int    `json:"processed"`
	Matched         int    `json:"matched"`
	Created         int    `json:"created"`
	QueuedForReview int    `json:"queuedForReview"`
	Merged          int    `json:"merged"`
	Errors          int    `json:"errors"`
	RequestsUsed    int    `json:"requestsUsed"`
	BudgetExhausted bool   `json:"budgetExhausted"`
	LastPlayerID    string `json:"lastPlayerId,omitempty"`
	ErrorMessage    string `json:"errorMessage,omitempty"`
	StartedAt       string `json:"startedAt"`
	FinishedAt      string `json:"finishedAt,omitempty"`
}

// RunEnrichmentJob runs one source, or every registered source when the body
// names none. Internal jobs run synchronously; the scheduler's HTTP timeout
// is the natural ceiling on batch size.
func (h *Handler) RunEnrichmentJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunEnrichmentJob")
	defer span.End()

	var req enrichJobRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	source := strings.TrimSpace(req.Source)
	if source != "" {
		run, err := h.enrichmentService.RunSource(ctx, source)
		if err != nil {
			h.logger.WarnContext(ctx, "run enrichment job failed", "source", source, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, []enrichmentRunDTO{runToDTO(run)})
		return
	}

	runs, err := h.enrichmentService.RunAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run enrichment job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]enrichmentRunDTO, 0, len(runs))
	for _, run := range runs {
		items = append(items, runToDTO(run))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) RunRecomputeJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunRecomputeJob")
	defer span.End()

	var req recomputeJobRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	competitionID := strings.TrimSpace(req.CompetitionID)
	if competitionID != "" {
		result, err := h.recomputeService.RecomputeCompetition(ctx, competitionID)
		if err != nil {
			h.logger.WarnContext(ctx, "run recompute job failed", "competition_id", competitionID, "error", err)
			writeError(ctx, w, err)
			return
		}
		writeSuccess(ctx, w, http.StatusOK, []usecase.RecomputeResult{result})
		return
	}

	results, err := h.recomputeService.RecomputeAll(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "run recompute job failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, results)
}

func (h *Handler) GetEnrichmentRun(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEnrichmentRun")
	defer span.End()

	runID := strings.TrimSpace(r.PathValue("runID"))
	if runID == "" {
		writeError(ctx, w, fmt.Errorf("%w: run id is required", usecase.ErrInvalidInput))
		return
	}

	run, err := h.enrichmentService.GetRun(ctx, runID)
	if err != nil {
		h.logger.WarnContext(ctx, "get enrichment run failed", "run_id", runID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, runToDTO(run))
}

func runToDTO(run enrichment.Run) enrichmentRunDTO {
	out := enrichmentRunDTO{
		ID:              run.ID,
		Source:          run.Source,
		Status:          string(run.Status),
		Processed:       run.Counters.Processed,
		Matched:         run.Counters.Matched,
		Created:         run.Counters.Created,
		QueuedForReview: run.Counters.QueuedForReview,
		Merged:          run.Counters.Merged,
		Errors:          run.Counters.Errors,
		RequestsUsed:    run.Counters.RequestsUsed,
		BudgetExhausted: run.BudgetExhausted,
		LastPlayerID:    run.LastPlayerID,
		ErrorMessage:    run.ErrorMessage,
		StartedAt:       run.StartedAt.UTC().Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		out.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return out
}

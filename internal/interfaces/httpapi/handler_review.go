package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
)

type reviewCandidateDTO struct {
	PlayerID string  `json:"playerId"`
	Score    float64 `json:"score"`
}

type reviewItemDTO struct {
	Source     string               `json:"source"`
	SourceID   string               `json:"sourceId"`
	Name       string               `json:"name"`
	TeamID     string               `json:"teamId,omitempty"`
	Reason     string               `json:"reason"`
	Candidates []reviewCandidateDTO `json:"candidates"`
	Status     string               `json:"status"`
	CreatedAt  string               `json:"createdAt"`
}

type resolveReviewRequest struct {
	PlayerID string `json:"player_id" validate:"required,max=64"`
}

type fieldConflictDTO struct {
	PlayerID       string `json:"playerId"`
	Field          string `json:"field"`
	Source         string `json:"source"`
	CanonicalValue string `json:"canonicalValue"`
	SourceValue    string `json:"sourceValue"`
	Overwritten    bool   `json:"overwritten"`
	Resolved       bool   `json:"resolved"`
	CreatedAt      string `json:"createdAt"`
	UpdatedAt      string `json:"updatedAt"`
}

type resolveConflictRequest struct {
	Field  string `json:"field" validate:"required,max=32"`
	Source string `json:"source" validate:"required,max=64"`
}

func (h *Handler) ListReviewItems(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListReviewItems")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil {
			limit = parsed
		}
	}

	items, err := h.reviewService.ListPending(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "list review items failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]reviewItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, reviewItemToDTO(item))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ResolveReviewItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveReviewItem")
	defer span.End()

	source := r.PathValue("source")
	sourceID := r.PathValue("sourceID")

	var req resolveReviewRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.reviewService.Resolve(ctx, source, sourceID, req.PlayerID); err != nil {
		h.logger.WarnContext(ctx, "resolve review item failed", "source", source, "source_id", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "resolved"})
}

func (h *Handler) RejectReviewItem(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RejectReviewItem")
	defer span.End()

	source := r.PathValue("source")
	sourceID := r.PathValue("sourceID")

	if err := h.reviewService.Reject(ctx, source, sourceID); err != nil {
		h.logger.WarnContext(ctx, "reject review item failed", "source", source, "source_id", sourceID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) ListFieldConflicts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListFieldConflicts")
	defer span.End()

	playerID := r.PathValue("playerID")
	includeResolved := r.URL.Query().Get("includeResolved") == "true"

	conflicts, err := h.reviewService.ListFieldConflicts(ctx, playerID, includeResolved)
	if err != nil {
		h.logger.WarnContext(ctx, "list field conflicts failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]fieldConflictDTO, 0, len(conflicts))
	for _, conflict := range conflicts {
		out = append(out, fieldConflictToDTO(conflict))
	}

	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) ResolveFieldConflict(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ResolveFieldConflict")
	defer span.End()

	playerID := r.PathValue("playerID")

	var req resolveConflictRequest
	if err := h.decodeRequest(r.Body, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	if err := h.reviewService.ResolveFieldConflict(ctx, playerID, player.Field(req.Field), req.Source); err != nil {
		h.logger.WarnContext(ctx, "resolve field conflict failed",
			"player_id", playerID,
			"field", req.Field,
			"source", req.Source,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "resolved"})
}

func fieldConflictToDTO(conflict profile.FieldConflict) fieldConflictDTO {
	return fieldConflictDTO{
		PlayerID:       conflict.PlayerID,
		Field:          string(conflict.Field),
		Source:         conflict.Source,
		CanonicalValue: conflict.CanonicalValue,
		SourceValue:    conflict.SourceValue,
		Overwritten:    conflict.Overwritten,
		Resolved:       conflict.Resolved,
		CreatedAt:      conflict.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      conflict.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func reviewItemToDTO(item identity.ReviewItem) reviewItemDTO {
	candidates := make([]reviewCandidateDTO, 0, len(item.Candidates))
	for _, candidate := range item.Candidates {
		candidates = append(candidates, reviewCandidateDTO{
			PlayerID: candidate.PlayerID,
			Score:    candidate.Score,
		})
	}

	return reviewItemDTO{
		Source:     item.Source,
		SourceID:   item.SourceID,
		Name:       item.Name,
		TeamID:     item.TeamID,
		Reason:     item.Reason,
		Candidates: candidates,
		Status:     string(item.Status),
		CreatedAt:  item.CreatedAt.UTC().Format(time.RFC3339),
	}
}

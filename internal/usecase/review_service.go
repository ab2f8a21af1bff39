package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/platform/logging"
)

// ReviewService is the manual adjudication path for records the resolver
// could not place. Explicit resolution is the only way a pending item, or a
// field conflict, is ever retired.
type ReviewService struct {
	reviewRepo   identity.ReviewRepository
	identityRepo identity.Repository
	playerRepo   player.Repository
	profileRepo  profile.Repository
	logger       *logging.Logger
}

func NewReviewService(
	reviewRepo identity.ReviewRepository,
	identityRepo identity.Repository,
	playerRepo player.Repository,
	profileRepo profile.Repository,
	logger *logging.Logger,
) *ReviewService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ReviewService{
		reviewRepo:   reviewRepo,
		identityRepo: identityRepo,
		playerRepo:   playerRepo,
		profileRepo:  profileRepo,
		logger:       logger,
	}
}

func (s *ReviewService) ListPending(ctx context.Context, limit int) ([]identity.ReviewItem, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.ListPending")
	defer span.End()

	if limit <= 0 || limit > 500 {
		limit = 100
	}
	items, err := s.reviewRepo.ListPending(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending review items: %w", err)
	}
	return items, nil
}

// Resolve binds a pending item to the chosen canonical player and records
// the identity with full manual confidence.
func (s *ReviewService) Resolve(ctx context.Context, source, sourceID, playerID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.Resolve")
	defer span.End()

	source = strings.TrimSpace(source)
	sourceID = strings.TrimSpace(sourceID)
	playerID = strings.TrimSpace(playerID)
	if source == "" || sourceID == "" {
		return fmt.Errorf("%w: source and source id are required", ErrInvalidInput)
	}
	if playerID == "" {
		return fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	item, exists, err := s.reviewRepo.Get(ctx, source, sourceID)
	if err != nil {
		return fmt.Errorf("get review item: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: review item source=%s source_id=%s", ErrNotFound, source, sourceID)
	}
	if item.Status != identity.ReviewStatusPending {
		return fmt.Errorf("%w: review item already %s", ErrInvalidInput, item.Status)
	}

	_, exists, err = s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return fmt.Errorf("get player for review resolution: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	if err := s.identityRepo.Upsert(ctx, identity.ExternalIdentity{
		PlayerID:   playerID,
		Source:     source,
		SourceID:   sourceID,
		Confidence: 1.0,
	}); err != nil {
		return fmt.Errorf("upsert identity from review resolution: %w", err)
	}
	if err := s.reviewRepo.UpdateStatus(ctx, source, sourceID, identity.ReviewStatusResolved); err != nil {
		return fmt.Errorf("mark review item resolved: %w", err)
	}

	s.logger.InfoContext(ctx, "review item resolved",
		"source", source,
		"source_id", sourceID,
		"player_id", playerID,
	)
	return nil
}

func (s *ReviewService) Reject(ctx context.Context, source, sourceID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.Reject")
	defer span.End()

	source = strings.TrimSpace(source)
	sourceID = strings.TrimSpace(sourceID)
	if source == "" || sourceID == "" {
		return fmt.Errorf("%w: source and source id are required", ErrInvalidInput)
	}

	item, exists, err := s.reviewRepo.Get(ctx, source, sourceID)
	if err != nil {
		return fmt.Errorf("get review item: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: review item source=%s source_id=%s", ErrNotFound, source, sourceID)
	}
	if item.Status != identity.ReviewStatusPending {
		return fmt.Errorf("%w: review item already %s", ErrInvalidInput, item.Status)
	}

	if err := s.reviewRepo.UpdateStatus(ctx, source, sourceID, identity.ReviewStatusRejected); err != nil {
		return fmt.Errorf("mark review item rejected: %w", err)
	}
	return nil
}

// ListFieldConflicts returns the merge conflicts recorded for one player,
// unresolved ones only unless resolved history is requested.
func (s *ReviewService) ListFieldConflicts(ctx context.Context, playerID string, includeResolved bool) ([]profile.FieldConflict, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.ListFieldConflicts")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	if playerID == "" {
		return nil, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}

	_, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("get player for conflict listing: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}

	conflicts, err := s.profileRepo.ListConflicts(ctx, playerID, !includeResolved)
	if err != nil {
		return nil, fmt.Errorf("list field conflicts: %w", err)
	}
	return conflicts, nil
}

// ResolveFieldConflict marks one recorded conflict as adjudicated. The
// canonical value stays as the merger left it; resolution only retires the
// conflict from the operator queue.
func (s *ReviewService) ResolveFieldConflict(ctx context.Context, playerID string, field player.Field, source string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReviewService.ResolveFieldConflict")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	source = strings.TrimSpace(source)
	if playerID == "" || source == "" {
		return fmt.Errorf("%w: player id and source are required", ErrInvalidInput)
	}
	if !knownField(field) {
		return fmt.Errorf("%w: unknown field %q", ErrInvalidInput, field)
	}

	conflicts, err := s.profileRepo.ListConflicts(ctx, playerID, true)
	if err != nil {
		return fmt.Errorf("list field conflicts: %w", err)
	}
	found := false
	for _, conflict := range conflicts {
		if conflict.Field == field && conflict.Source == source {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: unresolved conflict player=%s field=%s source=%s", ErrNotFound, playerID, field, source)
	}

	if err := s.profileRepo.ResolveConflict(ctx, playerID, field, source); err != nil {
		return fmt.Errorf("resolve field conflict: %w", err)
	}

	s.logger.InfoContext(ctx, "field conflict resolved",
		"player_id", playerID,
		"field", string(field),
		"source", source,
	)
	return nil
}

func knownField(field player.Field) bool {
	for _, known := range player.AllFields {
		if known == field {
			return true
		}
	}
	return false
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/scoutline/scoutline/internal/domain/appearance"
	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/platform/normalize"
)

// IngestOutcome reports how one inbound provider record was handled.
type IngestOutcome struct {
	Decision   ResolveDecision `json:"decision"`
	PlayerID   string          `json:"player_id,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
}

// IngestionService is the inbound half of the pipeline: provider records
// arrive, get resolved against the canonical store, and are merged or queued
// for review. Appearance ingestion from the primary feed also lands here.
type IngestionService struct {
	playerRepo     player.Repository
	identityRepo   identity.Repository
	reviewRepo     identity.ReviewRepository
	appearanceRepo appearance.Repository
	resolver       *ResolverService
	merger         *MergeService
	idGen          IDGenerator
	logger         *logging.Logger
}

func NewIngestionService(
	playerRepo player.Repository,
	identityRepo identity.Repository,
	reviewRepo identity.ReviewRepository,
	appearanceRepo appearance.Repository,
	resolver *ResolverService,
	merger *MergeService,
	idGen IDGenerator,
	logger *logging.Logger,
) *IngestionService {
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		playerRepo:     playerRepo,
		identityRepo:   identityRepo,
		reviewRepo:     reviewRepo,
		appearanceRepo: appearanceRepo,
		resolver:       resolver,
		merger:         merger,
		idGen:          idGen,
		logger:         logger,
	}
}

// IngestPlayerRecord resolves one external record and persists the outcome:
// matched records upsert the identity and merge fields, new records create a
// canonical player, ambiguous records join the review queue with every
// candidate attached.
func (s *IngestionService) IngestPlayerRecord(ctx context.Context, record ExternalRecord, hints ResolveHints, fields profile.FieldSet, raw []byte) (IngestOutcome, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestPlayerRecord")
	defer span.End()

	resolution, err := s.resolver.Resolve(ctx, record, hints)
	if err != nil {
		return IngestOutcome{}, err
	}

	switch resolution.Decision {
	case DecisionMatched:
		if err := s.identityRepo.Upsert(ctx, identity.ExternalIdentity{
			PlayerID:   resolution.PlayerID,
			Source:     record.Source,
			SourceID:   record.SourceID,
			Confidence: resolution.Confidence,
		}); err != nil {
			return IngestOutcome{}, fmt.Errorf("upsert resolved identity: %w", err)
		}
		if _, err := s.merger.MergeProfile(ctx, resolution.PlayerID, record.Source, record.SourceID, fields, raw); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{Decision: DecisionMatched, PlayerID: resolution.PlayerID, Confidence: resolution.Confidence}, nil

	case DecisionNew:
		created, err := s.createPlayer(ctx, record, hints, fields)
		if err != nil {
			return IngestOutcome{}, err
		}
		if err := s.identityRepo.Upsert(ctx, identity.ExternalIdentity{
			PlayerID:   created.ID,
			Source:     record.Source,
			SourceID:   record.SourceID,
			Confidence: 1.0,
		}); err != nil {
			return IngestOutcome{}, fmt.Errorf("upsert identity for created player: %w", err)
		}
		if _, err := s.merger.MergeProfile(ctx, created.ID, record.Source, record.SourceID, fields, raw); err != nil {
			return IngestOutcome{}, err
		}
		return IngestOutcome{Decision: DecisionNew, PlayerID: created.ID, Confidence: 1.0}, nil

	case DecisionAmbiguous:
		candidates := make([]identity.ReviewCandidate, 0, len(resolution.Candidates))
		for _, candidate := range resolution.Candidates {
			candidates = append(candidates, identity.ReviewCandidate{PlayerID: candidate.Player.ID, Score: candidate.Score})
		}
		queued := identity.ReviewItem{
			Source:     record.Source,
			SourceID:   record.SourceID,
			Name:       record.Name,
			TeamID:     hints.TeamID,
			Reason:     "ambiguous identity resolution",
			Candidates: candidates,
			Status:     identity.ReviewStatusPending,
		}
		if err := s.reviewRepo.Enqueue(ctx, queued); err != nil {
			return IngestOutcome{}, fmt.Errorf("enqueue ambiguous record: %w", err)
		}
		s.logger.InfoContext(ctx, "ambiguous record queued for review",
			"source", record.Source,
			"source_id", record.SourceID,
			"candidates", len(candidates),
		)
		return IngestOutcome{Decision: DecisionAmbiguous}, nil
	}

	return IngestOutcome{}, fmt.Errorf("unexpected resolve decision: %s", resolution.Decision)
}

func (s *IngestionService) createPlayer(ctx context.Context, record ExternalRecord, hints ResolveHints, fields profile.FieldSet) (player.Player, error) {
	playerID, err := s.idGen.NewID()
	if err != nil {
		return player.Player{}, fmt.Errorf("generate player id: %w", err)
	}

	name := strings.TrimSpace(record.Name)
	if fields.Name != "" {
		name = strings.TrimSpace(fields.Name)
	}
	position := record.Position
	if fields.Position != "" {
		position = fields.Position
	}

	created := player.Player{
		ID:             playerID,
		Name:           name,
		NameNormalized: normalize.Name(name),
		BirthDate:      record.BirthDate,
		Nationality:    record.Nationality,
		Position:       position,
		PositionGroup:  player.GroupForPosition(position),
		TeamID:         strings.TrimSpace(hints.TeamID),
		TeamName:       strings.TrimSpace(record.TeamName),
		FieldSources:   map[player.Field]string{},
	}
	if err := created.Validate(); err != nil {
		return player.Player{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.playerRepo.Upsert(ctx, created); err != nil {
		return player.Player{}, fmt.Errorf("create canonical player: %w", err)
	}
	return created, nil
}

// UpsertAppearances stores match appearances from the primary feed. The
// upsert keeps retries idempotent on (player, match).
func (s *IngestionService) UpsertAppearances(ctx context.Context, items []appearance.Appearance) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.UpsertAppearances")
	defer span.End()

	if len(items) == 0 {
		return nil
	}
	for i, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: appearance[%d]: %v", ErrInvalidInput, i, err)
		}
	}
	if err := s.appearanceRepo.Upsert(ctx, items); err != nil {
		return fmt.Errorf("upsert appearances: %w", err)
	}
	return nil
}

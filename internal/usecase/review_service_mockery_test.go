package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	identitymock "github.com/scoutline/scoutline/internal/mocks/domain/identity"
	playermock "github.com/scoutline/scoutline/internal/mocks/domain/player"
	profilemock "github.com/scoutline/scoutline/internal/mocks/domain/profile"
	"github.com/scoutline/scoutline/internal/platform/logging"
)

func TestReviewService_Resolve_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reviewRepo := identitymock.NewReviewRepository(t)
	identityRepo := identitymock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)

	service := NewReviewService(reviewRepo, identityRepo, playerRepo, profilemock.NewRepository(t), logging.NewNop())

	reviewRepo.
		On("Get", mock.Anything, "statshub", "sh-31").
		Return(identity.ReviewItem{
			Source:   "statshub",
			SourceID: "sh-31",
			Status:   identity.ReviewStatusPending,
		}, true, nil).
		Once()
	playerRepo.
		On("GetByID", mock.Anything, "pl-9").
		Return(player.Player{ID: "pl-9"}, true, nil).
		Once()
	identityRepo.
		On("Upsert", mock.Anything, mock.MatchedBy(func(item identity.ExternalIdentity) bool {
			return item.PlayerID == "pl-9" &&
				item.Source == "statshub" &&
				item.SourceID == "sh-31" &&
				item.Confidence == 1.0
		})).
		Return(nil).
		Once()
	reviewRepo.
		On("UpdateStatus", mock.Anything, "statshub", "sh-31", identity.ReviewStatusResolved).
		Return(nil).
		Once()

	if err := service.Resolve(ctx, "statshub", "sh-31", "pl-9"); err != nil {
		t.Fatalf("resolve review item: %v", err)
	}
}

func TestReviewService_Resolve_UnknownPlayerUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reviewRepo := identitymock.NewReviewRepository(t)
	identityRepo := identitymock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)

	service := NewReviewService(reviewRepo, identityRepo, playerRepo, profilemock.NewRepository(t), logging.NewNop())

	reviewRepo.
		On("Get", mock.Anything, "statshub", "sh-31").
		Return(identity.ReviewItem{
			Source:   "statshub",
			SourceID: "sh-31",
			Status:   identity.ReviewStatusPending,
		}, true, nil).
		Once()
	playerRepo.
		On("GetByID", mock.Anything, "pl-missing").
		Return(player.Player{}, false, nil).
		Once()

	err := service.Resolve(ctx, "statshub", "sh-31", "pl-missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewService_Reject_AlreadyResolvedUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reviewRepo := identitymock.NewReviewRepository(t)
	identityRepo := identitymock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)

	service := NewReviewService(reviewRepo, identityRepo, playerRepo, profilemock.NewRepository(t), logging.NewNop())

	reviewRepo.
		On("Get", mock.Anything, "statshub", "sh-31").
		Return(identity.ReviewItem{
			Source:   "statshub",
			SourceID: "sh-31",
			Status:   identity.ReviewStatusResolved,
		}, true, nil).
		Once()

	err := service.Reject(ctx, "statshub", "sh-31")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestReviewService_ResolveFieldConflict_UsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	reviewRepo := identitymock.NewReviewRepository(t)
	identityRepo := identitymock.NewRepository(t)
	playerRepo := playermock.NewRepository(t)
	profileRepo := profilemock.NewRepository(t)

	service := NewReviewService(reviewRepo, identityRepo, playerRepo, profileRepo, logging.NewNop())

	profileRepo.
		On("ListConflicts", mock.Anything, "pl-9", true).
		Return([]profile.FieldConflict{
			{PlayerID: "pl-9", Field: player.FieldPosition, Source: "statshub"},
		}, nil).
		Once()
	profileRepo.
		On("ResolveConflict", mock.Anything, "pl-9", player.FieldPosition, "statshub").
		Return(nil).
		Once()

	if err := service.ResolveFieldConflict(ctx, "pl-9", player.FieldPosition, "statshub"); err != nil {
		t.Fatalf("resolve field conflict: %v", err)
	}
}

package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/usecase"
)

type reviewRouterFixture struct {
	router       http.Handler
	identityRepo *memory.IdentityRepository
	reviewRepo   *memory.ReviewRepository
	profileRepo  *memory.ProfileRepository
}

func newReviewRouterFixture(t *testing.T) reviewRouterFixture {
	t.Helper()

	identityRepo := memory.NewIdentityRepository()
	reviewRepo := memory.NewReviewRepository()
	profileRepo := memory.NewProfileRepository()
	playerRepo := memory.NewPlayerRepository([]player.Player{
		{
			ID:             "pl-1",
			Name:           "Sofia Andersson",
			NameNormalized: "sofia andersson",
			Position:       player.PositionStriker,
			PositionGroup:  player.GroupAttacker,
			TeamID:         "team-1",
		},
	}, identityRepo)

	reviewService := usecase.NewReviewService(reviewRepo, identityRepo, playerRepo, profileRepo, logging.NewNop())
	handler := NewHandler(nil, nil, nil, reviewService, nil, logging.NewNop())
	router := NewRouter(handler, logging.NewNop(), "job-token")

	seedPendingItem(t, reviewRepo, "sh-77")

	return reviewRouterFixture{
		router:       router,
		identityRepo: identityRepo,
		reviewRepo:   reviewRepo,
		profileRepo:  profileRepo,
	}
}

func seedPendingItem(t *testing.T, repo *memory.ReviewRepository, sourceID string) {
	t.Helper()

	err := repo.Enqueue(context.Background(), identity.ReviewItem{
		Source:   "statshub",
		SourceID: sourceID,
		Name:     "Sofia Andersson",
		Reason:   "ambiguous identity resolution",
		Candidates: []identity.ReviewCandidate{
			{PlayerID: "pl-1", Score: 0.93},
		},
		Status: identity.ReviewStatusPending,
	})
	if err != nil {
		t.Fatalf("seed pending item: %v", err)
	}
}

func TestListReviewItems_ReturnsPending(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/review-items?limit=10", nil)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var envelope struct {
		Data []reviewItemDTO `json:"data"`
	}
	if err := sonic.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one pending item, got=%d", len(envelope.Data))
	}
	item := envelope.Data[0]
	if item.Source != "statshub" || item.SourceID != "sh-77" {
		t.Fatalf("unexpected item key: got=%s/%s", item.Source, item.SourceID)
	}
	if item.Status != string(identity.ReviewStatusPending) {
		t.Fatalf("unexpected status: got=%s", item.Status)
	}
	if len(item.Candidates) != 1 || item.Candidates[0].PlayerID != "pl-1" {
		t.Fatalf("unexpected candidates: got=%+v", item.Candidates)
	}
}

func TestResolveReviewItem_UpsertsIdentity(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(
		http.MethodPost,
		"/v1/review-items/statshub/sh-77/resolve",
		strings.NewReader(`{"player_id":"pl-1"}`),
	)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}

	mapped, exists, err := fixture.identityRepo.GetBySourceID(context.Background(), "statshub", "sh-77")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if !exists {
		t.Fatalf("expected identity to be created")
	}
	if mapped.PlayerID != "pl-1" || mapped.Confidence != 1.0 {
		t.Fatalf("unexpected identity: got=%+v", mapped)
	}

	item, _, err := fixture.reviewRepo.Get(context.Background(), "statshub", "sh-77")
	if err != nil {
		t.Fatalf("get review item: %v", err)
	}
	if item.Status != identity.ReviewStatusResolved {
		t.Fatalf("unexpected item status: got=%s", item.Status)
	}
}

func TestResolveReviewItem_MissingPlayerIDFailsValidation(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(
		http.MethodPost,
		"/v1/review-items/statshub/sh-77/resolve",
		strings.NewReader(`{}`),
	)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestRejectReviewItem_LeavesNoIdentity(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/v1/review-items/statshub/sh-77/reject", nil)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}

	_, exists, err := fixture.identityRepo.GetBySourceID(context.Background(), "statshub", "sh-77")
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if exists {
		t.Fatalf("expected no identity after reject")
	}
}

func seedHeightConflict(t *testing.T, repo *memory.ProfileRepository) {
	t.Helper()

	err := repo.UpsertConflict(context.Background(), profile.FieldConflict{
		PlayerID:       "pl-1",
		Field:          player.FieldHeightCm,
		Source:         "statshub",
		CanonicalValue: "183",
		SourceValue:    "180",
	})
	if err != nil {
		t.Fatalf("seed conflict: %v", err)
	}
}

func TestListFieldConflicts_ReturnsUnresolved(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)
	seedHeightConflict(t, fixture.profileRepo)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/players/pl-1/conflicts", nil)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}

	var envelope struct {
		Data []fieldConflictDTO `json:"data"`
	}
	if err := sonic.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if len(envelope.Data) != 1 {
		t.Fatalf("expected one conflict, got=%d", len(envelope.Data))
	}
	conflict := envelope.Data[0]
	if conflict.Field != string(player.FieldHeightCm) || conflict.Source != "statshub" {
		t.Fatalf("unexpected conflict: %+v", conflict)
	}
	if conflict.Resolved {
		t.Fatalf("conflict must start unresolved: %+v", conflict)
	}
}

func TestResolveFieldConflict_RetiresConflict(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)
	seedHeightConflict(t, fixture.profileRepo)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(
		http.MethodPost,
		"/v1/players/pl-1/conflicts/resolve",
		strings.NewReader(`{"field":"heightCm","source":"statshub"}`),
	)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}

	remaining, err := fixture.profileRepo.ListConflicts(context.Background(), "pl-1", true)
	if err != nil {
		t.Fatalf("list conflicts: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected conflict to be retired, got=%+v", remaining)
	}
}

func TestListFieldConflicts_UnknownPlayer(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/players/pl-missing/conflicts", nil)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unexpected status: got=%d body=%s", recorder.Code, recorder.Body.String())
	}
}

func TestInternalJobRoutes_RequireToken(t *testing.T) {
	t.Parallel()

	fixture := newReviewRouterFixture(t)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/v1/internal/jobs/runs/run-0001", nil)
	fixture.router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status without token: got=%d", recorder.Code)
	}
}

package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
)

func newReviewFixture(t *testing.T, seed []player.Player, pending []identity.ReviewItem) (*ReviewService, *memory.ReviewRepository, *memory.IdentityRepository) {
	t.Helper()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository(seed, identities)
	reviews := memory.NewReviewRepository()
	for _, item := range pending {
		if err := reviews.Enqueue(context.Background(), item); err != nil {
			t.Fatalf("seed review item: %v", err)
		}
	}

	return NewReviewService(reviews, identities, players, memory.NewProfileRepository(), nil), reviews, identities
}

func pendingItem(source, sourceID string) identity.ReviewItem {
	return identity.ReviewItem{
		Source:   source,
		SourceID: sourceID,
		Name:     "Unplaced Player",
		Status:   identity.ReviewStatusPending,
	}
}

func TestReviewService_Resolve(t *testing.T) {
	t.Parallel()

	svc, reviews, identities := newReviewFixture(t,
		[]player.Player{newTestPlayer("pl-1", "Unplaced Player", "team-1")},
		[]identity.ReviewItem{pendingItem("statshub", "sh-1")},
	)

	if err := svc.Resolve(context.Background(), "statshub", "sh-1", "pl-1"); err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	mapped, found, err := identities.GetBySourceID(context.Background(), "statshub", "sh-1")
	if err != nil || !found {
		t.Fatalf("identity missing after resolution: found=%v err=%v", found, err)
	}
	if mapped.PlayerID != "pl-1" || mapped.Confidence != 1.0 {
		t.Fatalf("unexpected identity: %+v", mapped)
	}

	item, _, _ := reviews.Get(context.Background(), "statshub", "sh-1")
	if item.Status != identity.ReviewStatusResolved {
		t.Fatalf("unexpected status: %s", item.Status)
	}

	// A second resolution attempt must refuse: the item is no longer pending.
	if err := svc.Resolve(context.Background(), "statshub", "sh-1", "pl-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for already-resolved item, got=%v", err)
	}
}

func TestReviewService_Resolve_UnknownPlayer(t *testing.T) {
	t.Parallel()

	svc, reviews, _ := newReviewFixture(t, nil, []identity.ReviewItem{pendingItem("statshub", "sh-1")})

	if err := svc.Resolve(context.Background(), "statshub", "sh-1", "pl-missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error, got=%v", err)
	}

	// A failed resolution leaves the item pending.
	item, _, _ := reviews.Get(context.Background(), "statshub", "sh-1")
	if item.Status != identity.ReviewStatusPending {
		t.Fatalf("unexpected status: %s", item.Status)
	}
}

func TestReviewService_Resolve_UnknownItem(t *testing.T) {
	t.Parallel()

	svc, _, _ := newReviewFixture(t, []player.Player{newTestPlayer("pl-1", "Someone", "team-1")}, nil)

	if err := svc.Resolve(context.Background(), "statshub", "sh-none", "pl-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error, got=%v", err)
	}
}

func TestReviewService_Reject(t *testing.T) {
	t.Parallel()

	svc, reviews, identities := newReviewFixture(t, nil, []identity.ReviewItem{pendingItem("statshub", "sh-1")})

	if err := svc.Reject(context.Background(), "statshub", "sh-1"); err != nil {
		t.Fatalf("Reject error: %v", err)
	}

	item, _, _ := reviews.Get(context.Background(), "statshub", "sh-1")
	if item.Status != identity.ReviewStatusRejected {
		t.Fatalf("unexpected status: %s", item.Status)
	}
	if _, found, _ := identities.GetBySourceID(context.Background(), "statshub", "sh-1"); found {
		t.Fatal("rejection must not create an identity")
	}

	if err := svc.Reject(context.Background(), "statshub", "sh-1"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for already-rejected item, got=%v", err)
	}
}

func newConflictFixture(t *testing.T, conflicts []profile.FieldConflict) (*ReviewService, *memory.ProfileRepository) {
	t.Helper()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository([]player.Player{newTestPlayer("pl-1", "Disputed Player", "team-1")}, identities)
	profiles := memory.NewProfileRepository()
	for _, conflict := range conflicts {
		if err := profiles.UpsertConflict(context.Background(), conflict); err != nil {
			t.Fatalf("seed conflict: %v", err)
		}
	}

	return NewReviewService(memory.NewReviewRepository(), identities, players, profiles, nil), profiles
}

func disputedHeight(source string) profile.FieldConflict {
	return profile.FieldConflict{
		PlayerID:       "pl-1",
		Field:          player.FieldHeightCm,
		Source:         source,
		CanonicalValue: "183",
		SourceValue:    "180",
	}
}

func TestReviewService_ListFieldConflicts(t *testing.T) {
	t.Parallel()

	svc, profiles := newConflictFixture(t, []profile.FieldConflict{
		disputedHeight("statshub"),
		disputedHeight("mainfeed"),
	})
	if err := profiles.ResolveConflict(context.Background(), "pl-1", player.FieldHeightCm, "mainfeed"); err != nil {
		t.Fatalf("resolve seeded conflict: %v", err)
	}

	got, err := svc.ListFieldConflicts(context.Background(), "pl-1", false)
	if err != nil {
		t.Fatalf("ListFieldConflicts error: %v", err)
	}
	if len(got) != 1 || got[0].Source != "statshub" {
		t.Fatalf("expected only the unresolved conflict, got=%+v", got)
	}

	// includeResolved surfaces the full history.
	got, err = svc.ListFieldConflicts(context.Background(), "pl-1", true)
	if err != nil {
		t.Fatalf("ListFieldConflicts error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected count with resolved history: got=%d want=2", len(got))
	}
}

func TestReviewService_ListFieldConflicts_UnknownPlayer(t *testing.T) {
	t.Parallel()

	svc, _ := newConflictFixture(t, nil)

	if _, err := svc.ListFieldConflicts(context.Background(), "pl-missing", false); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error, got=%v", err)
	}
}

func TestReviewService_ResolveFieldConflict(t *testing.T) {
	t.Parallel()

	svc, profiles := newConflictFixture(t, []profile.FieldConflict{disputedHeight("statshub")})

	if err := svc.ResolveFieldConflict(context.Background(), "pl-1", player.FieldHeightCm, "statshub"); err != nil {
		t.Fatalf("ResolveFieldConflict error: %v", err)
	}

	remaining, err := profiles.ListConflicts(context.Background(), "pl-1", true)
	if err != nil {
		t.Fatalf("ListConflicts error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("expected no unresolved conflicts, got=%+v", remaining)
	}

	// Resolution is terminal; a second attempt reports not found.
	if err := svc.ResolveFieldConflict(context.Background(), "pl-1", player.FieldHeightCm, "statshub"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found error on repeat, got=%v", err)
	}
}

func TestReviewService_ResolveFieldConflict_UnknownField(t *testing.T) {
	t.Parallel()

	svc, _ := newConflictFixture(t, []profile.FieldConflict{disputedHeight("statshub")})

	if err := svc.ResolveFieldConflict(context.Background(), "pl-1", player.Field("shoeSize"), "statshub"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input for unknown field, got=%v", err)
	}
}

func TestReviewService_ListPending_LimitClamp(t *testing.T) {
	t.Parallel()

	var items []identity.ReviewItem
	for i := 0; i < 3; i++ {
		items = append(items, pendingItem("statshub", matchID(i)))
	}
	svc, _, _ := newReviewFixture(t, nil, items)

	got, err := svc.ListPending(context.Background(), 2)
	if err != nil {
		t.Fatalf("ListPending error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected count: got=%d want=2", len(got))
	}

	// Out-of-range limits fall back to the default page size.
	got, err = svc.ListPending(context.Background(), -5)
	if err != nil {
		t.Fatalf("ListPending error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("unexpected count with default limit: got=%d want=3", len(got))
	}
}

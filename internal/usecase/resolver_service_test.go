package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/scoutline/scoutline/internal/domain/identity"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
	"github.com/scoutline/scoutline/internal/platform/normalize"
)

func newTestPlayer(id, name, teamID string) player.Player {
	return player.Player{
		ID:             id,
		Name:           name,
		NameNormalized: normalize.Name(name),
		Position:       player.PositionStriker,
		PositionGroup:  player.GroupAttacker,
		TeamID:         teamID,
	}
}

func dateOf(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestResolverService_Resolve_MappedIdentityWins(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository([]player.Player{
		newTestPlayer("pl-1", "Jose Martinez", "team-1"),
	}, identities)
	if err := identities.Upsert(context.Background(), identity.ExternalIdentity{
		PlayerID: "pl-1", Source: "statshub", SourceID: "sh-42", Confidence: 0.95,
	}); err != nil {
		t.Fatalf("seed identity: %v", err)
	}

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-42", Name: "Completely Different Name",
	}, ResolveHints{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got.Decision != DecisionMatched {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionMatched)
	}
	if got.PlayerID != "pl-1" {
		t.Fatalf("unexpected player id: got=%s want=pl-1", got.PlayerID)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("mapped identity must resolve at full confidence, got=%f", got.Confidence)
	}
}

func TestResolverService_Resolve_ExactNameAccentInsensitive(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository([]player.Player{
		newTestPlayer("pl-1", "José Martínez", "team-1"),
	}, identities)

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-1", Name: "jose MARTINEZ",
	}, ResolveHints{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got.Decision != DecisionMatched {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionMatched)
	}
	if got.PlayerID != "pl-1" {
		t.Fatalf("unexpected player id: got=%s", got.PlayerID)
	}
}

func TestResolverService_Resolve_NoCandidatesMeansNew(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository(nil, identities)

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-9", Name: "Totally New Player",
	}, ResolveHints{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got.Decision != DecisionNew {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionNew)
	}
}

func TestResolverService_Resolve_AmbiguityMargin(t *testing.T) {
	t.Parallel()

	birth := dateOf(1999, time.March, 14)

	t.Run("clear winner above threshold is matched", func(t *testing.T) {
		identities := memory.NewIdentityRepository()
		// Two same-named players; birth date separates them: the match bonus
		// lifts one to 1.0 while the mismatch malus drops the other to 0.80.
		first := newTestPlayer("pl-1", "Alan Silva", "team-1")
		first.BirthDate = birth
		second := newTestPlayer("pl-2", "Alan Silva", "team-2")
		second.BirthDate = dateOf(1994, time.July, 2)
		players := memory.NewPlayerRepository([]player.Player{first, second}, identities)

		svc := NewResolverService(players, identities, DefaultResolverConfig())
		got, err := svc.Resolve(context.Background(), ExternalRecord{
			Source: "statshub", SourceID: "sh-2", Name: "Alan Silva", BirthDate: birth,
		}, ResolveHints{})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}

		if got.Decision != DecisionMatched {
			t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionMatched)
		}
		if got.PlayerID != "pl-1" {
			t.Fatalf("unexpected player id: got=%s want=pl-1", got.PlayerID)
		}
	})

	t.Run("close runner-up forces review", func(t *testing.T) {
		identities := memory.NewIdentityRepository()
		// Same name, no separating evidence: both score 1.0.
		players := memory.NewPlayerRepository([]player.Player{
			newTestPlayer("pl-1", "Alan Silva", "team-1"),
			newTestPlayer("pl-2", "Alan Silva", "team-2"),
		}, identities)

		svc := NewResolverService(players, identities, DefaultResolverConfig())
		got, err := svc.Resolve(context.Background(), ExternalRecord{
			Source: "statshub", SourceID: "sh-3", Name: "Alan Silva",
		}, ResolveHints{})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}

		if got.Decision != DecisionAmbiguous {
			t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionAmbiguous)
		}
		if len(got.Candidates) != 2 {
			t.Fatalf("unexpected candidate count: got=%d want=2", len(got.Candidates))
		}
	})

	t.Run("top below threshold is ambiguous even alone", func(t *testing.T) {
		identities := memory.NewIdentityRepository()
		players := memory.NewPlayerRepository([]player.Player{
			newTestPlayer("pl-1", "Alan Santana", "team-1"),
		}, identities)

		svc := NewResolverService(players, identities, DefaultResolverConfig())
		// One substitution over 12 runes scores ~0.917, under the 0.92
		// acceptance threshold but above the 0.8 team cutoff.
		got, err := svc.Resolve(context.Background(), ExternalRecord{
			Source: "statshub", SourceID: "sh-4", Name: "Alan Santani",
		}, ResolveHints{TeamID: "team-1"})
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}

		if got.Decision != DecisionAmbiguous {
			t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionAmbiguous)
		}
	})
}

func TestResolverService_Resolve_BirthDateMismatchMalus(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	only := newTestPlayer("pl-1", "Marco Rossi", "team-1")
	only.BirthDate = dateOf(1990, time.May, 5)
	players := memory.NewPlayerRepository([]player.Player{only}, identities)

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	// Exact name gives base 1.0; the mismatching birth date drags the score to
	// 0.80, under the 0.92 acceptance threshold.
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-5", Name: "Marco Rossi", BirthDate: dateOf(2001, time.May, 5),
	}, ResolveHints{})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got.Decision != DecisionAmbiguous {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionAmbiguous)
	}
	if len(got.Candidates) != 1 {
		t.Fatalf("unexpected candidate count: got=%d want=1", len(got.Candidates))
	}
	if score := got.Candidates[0].Score; score > 0.81 || score < 0.79 {
		t.Fatalf("unexpected candidate score: got=%f want~0.80", score)
	}
}

func TestResolverService_Resolve_StageOrderShortCircuits(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	exact := newTestPlayer("pl-exact", "Ivan Petrov", "team-9")
	fuzzy := newTestPlayer("pl-fuzzy", "Ivan Petrow", "team-1")
	players := memory.NewPlayerRepository([]player.Player{exact, fuzzy}, identities)

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	// The record carries a team hint pointing at the fuzzy player, but the
	// exact-name stage wins before team-fuzzy ever runs.
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-6", Name: "Ivan Petrov",
	}, ResolveHints{TeamID: "team-1"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	if got.Decision != DecisionMatched {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionMatched)
	}
	if got.PlayerID != "pl-exact" {
		t.Fatalf("unexpected player id: got=%s want=pl-exact", got.PlayerID)
	}
}

func TestResolverService_Resolve_CompetitionFuzzyFallback(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	known := newTestPlayer("pl-1", "Henrik Johansson", "team-2")
	players := memory.NewPlayerRepository([]player.Player{known}, identities)
	players.AssignCompetition("pl-1", "comp-1")

	svc := NewResolverService(players, identities, DefaultResolverConfig())
	got, err := svc.Resolve(context.Background(), ExternalRecord{
		Source: "statshub", SourceID: "sh-7", Name: "Henrik Johanssen",
	}, ResolveHints{CompetitionID: "comp-1"})
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}

	// 16-rune surname pool with one substitution scores ~0.94, above the
	// competition cutoff but below the margin-free acceptance path only if a
	// runner-up existed; alone it is matched.
	if got.Decision != DecisionMatched {
		t.Fatalf("unexpected decision: got=%s want=%s", got.Decision, DecisionMatched)
	}
	if got.PlayerID != "pl-1" {
		t.Fatalf("unexpected player id: got=%s want=pl-1", got.PlayerID)
	}
}

func TestResolverService_Resolve_InvalidInput(t *testing.T) {
	t.Parallel()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository(nil, identities)
	svc := NewResolverService(players, identities, DefaultResolverConfig())

	if _, err := svc.Resolve(context.Background(), ExternalRecord{Source: "statshub"}, ResolveHints{}); err == nil {
		t.Fatal("expected error for missing source id")
	}
	if _, err := svc.Resolve(context.Background(), ExternalRecord{Source: "statshub", SourceID: "sh-1"}, ResolveHints{}); err == nil {
		t.Fatal("expected error for missing name")
	}
}

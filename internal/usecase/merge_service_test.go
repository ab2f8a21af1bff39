package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
)

func seedMergeFixture(t *testing.T, canonical player.Player) (*MergeService, *memory.PlayerRepository, *memory.ProfileRepository) {
	t.Helper()

	identities := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository([]player.Player{canonical}, identities)
	profiles := memory.NewProfileRepository()
	svc := NewMergeService(players, profiles, nil, nil)

	return svc, players, profiles
}

func TestMergeService_MergeProfile_FillsEmptyWithoutConflict(t *testing.T) {
	t.Parallel()

	canonical := newTestPlayer("pl-1", "Luka Horvat", "team-1")
	svc, players, profiles := seedMergeFixture(t, canonical)

	report, err := svc.MergeProfile(context.Background(), "pl-1", SourceStatsHub, "sh-1", profile.FieldSet{
		HeightCm:    188,
		Nationality: "Croatia",
	}, []byte(`{"id":"sh-1"}`))
	if err != nil {
		t.Fatalf("MergeProfile error: %v", err)
	}

	if len(report.Conflicts) != 0 {
		t.Fatalf("filling empty fields must not conflict, got=%v", report.Conflicts)
	}
	if len(report.Overwritten) != 2 {
		t.Fatalf("unexpected overwritten count: got=%d want=2", len(report.Overwritten))
	}

	merged, _, err := players.GetByID(context.Background(), "pl-1")
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if merged.HeightCm != 188 || merged.Nationality != "Croatia" {
		t.Fatalf("unexpected merged player: %+v", merged)
	}
	if merged.FieldSources[player.FieldHeightCm] != SourceStatsHub {
		t.Fatalf("field source not recorded: %v", merged.FieldSources)
	}

	snapshot, found, err := profiles.GetSnapshot(context.Background(), "pl-1", SourceStatsHub)
	if err != nil || !found {
		t.Fatalf("snapshot missing after merge: found=%v err=%v", found, err)
	}
	if string(snapshot.Raw) != `{"id":"sh-1"}` {
		t.Fatalf("unexpected snapshot raw: %s", snapshot.Raw)
	}
}

func TestMergeService_MergeProfile_PrecedenceControlsOverwrite(t *testing.T) {
	t.Parallel()

	canonical := newTestPlayer("pl-1", "Luka Horvat", "team-1")
	canonical.HeightCm = 180
	canonical.Nationality = "Croatia"
	canonical.FieldSources = map[player.Field]string{
		player.FieldHeightCm:    SourceMainFeed,
		player.FieldNationality: SourceMainFeed,
	}
	svc, players, profiles := seedMergeFixture(t, canonical)

	// statshub outranks mainfeed on physical fields but not identity fields.
	report, err := svc.MergeProfile(context.Background(), "pl-1", SourceStatsHub, "sh-1", profile.FieldSet{
		HeightCm:    184,
		Nationality: "Slovenia",
	}, nil)
	if err != nil {
		t.Fatalf("MergeProfile error: %v", err)
	}

	if len(report.Conflicts) != 2 {
		t.Fatalf("both disagreements must record conflicts, got=%v", report.Conflicts)
	}
	if len(report.Overwritten) != 1 || report.Overwritten[0] != player.FieldHeightCm {
		t.Fatalf("only height should be overwritten, got=%v", report.Overwritten)
	}

	merged, _, _ := players.GetByID(context.Background(), "pl-1")
	if merged.HeightCm != 184 {
		t.Fatalf("statshub height should win: got=%d", merged.HeightCm)
	}
	if merged.Nationality != "Croatia" {
		t.Fatalf("mainfeed nationality should hold: got=%s", merged.Nationality)
	}

	conflicts, err := profiles.ListConflicts(context.Background(), "pl-1", true)
	if err != nil {
		t.Fatalf("ListConflicts error: %v", err)
	}
	if len(conflicts) != 2 {
		t.Fatalf("unexpected conflict rows: got=%d want=2", len(conflicts))
	}
	for _, c := range conflicts {
		switch c.Field {
		case player.FieldHeightCm:
			if !c.Overwritten {
				t.Fatalf("height conflict should be marked overwritten: %+v", c)
			}
		case player.FieldNationality:
			if c.Overwritten {
				t.Fatalf("nationality conflict should not be overwritten: %+v", c)
			}
		default:
			t.Fatalf("unexpected conflict field: %s", c.Field)
		}
	}
}

func TestMergeService_MergeProfile_EquivalentValuesAreQuiet(t *testing.T) {
	t.Parallel()

	canonical := newTestPlayer("pl-1", "Luka Horvat", "team-1")
	canonical.Nationality = "Croatia"
	canonical.FieldSources = map[player.Field]string{player.FieldNationality: SourceMainFeed}
	svc, _, profiles := seedMergeFixture(t, canonical)

	report, err := svc.MergeProfile(context.Background(), "pl-1", SourceStatsHub, "sh-1", profile.FieldSet{
		Nationality: "  CROATIA ",
	}, nil)
	if err != nil {
		t.Fatalf("MergeProfile error: %v", err)
	}

	if len(report.Conflicts) != 0 || len(report.Overwritten) != 0 {
		t.Fatalf("equivalent values must be a no-op, got=%+v", report)
	}
	conflicts, _ := profiles.ListConflicts(context.Background(), "pl-1", false)
	if len(conflicts) != 0 {
		t.Fatalf("no conflict rows expected, got=%d", len(conflicts))
	}
}

func TestMergeService_MergeProfile_NameChangeRefreshesNormalized(t *testing.T) {
	t.Parallel()

	canonical := newTestPlayer("pl-1", "Luka Horvat", "team-1")
	svc, players, _ := seedMergeFixture(t, canonical)

	// mainfeed outranks the previous unknown source on name, so the new
	// spelling lands and the normalized form follows.
	if _, err := svc.MergeProfile(context.Background(), "pl-1", SourceMainFeed, "mf-1", profile.FieldSet{
		Name: "Luka Hörvat",
	}, nil); err != nil {
		t.Fatalf("MergeProfile error: %v", err)
	}

	merged, _, _ := players.GetByID(context.Background(), "pl-1")
	if merged.Name != "Luka Hörvat" {
		t.Fatalf("unexpected name: got=%s", merged.Name)
	}
	if merged.NameNormalized != "luka horvat" {
		t.Fatalf("normalized name not refreshed: got=%s", merged.NameNormalized)
	}
}

func TestMergeService_MergeProfile_RepeatedConflictKeepsResolvedFlag(t *testing.T) {
	t.Parallel()

	canonical := newTestPlayer("pl-1", "Luka Horvat", "team-1")
	canonical.BirthDate = dateOf(1998, time.January, 10)
	canonical.FieldSources = map[player.Field]string{player.FieldBirthDate: SourceMainFeed}
	svc, _, profiles := seedMergeFixture(t, canonical)

	fields := profile.FieldSet{BirthDate: dateOf(1998, time.January, 11)}
	if _, err := svc.MergeProfile(context.Background(), "pl-1", SourceStatsHub, "sh-1", fields, nil); err != nil {
		t.Fatalf("first MergeProfile error: %v", err)
	}
	if err := profiles.ResolveConflict(context.Background(), "pl-1", player.FieldBirthDate, SourceStatsHub); err != nil {
		t.Fatalf("ResolveConflict error: %v", err)
	}

	// The same disagreement on the next sweep must not reopen the conflict.
	if _, err := svc.MergeProfile(context.Background(), "pl-1", SourceStatsHub, "sh-1", fields, nil); err != nil {
		t.Fatalf("second MergeProfile error: %v", err)
	}

	unresolved, err := profiles.ListConflicts(context.Background(), "pl-1", true)
	if err != nil {
		t.Fatalf("ListConflicts error: %v", err)
	}
	if len(unresolved) != 0 {
		t.Fatalf("resolved conflict resurrected: %+v", unresolved)
	}
}

func TestMergeService_MergeProfile_UnknownPlayer(t *testing.T) {
	t.Parallel()

	svc, _, _ := seedMergeFixture(t, newTestPlayer("pl-1", "Luka Horvat", "team-1"))
	if _, err := svc.MergeProfile(context.Background(), "pl-missing", SourceStatsHub, "sh-1", profile.FieldSet{}, nil); err == nil {
		t.Fatal("expected not-found error")
	}
}

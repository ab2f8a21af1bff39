package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/scoutline/scoutline/internal/domain/enrichment"
	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/domain/rawdata"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/memory"
)

type sequenceIDGen struct {
	mu   sync.Mutex
	next int
}

func (g *sequenceIDGen) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("run-%04d", g.next), nil
}

// fakeProvider answers searches from a fixed table and counts every call.
type fakeProvider struct {
	mu         sync.Mutex
	source     string
	searchHits map[string][]ProviderSearchResult
	profiles   map[string]ProviderProfile
	statsErr   error
	calls      int
}

func (p *fakeProvider) Source() string { return p.source }

func (p *fakeProvider) count() {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func (p *fakeProvider) SearchPlayers(_ context.Context, name string) ([]ProviderSearchResult, []rawdata.Payload, error) {
	p.count()
	payload := rawdata.Payload{Source: p.source, EntityType: "search", EntityKey: name}
	return p.searchHits[name], []rawdata.Payload{payload}, nil
}

func (p *fakeProvider) FetchProfile(_ context.Context, sourceID string) (ProviderProfile, []rawdata.Payload, error) {
	p.count()
	fetched, ok := p.profiles[sourceID]
	if !ok {
		return ProviderProfile{}, nil, fmt.Errorf("unknown source id %s", sourceID)
	}
	payload := rawdata.Payload{Source: p.source, EntityType: "profile", EntityKey: sourceID}
	return fetched, []rawdata.Payload{payload}, nil
}

func (p *fakeProvider) FetchSeasonStats(_ context.Context, sourceID string) ([]ProviderSeasonStat, []rawdata.Payload, error) {
	p.count()
	if p.statsErr != nil {
		return nil, nil, p.statsErr
	}
	payload := rawdata.Payload{Source: p.source, EntityType: "season-stats", EntityKey: sourceID}
	return nil, []rawdata.Payload{payload}, nil
}

type enrichmentFixture struct {
	svc      *EnrichmentService
	players  *memory.PlayerRepository
	ids      *memory.IdentityRepository
	reviews  *memory.ReviewRepository
	runs     *memory.EnrichmentRunRepository
	raw      *memory.RawDataRepository
	provider *fakeProvider
}

func newEnrichmentFixture(t *testing.T, seed []player.Player, provider *fakeProvider, cfg EnrichmentConfig) enrichmentFixture {
	t.Helper()

	ids := memory.NewIdentityRepository()
	players := memory.NewPlayerRepository(seed, ids)
	reviews := memory.NewReviewRepository()
	runs := memory.NewEnrichmentRunRepository()
	raw := memory.NewRawDataRepository()
	profiles := memory.NewProfileRepository()
	merger := NewMergeService(players, profiles, nil, nil)

	if cfg.MinRequestInterval == 0 {
		cfg.MinRequestInterval = time.Millisecond
	}

	svc := NewEnrichmentService(players, ids, reviews, runs, raw, merger,
		[]ProviderClient{provider}, &sequenceIDGen{}, cfg, nil)

	return enrichmentFixture{
		svc: svc, players: players, ids: ids, reviews: reviews,
		runs: runs, raw: raw, provider: provider,
	}
}

func hitFor(id, name string) []ProviderSearchResult {
	return []ProviderSearchResult{{SourceID: id, Name: name}}
}

func TestEnrichmentService_RunSource_MatchAndMerge(t *testing.T) {
	t.Parallel()

	target := newTestPlayer("pl-1", "Diego Fuentes", "team-1")
	provider := &fakeProvider{
		source:     "statshub",
		searchHits: map[string][]ProviderSearchResult{"Diego Fuentes": hitFor("sh-77", "Diego Fuentes")},
		profiles: map[string]ProviderProfile{
			"sh-77": {
				Raw:    []byte(`{"id":"sh-77"}`),
				Fields: profile.FieldSet{HeightCm: 182},
			},
		},
	}
	fx := newEnrichmentFixture(t, []player.Player{target}, provider, EnrichmentConfig{})

	run, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("RunSource error: %v", err)
	}

	if run.Status != enrichment.StatusCompleted {
		t.Fatalf("unexpected status: got=%s want=%s", run.Status, enrichment.StatusCompleted)
	}
	if run.Counters.Matched != 1 || run.Counters.Merged != 1 {
		t.Fatalf("unexpected counters: %+v", run.Counters)
	}
	if run.Counters.RequestsUsed != 3 {
		t.Fatalf("one player costs search+profile+stats: got=%d want=3", run.Counters.RequestsUsed)
	}

	mapped, found, err := fx.ids.GetBySourceID(context.Background(), "statshub", "sh-77")
	if err != nil || !found {
		t.Fatalf("identity missing: found=%v err=%v", found, err)
	}
	if mapped.PlayerID != "pl-1" {
		t.Fatalf("unexpected mapped player: %s", mapped.PlayerID)
	}

	enriched, _, _ := fx.players.GetByID(context.Background(), "pl-1")
	if enriched.HeightCm != 182 {
		t.Fatalf("profile merge did not land: height=%d", enriched.HeightCm)
	}
	if fx.raw.Count() != 3 {
		t.Fatalf("raw payload audit incomplete: got=%d want=3", fx.raw.Count())
	}
}

func TestEnrichmentService_PickProviderCandidate_TeamAndPositionCorroborate(t *testing.T) {
	t.Parallel()

	cfg := EnrichmentConfig{Resolver: ResolverConfig{
		ConfidenceThreshold: 0.9,
		AmbiguityMargin:     0.04,
		MinCandidateScore:   0.5,
		TeamFuzzyCutoff:     0.8,
	}}
	fixture := newEnrichmentFixture(t, nil, &fakeProvider{source: "statshub"}, cfg)

	item := newTestPlayer("pl-1", "Jonas Berg", "team-1")
	item.TeamName = "Malmo FF"

	// Two same-named hits with no extra signals cannot be told apart.
	hits := []ProviderSearchResult{
		{SourceID: "sh-1", Name: "Jonas Berg"},
		{SourceID: "sh-2", Name: "Jonas Berg"},
	}
	if _, _, decided := fixture.svc.pickProviderCandidate(item, hits); decided {
		t.Fatal("identical hits without corroboration must stay undecided")
	}

	// Club and role agreement separates them.
	hits = []ProviderSearchResult{
		{SourceID: "sh-1", Name: "Jonas Berg", TeamName: "Malmo FF", Position: player.PositionStriker},
		{SourceID: "sh-2", Name: "Jonas Berg", TeamName: "Hammarby IF", Position: player.PositionGoalkeeper},
	}
	best, score, decided := fixture.svc.pickProviderCandidate(item, hits)
	if !decided {
		t.Fatal("team and position agreement should separate same-named hits")
	}
	if best.SourceID != "sh-1" {
		t.Fatalf("unexpected pick: %+v", best)
	}
	if score != 1.0 {
		t.Fatalf("unexpected score: got=%v", score)
	}
}

func TestEnrichmentService_PickProviderCandidate_PositionMismatchLowersHit(t *testing.T) {
	t.Parallel()

	fixture := newEnrichmentFixture(t, nil, &fakeProvider{source: "statshub"}, EnrichmentConfig{})

	item := newTestPlayer("pl-1", "Jonas Berg", "team-1")

	// A lone exact-name hit still matches when only the reported role differs.
	hits := []ProviderSearchResult{
		{SourceID: "sh-1", Name: "Jonas Berg", Position: player.PositionGoalkeeper},
	}
	best, score, decided := fixture.svc.pickProviderCandidate(item, hits)
	if !decided || best.SourceID != "sh-1" {
		t.Fatalf("unexpected pick: decided=%v best=%+v", decided, best)
	}
	if score >= 1.0 {
		t.Fatalf("role disagreement must lower the score, got=%v", score)
	}
}

func TestEnrichmentService_RunSource_BudgetCapsExternalCalls(t *testing.T) {
	t.Parallel()

	var seed []player.Player
	hits := make(map[string][]ProviderSearchResult)
	profiles := make(map[string]ProviderProfile)
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("Player Number%d", i)
		id := fmt.Sprintf("pl-%d", i)
		seed = append(seed, newTestPlayer(id, name, "team-1"))
		hits[name] = hitFor("sh-"+id, name)
		profiles["sh-"+id] = ProviderProfile{Fields: profile.FieldSet{}}
	}
	provider := &fakeProvider{source: "statshub", searchHits: hits, profiles: profiles}
	fx := newEnrichmentFixture(t, seed, provider, EnrichmentConfig{BudgetPerSource: 5})

	run, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("RunSource error: %v", err)
	}

	if provider.callCount() > 5 {
		t.Fatalf("budget overrun: %d external calls with budget 5", provider.callCount())
	}
	if !run.BudgetExhausted {
		t.Fatal("run must flag budget exhaustion when a call would exceed it")
	}
	if run.Status != enrichment.StatusBudgetExhausted {
		t.Fatalf("unexpected status: got=%s want=%s", run.Status, enrichment.StatusBudgetExhausted)
	}
	if run.Counters.RequestsUsed != 5 {
		t.Fatalf("unexpected requests used: got=%d want=5", run.Counters.RequestsUsed)
	}
}

func TestEnrichmentService_RunSource_ResumeCursor(t *testing.T) {
	t.Parallel()

	var seed []player.Player
	hits := make(map[string][]ProviderSearchResult)
	profiles := make(map[string]ProviderProfile)
	for i := 0; i < 3; i++ {
		name := fmt.Sprintf("Player Number%d", i)
		id := fmt.Sprintf("pl-%d", i)
		seed = append(seed, newTestPlayer(id, name, "team-1"))
		hits[name] = hitFor("sh-"+id, name)
		profiles["sh-"+id] = ProviderProfile{Fields: profile.FieldSet{}}
	}
	provider := &fakeProvider{source: "statshub", searchHits: hits, profiles: profiles}
	// Budget 3 finishes exactly one player per run.
	fx := newEnrichmentFixture(t, seed, provider, EnrichmentConfig{BudgetPerSource: 3})

	first, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("first RunSource error: %v", err)
	}
	if first.Status != enrichment.StatusBudgetExhausted {
		t.Fatalf("unexpected first status: %s", first.Status)
	}
	if first.LastPlayerID != "pl-0" {
		t.Fatalf("unexpected first cursor: %s", first.LastPlayerID)
	}

	second, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("second RunSource error: %v", err)
	}
	if second.LastPlayerID != "pl-1" {
		t.Fatalf("second run must continue after the cursor: %s", second.LastPlayerID)
	}

	// Identities accumulate across resumed runs without duplication.
	for _, id := range []string{"pl-0", "pl-1"} {
		if _, found, _ := fx.ids.GetByPlayer(context.Background(), "statshub", id); !found {
			t.Fatalf("identity missing for %s", id)
		}
	}
}

func TestEnrichmentService_RunSource_AmbiguousGoesToReview(t *testing.T) {
	t.Parallel()

	target := newTestPlayer("pl-1", "Diego Fuentes", "team-1")
	provider := &fakeProvider{
		source: "statshub",
		searchHits: map[string][]ProviderSearchResult{
			// Two identical-name hits tie at 1.0; the margin forces review.
			"Diego Fuentes": {
				{SourceID: "sh-1", Name: "Diego Fuentes"},
				{SourceID: "sh-2", Name: "Diego Fuentes"},
			},
		},
	}
	fx := newEnrichmentFixture(t, []player.Player{target}, provider, EnrichmentConfig{})

	run, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("RunSource error: %v", err)
	}

	if run.Counters.QueuedForReview != 1 {
		t.Fatalf("unexpected review counter: %+v", run.Counters)
	}
	if run.Counters.Matched != 0 {
		t.Fatalf("ambiguous hit must not match: %+v", run.Counters)
	}

	pending, err := fx.reviews.ListPending(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListPending error: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("unexpected pending count: got=%d want=1", len(pending))
	}
	if pending[0].Name != "Diego Fuentes" {
		t.Fatalf("unexpected queued item: %+v", pending[0])
	}
}

func TestEnrichmentService_RunSource_ItemErrorDoesNotStopRun(t *testing.T) {
	t.Parallel()

	seed := []player.Player{
		newTestPlayer("pl-0", "Player Broken", "team-1"),
		newTestPlayer("pl-1", "Player Healthy", "team-1"),
	}
	provider := &fakeProvider{
		source: "statshub",
		searchHits: map[string][]ProviderSearchResult{
			"Player Broken":  hitFor("sh-broken", "Player Broken"),
			"Player Healthy": hitFor("sh-healthy", "Player Healthy"),
		},
		profiles: map[string]ProviderProfile{
			// sh-broken is deliberately absent so the profile fetch fails.
			"sh-healthy": {Fields: profile.FieldSet{}},
		},
	}
	fx := newEnrichmentFixture(t, seed, provider, EnrichmentConfig{})

	run, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("RunSource error: %v", err)
	}

	if run.Status != enrichment.StatusCompleted {
		t.Fatalf("unexpected status: %s", run.Status)
	}
	if run.Counters.Errors != 1 {
		t.Fatalf("unexpected error counter: %+v", run.Counters)
	}
	if run.Counters.Matched != 1 {
		t.Fatalf("healthy player must still match: %+v", run.Counters)
	}
}

func TestEnrichmentService_RunSource_UnknownSource(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{source: "statshub"}
	fx := newEnrichmentFixture(t, nil, provider, EnrichmentConfig{})

	if _, err := fx.svc.RunSource(context.Background(), "nonexistent"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got=%v", err)
	}
}

func TestEnrichmentService_RunAll(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{source: "statshub"}
	fx := newEnrichmentFixture(t, nil, provider, EnrichmentConfig{})

	runs, err := fx.svc.RunAll(context.Background())
	if err != nil {
		t.Fatalf("RunAll error: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("unexpected run count: got=%d want=1", len(runs))
	}
	if runs[0].Status != enrichment.StatusCompleted {
		t.Fatalf("empty sweep must complete: %s", runs[0].Status)
	}

	stored, err := fx.svc.GetRun(context.Background(), runs[0].ID)
	if err != nil {
		t.Fatalf("GetRun error: %v", err)
	}
	if stored.Source != "statshub" {
		t.Fatalf("unexpected stored run: %+v", stored)
	}
}

type recordingPublisher struct {
	mu      sync.Mutex
	path    string
	payload any
	dedupID string
	calls   int
}

func (p *recordingPublisher) Enqueue(_ context.Context, path string, payload any, _ time.Duration, deduplicationID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.path = path
	p.payload = payload
	p.dedupID = deduplicationID
	return nil
}

func TestEnrichmentService_RunSource_BudgetExhaustionSchedulesContinuation(t *testing.T) {
	t.Parallel()

	var seed []player.Player
	hits := make(map[string][]ProviderSearchResult)
	profiles := make(map[string]ProviderProfile)
	for i := 0; i < 4; i++ {
		name := fmt.Sprintf("Player Number%d", i)
		id := fmt.Sprintf("pl-%d", i)
		seed = append(seed, newTestPlayer(id, name, "team-1"))
		hits[name] = hitFor("sh-"+id, name)
		profiles["sh-"+id] = ProviderProfile{Fields: profile.FieldSet{}}
	}
	provider := &fakeProvider{source: "statshub", searchHits: hits, profiles: profiles}
	fx := newEnrichmentFixture(t, seed, provider, EnrichmentConfig{BudgetPerSource: 3})

	publisher := &recordingPublisher{}
	fx.svc.SetPublisher(publisher)

	run, err := fx.svc.RunSource(context.Background(), "statshub")
	if err != nil {
		t.Fatalf("RunSource error: %v", err)
	}
	if !run.BudgetExhausted {
		t.Fatal("run must stop on its budget for this fixture")
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if publisher.calls != 1 {
		t.Fatalf("unexpected continuation publish count: got=%d want=1", publisher.calls)
	}
	if publisher.path != "/v1/internal/jobs/enrich" {
		t.Fatalf("unexpected continuation path: %s", publisher.path)
	}
	body, ok := publisher.payload.(map[string]string)
	if !ok || body["source"] != "statshub" {
		t.Fatalf("unexpected continuation payload: %+v", publisher.payload)
	}
	if publisher.dedupID != "enrich:statshub:"+run.LastPlayerID {
		t.Fatalf("unexpected deduplication id: %s", publisher.dedupID)
	}
}

func TestEnrichmentService_RunSource_CompletionDoesNotScheduleContinuation(t *testing.T) {
	t.Parallel()

	provider := &fakeProvider{source: "statshub"}
	fx := newEnrichmentFixture(t, nil, provider, EnrichmentConfig{})

	publisher := &recordingPublisher{}
	fx.svc.SetPublisher(publisher)

	if _, err := fx.svc.RunSource(context.Background(), "statshub"); err != nil {
		t.Fatalf("RunSource error: %v", err)
	}

	publisher.mu.Lock()
	defer publisher.mu.Unlock()
	if publisher.calls != 0 {
		t.Fatalf("completed run must not schedule a continuation, got %d publishes", publisher.calls)
	}
}

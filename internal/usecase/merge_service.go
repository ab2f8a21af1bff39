package usecase

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/scoutline/scoutline/internal/domain/player"
	"github.com/scoutline/scoutline/internal/domain/profile"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/platform/normalize"
)

// Source names known to the merge precedence table.
const (
	SourceMainFeed = "mainfeed"
	SourceStatsHub = "statshub"
)

// Precedence ranks sources per field, best first. Identity fields trust the
// primary feed; physical and positional attributes trust the statistics
// provider, which audits them per season.
type Precedence map[player.Field][]string

func DefaultPrecedence() Precedence {
	return Precedence{
		player.FieldName:          {SourceMainFeed, SourceStatsHub},
		player.FieldBirthDate:     {SourceMainFeed, SourceStatsHub},
		player.FieldNationality:   {SourceMainFeed, SourceStatsHub},
		player.FieldHeightCm:      {SourceStatsHub, SourceMainFeed},
		player.FieldWeightKg:      {SourceStatsHub, SourceMainFeed},
		player.FieldPreferredFoot: {SourceStatsHub, SourceMainFeed},
		player.FieldPosition:      {SourceStatsHub, SourceMainFeed},
	}
}

// rank returns the precedence index for a source on a field; unknown sources
// rank last. Lower is stronger.
func (p Precedence) rank(field player.Field, source string) int {
	ranked := p[field]
	for i, name := range ranked {
		if name == source {
			return i
		}
	}
	return len(ranked)
}

// MergeReport summarizes one merge pass for logging and run counters.
type MergeReport struct {
	Overwritten []player.Field
	Conflicts   []player.Field
}

type MergeService struct {
	playerRepo  player.Repository
	profileRepo profile.Repository
	precedence  Precedence
	logger      *logging.Logger
	now         func() time.Time
}

func NewMergeService(playerRepo player.Repository, profileRepo profile.Repository, precedence Precedence, logger *logging.Logger) *MergeService {
	if precedence == nil {
		precedence = DefaultPrecedence()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MergeService{
		playerRepo:  playerRepo,
		profileRepo: profileRepo,
		precedence:  precedence,
		logger:      logger,
		now:         time.Now,
	}
}

// MergeProfile applies a normalized field set from one source onto the
// canonical player, per-field, under the precedence table. Disagreements are
// always logged as conflicts, overwritten or not, keyed idempotently by
// (player, field, source). The provider snapshot is replaced wholesale.
func (s *MergeService) MergeProfile(ctx context.Context, playerID, source, sourceID string, fields profile.FieldSet, raw []byte) (MergeReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MergeService.MergeProfile")
	defer span.End()

	playerID = strings.TrimSpace(playerID)
	source = strings.TrimSpace(source)
	if playerID == "" {
		return MergeReport{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if source == "" {
		return MergeReport{}, fmt.Errorf("%w: source is required", ErrInvalidInput)
	}

	canonical, exists, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return MergeReport{}, fmt.Errorf("get player for merge: %w", err)
	}
	if !exists {
		return MergeReport{}, fmt.Errorf("%w: player=%s", ErrNotFound, playerID)
	}
	if canonical.FieldSources == nil {
		canonical.FieldSources = make(map[player.Field]string, len(player.AllFields))
	}

	report := MergeReport{}
	changed := false
	for _, field := range player.AllFields {
		incoming, present := fieldValue(fields, field)
		if !present {
			continue
		}

		current, currentEmpty := canonicalValue(canonical, field)
		decision := s.decide(field, source, canonical.FieldSources[field], current, currentEmpty, incoming)

		if decision.conflict {
			report.Conflicts = append(report.Conflicts, field)
			conflict := profile.FieldConflict{
				PlayerID:       playerID,
				Field:          field,
				Source:         source,
				CanonicalValue: current.display,
				SourceValue:    incoming.display,
				Overwritten:    decision.overwrite,
			}
			if err := s.profileRepo.UpsertConflict(ctx, conflict); err != nil {
				return MergeReport{}, fmt.Errorf("upsert field conflict player=%s field=%s: %w", playerID, field, err)
			}
		}

		if decision.overwrite {
			applyField(&canonical, field, fields)
			canonical.FieldSources[field] = source
			report.Overwritten = append(report.Overwritten, field)
			changed = true
		}
	}

	if changed {
		canonical.NameNormalized = normalize.Name(canonical.Name)
		canonical.PositionGroup = player.GroupForPosition(canonical.Position)
		if err := s.playerRepo.Upsert(ctx, canonical); err != nil {
			return MergeReport{}, fmt.Errorf("upsert merged player=%s: %w", playerID, err)
		}
	}

	snapshot := profile.Snapshot{
		PlayerID:  playerID,
		Source:    source,
		SourceID:  sourceID,
		Raw:       raw,
		Fields:    fields,
		FetchedAt: s.now().UTC(),
	}
	if err := s.profileRepo.ReplaceSnapshot(ctx, snapshot); err != nil {
		return MergeReport{}, fmt.Errorf("replace profile snapshot player=%s source=%s: %w", playerID, source, err)
	}

	if len(report.Conflicts) > 0 {
		s.logger.InfoContext(ctx, "field conflicts recorded during merge",
			"player_id", playerID,
			"source", source,
			"conflict_count", len(report.Conflicts),
			"overwritten_count", len(report.Overwritten),
		)
	}

	return report, nil
}

type mergeDecision struct {
	overwrite bool
	conflict  bool
}

func (s *MergeService) decide(field player.Field, source, incumbent string, current fieldRepr, currentEmpty bool, incoming fieldRepr) mergeDecision {
	if currentEmpty {
		// Filling an empty field is never a conflict.
		return mergeDecision{overwrite: true}
	}
	if valuesEquivalent(current, incoming) {
		return mergeDecision{}
	}

	outranks := s.precedence.rank(field, source) < s.precedence.rank(field, incumbent)
	return mergeDecision{overwrite: outranks, conflict: true}
}

// fieldRepr is a comparable view of one field value: a display string plus
// typed variants for loose equality.
type fieldRepr struct {
	display string
	text    string
	number  float64
	isNum   bool
	date    *time.Time
}

func textRepr(value string) fieldRepr {
	return fieldRepr{display: value, text: value}
}

func numberRepr(value float64) fieldRepr {
	return fieldRepr{display: strconv.FormatFloat(value, 'f', -1, 64), number: value, isNum: true}
}

func dateRepr(value *time.Time) fieldRepr {
	return fieldRepr{display: value.UTC().Format("2006-01-02"), date: value}
}

const numericEpsilon = 1e-6

func valuesEquivalent(left, right fieldRepr) bool {
	switch {
	case left.isNum && right.isNum:
		return math.Abs(left.number-right.number) < numericEpsilon
	case left.date != nil && right.date != nil:
		return player.BirthDatesEqual(left.date, right.date)
	default:
		return strings.EqualFold(collapseSpaces(left.text), collapseSpaces(right.text))
	}
}

func collapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// fieldValue extracts the incoming value for a field; present is false when
// the payload did not carry it.
func fieldValue(fields profile.FieldSet, field player.Field) (fieldRepr, bool) {
	switch field {
	case player.FieldName:
		if strings.TrimSpace(fields.Name) == "" {
			return fieldRepr{}, false
		}
		return textRepr(fields.Name), true
	case player.FieldBirthDate:
		if fields.BirthDate == nil {
			return fieldRepr{}, false
		}
		return dateRepr(fields.BirthDate), true
	case player.FieldNationality:
		if strings.TrimSpace(fields.Nationality) == "" {
			return fieldRepr{}, false
		}
		return textRepr(fields.Nationality), true
	case player.FieldHeightCm:
		if fields.HeightCm <= 0 {
			return fieldRepr{}, false
		}
		return numberRepr(float64(fields.HeightCm)), true
	case player.FieldWeightKg:
		if fields.WeightKg <= 0 {
			return fieldRepr{}, false
		}
		return numberRepr(float64(fields.WeightKg)), true
	case player.FieldPreferredFoot:
		if fields.PreferredFoot == "" {
			return fieldRepr{}, false
		}
		return textRepr(string(fields.PreferredFoot)), true
	case player.FieldPosition:
		if fields.Position == "" {
			return fieldRepr{}, false
		}
		return textRepr(string(fields.Position)), true
	default:
		return fieldRepr{}, false
	}
}

// canonicalValue returns the current canonical value and whether it is empty.
func canonicalValue(item player.Player, field player.Field) (fieldRepr, bool) {
	switch field {
	case player.FieldName:
		return textRepr(item.Name), strings.TrimSpace(item.Name) == ""
	case player.FieldBirthDate:
		if item.BirthDate == nil {
			return fieldRepr{}, true
		}
		return dateRepr(item.BirthDate), false
	case player.FieldNationality:
		return textRepr(item.Nationality), strings.TrimSpace(item.Nationality) == ""
	case player.FieldHeightCm:
		return numberRepr(float64(item.HeightCm)), item.HeightCm <= 0
	case player.FieldWeightKg:
		return numberRepr(float64(item.WeightKg)), item.WeightKg <= 0
	case player.FieldPreferredFoot:
		return textRepr(string(item.PreferredFoot)), item.PreferredFoot == ""
	case player.FieldPosition:
		return textRepr(string(item.Position)), item.Position == ""
	default:
		return fieldRepr{}, true
	}
}

func applyField(item *player.Player, field player.Field, fields profile.FieldSet) {
	switch field {
	case player.FieldName:
		item.Name = strings.TrimSpace(fields.Name)
	case player.FieldBirthDate:
		item.BirthDate = fields.BirthDate
	case player.FieldNationality:
		item.Nationality = strings.TrimSpace(fields.Nationality)
	case player.FieldHeightCm:
		item.HeightCm = fields.HeightCm
	case player.FieldWeightKg:
		item.WeightKg = fields.WeightKg
	case player.FieldPreferredFoot:
		item.PreferredFoot = fields.PreferredFoot
	case player.FieldPosition:
		item.Position = fields.Position
	}
}

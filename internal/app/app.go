package app

import (
	"fmt"
	"net/http"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scoutline/scoutline/external/jobqueue"
	"github.com/scoutline/scoutline/external/statshub"
	"github.com/scoutline/scoutline/internal/config"
	"github.com/scoutline/scoutline/internal/domain/competition"
	"github.com/scoutline/scoutline/internal/domain/rating"
	cacherepo "github.com/scoutline/scoutline/internal/infrastructure/repository/cache"
	"github.com/scoutline/scoutline/internal/infrastructure/repository/postgres"
	"github.com/scoutline/scoutline/internal/interfaces/httpapi"
	basecache "github.com/scoutline/scoutline/internal/platform/cache"
	idgen "github.com/scoutline/scoutline/internal/platform/id"
	"github.com/scoutline/scoutline/internal/platform/logging"
	"github.com/scoutline/scoutline/internal/platform/resilience"
	"github.com/scoutline/scoutline/internal/usecase"
)

// NewHTTPServer wires the full service: postgres repositories, the provider
// client, the usecase layer, and the HTTP surface. The returned cleanup
// closes the database pool and must run after server shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := db.Close

	playerRepo := postgres.NewPlayerRepository(db)
	identityRepo := postgres.NewIdentityRepository(db)
	reviewRepo := postgres.NewReviewRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	appearanceRepo := postgres.NewAppearanceRepository(db)
	rollingRepo := postgres.NewRollingStatsRepository(db)
	runRepo := postgres.NewEnrichmentRepository(db)
	rawRepo := postgres.NewRawDataRepository(db)

	var ratingRepo rating.Repository = postgres.NewRatingRepository(db)
	var competitionRepo competition.Repository = postgres.NewCompetitionRepository(db)
	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		ratingRepo = cacherepo.NewRatingRepository(ratingRepo, store)
		competitionRepo = cacherepo.NewCompetitionRepository(competitionRepo, store)
	}

	merger := usecase.NewMergeService(playerRepo, profileRepo, nil, logger)
	statsSvc := usecase.NewStatsService(appearanceRepo, rollingRepo)
	ratingSvc := usecase.NewRatingService(
		rollingRepo,
		ratingRepo,
		playerRepo,
		competitionRepo,
		usecase.RatingConfig{
			StrengthTopN:   cfg.RatingStrengthTopN,
			WriteChunkSize: cfg.RatingWriteChunkSize,
		},
		logger,
	)
	recomputeSvc := usecase.NewRecomputeService(
		competitionRepo,
		appearanceRepo,
		statsSvc,
		ratingSvc,
		usecase.RecomputeConfig{MaxParallelCompetitions: cfg.RecomputeMaxParallel},
		logger,
	)
	reviewSvc := usecase.NewReviewService(reviewRepo, identityRepo, playerRepo, profileRepo, logger)

	resolverCfg := usecase.ResolverConfig{
		ConfidenceThreshold:    cfg.ResolveConfidenceThreshold,
		AmbiguityMargin:        cfg.ResolveAmbiguityMargin,
		MinCandidateScore:      cfg.ResolveMinCandidateScore,
		TeamFuzzyCutoff:        cfg.ResolveTeamFuzzyCutoff,
		CompetitionFuzzyCutoff: cfg.ResolveCompetitionFuzzyCutoff,
	}
	resolverSvc := usecase.NewResolverService(playerRepo, identityRepo, resolverCfg)
	ingestionSvc := usecase.NewIngestionService(
		playerRepo,
		identityRepo,
		reviewRepo,
		appearanceRepo,
		resolverSvc,
		merger,
		idgen.NewRandomGenerator(),
		logger,
	)

	var providers []usecase.ProviderClient
	if cfg.StatsHubEnabled {
		providers = append(providers, statshub.NewClient(statshub.ClientConfig{
			BaseURL:    cfg.StatsHubBaseURL,
			Token:      cfg.StatsHubToken,
			Timeout:    cfg.StatsHubTimeout,
			MaxRetries: cfg.StatsHubMaxRetries,
			Logger:     logger,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.StatsHubCircuitEnabled,
				FailureThreshold: cfg.StatsHubCircuitFailureCount,
				OpenTimeout:      cfg.StatsHubCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.StatsHubCircuitHalfOpenMaxReq,
			},
		}))
	}

	enrichmentSvc := usecase.NewEnrichmentService(
		playerRepo,
		identityRepo,
		reviewRepo,
		runRepo,
		rawRepo,
		merger,
		providers,
		idgen.NewRandomGenerator(),
		usecase.EnrichmentConfig{
			BudgetPerSource:    cfg.EnrichBudgetPerSource,
			BatchSize:          cfg.EnrichBatchSize,
			MinRequestInterval: cfg.EnrichMinRequestInterval,
			MaxRequestJitter:   cfg.EnrichMaxRequestJitter,
			Resolver:           resolverCfg,
		},
		logger,
	)

	if cfg.QStashEnabled {
		enrichmentSvc.SetPublisher(jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger))
	}

	handler := httpapi.NewHandler(ingestionSvc, enrichmentSvc, recomputeSvc, reviewSvc, ratingSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}

func openDB(cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL, cfg.DBDisablePreparedBinary)

	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
		otelsql.WithQueryFormatter(formatDBQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return db, nil
}

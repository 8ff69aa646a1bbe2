package service

import (
	"fmt"

	"banksentinel/config"
	"banksentinel/internal/claims"
	"banksentinel/internal/collector"
	"banksentinel/internal/repository"
	"banksentinel/internal/resolver"
	"banksentinel/pkg/cache"
	"banksentinel/pkg/fetcher"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/telegram"
)

// Service bundles every application service behind one constructor so the
// command layer wires a single dependency.
type Service struct {
	Scheduler  SchedulerService
	Graduation GraduationService
	Scoring    ScoringService
	Regime     RegimeService
	Resolver   *resolver.Resolver
	Registry   *collector.Registry
}

func NewService(
	cfg *config.Config,
	log *logger.Logger,
	repo *repository.Repository,
	c cache.Cache,
	f fetcher.Fetcher,
	notifier *telegram.Notifier,
) (*Service, error) {
	res := resolver.New(resolver.SeedEntities())
	extractor := claims.NewExtractor(res)

	registry, err := collector.NewRegistry(
		collector.NewRegulatorFeedCollector(cfg.Collectors.RegulatorFeedURL, f, log),
		collector.NewFedIndicatorCollector(cfg.Collectors.FedSeriesURL, f, log),
		collector.NewComexInventoryCollector(cfg.Collectors.ComexReportURL, f, log),
		collector.NewNewswireCollector(cfg.Collectors.NewswireURL, f, log),
		collector.NewSocialFirehoseCollector(cfg.Collectors.SocialFirehoseURL, f, log),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build collector registry: %w", err)
	}

	pipeline := collector.NewPipeline(cfg.Claims, log, res, extractor, repo.EventRepo, repo.ClaimRepo)
	engine := NewRiskEngine(cfg.Scoring)
	detector := NewRegimeDetector(cfg.Regime, DefaultIndicators)

	return &Service{
		Scheduler:  NewSchedulerService(cfg, log, registry, pipeline, repo.SourceRepo, repo.CollectorRunRepo),
		Graduation: NewGraduationService(cfg.Claims, log, repo),
		Scoring:    NewScoringService(log, engine, res, repo, c),
		Regime:     NewRegimeService(log, detector, notifier, repo.EventRepo),
		Resolver:   res,
		Registry:   registry,
	}, nil
}

package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"banksentinel/config"
	"banksentinel/internal/collector"
	"banksentinel/internal/dto"
	"banksentinel/internal/model"
	"banksentinel/internal/repository"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"

	"github.com/robfig/cron/v3"
)

type SchedulerService interface {
	// RegisterCollectors seeds the sources table from the collector registry.
	RegisterCollectors(ctx context.Context) error
	// Execute runs every due collector. The entry point for the periodic tick
	// and for external "run all now" callers.
	Execute(ctx context.Context) error
	// ExecuteTier runs due collectors of a single trust tier.
	ExecuteTier(ctx context.Context, tier model.TrustTier) error
	// RunSource forces one collector regardless of its schedule.
	RunSource(ctx context.Context, name string) error
	Health(ctx context.Context) ([]dto.SourceHealth, error)
	// PruneRunHistory deletes run records older than the retention window.
	PruneRunHistory(ctx context.Context) error
}

type schedulerService struct {
	cfg        *config.Config
	log        *logger.Logger
	registry   *collector.Registry
	pipeline   *collector.Pipeline
	sourceRepo repository.SourceRepository
	runRepo    repository.CollectorRunRepository
	cronParser cron.Parser
	semaphore  chan struct{}
}

func NewSchedulerService(
	cfg *config.Config,
	log *logger.Logger,
	registry *collector.Registry,
	pipeline *collector.Pipeline,
	sourceRepo repository.SourceRepository,
	runRepo repository.CollectorRunRepository,
) SchedulerService {
	return &schedulerService{
		cfg:        cfg,
		log:        log,
		registry:   registry,
		pipeline:   pipeline,
		sourceRepo: sourceRepo,
		runRepo:    runRepo,
		cronParser: cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		semaphore:  make(chan struct{}, cfg.Scheduler.MaxConcurrency),
	}
}

func (s *schedulerService) RegisterCollectors(ctx context.Context) error {
	for _, c := range s.registry.All() {
		source := &model.Source{
			Name:           c.SourceName(),
			Tier:           c.TrustTier(),
			CronExpression: fmt.Sprintf("@every %dm", c.FrequencyMinutes()),
			IsActive:       true,
		}
		if err := s.sourceRepo.Register(ctx, source); err != nil {
			return fmt.Errorf("register source %s: %w", c.SourceName(), err)
		}
	}
	s.log.InfoContext(ctx, "Collectors registered", logger.IntField("count", len(s.registry.All())))
	return nil
}

func (s *schedulerService) Execute(ctx context.Context) error {
	return s.execute(ctx, nil)
}

func (s *schedulerService) ExecuteTier(ctx context.Context, tier model.TrustTier) error {
	if !tier.Valid() {
		return fmt.Errorf("invalid trust tier %d", tier)
	}
	return s.execute(ctx, &tier)
}

func (s *schedulerService) execute(ctx context.Context, tier *model.TrustTier) error {
	now := time.Now()
	sources, err := s.sourceRepo.Get(ctx, model.GetSourceParam{
		Tier:     tier,
		IsActive: utils.ToPointer(true),
		DueAt:    &now,
	})
	if err != nil {
		s.log.ErrorContext(ctx, "Failed to find due sources", logger.ErrorField(err))
		return fmt.Errorf("failed to find due sources: %w", err)
	}

	if len(sources) == 0 {
		s.log.DebugContext(ctx, "No sources due")
		return nil
	}
	s.log.InfoContext(ctx, "Start running collectors",
		logger.IntField("source_count", len(sources)),
		logger.IntField("max_concurrency", s.cfg.Scheduler.MaxConcurrency),
	)

	for _, source := range sources {
		if ctx.Err() != nil {
			s.log.WarnContext(ctx, "Collector scheduling cancelled", logger.ErrorField(ctx.Err()))
			return nil
		}

		if err := s.runCollector(ctx, source); err != nil {
			s.log.ErrorContextWithAlert(ctx, "Failed to schedule collector",
				logger.ErrorField(err),
				logger.StringField("source", source.Name),
			)
		}
	}
	return nil
}

func (s *schedulerService) RunSource(ctx context.Context, name string) error {
	source, err := s.sourceRepo.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("source %q not found: %w", name, err)
	}
	return s.runCollector(ctx, *source)
}

// runCollector dispatches one collector run on a semaphore slot and advances
// the source's schedule. The run itself is fire-and-forget: a slow or failing
// collector never blocks its siblings, and a timed-out run fails alone, the
// next tick proceeds normally.
func (s *schedulerService) runCollector(ctx context.Context, source model.Source) error {
	c, ok := s.registry.Get(source.Name)
	if !ok {
		return fmt.Errorf("no collector registered for source %q", source.Name)
	}

	now := time.Now()
	run := &model.CollectorRun{
		SourceID:  source.ID,
		Status:    model.RunStatusRunning,
		StartedAt: now,
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return fmt.Errorf("failed to create run history: %w", err)
	}

	s.semaphore <- struct{}{}
	utils.GoSafe(func() {
		defer func() {
			<-s.semaphore
		}()

		// Detached from the scheduling context on purpose: a run outlives the
		// tick that started it, bounded only by its own timeout.
		runCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Scheduler.TimeoutDuration)
		defer cancel()

		s.finishRun(runCtx, source, c, run)
	})

	cronSchedule, err := s.cronParser.Parse(source.CronExpression)
	if err != nil {
		return fmt.Errorf("failed to parse cron expression %q: %w", source.CronExpression, err)
	}

	source.LastExecution = sql.NullTime{Time: now, Valid: true}
	source.NextExecution = sql.NullTime{Time: cronSchedule.Next(now), Valid: true}
	if err := s.sourceRepo.UpdateSchedule(ctx, &source); err != nil {
		return fmt.Errorf("failed to update source schedule: %w", err)
	}
	return nil
}

func (s *schedulerService) finishRun(ctx context.Context, source model.Source, c collector.Collector, run *model.CollectorRun) {
	result, err := s.pipeline.Collect(ctx, c, source.ID)

	run.Created = result.Created
	run.Duplicates = result.Duplicates
	run.Errors = result.Errors
	run.CompletedAt = sql.NullTime{Time: time.Now(), Valid: true}

	if err != nil {
		run.Status = model.RunStatusFailed
		run.ErrorMessage = sql.NullString{String: err.Error(), Valid: true}
		s.log.ErrorContext(ctx, "Collector run failed",
			logger.StringField("source", source.Name),
			logger.ErrorField(err),
		)
		if err := s.sourceRepo.RecordFailure(ctx, source.ID); err != nil {
			s.log.ErrorContext(ctx, "Failed to record source failure", logger.ErrorField(err))
		}
		if source.ConsecutiveFailures+1 > s.cfg.Scheduler.UnhealthyThreshold {
			s.log.ErrorContextWithAlert(ctx, "Collector unhealthy",
				logger.StringField("source", source.Name),
				logger.IntField("consecutive_failures", source.ConsecutiveFailures+1),
			)
		}
	} else {
		run.Status = model.RunStatusCompleted
		s.log.InfoContext(ctx, "Collector run completed",
			logger.StringField("source", source.Name),
			logger.IntField("created", result.Created),
			logger.IntField("duplicates", result.Duplicates),
			logger.IntField("errors", result.Errors),
		)
		if err := s.sourceRepo.RecordSuccess(ctx, source.ID, time.Now()); err != nil {
			s.log.ErrorContext(ctx, "Failed to record source success", logger.ErrorField(err))
		}
	}

	if err := s.runRepo.Update(ctx, run); err != nil {
		s.log.ErrorContext(ctx, "Failed to update run history",
			logger.StringField("source", source.Name),
			logger.ErrorField(err),
		)
	}
}

func (s *schedulerService) PruneRunHistory(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.Scheduler.RunHistoryRetained)
	deleted, err := s.runRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("failed to prune run history: %w", err)
	}
	if deleted > 0 {
		s.log.InfoContext(ctx, "Pruned collector run history",
			logger.IntField("deleted", int(deleted)),
			logger.IntField("retained_days", s.cfg.Scheduler.RunHistoryRetained),
		)
	}
	return nil
}

func (s *schedulerService) Health(ctx context.Context) ([]dto.SourceHealth, error) {
	sources, err := s.sourceRepo.Get(ctx, model.GetSourceParam{})
	if err != nil {
		return nil, err
	}

	health := make([]dto.SourceHealth, 0, len(sources))
	for _, source := range sources {
		h := dto.SourceHealth{
			Name:                source.Name,
			Tier:                int(source.Tier),
			IsActive:            source.IsActive,
			ConsecutiveFailures: source.ConsecutiveFailures,
			Unhealthy:           source.ConsecutiveFailures > s.cfg.Scheduler.UnhealthyThreshold,
		}
		if source.LastSuccess.Valid {
			h.LastSuccess = &source.LastSuccess.Time
		}
		if source.LastExecution.Valid {
			h.LastExecution = &source.LastExecution.Time
		}
		if source.NextExecution.Valid {
			h.NextExecution = &source.NextExecution.Time
		}
		health = append(health, h)
	}
	return health, nil
}

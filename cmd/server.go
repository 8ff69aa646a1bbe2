package cmd

import (
	"context"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"

	"banksentinel/internal/delivery/http"
	"banksentinel/internal/repository"
	"banksentinel/internal/service"
	"banksentinel/pkg/logger"
	"banksentinel/pkg/utils"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run banksentinel",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {

	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo, err := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.log)
	if err != nil {
		log.Fatalf("Failed to create repository: %v", err)
	}

	services, err := service.NewService(
		appDep.cfg,
		appDep.log,
		repo,
		appDep.cache,
		appDep.fetcher,
		appDep.notifier,
	)
	if err != nil {
		log.Fatalf("Failed to create services: %v", err)
	}

	if err := services.Scheduler.RegisterCollectors(ctx); err != nil {
		log.Fatalf("Failed to register collectors: %v", err)
	}

	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && err != httpNet.ErrServerClosed {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	scheduler := startBackgroundJobs(ctx, appDep, services)

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	cronCtx := scheduler.Stop()
	<-cronCtx.Done()

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}

// startBackgroundJobs wires the periodic work: collector dispatch every
// minute, claim graduation and regime ingestion every ten, scoring and
// history pruning daily.
func startBackgroundJobs(ctx context.Context, appDep *AppDependency, services *service.Service) *cron.Cron {
	scheduler := cron.New()

	mustSchedule(appDep, scheduler, "* * * * *", func() {
		if err := services.Scheduler.Execute(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Collector dispatch failed", logger.ErrorField(err))
		}
	})

	mustSchedule(appDep, scheduler, "*/10 * * * *", func() {
		if _, err := services.Graduation.Sweep(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Graduation sweep failed", logger.ErrorField(err))
		}
		if err := services.Regime.Ingest(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Regime ingestion failed", logger.ErrorField(err))
		}
	})

	mustSchedule(appDep, scheduler, "15 0 * * *", func() {
		if err := services.Scoring.RunDaily(ctx); err != nil {
			appDep.log.ErrorContextWithAlert(ctx, "Daily scoring failed", logger.ErrorField(err))
		}
		if err := services.Scheduler.PruneRunHistory(ctx); err != nil {
			appDep.log.ErrorContext(ctx, "Run history pruning failed", logger.ErrorField(err))
		}
	})

	scheduler.Start()
	return scheduler
}

func mustSchedule(appDep *AppDependency, scheduler *cron.Cron, spec string, job func()) {
	if _, err := scheduler.AddFunc(spec, func() {
		utils.GoSafe(job)
	}); err != nil {
		log.Fatalf("Failed to schedule job %q: %v", spec, err)
	}
}

package repository

import (
	"banksentinel/config"
	"banksentinel/pkg/logger"

	"gorm.io/gorm"
)

type Repository struct {
	SourceRepo        SourceRepository
	EventRepo         EventRepository
	ClaimRepo         ClaimRepository
	CorroborationRepo CorroborationRepository
	ScoreRepo         ScoreRepository
	CollectorRunRepo  CollectorRunRepository
	UnitOfWork        UnitOfWork
}

func NewRepository(cfg *config.Config, db *gorm.DB, log *logger.Logger) (*Repository, error) {
	return &Repository{
		SourceRepo:        NewSourceRepository(db),
		EventRepo:         NewEventRepository(db),
		ClaimRepo:         NewClaimRepository(db),
		CorroborationRepo: NewCorroborationRepository(db),
		ScoreRepo:         NewScoreRepository(db),
		CollectorRunRepo:  NewCollectorRunRepository(db),
		UnitOfWork:        NewUnitOfWork(db),
	}, nil
}

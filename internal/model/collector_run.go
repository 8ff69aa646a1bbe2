package model

import (
	"database/sql"
	"time"
)

type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// CollectorRun is the per-run history row backing health accessors.
type CollectorRun struct {
	ID           uint      `gorm:"primaryKey"`
	SourceID     uint      `gorm:"not null;index"`
	Status       RunStatus `gorm:"type:varchar(20);not null"`
	Created      int       `gorm:"default:0"`
	Duplicates   int       `gorm:"default:0"`
	Errors       int       `gorm:"default:0"`
	ErrorMessage sql.NullString
	StartedAt    time.Time `gorm:"not null"`
	CompletedAt  sql.NullTime
	CreatedAt    time.Time `gorm:"autoCreateTime"`

	Source Source `gorm:"foreignKey:SourceID"`
}

func (CollectorRun) TableName() string {
	return "collector_runs"
}

package dto

import "time"

// SourceHealth is the monitoring view over a registered source.
type SourceHealth struct {
	Name                string     `json:"name"`
	Tier                int        `json:"tier"`
	IsActive            bool       `json:"is_active"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	Unhealthy           bool       `json:"unhealthy"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastExecution       *time.Time `json:"last_execution,omitempty"`
	NextExecution       *time.Time `json:"next_execution,omitempty"`
}

package models

import (
	"time"
)

// Severity is the impact level recorded on a ticket
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists the allowed severity values in ascending order
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Valid reports whether s is one of the allowed severities
func (s Severity) Valid() bool {
	for _, allowed := range Severities {
		if s == allowed {
			return true
		}
	}
	return false
}

// Ticket represents a logged support ticket
type Ticket struct {
	ID                int64     `json:"ticket_id"`
	Category          string    `json:"category"`
	Severity          Severity  `json:"severity"`
	ResolutionMinutes int       `json:"resolution_minutes"`
	Resolved          bool      `json:"resolved"`
	CreatedOn         time.Time `json:"created_on"`
}

// CategoryStats holds resolution statistics for one ticket category
type CategoryStats struct {
	Category   string  `json:"category"`
	Total      int     `json:"total"`
	AvgMinutes float64 `json:"avg_minutes"`
}

// SeverityCount holds the number of tickets logged at one severity
type SeverityCount struct {
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
}

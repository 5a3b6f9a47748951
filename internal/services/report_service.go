package services

import (
	"context"
	"fmt"

	"github.com/grazioso/shelter/internal/db"
	"github.com/grazioso/shelter/internal/shelter"
)

// ReportOpenTickets counts unresolved tickets
const ReportOpenTickets = "open-tickets"

// ReportService computes the counts behind scheduled reports
type ReportService struct {
	gateway *shelter.Gateway
	tickets db.TicketStore
}

// NewReportService creates a new report service. Either dependency may
// be nil, in which case the reports needing it fail.
func NewReportService(gateway *shelter.Gateway, tickets db.TicketStore) *ReportService {
	return &ReportService{
		gateway: gateway,
		tickets: tickets,
	}
}

// ReportNames lists every report Count understands
func ReportNames() []string {
	names := []string{}
	for _, p := range shelter.Presets() {
		names = append(names, string(p))
	}
	return append(names, ReportOpenTickets)
}

// ValidReport reports whether name is a known report
func ValidReport(name string) bool {
	for _, n := range ReportNames() {
		if n == name {
			return true
		}
	}
	return false
}

// Count returns the current size of the named report
func (s *ReportService) Count(ctx context.Context, report string) (int, error) {
	if report == ReportOpenTickets {
		if s.tickets == nil {
			return 0, fmt.Errorf("ticket store not configured")
		}
		open, err := s.tickets.ListOpenTickets(ctx)
		if err != nil {
			return 0, fmt.Errorf("failed to list open tickets: %w", err)
		}
		return len(open), nil
	}

	preset, err := shelter.ParsePreset(report)
	if err != nil {
		return 0, fmt.Errorf("unknown report: %s", report)
	}
	if s.gateway == nil {
		return 0, fmt.Errorf("animal collection not configured")
	}

	records, err := s.gateway.TryRead(ctx, preset.Filter())
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/grazioso/shelter/internal/db"
	"github.com/grazioso/shelter/internal/logger"
	"github.com/grazioso/shelter/internal/models"
)

var (
	ErrBlankCategory   = errors.New("category cannot be blank")
	ErrInvalidSeverity = errors.New("severity must be Low/Medium/High/Critical")
	ErrNegativeMinutes = errors.New("resolution minutes must be >= 0")
)

// TicketService provides business logic for the ticket logger
type TicketService struct {
	store db.TicketStore
	now   func() time.Time
}

// NewTicketService creates a new ticket service
func NewTicketService(store db.TicketStore) *TicketService {
	return &TicketService{
		store: store,
		now:   time.Now,
	}
}

// LogTicket validates and records a ticket stamped with the current UTC time
func (s *TicketService) LogTicket(ctx context.Context, category string, severity models.Severity, resolutionMinutes int, resolved bool) (*models.Ticket, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, ErrBlankCategory
	}
	if !severity.Valid() {
		return nil, fmt.Errorf("%w, got %q", ErrInvalidSeverity, severity)
	}
	if resolutionMinutes < 0 {
		return nil, ErrNegativeMinutes
	}

	ticket := &models.Ticket{
		Category:          category,
		Severity:          severity,
		ResolutionMinutes: resolutionMinutes,
		Resolved:          resolved,
		CreatedOn:         s.now().UTC().Truncate(time.Second),
	}

	if err := s.store.CreateTicket(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to log ticket: %w", err)
	}

	logger.Debug("Logged ticket %d (%s/%s)", ticket.ID, ticket.Category, ticket.Severity)
	return ticket, nil
}

// ListOpenTickets returns unresolved tickets, newest first
func (s *TicketService) ListOpenTickets(ctx context.Context) ([]*models.Ticket, error) {
	return s.store.ListOpenTickets(ctx)
}

// ResolutionStats returns per-category resolution statistics
func (s *TicketService) ResolutionStats(ctx context.Context) ([]models.CategoryStats, error) {
	return s.store.ResolutionStats(ctx)
}

// SeverityDistribution returns ticket counts per severity
func (s *TicketService) SeverityDistribution(ctx context.Context) ([]models.SeverityCount, error) {
	return s.store.SeverityDistribution(ctx)
}

// DemoTickets are the sample tickets logged by the demo run
var DemoTickets = []struct {
	Category string
	Severity models.Severity
	Minutes  int
	Resolved bool
}{
	{"Network", models.SeverityHigh, 45, true},
	{"Account Access", models.SeverityMedium, 20, true},
	{"Printer", models.SeverityLow, 15, false},
	{"VPN", models.SeverityCritical, 90, true},
}

// LogDemoTickets logs DemoTickets in order
func (s *TicketService) LogDemoTickets(ctx context.Context) error {
	for _, d := range DemoTickets {
		if _, err := s.LogTicket(ctx, d.Category, d.Severity, d.Minutes, d.Resolved); err != nil {
			return err
		}
	}
	return nil
}

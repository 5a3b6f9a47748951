package db

import (
	"context"

	"github.com/grazioso/shelter/internal/models"
)

// Pinger is implemented by every store that can report its health
type Pinger interface {
	Ping(ctx context.Context) error
}

// TicketStore defines the SQL operations behind the ticket logger
type TicketStore interface {
	// Connection management
	Connect(ctx context.Context) error
	Disconnect(ctx context.Context) error
	Ping(ctx context.Context) error

	CreateTicket(ctx context.Context, ticket *models.Ticket) error
	ListOpenTickets(ctx context.Context) ([]*models.Ticket, error)

	// Reports
	ResolutionStats(ctx context.Context) ([]models.CategoryStats, error)
	SeverityDistribution(ctx context.Context) ([]models.SeverityCount, error)
}

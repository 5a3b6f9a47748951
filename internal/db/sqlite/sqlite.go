package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/grazioso/shelter/internal/config"
	"github.com/grazioso/shelter/internal/db"
	"github.com/grazioso/shelter/internal/models"
)

// TimeLayout is how created_on is stored: UTC, second precision, Z suffix
const TimeLayout = "2006-01-02T15:04:05Z"

// SQLite implements db.TicketStore
type SQLite struct {
	db     *sql.DB
	config config.SQLConfig
}

var _ db.TicketStore = (*SQLite)(nil)

// New creates a new SQLite database instance
func New(cfg config.SQLConfig) *SQLite {
	return &SQLite{
		config: cfg,
	}
}

// Connect opens the database file and applies pending migrations
func (s *SQLite) Connect(ctx context.Context) error {
	dbPath, err := expandPath(s.config.URI)
	if err != nil {
		return err
	}

	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database at path '%s': %w", dbPath, err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return fmt.Errorf("failed to ping SQLite database at path '%s': %w", dbPath, err)
	}

	if err := db.RunMigrations(conn); err != nil {
		conn.Close()
		return err
	}

	s.db = conn
	return nil
}

// expandPath handles ~ and relative paths
func expandPath(p string) (string, error) {
	if strings.HasPrefix(p, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, p[1:]), nil
	}
	if filepath.IsAbs(p) {
		return p, nil
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path: %w", err)
	}
	return absPath, nil
}

// Disconnect closes the SQLite connection
func (s *SQLite) Disconnect(ctx context.Context) error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection
func (s *SQLite) Ping(ctx context.Context) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}
	return s.db.PingContext(ctx)
}

// DB returns the underlying handle
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// CreateTicket inserts a ticket and sets its ID
func (s *SQLite) CreateTicket(ctx context.Context, ticket *models.Ticket) error {
	if s.db == nil {
		return fmt.Errorf("not connected to database")
	}

	query := `
		INSERT INTO tickets (category, severity, resolution_minutes, resolved, created_on)
		VALUES (?, ?, ?, ?, ?)`

	result, err := s.db.ExecContext(ctx, query,
		ticket.Category,
		string(ticket.Severity),
		ticket.ResolutionMinutes,
		boolToInt(ticket.Resolved),
		ticket.CreatedOn.UTC().Format(TimeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to insert ticket: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	ticket.ID = id
	return nil
}

// ListOpenTickets returns unresolved tickets, newest first
func (s *SQLite) ListOpenTickets(ctx context.Context) ([]*models.Ticket, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}

	query := `
		SELECT ticket_id, category, severity, resolution_minutes, resolved, created_on
		FROM tickets
		WHERE resolved = 0
		ORDER BY created_on DESC, ticket_id DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tickets []*models.Ticket
	for rows.Next() {
		var ticket models.Ticket
		var severity, createdOn string
		var resolved int

		err := rows.Scan(
			&ticket.ID,
			&ticket.Category,
			&severity,
			&ticket.ResolutionMinutes,
			&resolved,
			&createdOn,
		)
		if err != nil {
			return nil, err
		}

		ticket.Severity = models.Severity(severity)
		ticket.Resolved = resolved == 1
		ticket.CreatedOn, err = time.Parse(TimeLayout, createdOn)
		if err != nil {
			return nil, fmt.Errorf("invalid created_on for ticket %d: %w", ticket.ID, err)
		}
		tickets = append(tickets, &ticket)
	}

	return tickets, rows.Err()
}

// ResolutionStats groups tickets by category with their average
// resolution time, slowest category first
func (s *SQLite) ResolutionStats(ctx context.Context) ([]models.CategoryStats, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}

	query := `
		SELECT category,
		       COUNT(*) AS total,
		       ROUND(AVG(resolution_minutes), 1) AS avg_minutes
		FROM tickets
		GROUP BY category
		ORDER BY avg_minutes DESC, category ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []models.CategoryStats
	for rows.Next() {
		var st models.CategoryStats
		if err := rows.Scan(&st.Category, &st.Total, &st.AvgMinutes); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}

	return stats, rows.Err()
}

// SeverityDistribution counts tickets per severity, most common first
func (s *SQLite) SeverityDistribution(ctx context.Context) ([]models.SeverityCount, error) {
	if s.db == nil {
		return nil, fmt.Errorf("not connected to database")
	}

	query := `
		SELECT severity, COUNT(*) AS count
		FROM tickets
		GROUP BY severity
		ORDER BY count DESC, severity ASC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []models.SeverityCount
	for rows.Next() {
		var sc models.SeverityCount
		var severity string
		if err := rows.Scan(&severity, &sc.Count); err != nil {
			return nil, err
		}
		sc.Severity = models.Severity(severity)
		counts = append(counts, sc)
	}

	return counts, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

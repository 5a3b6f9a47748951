package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/grazioso/shelter/internal/models"
	"github.com/grazioso/shelter/internal/services"
)

var (
	ticketCategory string
	ticketSeverity string
	ticketMinutes  int
	ticketResolved bool
)

var ticketsCmd = &cobra.Command{
	Use:   "tickets",
	Short: "Log and report on help desk tickets",
}

var ticketsLogCmd = &cobra.Command{
	Use:   "log",
	Short: "Log a ticket",
	RunE:  runTicketsLog,
}

var ticketsOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "List unresolved tickets, newest first",
	RunE:  runTicketsOpen,
}

var ticketsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show average resolution time per category",
	RunE:  runTicketsStats,
}

var ticketsSeverityCmd = &cobra.Command{
	Use:   "severity",
	Short: "Show ticket counts per severity",
	RunE:  runTicketsSeverity,
}

var ticketsDemoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Log the sample tickets and print every report",
	RunE:  runTicketsDemo,
}

func init() {
	ticketsCmd.AddCommand(ticketsLogCmd)
	ticketsCmd.AddCommand(ticketsOpenCmd)
	ticketsCmd.AddCommand(ticketsStatsCmd)
	ticketsCmd.AddCommand(ticketsSeverityCmd)
	ticketsCmd.AddCommand(ticketsDemoCmd)

	ticketsLogCmd.Flags().StringVarP(&ticketCategory, "category", "c", "", "ticket category")
	ticketsLogCmd.Flags().StringVarP(&ticketSeverity, "severity", "s", "", "Low, Medium, High or Critical")
	ticketsLogCmd.Flags().IntVarP(&ticketMinutes, "minutes", "m", 0, "minutes spent resolving")
	ticketsLogCmd.Flags().BoolVar(&ticketResolved, "resolved", true, "whether the ticket is resolved")
	_ = ticketsLogCmd.MarkFlagRequired("category")
	_ = ticketsLogCmd.MarkFlagRequired("severity")
}

func runTicketsLog(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	severity, err := validateSeverity(ticketSeverity)
	if err != nil {
		return err
	}

	svc, err := connectTickets(ctx)
	if err != nil {
		return err
	}

	ticket, err := svc.LogTicket(ctx, ticketCategory, severity, ticketMinutes, ticketResolved)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s✅ Logged ticket #%d%s (%s, %s)\n",
		SuccessStyle, ticket.ID, Reset, ticket.Category, FormatSeverity(ticket.Severity))
	return nil
}

func runTicketsOpen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := connectTickets(ctx)
	if err != nil {
		return err
	}
	return printOpenTickets(ctx, cmd.OutOrStdout(), svc)
}

func runTicketsStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := connectTickets(ctx)
	if err != nil {
		return err
	}
	return printResolutionStats(ctx, cmd.OutOrStdout(), svc)
}

func runTicketsSeverity(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	svc, err := connectTickets(ctx)
	if err != nil {
		return err
	}
	return printSeverityDistribution(ctx, cmd.OutOrStdout(), svc)
}

func runTicketsDemo(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	out := cmd.OutOrStdout()

	svc, err := connectTickets(ctx)
	if err != nil {
		return err
	}

	if err := svc.LogDemoTickets(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s✅ Logged %d demo tickets%s\n\n", SuccessStyle, len(services.DemoTickets), Reset)

	if err := printOpenTickets(ctx, out, svc); err != nil {
		return err
	}
	fmt.Fprintln(out)
	if err := printResolutionStats(ctx, out, svc); err != nil {
		return err
	}
	fmt.Fprintln(out)
	return printSeverityDistribution(ctx, out, svc)
}

func printOpenTickets(ctx context.Context, out io.Writer, svc *services.TicketService) error {
	tickets, err := svc.ListOpenTickets(ctx)
	if err != nil {
		return fmt.Errorf("failed to list open tickets: %w", err)
	}

	fmt.Fprintf(out, "%s🎫 Open Tickets%s\n", HeaderStyle, Reset)
	if len(tickets) == 0 {
		fmt.Fprintf(out, "%sNo open tickets.%s\n", DimStyle, Reset)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tCATEGORY\tSEVERITY\tMINUTES\tCREATED\n")
	for _, t := range tickets {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", t.ID, t.Category, t.Severity, t.ResolutionMinutes, t.CreatedOn.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func printResolutionStats(ctx context.Context, out io.Writer, svc *services.TicketService) error {
	stats, err := svc.ResolutionStats(ctx)
	if err != nil {
		return fmt.Errorf("failed to get resolution stats: %w", err)
	}

	fmt.Fprintf(out, "%s⏱️  Resolution Time by Category%s\n", HeaderStyle, Reset)
	if len(stats) == 0 {
		fmt.Fprintf(out, "%sNo tickets logged yet.%s\n", DimStyle, Reset)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CATEGORY\tTICKETS\tAVG MINUTES\n")
	for _, s := range stats {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", s.Category, s.Total, s.AvgMinutes)
	}
	return w.Flush()
}

func printSeverityDistribution(ctx context.Context, out io.Writer, svc *services.TicketService) error {
	dist, err := svc.SeverityDistribution(ctx)
	if err != nil {
		return fmt.Errorf("failed to get severity distribution: %w", err)
	}

	fmt.Fprintf(out, "%s📊 Tickets by Severity%s\n", HeaderStyle, Reset)
	if len(dist) == 0 {
		fmt.Fprintf(out, "%sNo tickets logged yet.%s\n", DimStyle, Reset)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SEVERITY\tCOUNT\n")
	for _, d := range dist {
		fmt.Fprintf(w, "%s\t%d\n", d.Severity, d.Count)
	}
	return w.Flush()
}

// FormatSeverity colors a severity by urgency
func FormatSeverity(s models.Severity) string {
	switch s {
	case models.SeverityCritical:
		return ErrorStyle + string(s) + Reset
	case models.SeverityHigh:
		return WarningStyle + string(s) + Reset
	case models.SeverityMedium:
		return InfoStyle + string(s) + Reset
	default:
		return DimStyle + string(s) + Reset
	}
}

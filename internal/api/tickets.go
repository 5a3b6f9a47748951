package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grazioso/shelter/internal/models"
	"github.com/grazioso/shelter/internal/services"
)

// logTicket handles POST /api/v1/tickets
func (s *Server) logTicket(c *gin.Context) {
	var req models.LogTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	resolved := true
	if req.Resolved != nil {
		resolved = *req.Resolved
	}

	ticket, err := s.ticketService.LogTicket(c.Request.Context(), req.Category, models.Severity(req.Severity), *req.ResolutionMinutes, resolved)
	if err != nil {
		if errors.Is(err, services.ErrBlankCategory) ||
			errors.Is(err, services.ErrInvalidSeverity) ||
			errors.Is(err, services.ErrNegativeMinutes) {
			s.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		s.errorResponse(c, http.StatusInternalServerError, "Failed to log ticket: "+err.Error())
		return
	}

	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    ticket,
	})
}

// listOpenTickets handles GET /api/v1/tickets/open
func (s *Server) listOpenTickets(c *gin.Context) {
	tickets, err := s.ticketService.ListOpenTickets(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to list open tickets: "+err.Error())
		return
	}
	if tickets == nil {
		tickets = []*models.Ticket{}
	}
	s.successResponse(c, tickets)
}

// resolutionStats handles GET /api/v1/tickets/stats
func (s *Server) resolutionStats(c *gin.Context) {
	stats, err := s.ticketService.ResolutionStats(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to get resolution stats: "+err.Error())
		return
	}
	if stats == nil {
		stats = []models.CategoryStats{}
	}
	s.successResponse(c, stats)
}

// severityDistribution handles GET /api/v1/tickets/severity
func (s *Server) severityDistribution(c *gin.Context) {
	dist, err := s.ticketService.SeverityDistribution(c.Request.Context())
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to get severity distribution: "+err.Error())
		return
	}
	if dist == nil {
		dist = []models.SeverityCount{}
	}
	s.successResponse(c, dist)
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"golang.org/x/time/rate"

	"github.com/grazioso/shelter/internal/db"
	"github.com/grazioso/shelter/internal/logger"
	"github.com/grazioso/shelter/internal/models"
	"github.com/grazioso/shelter/internal/services"
	"github.com/grazioso/shelter/internal/shelter"
)

// RequestIDHeader carries the id assigned to every request
const RequestIDHeader = "X-Request-ID"

// Server exposes the animal gateway and the ticket logger over HTTP
type Server struct {
	router        *gin.Engine
	gateway       *shelter.Gateway
	ticketService *services.TicketService
	stores        map[string]db.Pinger
	corsOrigin    string
	limiter       *rate.Limiter
}

// Options tunes the server. A zero RateLimit disables rate limiting.
type Options struct {
	CORSOrigin string
	RateLimit  float64
	Burst      int
	Stores     map[string]db.Pinger
}

// NewServer creates a new API server
func NewServer(gateway *shelter.Gateway, ticketService *services.TicketService, opts Options) *Server {
	s := &Server{
		router:        gin.New(),
		gateway:       gateway,
		ticketService: ticketService,
		stores:        opts.Stores,
		corsOrigin:    opts.CORSOrigin,
	}
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	s.router.Use(gin.Recovery(), s.requestID(), s.requestLogger(), s.cors(), s.rateLimit())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	v1 := s.router.Group("/api/v1")

	v1.GET("/health", s.healthCheck)

	animals := v1.Group("/animals")
	animals.GET("", s.readAnimals)
	animals.POST("", s.createAnimal)
	animals.PUT("", s.updateAnimals)
	animals.DELETE("", s.deleteAnimals)

	v1.GET("/rescue/:preset", s.readPreset)

	tickets := v1.Group("/tickets")
	tickets.POST("", s.logTicket)
	tickets.GET("/open", s.listOpenTickets)
	tickets.GET("/stats", s.resolutionStats)
	tickets.GET("/severity", s.severityDistribution)
}

// Handler returns the router for use with net/http
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server
func (s *Server) Run(address string) error {
	return s.router.Run(address)
}

func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s %d %s [%s]", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.GetString("request_id"))
	}
}

func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.corsOrigin != "" {
			c.Header("Access-Control-Allow-Origin", s.corsOrigin)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.errorResponse(c, http.StatusTooManyRequests, "Rate limit exceeded")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) successResponse(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    data,
	})
}

func (s *Server) errorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

// gatewayError maps a gateway error to an HTTP status
func (s *Server) gatewayError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, shelter.ErrValidation), errors.Is(err, shelter.ErrEmptyInput):
		s.errorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, shelter.ErrStoreFault):
		s.errorResponse(c, http.StatusServiceUnavailable, err.Error())
	default:
		s.errorResponse(c, http.StatusInternalServerError, err.Error())
	}
}

// parseDocument decodes relaxed extended JSON into a document
func parseDocument(data []byte) (bson.D, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, err
	}
	if doc == nil {
		doc = bson.D{}
	}
	return doc, nil
}

// recordsJSON renders records as relaxed extended JSON objects
func recordsJSON(records []shelter.Record) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(records))
	for _, r := range records {
		data, err := bson.MarshalExtJSON(r, false, false)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

// healthCheck handles GET /api/v1/health
func (s *Server) healthCheck(c *gin.Context) {
	status := map[string]string{}
	healthy := true
	for name, store := range s.stores {
		if err := store.Ping(c.Request.Context()); err != nil {
			status[name] = "unavailable: " + err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	data := map[string]interface{}{
		"stores":    status,
		"timestamp": time.Now().UTC(),
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, models.APIResponse{
			Success: false,
			Data:    data,
			Error:   "Database connection failed",
		})
		return
	}

	data["status"] = "healthy"
	s.successResponse(c, data)
}

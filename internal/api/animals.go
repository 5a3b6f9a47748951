package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grazioso/shelter/internal/models"
	"github.com/grazioso/shelter/internal/shelter"
)

// queryFilter reads the optional extended JSON filter parameter.
// A missing parameter yields nil.
func (s *Server) queryFilter(c *gin.Context) (interface{}, bool) {
	raw, ok := c.GetQuery("filter")
	if !ok {
		return nil, true
	}
	doc, err := parseDocument([]byte(raw))
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid filter: "+err.Error())
		return nil, false
	}
	return doc, true
}

func (s *Server) respondRecords(c *gin.Context, records []shelter.Record) {
	data, err := recordsJSON(records)
	if err != nil {
		s.errorResponse(c, http.StatusInternalServerError, "Failed to encode records: "+err.Error())
		return
	}
	s.successResponse(c, data)
}

// readAnimals handles GET /api/v1/animals
func (s *Server) readAnimals(c *gin.Context) {
	filter, ok := s.queryFilter(c)
	if !ok {
		return
	}

	records, err := s.gateway.TryRead(c.Request.Context(), filter)
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	s.respondRecords(c, records)
}

// createAnimal handles POST /api/v1/animals
func (s *Server) createAnimal(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	var record interface{}
	if len(body) > 0 {
		doc, err := parseDocument(body)
		if err != nil {
			s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
			return
		}
		record = doc
	}

	created, err := s.gateway.TryCreate(c.Request.Context(), record)
	if err != nil {
		s.gatewayError(c, err)
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusAccepted
	}
	c.JSON(status, models.APIResponse{
		Success: created,
		Data:    models.CreatedResponse{Created: created},
	})
}

// updateAnimals handles PUT /api/v1/animals with body {"filter": {...}, "set": {...}}
func (s *Server) updateAnimals(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}
	doc, err := parseDocument(body)
	if err != nil {
		s.errorResponse(c, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	filter, _ := shelter.Lookup(doc, "filter")
	set, _ := shelter.Lookup(doc, "set")

	n, err := s.gateway.TryUpdate(c.Request.Context(), filter, set)
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	s.successResponse(c, models.CountResponse{Count: n})
}

// deleteAnimals handles DELETE /api/v1/animals?filter=...
// The filter is required; pass {} to remove everything.
func (s *Server) deleteAnimals(c *gin.Context) {
	filter, ok := s.queryFilter(c)
	if !ok {
		return
	}

	n, err := s.gateway.TryDelete(c.Request.Context(), filter)
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	s.successResponse(c, models.CountResponse{Count: n})
}

// readPreset handles GET /api/v1/rescue/:preset
func (s *Server) readPreset(c *gin.Context) {
	preset, err := shelter.ParsePreset(c.Param("preset"))
	if err != nil {
		s.errorResponse(c, http.StatusNotFound, err.Error())
		return
	}

	records, err := s.gateway.TryRead(c.Request.Context(), preset.Filter())
	if err != nil {
		s.gatewayError(c, err)
		return
	}
	s.respondRecords(c, records)
}

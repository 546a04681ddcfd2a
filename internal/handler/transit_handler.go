package handler

import (
	"log"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/transit"
	"github.com/accesspath/journey-backend-go/pkg/response"
)

// TransitHandler exposes the transit feed endpoints: real-time vehicle
// queries, feed ingestion, and the accessible-stops lookup
type TransitHandler struct {
	store *transit.Store
}

// NewTransitHandler creates a new transit handler
func NewTransitHandler(store *transit.Store) *TransitHandler {
	return &TransitHandler{store: store}
}

// VehiclesNear handles GET /api/v1/transit/vehicles/near
func (h *TransitHandler) VehiclesNear(c *gin.Context) {
	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}
	radius := parseFloatQuery(c, "radius", 500)
	window := time.Duration(parseFloatQuery(c, "window_seconds", 300)) * time.Second

	timestamp := int64(parseFloatQuery(c, "timestamp", 0))
	if timestamp == 0 {
		timestamp = time.Now().UnixMilli()
	}

	vehicles, err := h.store.FindVehiclesNear(c.Request.Context(), lat, lng, radius, timestamp, window)
	if err != nil {
		log.Printf("[TransitHandler] Vehicle query failed: %v", err)
		response.InternalError(c, "failed to query vehicles")
		return
	}

	response.Success(c, gin.H{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

// AccessibleStops handles GET /api/v1/transit/stops/accessible
func (h *TransitHandler) AccessibleStops(c *gin.Context) {
	lat, lng, ok := parseLatLng(c)
	if !ok {
		return
	}
	radius := parseFloatQuery(c, "radius", 1000)
	limit := int(parseFloatQuery(c, "limit", 20))

	stops, err := h.store.AccessibleStopsNear(c.Request.Context(), lat, lng, radius, limit)
	if err != nil {
		log.Printf("[TransitHandler] Stop query failed: %v", err)
		response.InternalError(c, "failed to query stops")
		return
	}

	response.Success(c, gin.H{
		"count": len(stops),
		"stops": stops,
	})
}

// IngestVehicles handles POST /api/v1/transit/vehicles
func (h *TransitHandler) IngestVehicles(c *gin.Context) {
	var observations []models.TransitVehicleObservation
	if err := c.ShouldBindJSON(&observations); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	for _, obs := range observations {
		if obs.VehicleID == "" || obs.Timestamp == 0 {
			response.BadRequest(c, "vehicle_id and timestamp are required")
			return
		}
	}

	if err := h.store.InsertVehiclePositions(c.Request.Context(), observations); err != nil {
		log.Printf("[TransitHandler] Vehicle ingest failed: %v", err)
		response.InternalError(c, "failed to store vehicle positions")
		return
	}

	response.Created(c, gin.H{"ingested": len(observations)})
}

func parseLatLng(c *gin.Context) (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(c.Query("lat"), 64)
	if err != nil {
		response.BadRequest(c, "lat is required and must be a number")
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(c.Query("lng"), 64)
	if err != nil {
		response.BadRequest(c, "lng is required and must be a number")
		return 0, 0, false
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		response.BadRequest(c, "coordinates out of range")
		return 0, 0, false
	}
	return lat, lng, true
}

func parseFloatQuery(c *gin.Context, key string, fallback float64) float64 {
	v := c.Query(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}

package handler

import (
	"log"

	"github.com/gin-gonic/gin"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
	"github.com/accesspath/journey-backend-go/internal/service"
	"github.com/accesspath/journey-backend-go/pkg/response"
)

// AnalysisHandler exposes journey ingestion and analysis endpoints
type AnalysisHandler struct {
	svc *service.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(svc *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{svc: svc}
}

type createJourneyRequest struct {
	Journey models.Journey           `json:"journey" binding:"required"`
	Samples []models.TelemetrySample `json:"samples"`
}

// CreateJourney handles POST /api/v1/journeys
func (h *AnalysisHandler) CreateJourney(c *gin.Context) {
	var req createJourneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if req.Journey.ID == "" {
		response.BadRequest(c, "journey id is required")
		return
	}
	if req.Journey.Status == "" {
		req.Journey.Status = models.JourneyStatusCompleted
	}

	if err := h.svc.CreateJourney(c.Request.Context(), req.Journey, req.Samples); err != nil {
		log.Printf("[AnalysisHandler] Create journey failed: %v", err)
		response.InternalError(c, "failed to create journey")
		return
	}

	response.Created(c, gin.H{
		"journey_id":   req.Journey.ID,
		"sample_count": len(req.Samples),
	})
}

// AnalyzeJourney handles POST /api/v1/journeys/:id/analyze
func (h *AnalysisHandler) AnalyzeJourney(c *gin.Context) {
	journeyID := c.Param("id")

	analysis, err := h.svc.AnalyzeJourney(c.Request.Context(), journeyID)
	if err != nil {
		h.writeAnalysisError(c, journeyID, err)
		return
	}

	response.Success(c, analysis)
}

// GetAnalysis handles GET /api/v1/journeys/:id/analysis
func (h *AnalysisHandler) GetAnalysis(c *gin.Context) {
	journeyID := c.Param("id")

	analysis, err := h.svc.GetAnalysis(c.Request.Context(), journeyID)
	if err != nil {
		log.Printf("[AnalysisHandler] Get analysis failed for %s: %v", journeyID, err)
		response.InternalError(c, "failed to load analysis")
		return
	}
	if analysis == nil {
		response.NotFound(c, "journey has not been analyzed")
		return
	}

	response.Success(c, analysis)
}

// ListModes handles GET /api/v1/modes
func (h *AnalysisHandler) ListModes(c *gin.Context) {
	type modeInfo struct {
		Mode      models.TransportMode `json:"mode"`
		Transit   bool                 `json:"transit"`
		BaseScore int                  `json:"base_accessibility_score"`
	}

	modes := make([]modeInfo, 0, len(models.TransportModes))
	for _, m := range models.TransportModes {
		modes = append(modes, modeInfo{
			Mode:      m,
			Transit:   m.IsTransit(),
			BaseScore: pipeline.BaseAccessibilityScore(m),
		})
	}

	response.Success(c, modes)
}

// writeAnalysisError maps pipeline failure kinds onto HTTP statuses
func (h *AnalysisHandler) writeAnalysisError(c *gin.Context, journeyID string, err error) {
	log.Printf("[AnalysisHandler] Analysis failed for %s: %v", journeyID, err)

	switch {
	case pipeline.IsKind(err, pipeline.KindJourneyNotFound):
		response.NotFound(c, "journey not found")
	case pipeline.IsKind(err, pipeline.KindNoTelemetryData):
		response.UnprocessableEntity(c, "journey has no telemetry data")
	case pipeline.IsKind(err, pipeline.KindMalformedTelemetry):
		response.UnprocessableEntity(c, "journey telemetry is malformed")
	case pipeline.IsKind(err, pipeline.KindAnalysisTimeout):
		response.GatewayTimeout(c, "analysis timed out")
	default:
		response.InternalError(c, "analysis failed")
	}
}

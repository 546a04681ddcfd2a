package service

import (
	"context"
	"fmt"
	"log"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
	"github.com/accesspath/journey-backend-go/internal/repository"
)

// AnalysisService runs journey analyses and persists the results
type AnalysisService struct {
	repo     *repository.JourneyRepository
	pipeline *pipeline.Pipeline
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(repo *repository.JourneyRepository, p *pipeline.Pipeline) *AnalysisService {
	return &AnalysisService{repo: repo, pipeline: p}
}

// AnalyzeJourney runs the full inference pipeline over a journey's telemetry
// and persists the resulting analysis, replacing any previous one
func (s *AnalysisService) AnalyzeJourney(ctx context.Context, journeyID string) (*models.JourneyAnalysis, error) {
	analysis, err := s.pipeline.AnalyzeJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SaveAnalysis(ctx, analysis); err != nil {
		return nil, fmt.Errorf("failed to persist analysis for journey %s: %w", journeyID, err)
	}

	log.Printf("[AnalysisService] Journey %s analyzed: %d segments, score %d, %d anomalies",
		journeyID, len(analysis.Segments), analysis.AccessibilityScore, len(analysis.Anomalies))
	return analysis, nil
}

// GetAnalysis returns the persisted analysis for a journey; nil when the
// journey has not been analyzed yet
func (s *AnalysisService) GetAnalysis(ctx context.Context, journeyID string) (*models.JourneyAnalysis, error) {
	return s.repo.Analysis(ctx, journeyID)
}

// CreateJourney registers a journey and ingests its telemetry
func (s *AnalysisService) CreateJourney(ctx context.Context, j models.Journey, samples []models.TelemetrySample) error {
	if err := s.repo.CreateJourney(ctx, j); err != nil {
		return err
	}
	if err := s.repo.InsertSamples(ctx, j.ID, samples); err != nil {
		return fmt.Errorf("failed to ingest telemetry for journey %s: %w", j.ID, err)
	}
	return nil
}

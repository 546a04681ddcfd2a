package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accesspath/journey-backend-go/internal/classifier"
	"github.com/accesspath/journey-backend-go/internal/database"
	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/pipeline"
	"github.com/accesspath/journey-backend-go/internal/repository"
)

const svcTime = int64(1_700_000_000_000)

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	db, err := database.Open(database.Config{Path: t.TempDir() + "/service_test.db"})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, db.Close()) })

	repo := repository.NewJourneyRepository(db)
	p := pipeline.New(pipeline.DefaultConfig(), repo, classifier.NewHeuristic(), nil)
	return NewAnalysisService(repo, p)
}

func walkingSamples(seconds int) []models.TelemetrySample {
	samples := make([]models.TelemetrySample, seconds)
	for i := range samples {
		speed := 1.4
		samples[i] = models.TelemetrySample{
			Timestamp: svcTime + int64(i)*1000,
			Latitude:  52.52 + float64(i)*0.0000126,
			Longitude: 13.405,
			Accuracy:  5,
			Speed:     &speed,
		}
	}
	return samples
}

func TestAnalyzeJourneyPersistsResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	journey := models.Journey{
		ID: "journey-1", OwnerID: "owner-1",
		StartTime: svcTime, EndTime: svcTime + 60_000,
		Status: models.JourneyStatusCompleted,
	}
	require.NoError(t, svc.CreateJourney(ctx, journey, walkingSamples(60)))

	analysis, err := svc.AnalyzeJourney(ctx, "journey-1")
	require.NoError(t, err)
	require.NotEmpty(t, analysis.Segments)
	assert.Equal(t, models.ModeWalking, analysis.Segments[0].Mode)
	assert.Equal(t, "owner-1", analysis.OwnerID)

	persisted, err := svc.GetAnalysis(ctx, "journey-1")
	require.NoError(t, err)
	require.NotNil(t, persisted)
	assert.Equal(t, analysis.ID, persisted.ID)
	assert.Equal(t, analysis.AccessibilityScore, persisted.AccessibilityScore)
}

func TestReanalyzeReplacesStoredResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	journey := models.Journey{ID: "journey-1", OwnerID: "owner-1", StartTime: svcTime, Status: models.JourneyStatusCompleted}
	require.NoError(t, svc.CreateJourney(ctx, journey, walkingSamples(60)))

	first, err := svc.AnalyzeJourney(ctx, "journey-1")
	require.NoError(t, err)
	second, err := svc.AnalyzeJourney(ctx, "journey-1")
	require.NoError(t, err)

	// Deterministic pipeline, unchanged input: the replacement is identical
	assert.Equal(t, first, second)

	persisted, err := svc.GetAnalysis(ctx, "journey-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, persisted.ID)
}

func TestAnalyzeJourneyPropagatesPipelineFailure(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	journey := models.Journey{ID: "journey-empty", OwnerID: "owner-1", StartTime: svcTime, Status: models.JourneyStatusCompleted}
	require.NoError(t, svc.CreateJourney(ctx, journey, nil))

	_, err := svc.AnalyzeJourney(ctx, "journey-empty")
	require.Error(t, err)
	assert.True(t, pipeline.IsKind(err, pipeline.KindNoTelemetryData))

	persisted, err := svc.GetAnalysis(ctx, "journey-empty")
	require.NoError(t, err)
	assert.Nil(t, persisted, "failed analysis must not persist a result")
}

func TestGetAnalysisUnknownJourney(t *testing.T) {
	svc := newTestService(t)
	persisted, err := svc.GetAnalysis(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, persisted)
}

package pipeline

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/accesspath/journey-backend-go/internal/models"
)

func TestGenerateTransportPreference(t *testing.T) {
	g := NewInsightGenerator()
	segments := []models.TransportSegment{
		{Mode: models.ModeWalking, DurationSeconds: 120},
		{Mode: models.ModeBus, DurationSeconds: 600},
		{Mode: models.ModeWalking, DurationSeconds: 180},
	}

	insights := g.Generate(segments, nil, 80)
	if len(insights) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(insights))
	}
	in := insights[0]
	if in.Type != models.InsightTransportPreference {
		t.Errorf("expected transport_preference, got %s", in.Type)
	}
	if in.Confidence != 0.6 {
		t.Errorf("pattern insight carries 0.6 confidence, got %v", in.Confidence)
	}
	if len(in.Recommendations) == 0 {
		t.Error("every insight must carry at least one recommendation")
	}
}

func TestGeneratePreferenceTieBreaksDeterministically(t *testing.T) {
	g := NewInsightGenerator()
	// Equal durations: walking precedes bus in the canonical mode order
	segments := []models.TransportSegment{
		{Mode: models.ModeBus, DurationSeconds: 300},
		{Mode: models.ModeWalking, DurationSeconds: 300},
	}

	for i := 0; i < 5; i++ {
		insights := g.Generate(segments, nil, 80)
		if len(insights) != 1 {
			t.Fatalf("expected 1 insight, got %d", len(insights))
		}
		if got := insights[0].Description; got != "Most of this journey was spent in walking mode." {
			t.Fatalf("tie must break toward the canonical mode order, got %q", got)
		}
	}
}

func TestGenerateAccessibilityTrend(t *testing.T) {
	g := NewInsightGenerator()
	segments := []models.TransportSegment{{Mode: models.ModeCar, DurationSeconds: 600}}

	insights := g.Generate(segments, nil, 40)
	if len(insights) != 2 {
		t.Fatalf("expected preference + trend insights, got %d", len(insights))
	}
	trend := insights[1]
	if trend.Type != models.InsightAccessibilityTrend || trend.Confidence != 0.8 {
		t.Errorf("unexpected trend insight: %+v", trend)
	}
}

func TestGenerateAnomalyDrivenInsights(t *testing.T) {
	g := NewInsightGenerator()
	segments := []models.TransportSegment{{Mode: models.ModeBus, DurationSeconds: 600}}
	anomalies := []models.Anomaly{
		{Type: models.AnomalyUnexpectedDelay},
		{Type: models.AnomalyAccessibilityIssue},
		{Type: models.AnomalyAccessibilityIssue},
	}

	insights := g.Generate(segments, anomalies, 80)

	var types []models.InsightType
	for _, in := range insights {
		types = append(types, in.Type)
	}
	want := []models.InsightType{
		models.InsightTransportPreference,
		models.InsightRouteOptimization,
		models.InsightAccessibilityImprovement,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Fatalf("unexpected insight types (-want +got):\n%s", diff)
	}

	// At most one insight per category, regardless of anomaly count
	seen := make(map[models.InsightType]int)
	for _, in := range insights {
		seen[in.Type]++
		if seen[in.Type] > 1 {
			t.Errorf("duplicate insight category %s", in.Type)
		}
	}
	if insights[2].Confidence != 0.9 {
		t.Errorf("issue-driven insight carries 0.9 confidence, got %v", insights[2].Confidence)
	}
}

func TestGenerateEmptyJourney(t *testing.T) {
	g := NewInsightGenerator()
	insights := g.Generate(nil, nil, 0)
	// No segments means no preference; journey score 0 still yields the
	// trend insight
	if len(insights) != 1 || insights[0].Type != models.InsightAccessibilityTrend {
		t.Fatalf("expected only the trend insight, got %+v", insights)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	g := NewInsightGenerator()
	segments := []models.TransportSegment{
		{Mode: models.ModeTram, DurationSeconds: 300},
		{Mode: models.ModeWalking, DurationSeconds: 120},
	}
	anomalies := []models.Anomaly{{Type: models.AnomalyUnexpectedDelay}}

	a := g.Generate(segments, anomalies, 45)
	b := g.Generate(segments, anomalies, 45)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("re-generation produced different insights (-a +b):\n%s", diff)
	}
}

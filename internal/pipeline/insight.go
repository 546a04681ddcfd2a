package pipeline

import (
	"fmt"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// Default insight thresholds and confidences. Pattern-derived insights
// carry lower confidence than direct threshold checks.
const (
	DefaultLowJourneyScoreThreshold = 50

	preferencePatternConfidence = 0.6
	trendThresholdConfidence    = 0.8
	delayThresholdConfidence    = 0.8
	issueThresholdConfidence    = 0.9
)

// InsightGenerator derives at most one insight per category from the
// finished segment and anomaly set. Pure and re-runnable: identical input
// yields identical insights.
type InsightGenerator struct {
	LowJourneyScoreThreshold int
}

// NewInsightGenerator creates a generator with the default thresholds
func NewInsightGenerator() *InsightGenerator {
	return &InsightGenerator{LowJourneyScoreThreshold: DefaultLowJourneyScoreThreshold}
}

// Generate derives the insight list in a fixed category order
func (g *InsightGenerator) Generate(segments []models.TransportSegment, anomalies []models.Anomaly, journeyScore int) []models.Insight {
	insights := []models.Insight{}

	if insight, ok := g.transportPreference(segments); ok {
		insights = append(insights, insight)
	}
	if insight, ok := g.accessibilityTrend(journeyScore); ok {
		insights = append(insights, insight)
	}
	if insight, ok := g.routeOptimization(anomalies); ok {
		insights = append(insights, insight)
	}
	if insight, ok := g.accessibilityImprovement(anomalies); ok {
		insights = append(insights, insight)
	}

	return insights
}

// transportPreference reports the duration-weighted dominant mode. Ties
// break toward the earlier mode in the canonical mode order so the result
// is deterministic.
func (g *InsightGenerator) transportPreference(segments []models.TransportSegment) (models.Insight, bool) {
	if len(segments) == 0 {
		return models.Insight{}, false
	}

	durations := make(map[models.TransportMode]float64)
	for _, seg := range segments {
		durations[seg.Mode] += seg.DurationSeconds
	}

	var dominant models.TransportMode
	best := -1.0
	for _, mode := range models.TransportModes {
		if d, ok := durations[mode]; ok && d > best {
			dominant = mode
			best = d
		}
	}

	return models.Insight{
		Type:        models.InsightTransportPreference,
		Title:       "Dominant transport mode",
		Description: fmt.Sprintf("Most of this journey was spent in %s mode.", dominant),
		Confidence:  preferencePatternConfidence,
		Recommendations: []string{
			fmt.Sprintf("Review %s accessibility options along your usual routes.", dominant),
		},
	}, true
}

// accessibilityTrend flags journeys whose overall score fell below the
// threshold
func (g *InsightGenerator) accessibilityTrend(journeyScore int) (models.Insight, bool) {
	if journeyScore >= g.LowJourneyScoreThreshold {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:        models.InsightAccessibilityTrend,
		Title:       "Low overall accessibility",
		Description: fmt.Sprintf("This journey scored %d out of 100 for accessibility.", journeyScore),
		Confidence:  trendThresholdConfidence,
		Recommendations: []string{
			"Consider alternative routes with better accessibility ratings.",
			"Check for accessible transit stops near your origin and destination.",
		},
	}, true
}

// routeOptimization flags journeys that hit at least one unexpected delay
func (g *InsightGenerator) routeOptimization(anomalies []models.Anomaly) (models.Insight, bool) {
	delays := 0
	for _, a := range anomalies {
		if a.Type == models.AnomalyUnexpectedDelay {
			delays++
		}
	}
	if delays == 0 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:        models.InsightRouteOptimization,
		Title:       "Delays detected on this route",
		Description: fmt.Sprintf("%d transit segment(s) moved well below normal transit speed.", delays),
		Confidence:  delayThresholdConfidence,
		Recommendations: []string{
			"Check real-time departures before traveling this route again.",
			"An alternative line or departure time may avoid the delay.",
		},
	}, true
}

// accessibilityImprovement flags journeys containing low-accessibility
// segments
func (g *InsightGenerator) accessibilityImprovement(anomalies []models.Anomaly) (models.Insight, bool) {
	issues := 0
	for _, a := range anomalies {
		if a.Type == models.AnomalyAccessibilityIssue {
			issues++
		}
	}
	if issues == 0 {
		return models.Insight{}, false
	}

	return models.Insight{
		Type:        models.InsightAccessibilityImprovement,
		Title:       "Accessibility issues along this journey",
		Description: fmt.Sprintf("%d segment(s) scored below the accessibility threshold.", issues),
		Confidence:  issueThresholdConfidence,
		Recommendations: []string{
			"Report inaccessible stretches to your transit agency.",
			"A wheelchair-accessible stop may be available nearby.",
		},
	}, true
}

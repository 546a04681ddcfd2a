package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// AlgoVersion tags every produced analysis; bump on algorithm changes
const AlgoVersion = "v1"

// Default orchestration parameters
const (
	DefaultPipelineTimeout = 60 * time.Second
	DefaultWorkerCount     = 4
)

// SampleSource is the external journey store port: ordered read access to a
// journey's recorded telemetry
type SampleSource interface {
	// Journey returns the journey record; used for owner attribution
	Journey(ctx context.Context, journeyID string) (*models.Journey, error)

	// Samples returns the journey's telemetry ordered by timestamp
	Samples(ctx context.Context, journeyID string) ([]models.TelemetrySample, error)
}

// Config carries all pipeline tunables
type Config struct {
	WindowDuration   time.Duration
	MinWindowSamples int
	MergeTolerance   time.Duration
	Fusion           FusionConfig
	PipelineTimeout  time.Duration
	Workers          int
}

// DefaultConfig returns the documented pipeline defaults
func DefaultConfig() Config {
	return Config{
		WindowDuration:   DefaultWindowDuration,
		MinWindowSamples: DefaultMinSamples,
		MergeTolerance:   DefaultMergeTolerance,
		Fusion:           DefaultFusionConfig(),
		PipelineTimeout:  DefaultPipelineTimeout,
		Workers:          DefaultWorkerCount,
	}
}

// Pipeline runs the full journey analysis: windowing, feature extraction,
// classification, transit fusion, segment merging, map matching, scoring,
// and anomaly/insight derivation. One Pipeline is safe for concurrent use:
// analyses for different journeys share no mutable state.
type Pipeline struct {
	cfg        Config
	source     SampleSource
	classifier Classifier
	fusion     *FusionEngine
	merger     *Merger
	windower   *Windower
	scorer     *Scorer
	detector   *AnomalyDetector
	insights   *InsightGenerator
}

// New assembles a pipeline from its collaborator ports. The transit feed
// may be nil, which disables fusion but not analysis.
func New(cfg Config, source SampleSource, classifier Classifier, feed VehicleFinder) *Pipeline {
	if cfg.PipelineTimeout <= 0 {
		cfg.PipelineTimeout = DefaultPipelineTimeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkerCount
	}
	return &Pipeline{
		cfg:        cfg,
		source:     source,
		classifier: classifier,
		fusion:     NewFusionEngine(feed, cfg.Fusion),
		merger:     NewMerger(cfg.MergeTolerance),
		windower:   NewWindower(cfg.WindowDuration, cfg.MinWindowSamples),
		scorer:     NewScorer(),
		detector:   NewAnomalyDetector(),
		insights:   NewInsightGenerator(),
	}
}

// SetRouteReference installs an optional expected-geometry source for the
// route deviation check
func (p *Pipeline) SetRouteReference(ref RouteReference) {
	p.detector.Routes = ref
}

// AnalyzeJourney runs the full analysis for one completed journey. The
// result is deterministic for an unchanged sample set, classifier, and
// feed. Fatal failures carry the journey id and failing stage.
func (p *Pipeline) AnalyzeJourney(ctx context.Context, journeyID string) (*models.JourneyAnalysis, error) {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.PipelineTimeout)
	defer cancel()

	started := time.Now()

	journey, err := p.source.Journey(ctx, journeyID)
	if err != nil {
		if errors.Is(err, ErrJourneyNotFound) {
			return nil, newError(KindJourneyNotFound, journeyID, "load", err)
		}
		return nil, newError(KindMalformedTelemetry, journeyID, "load", err)
	}

	samples, err := p.source.Samples(ctx, journeyID)
	if err != nil {
		return nil, newError(KindMalformedTelemetry, journeyID, "load", err)
	}
	if len(samples) == 0 {
		return nil, errorf(KindNoTelemetryData, journeyID, "load", "journey has no recorded telemetry")
	}
	if err := validateSamples(samples); err != nil {
		return nil, newError(KindMalformedTelemetry, journeyID, "validate", err)
	}

	if err := checkSchema(p.classifier); err != nil {
		return nil, newError(KindSchemaMismatch, journeyID, "classify", err)
	}

	windows := p.windower.Split(samples)
	if len(windows) == 0 {
		return nil, errorf(KindNoTelemetryData, journeyID, "window", "no usable telemetry windows (%d samples, all too sparse)", len(samples))
	}

	preds, err := p.classifyWindows(ctx, journeyID, windows)
	if err != nil {
		return nil, err
	}
	if err := p.checkDeadline(ctx, journeyID, "classify"); err != nil {
		return nil, err
	}

	fused := p.fusion.Fuse(ctx, windows, preds)
	if err := p.checkDeadline(ctx, journeyID, "fuse"); err != nil {
		return nil, err
	}

	segments := p.merger.Merge(journeyID, windows, fused)
	points := MatchPoints(samples, windows, fused, segments)

	p.scorer.ScoreSegments(segments)
	journeyScore := p.scorer.JourneyScore(segments)

	anomalies := p.detector.Detect(journeyID, segments, points)
	insights := p.insights.Generate(segments, anomalies, journeyScore)

	if err := p.checkDeadline(ctx, journeyID, "derive"); err != nil {
		return nil, err
	}

	var totalDistance float64
	for _, seg := range segments {
		totalDistance += seg.DistanceMeters
	}

	analysis := &models.JourneyAnalysis{
		ID:                   analysisID(journeyID),
		JourneyID:            journeyID,
		OwnerID:              journey.OwnerID,
		StartTime:            samples[0].Timestamp,
		EndTime:              samples[len(samples)-1].Timestamp,
		TotalDistanceMeters:  totalDistance,
		TotalDurationSeconds: float64(samples[len(samples)-1].Timestamp-samples[0].Timestamp) / 1000.0,
		Segments:             segments,
		AccessibilityScore:   journeyScore,
		Anomalies:            anomalies,
		Insights:             insights,
		MapMatchedPoints:     points,
		Summary:              summarize(fused),
		AlgoVersion:          AlgoVersion,
	}

	log.Printf("[Pipeline] journey %s analyzed in %v: %d windows, %d segments, score %d, %d anomalies",
		journeyID, time.Since(started).Round(time.Millisecond), len(windows), len(segments), journeyScore, len(anomalies))

	return analysis, nil
}

// classifyWindows extracts features and classifies every window with a
// bounded worker pool, preserving window order
func (p *Pipeline) classifyWindows(ctx context.Context, journeyID string, windows []Window) ([]models.ModePrediction, error) {
	preds := make([]models.ModePrediction, len(windows))
	errs := make([]error, len(windows))

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < p.cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					errs[i] = ctx.Err()
					continue
				}
				fv := ExtractFeatures(windows[i])
				pred, err := p.classifier.Classify(fv)
				if err != nil {
					errs[i] = err
					continue
				}
				pred.WindowIndex = windows[i].Index
				if err := validatePrediction(pred); err != nil {
					errs[i] = err
					continue
				}
				preds[i] = pred
			}
		}()
	}

	for i := range windows {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return nil, errorf(KindAnalysisTimeout, journeyID, "classify", "analysis deadline exceeded")
		}
		return nil, newError(KindClassifierContract, journeyID, "classify", fmt.Errorf("window %d: %w", i, err))
	}

	return preds, nil
}

// checkDeadline converts a context expiry into an AnalysisTimeout error so
// the caller never receives partial results silently
func (p *Pipeline) checkDeadline(ctx context.Context, journeyID, stage string) error {
	if ctx.Err() != nil {
		return errorf(KindAnalysisTimeout, journeyID, stage, "analysis deadline exceeded")
	}
	return nil
}

// validateSamples rejects malformed input: out-of-order timestamps or
// coordinates outside WGS84 bounds. Missing coordinates are never defaulted.
func validateSamples(samples []models.TelemetrySample) error {
	for i, s := range samples {
		if i > 0 && s.Timestamp < samples[i-1].Timestamp {
			return fmt.Errorf("sample %d: timestamp %d precedes previous %d", i, s.Timestamp, samples[i-1].Timestamp)
		}
		if s.Latitude < -90 || s.Latitude > 90 || s.Longitude < -180 || s.Longitude > 180 {
			return fmt.Errorf("sample %d: coordinate (%v, %v) outside WGS84 bounds", i, s.Latitude, s.Longitude)
		}
	}
	return nil
}

// summarize aggregates the fused window-level results
func summarize(fused []FusedPrediction) models.WindowSummary {
	summary := models.WindowSummary{
		WindowCount:      len(fused),
		ModeDistribution: make(map[models.TransportMode]int),
	}
	if len(fused) == 0 {
		return summary
	}

	var confidenceSum float64
	for _, f := range fused {
		summary.ModeDistribution[f.Mode]++
		confidenceSum += f.Confidence
		if f.Transit != nil {
			summary.TransitMatches++
		}
	}
	summary.AvgConfidence = confidenceSum / float64(len(fused))
	summary.TransitMatchRate = float64(summary.TransitMatches) / float64(len(fused))

	return summary
}

// analysisID derives a deterministic analysis identifier from the journey id
func analysisID(journeyID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("analysis:"+journeyID)).String()
}

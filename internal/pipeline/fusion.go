package pipeline

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/accesspath/journey-backend-go/internal/models"
	"github.com/accesspath/journey-backend-go/internal/spatial"
)

// Default fusion parameters
const (
	DefaultFusionRadiusMeters  = 50.0
	DefaultFusionTimeWindow    = 5 * time.Minute
	DefaultConfidenceBoost     = 0.2
	DefaultFusionBatchBucket   = time.Minute
	DefaultFeedQueryTimeout    = 5 * time.Second
	speedMismatchPenaltyFactor = 0.8
)

// VehicleFinder is the external transit-feed port: a point-in-time
// nearest-vehicle query around a location
type VehicleFinder interface {
	FindVehiclesNear(ctx context.Context, lat, lng, radiusMeters float64, timestamp int64, timeWindow time.Duration) ([]models.TransitVehicleObservation, error)
}

// modeSpeedRange bounds the plausible mean speed (m/s) per transport mode
type modeSpeedRange struct {
	min, max float64
}

// Plausible speed envelopes per mode, used as a post-fusion sanity check.
// Stationary is deliberately absent: a zero-speed window needs no envelope.
var modeSpeedRanges = map[models.TransportMode]modeSpeedRange{
	models.ModeWalking: {0, 5.0},
	models.ModeCycling: {0.5, 25.0},
	models.ModeBus:     {0, 60.0},
	models.ModeTrain:   {0, 100.0},
	models.ModeTram:    {0, 40.0},
	models.ModeCar:     {0, 80.0},
}

// maxTransitEnvelopeSpeed returns the fastest plausible transit speed in
// m/s, taken from the mode envelopes
func maxTransitEnvelopeSpeed() float64 {
	var fastest float64
	for mode, r := range modeSpeedRanges {
		if mode.IsTransit() && r.max > fastest {
			fastest = r.max
		}
	}
	return fastest
}

// FusedPrediction is a window prediction after transit fusion
type FusedPrediction struct {
	models.ModePrediction

	// Transit linkage when a consistent vehicle observation matched
	Transit *models.TransitLink `json:"transit,omitempty"`

	// MatchedVehicle is the tie-broken best observation, retained for the
	// map matcher
	MatchedVehicle *models.TransitVehicleObservation `json:"-"`

	// TransitConflict marks a matched observation whose route type
	// disagrees with the predicted mode
	TransitConflict bool `json:"transit_conflict,omitempty"`

	// SpeedMismatch marks a window whose mean speed fell outside the
	// predicted mode's plausible envelope
	SpeedMismatch bool `json:"speed_mismatch,omitempty"`
}

// FusionConfig tunes the transit fusion engine
type FusionConfig struct {
	RadiusMeters    float64
	TimeWindow      time.Duration
	ConfidenceBoost float64
	BatchBucket     time.Duration
	QueryTimeout    time.Duration
}

// DefaultFusionConfig returns the documented default fusion parameters
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		RadiusMeters:    DefaultFusionRadiusMeters,
		TimeWindow:      DefaultFusionTimeWindow,
		ConfidenceBoost: DefaultConfidenceBoost,
		BatchBucket:     DefaultFusionBatchBucket,
		QueryTimeout:    DefaultFeedQueryTimeout,
	}
}

// FusionEngine reconciles classifier predictions against the transit
// vehicle feed. The policy is conservative: absence of transit data never
// downgrades a prediction, and a conflicting observation withholds the
// boost without overriding the sensor verdict.
type FusionEngine struct {
	feed VehicleFinder
	cfg  FusionConfig
}

// NewFusionEngine creates a fusion engine over the given feed. A nil feed
// disables fusion entirely: every prediction passes through unchanged.
func NewFusionEngine(feed VehicleFinder, cfg FusionConfig) *FusionEngine {
	if cfg.RadiusMeters <= 0 {
		cfg.RadiusMeters = DefaultFusionRadiusMeters
	}
	if cfg.TimeWindow <= 0 {
		cfg.TimeWindow = DefaultFusionTimeWindow
	}
	if cfg.ConfidenceBoost <= 0 {
		cfg.ConfidenceBoost = DefaultConfidenceBoost
	}
	if cfg.BatchBucket <= 0 {
		cfg.BatchBucket = DefaultFusionBatchBucket
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = DefaultFeedQueryTimeout
	}
	return &FusionEngine{feed: feed, cfg: cfg}
}

// Fuse adjusts each window prediction against nearby vehicle observations.
// Feed queries are batched by time bucket to bound request volume; a feed
// error or timeout for one bucket degrades that bucket to "no observation
// found" rather than failing the pipeline.
func (e *FusionEngine) Fuse(ctx context.Context, windows []Window, preds []models.ModePrediction) []FusedPrediction {
	fused := make([]FusedPrediction, len(preds))
	for i, pred := range preds {
		fused[i] = FusedPrediction{ModePrediction: pred}
	}

	if e.feed != nil {
		observations := e.fetchObservations(ctx, windows, fused)
		for i := range fused {
			if !fused[i].Mode.IsTransit() {
				continue
			}
			e.fuseWindow(&fused[i], windows[i], observations)
		}
	}

	// Mode-characteristic validation runs on the post-fusion verdict so a
	// boosted window with implausible speed still gets flagged
	for i := range fused {
		e.validateSpeed(&fused[i], windows[i])
	}

	return fused
}

// fetchObservations performs one feed query per time bucket covering the
// transit-predicted windows
func (e *FusionEngine) fetchObservations(ctx context.Context, windows []Window, fused []FusedPrediction) []models.TransitVehicleObservation {
	type bucketQuery struct {
		lat, lng  float64
		timestamp int64
	}

	bucketMs := e.cfg.BatchBucket.Milliseconds()
	buckets := make(map[int64]bucketQuery)
	var order []int64

	for i, f := range fused {
		if !f.Mode.IsTransit() {
			continue
		}
		lat, lng, ok := WindowCentroid(windows[i])
		if !ok {
			continue
		}
		key := windows[i].StartTime / bucketMs
		if _, seen := buckets[key]; !seen {
			buckets[key] = bucketQuery{lat: lat, lng: lng, timestamp: windows[i].StartTime}
			order = append(order, key)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	// The batched query widens the radius so windows at the bucket's edge
	// still see their nearby vehicles; the per-window match re-applies the
	// exact radius. Drift is bounded by the fastest transit envelope, so a
	// train traveler stays inside the query for the whole bucket.
	queryRadius := e.cfg.RadiusMeters + float64(bucketMs)/1000.0*maxTransitEnvelopeSpeed()

	var observations []models.TransitVehicleObservation
	for _, key := range order {
		q := buckets[key]

		queryCtx, cancel := context.WithTimeout(ctx, e.cfg.QueryTimeout)
		found, err := e.feed.FindVehiclesNear(queryCtx, q.lat, q.lng, queryRadius, q.timestamp, e.cfg.TimeWindow)
		cancel()

		if err != nil {
			// Best-effort: a failed bucket contributes no observations
			log.Printf("[FusionEngine] transit feed query failed, degrading to no-match: %v", err)
			continue
		}
		observations = append(observations, found...)
	}
	return observations
}

// fuseWindow applies the matching policy for a single transit-predicted
// window
func (e *FusionEngine) fuseWindow(f *FusedPrediction, win Window, observations []models.TransitVehicleObservation) {
	lat, lng, ok := WindowCentroid(win)
	if !ok {
		return
	}

	best, found := e.bestObservation(lat, lng, win.StartTime, observations)
	if !found {
		// No observation: verdict and confidence stay untouched
		return
	}

	f.MatchedVehicle = &best

	obsMode, mapped := models.ModeForRouteType(best.RouteType)
	if mapped && obsMode == f.Mode {
		f.Confidence = f.Confidence + e.cfg.ConfidenceBoost
		if f.Confidence > 1.0 {
			f.Confidence = 1.0
		}
		f.Transit = &models.TransitLink{
			TripID:  best.TripID,
			RouteID: best.RouteID,
			StopID:  best.StopID,
		}
		return
	}

	// Route type disagrees: sensor evidence still counts, so the label and
	// confidence stand, but the conflict is recorded for downstream use
	f.TransitConflict = true
}

// bestObservation picks the observation within the spatial radius and
// temporal window, preferring the spatially nearest and breaking ties on
// the smaller time delta
func (e *FusionEngine) bestObservation(lat, lng float64, timestamp int64, observations []models.TransitVehicleObservation) (models.TransitVehicleObservation, bool) {
	windowMs := e.cfg.TimeWindow.Milliseconds()

	var best models.TransitVehicleObservation
	bestDist := -1.0
	var bestDelta int64

	for _, obs := range observations {
		delta := obs.Timestamp - timestamp
		if delta < 0 {
			delta = -delta
		}
		if delta > windowMs {
			continue
		}
		dist := spatial.HaversineDistance(lat, lng, obs.Latitude, obs.Longitude)
		if dist > e.cfg.RadiusMeters {
			continue
		}
		if bestDist < 0 || dist < bestDist || (dist == bestDist && delta < bestDelta) {
			best = obs
			bestDist = dist
			bestDelta = delta
		}
	}

	return best, bestDist >= 0
}

// validateSpeed checks the window's mean speed against the predicted
// mode's plausible envelope, shaving confidence on a mismatch
func (e *FusionEngine) validateSpeed(f *FusedPrediction, win Window) {
	envelope, known := modeSpeedRanges[f.Mode]
	if !known {
		return
	}
	meanSpeed, ok := WindowMeanSpeed(win)
	if !ok {
		return
	}
	if meanSpeed < envelope.min || meanSpeed > envelope.max {
		f.Confidence *= speedMismatchPenaltyFactor
		f.SpeedMismatch = true
	}
}

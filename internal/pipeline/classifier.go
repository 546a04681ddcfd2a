package pipeline

import (
	"fmt"
	"math"

	"github.com/accesspath/journey-backend-go/internal/models"
)

// probabilitySumTolerance is the allowed floating drift when checking that a
// classifier's probability distribution sums to one
const probabilitySumTolerance = 1e-6

// Classifier is the trained mode-inference collaborator. The pipeline treats
// it as a pure inference function with a stable input schema; training and
// model persistence live with the classifier's owner.
type Classifier interface {
	// Schema returns the ordered feature names the model was trained on
	Schema() []string

	// Classify maps one feature vector to a mode prediction. The returned
	// distribution must cover all transport modes and sum to 1.
	Classify(fv models.FeatureVector) (models.ModePrediction, error)
}

// checkSchema verifies the classifier's published schema against the
// extractor's. A mismatch is a fatal configuration error, not a runtime
// anomaly.
func checkSchema(c Classifier) error {
	got := c.Schema()
	want := FeatureSchema()
	if len(got) != len(want) {
		return fmt.Errorf("classifier expects %d features, extractor produces %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("feature %d: classifier expects %q, extractor produces %q", i, got[i], want[i])
		}
	}
	return nil
}

// validatePrediction rejects contract-breaching classifier output. A
// distribution that does not sum to 1 signals a training or serialization
// bug and is surfaced rather than silently renormalized.
func validatePrediction(pred models.ModePrediction) error {
	if !pred.Mode.Valid() {
		return fmt.Errorf("unknown mode %q", pred.Mode)
	}
	if pred.Confidence < 0 || pred.Confidence > 1 {
		return fmt.Errorf("confidence %v out of [0,1]", pred.Confidence)
	}

	var sum float64
	for _, p := range pred.Probabilities {
		if p < 0 {
			return fmt.Errorf("negative probability %v", p)
		}
		sum += p
	}
	if math.Abs(sum-1.0) > probabilitySumTolerance {
		return fmt.Errorf("probability distribution sums to %v, want 1", sum)
	}
	return nil
}

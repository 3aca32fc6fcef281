package classify

import "context"

// ExtraFeatures are secondary traits read from the recognition concepts
// (expression, posture, coat and so on). All optional.
type ExtraFeatures struct {
	Expression  string   `json:"expression,omitempty"`
	Posture     string   `json:"posture,omitempty"`
	FurAmount   string   `json:"fur_amount,omitempty"`
	Mood        string   `json:"mood,omitempty"`
	Size        string   `json:"size,omitempty"`
	AgeEstimate string   `json:"age_estimate,omitempty"`
	OtherTraits []string `json:"other_traits,omitempty"`
}

// Analysis is the classifier verdict for one pet photo.
type Analysis struct {
	AnimalType        string         `json:"animal_type"`
	Breed             string         `json:"breed"`
	Color             string         `json:"color,omitempty"`
	Confidence        float64        `json:"confidence"`
	GeneralConfidence float64        `json:"general_confidence,omitempty"`
	BreedConfidence   float64        `json:"breed_confidence,omitempty"`
	ExtraFeatures     *ExtraFeatures `json:"extra_features,omitempty"`
}

// Classifier identifies species, breed and traits from a photo. Pluggable so
// the vision backend can be swapped or mocked in tests. A classifier failure
// is fatal for flows that depend on it; there is no fallback verdict.
type Classifier interface {
	Identify(ctx context.Context, photo []byte) (*Analysis, error)
}

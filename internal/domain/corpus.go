package domain

// LabeledExample is one row of the classifier training corpus.
type LabeledExample struct {
	Description string `json:"description"`
	Code        string `json:"code"`
}

// SchemeRecord is one government support program in the catalog.
// Records are identified by their position in the catalog.
type SchemeRecord struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Prediction is the output of the classifier for a single description.
// Confidence is the raw winning discriminant score, not a probability.
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Recommendation is a ranked catalog entry returned by the retriever.
type Recommendation struct {
	Position    int     `json:"-"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Similarity  float64 `json:"similarity"`
}

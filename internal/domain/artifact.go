package domain

import "time"

// ArtifactKind identifies what an artifact blob contains.
type ArtifactKind string

const (
	ArtifactKindClassifier ArtifactKind = "classifier"
	ArtifactKindEmbedding  ArtifactKind = "embedding"
)

// FeatureConfig holds every tokenization and vocabulary parameter chosen at
// training time. It is serialized with the classifier so inference never has
// to guess what training did.
type FeatureConfig struct {
	Lowercase    bool    `json:"lowercase" mapstructure:"lowercase"`
	StripAccents bool    `json:"strip_accents" mapstructure:"strip_accents"`
	StopWords    string  `json:"stop_words" mapstructure:"stop_words"` // "english" or "none"
	MinTokenLen  int     `json:"min_token_len" mapstructure:"min_token_len"`
	NGramMin     int     `json:"ngram_min" mapstructure:"ngram_min"`
	NGramMax     int     `json:"ngram_max" mapstructure:"ngram_max"`
	MinDF        int     `json:"min_df" mapstructure:"min_df"`
	MaxDF        float64 `json:"max_df" mapstructure:"max_df"`
	MaxFeatures  int     `json:"max_features" mapstructure:"max_features"`
	SmoothIDF    bool    `json:"smooth_idf" mapstructure:"smooth_idf"`
	Norm         string  `json:"norm" mapstructure:"norm"` // "l2" or "none"
}

// DefaultFeatureConfig mirrors the settings the production NIC model is trained with.
func DefaultFeatureConfig() FeatureConfig {
	return FeatureConfig{
		Lowercase:    true,
		StripAccents: true,
		StopWords:    "english",
		MinTokenLen:  2,
		NGramMin:     1,
		NGramMax:     2,
		MinDF:        2,
		MaxDF:        0.95,
		MaxFeatures:  5000,
		SmoothIDF:    true,
		Norm:         "l2",
	}
}

// TrainerConfig holds the linear model hyperparameters.
type TrainerConfig struct {
	C                float64 `json:"c" mapstructure:"c"`
	MaxIter          int     `json:"max_iter" mapstructure:"max_iter"`
	Tol              float64 `json:"tol" mapstructure:"tol"`
	InterceptScaling float64 `json:"intercept_scaling" mapstructure:"intercept_scaling"`
	Seed             int64   `json:"seed" mapstructure:"seed"`
}

// DefaultTrainerConfig returns C=1, 1000 iterations and seed 42.
func DefaultTrainerConfig() TrainerConfig {
	return TrainerConfig{
		C:                1.0,
		MaxIter:          1000,
		Tol:              1e-4,
		InterceptScaling: 1.0,
		Seed:             42,
	}
}

// ClassMetrics is the per-class part of an evaluation report.
type ClassMetrics struct {
	Label     string  `json:"label"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Evaluation summarizes the held-out split. It is diagnostic only.
type Evaluation struct {
	TrainSize      int            `json:"train_size"`
	TestSize       int            `json:"test_size"`
	Accuracy       float64        `json:"accuracy"`
	Classes        []ClassMetrics `json:"classes,omitempty"`
	MissingInTrain []string       `json:"missing_in_train,omitempty"`
}

// ClassifierArtifact is the immutable output of classifier training.
// Vocabulary[i] is the term with feature index i.
type ClassifierArtifact struct {
	Features   FeatureConfig `json:"features"`
	Model      TrainerConfig `json:"model"`
	Vocabulary []string      `json:"vocabulary"`
	IDF        []float64     `json:"idf"`
	Classes    []string      `json:"classes"`
	Weights    [][]float64   `json:"weights"`
	Bias       []float64     `json:"bias"`
	Evaluation *Evaluation   `json:"evaluation,omitempty"`
}

// EncoderStamp identifies the encoder that produced a set of vectors.
// Two stamps must be equal for query and catalog vectors to be comparable.
type EncoderStamp struct {
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Dimensions int    `json:"dimensions"`
	Revision   string `json:"revision,omitempty"`
}

// Equal reports whether two stamps describe the same encoder.
func (s EncoderStamp) Equal(o EncoderStamp) bool {
	return s.Provider == o.Provider &&
		s.Model == o.Model &&
		s.Dimensions == o.Dimensions &&
		s.Revision == o.Revision
}

func (s EncoderStamp) String() string {
	out := s.Provider + "/" + s.Model
	if s.Revision != "" {
		out += "@" + s.Revision
	}
	return out
}

// EmbeddingArtifact is the immutable output of the catalog indexer.
// Vectors, Names and Descriptions are index-aligned.
type EmbeddingArtifact struct {
	Encoder      EncoderStamp `json:"encoder"`
	Vectors      [][]float32  `json:"vectors"`
	Names        []string     `json:"names"`
	Descriptions []string     `json:"descriptions"`
}

// Len returns the number of catalog records.
func (a *EmbeddingArtifact) Len() int {
	return len(a.Vectors)
}

// ArtifactHeader is the metadata stored next to every artifact payload.
type ArtifactHeader struct {
	FormatVersion int          `json:"format_version"`
	Kind          ArtifactKind `json:"kind"`
	BuildID       string       `json:"build_id"`
	CreatedAt     time.Time    `json:"created_at"`
	Checksum      string       `json:"checksum"`
}

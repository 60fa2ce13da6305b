package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactLoad marks any failure to load an artifact. It is fatal at start-up.
	ErrArtifactLoad = errors.New("artifact load failed")

	// ErrEncoderUnavailable marks a failed call to the embedding encoder.
	// It fails the current request only.
	ErrEncoderUnavailable = errors.New("encoder unavailable")

	// ErrEmptyCorpus is returned when training or indexing gets no rows.
	ErrEmptyCorpus = errors.New("empty corpus")
)

// ArtifactLoadError describes why an artifact could not be loaded.
type ArtifactLoadError struct {
	Kind   ArtifactKind
	Key    string
	Reason string
	Err    error
}

func (e *ArtifactLoadError) Error() string {
	msg := fmt.Sprintf("load %s artifact %q: %s", e.Kind, e.Key, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap lets errors.Is match both ErrArtifactLoad and the cause.
func (e *ArtifactLoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrArtifactLoad, e.Err}
	}
	return []error{ErrArtifactLoad}
}

// NewArtifactLoadError builds an ArtifactLoadError.
func NewArtifactLoadError(kind ArtifactKind, key, reason string, err error) *ArtifactLoadError {
	return &ArtifactLoadError{Kind: kind, Key: key, Reason: reason, Err: err}
}

// EncoderError wraps a transport or provider failure from an encoder.
type EncoderError struct {
	Provider string
	Err      error
}

func (e *EncoderError) Error() string {
	return fmt.Sprintf("%s encoder: %v", e.Provider, e.Err)
}

func (e *EncoderError) Unwrap() []error {
	return []error{ErrEncoderUnavailable, e.Err}
}

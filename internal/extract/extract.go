// Package extract turns free-form text and images into raw event
// candidates by calling a generative language model. The model is
// asked only to transcribe what the input says; all timezone
// resolution and normalization happens downstream.
package extract

import (
	"context"
	"time"

	"eventcal/internal/model"
)

// Image is one image attachment for an extraction request.
type Image struct {
	MIMEType string
	Data     []byte
}

// Request carries the input to extract events from plus the local
// context the prompt needs to ground relative dates.
type Request struct {
	Text   string
	Images []Image

	// ReferenceDate anchors relative expressions like "tomorrow".
	ReferenceDate time.Time
	// ZoneName is the IANA name of the user's local zone, passed to
	// the model so it can echo it as a hint, never to convert with.
	ZoneName string
}

// Extractor produces raw event candidates from a request.
type Extractor interface {
	Extract(ctx context.Context, req Request) ([]model.RawEventCandidate, error)
}

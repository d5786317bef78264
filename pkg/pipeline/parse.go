package pipeline

import (
	"context"
	"time"

	apperrors "github.com/matzehuels/seqflow/pkg/errors"
	"github.com/matzehuels/seqflow/pkg/observability"
	"github.com/matzehuels/seqflow/pkg/sequence"
)

// Parse validates the raw source and parses it into a diagram.
//
// A missing header yields an error for which [sequence.IsFormatError] is
// true. Oversized or binary input is rejected with an INVALID_INPUT error
// before parsing starts.
func Parse(ctx context.Context, source string) (*sequence.Diagram, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, len(source))
	start := time.Now()

	if err := apperrors.ValidateSource(source); err != nil {
		hooks.OnParseComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	d, err := sequence.Parse(source)
	if err != nil {
		hooks.OnParseComplete(ctx, 0, 0, time.Since(start), err)
		return nil, err
	}

	hooks.OnParseComplete(ctx, len(d.Actors), len(d.Messages), time.Since(start), nil)
	return d, nil
}

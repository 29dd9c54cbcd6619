package random

import (
	"github.com/pkg/errors"
)

// The error kinds below separate the three ways a call into this package
// can fail. Configuration errors mean the caller handed us input that can
// never be valid (a bad algorithm name, a negative shape parameter, a seed
// buffer of the wrong length). Numerical-domain errors mean the requested
// quantity doesn't exist (the mean of a Cauchy distribution). Usage errors
// mean the calling code has a bug (indexing a stream that doesn't exist,
// reconstructing a generator with the wrong variant). Callers can test for
// a kind with errors.Is.
var (
	// ErrInvalidParameters is the kind of all distribution-parameter
	// configuration errors.
	ErrInvalidParameters = errors.New("invalid distribution parameters")
	// ErrInvalidSeed is the kind of all seed-input configuration errors.
	ErrInvalidSeed = errors.New("invalid seed")
	// ErrInvalidAlgorithm is the kind of unknown-algorithm configuration
	// errors.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
	// ErrNoMean is returned when deterministic mode asks a distribution
	// without a finite mean for its expectation.
	ErrNoMean = errors.New("distribution has no mean")
	// ErrUsage is the kind of caller-bug errors: out-of-range stream
	// indices and mismatched state reconstruction.
	ErrUsage = errors.New("usage error")
)

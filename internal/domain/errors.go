package domain

import "errors"

// ErrNoGeneration is returned by stores that have never persisted a generation.
var ErrNoGeneration = errors.New("no hotspot generation persisted")

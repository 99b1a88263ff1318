// Package idgen produces identifiers for validation jobs.
package idgen

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

const (
	SchemeCounter = "counter"
	SchemeUUID    = "uuid"
)

// Generator returns a new identifier on every call. Implementations must be
// safe for concurrent use and never return the same id twice.
type Generator interface {
	NewID() string
}

// Counter issues decimal ids starting at "1".
type Counter struct {
	n atomic.Uint64
}

func NewCounter() *Counter { return &Counter{} }

func (c *Counter) NewID() string {
	return strconv.FormatUint(c.n.Add(1), 10)
}

// UUID issues random version 4 UUIDs.
type UUID struct{}

func (UUID) NewID() string { return uuid.NewString() }

// New returns the Generator for the named scheme.
func New(scheme string) (Generator, error) {
	switch strings.ToLower(scheme) {
	case SchemeCounter, "":
		return NewCounter(), nil
	case SchemeUUID:
		return UUID{}, nil
	default:
		return nil, fmt.Errorf("unknown id scheme %q", scheme)
	}
}

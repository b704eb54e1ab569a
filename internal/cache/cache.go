// Package cache provides an optional result cache for comprehensive
// analyses, so repeated requests for an unchanged user skip the 5,000-trial
// simulation. Disabled deployments use the no-op implementation.
package cache

import (
	"context"
	"time"
)

// Cache stores serialized analysis results keyed by user.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Noop implements Cache without storing anything.
type Noop struct{}

// NewNoop creates a cache that never hits.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(context.Context, string) (string, bool) { return "", false }

func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }

func (Noop) Delete(context.Context, string) error { return nil }

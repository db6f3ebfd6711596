package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Store is a key-value cache with expiration, backed by Redis in production
// and an in-process map in development/tests.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
}

// MarkerTimesKey is the cache key for a slide's per-language marker-time
// lookup used by trigger resolution. Invalidated whenever positions change.
func MarkerTimesKey(slideID uuid.UUID, lang string) string {
	return fmt.Sprintf("markertimes:%s:%s", slideID, lang)
}

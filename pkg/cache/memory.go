package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// NewMemory returns an in-process store used when Redis is not configured.
func NewMemory(defaultTTL time.Duration) *gocache.Cache {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	return gocache.New(defaultTTL, 2*defaultTTL)
}

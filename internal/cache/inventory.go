package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	userKeyPrefix = "user:%s"
	aqiKeyPrefix  = "aqi:%s"
)

const (
	// UserTTL bounds how long a cached user profile may lag behind the
	// live record, e.g. after an accept-flag toggle observed by the
	// public submission path.
	UserTTL = 5 * time.Minute

	// AQITTL matches how often upstream air-quality feeds refresh.
	AQITTL = 10 * time.Minute
)

// UserKey returns the cache key for a user profile looked up by username.
func UserKey(username string) string {
	return fmt.Sprintf(userKeyPrefix, username)
}

// AQIKey returns the cache key for a city air-quality lookup.
func AQIKey(city string) string {
	return fmt.Sprintf(aqiKeyPrefix, city)
}

// Invalidate removes a key from the cache (best-effort).
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateUser drops the cached profile for the given username.
func InvalidateUser(ctx context.Context, username string) {
	Invalidate(ctx, UserKey(username))
}

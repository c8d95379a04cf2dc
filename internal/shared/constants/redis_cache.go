package constants

import (
	"fmt"
	"time"
)

// Redis Cache Configuration
// This file centralizes all Redis cache keys and TTL values.
// Pattern: pppa:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

// Semi-Static Data (Medium TTL: changes occasionally)
const (
	TTL_SEMI_STATIC_MEDIUM = 2 * time.Hour    // 2 hours - for event details
	TTL_SEMI_STATIC_SHORT  = 1 * time.Hour    // 1 hour - for event listings
	TTL_SEMI_STATIC_QUICK  = 15 * time.Minute // 15 minutes - for banking details
)

// Dynamic Data (Short TTL: changes frequently)
const (
	TTL_DYNAMIC_MEDIUM = 10 * time.Minute // 10 minutes - for analytics
	TTL_DYNAMIC_SHORT  = 5 * time.Minute  // 5 minutes - for ticket availability
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "pppa"
)

// ================== EVENTS MODULE ==================

// Event Cache Keys
const (
	CACHE_KEY_EVENTS_LIST   = CACHE_PREFIX + ":events:list"         // + :page:X:limit:Y
	CACHE_KEY_EVENT_BY_SLUG = CACHE_PREFIX + ":events:detail:slug:" // + event-slug
)

// Event Cache TTLs
const (
	TTL_EVENT_LIST   = TTL_SEMI_STATIC_SHORT  // 1 hour
	TTL_EVENT_DETAIL = TTL_SEMI_STATIC_MEDIUM // 2 hours
)

// ================== PAYMENTS MODULE ==================

// Payment Cache Keys
const (
	CACHE_KEY_BANKING_DETAILS = CACHE_PREFIX + ":payments:banking:active"
)

// Payment Cache TTLs
const (
	TTL_BANKING_DETAILS = TTL_SEMI_STATIC_QUICK // 15 minutes
)

// ================== ANALYTICS MODULE ==================

// Analytics Cache Keys
const (
	CACHE_KEY_ANALYTICS_DASHBOARD = CACHE_PREFIX + ":analytics:dashboard:admin"
)

// Analytics Cache TTLs
const (
	TTL_ANALYTICS_DASHBOARD = TTL_DYNAMIC_MEDIUM // 10 minutes
)

// ================== CACHE INVALIDATION PATTERNS ==================

// Patterns for cache invalidation (used with Redis KEYS command)
const (
	PATTERN_INVALIDATE_EVENTS_ALL = CACHE_PREFIX + ":events:*"
	PATTERN_INVALIDATE_PAYMENTS   = CACHE_PREFIX + ":payments:*"
	PATTERN_INVALIDATE_ANALYTICS  = CACHE_PREFIX + ":analytics:*"
)

// ================== HELPER FUNCTIONS ==================

func BuildEventListKey(page, limit int) string {
	return fmt.Sprintf("%s:page:%d:limit:%d", CACHE_KEY_EVENTS_LIST, page, limit)
}

func BuildEventSlugKey(slug string) string {
	return CACHE_KEY_EVENT_BY_SLUG + slug
}

package settings

// DB config keys and defaults for settings.
const (
	// SiteNameKey is the DB config key for the marketplace display name.
	SiteNameKey = "SITE_NAME"
	// DefaultSiteName is the fallback marketplace display name.
	DefaultSiteName = "CourseMarket"
	// DefaultBalanceKey holds the starting balance granted to new users.
	DefaultBalanceKey = "DEFAULT_BALANCE"
	// DefaultBalance is the fallback starting balance.
	DefaultBalance = "1000.00"
	// PurchaseRateLimitKey controls purchase attempts per user per minute.
	PurchaseRateLimitKey = "PURCHASE_RATE_LIMIT"
	// LoginRateLimitKey controls login attempts per client IP per minute.
	LoginRateLimitKey = "LOGIN_RATE_LIMIT"
	// RateLimitRedisEnabledKey toggles Redis-backed rate limiting.
	RateLimitRedisEnabledKey = "RATE_LIMIT_REDIS_ENABLED"
	// RateLimitRedisAddrKey defines the Redis address for rate limiting.
	RateLimitRedisAddrKey = "RATE_LIMIT_REDIS_ADDR"
	// RateLimitRedisPasswordKey defines the Redis password for rate limiting.
	RateLimitRedisPasswordKey = "RATE_LIMIT_REDIS_PASSWORD"
	// RateLimitRedisDBKey defines the Redis DB index for rate limiting.
	RateLimitRedisDBKey = "RATE_LIMIT_REDIS_DB"
	// RateLimitRedisPrefixKey defines the Redis key prefix for rate limiting.
	RateLimitRedisPrefixKey = "RATE_LIMIT_REDIS_PREFIX"
	// DefaultPurchaseRateLimit is the fallback purchase rate limit (0 means unlimited).
	DefaultPurchaseRateLimit = 5
	// DefaultLoginRateLimit is the fallback login rate limit (0 means unlimited).
	DefaultLoginRateLimit = 10
	// DefaultRateLimitRedisPrefix is the fallback Redis key prefix.
	DefaultRateLimitRedisPrefix = "market:rl"
)

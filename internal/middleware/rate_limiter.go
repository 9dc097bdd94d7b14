package middleware

import (
	"fmt"
	"net/http"

	"github.com/HanjuJo/nexo-v1/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	sredis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimiter limits requests per client IP. rate uses the limiter format
// "<limit>-<period>", e.g. "1000-M". Counters live in Redis when rdb is
// given so that every instance shares them, and in memory otherwise.
func RateLimiter(rate string, rdb *redis.Client) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	var store limiter.Store = memory.NewStore()
	if rdb != nil {
		store, err = sredis.NewStoreWithOptions(rdb, limiter.StoreOptions{Prefix: "nexo:ratelimit"})
		if err != nil {
			return nil, fmt.Errorf("rate limiter store: %w", err)
		}
	}

	return mgin.NewMiddleware(limiter.New(store, r),
		mgin.WithLimitReachedHandler(func(c *gin.Context) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
		}),
		mgin.WithErrorHandler(func(c *gin.Context, err error) {
			// a broken counter store must not take the API down
			log.Warn().Err(err).Str("request_id", c.GetString(RequestIDKey)).Msg("rate limiter unavailable")
			c.Next()
		}),
	), nil
}

package ratelimit

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const keyPrefix = "rate_limit:"

// Sliding window over a sorted set scored by request time in milliseconds.
var slidingWindowScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])
local member = ARGV[4]

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count >= max then
    return 0
end

redis.call('ZADD', key, now, member)
redis.call('PEXPIRE', key, window)
return 1
`)

// Redis shares the sliding window between every instance pointed at the same Redis.
type Redis struct {
	client redis.UniversalClient
	logger *zap.Logger
	opts   options
}

func NewRedis(client redis.UniversalClient, logger *zap.Logger, opts ...Option) *Redis {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger, opts: o}
}

// Allow implements Limiter. Redis failures admit the request.
func (r *Redis) Allow(ctx context.Context, clientID string) (bool, error) {
	now := r.opts.now().UnixMilli()
	allowed, err := slidingWindowScript.Run(ctx, r.client,
		[]string{keyPrefix + clientID},
		now, r.opts.window.Milliseconds(), r.opts.max, uuid.NewString(),
	).Int64()
	if err != nil {
		r.logger.Warn("rate limiter unavailable, admitting request",
			zap.String("client", clientID), zap.Error(err))
		return true, nil
	}
	return allowed == 1, nil
}

func (r *Redis) Max() int { return r.opts.max }

func (r *Redis) Window() time.Duration { return r.opts.window }

var _ Limiter = (*Redis)(nil)

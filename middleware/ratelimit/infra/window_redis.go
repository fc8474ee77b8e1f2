package infra

import (
	"context"
	"strings"
	"time"

	"izakaya/middleware/ratelimit/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Janela deslizante em um sorted set: score = instante em ms.
// ARGV: now, cutoff (now - window), window, max, membro único.
// Poda, conta e registra numa única execução para não haver corrida entre réplicas.
var windowScript = redis.NewScript(`
local key = KEYS[1]
redis.call('ZREMRANGEBYSCORE', key, '-inf', ARGV[2])
local n = redis.call('ZCARD', key)
if n >= tonumber(ARGV[4]) then
  return 0
end
redis.call('ZADD', key, ARGV[1], ARGV[5])
redis.call('PEXPIRE', key, ARGV[3])
return 1
`)

// RedisWindowStore é a janela deslizante compartilhada entre réplicas.
//
// Erros do Redis liberam a requisição (fail-open) e são logados: o limite é
// proteção de custo, não autenticação.
type RedisWindowStore struct {
	rdb    *redis.Client
	prefix string
	max    int
	window time.Duration
	now    func() time.Time
	log    zerolog.Logger
}

type RedisWindowOption func(*RedisWindowStore)

func WithRedisWindowPrefix(prefix string) RedisWindowOption {
	return func(s *RedisWindowStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithRedisWindowClock(now func() time.Time) RedisWindowOption {
	return func(s *RedisWindowStore) { s.now = now }
}

func WithRedisWindowLogger(log zerolog.Logger) RedisWindowOption {
	return func(s *RedisWindowStore) { s.log = log }
}

func NewRedisWindowStore(rdb *redis.Client, max int, window time.Duration, opts ...RedisWindowOption) *RedisWindowStore {
	s := &RedisWindowStore{
		rdb:    rdb,
		prefix: "izakaya:window",
		max:    max,
		window: window,
		now:    time.Now,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisWindowStore) Max() int               { return s.max }
func (s *RedisWindowStore) Window() time.Duration { return s.window }

// Get implementa domain.LimiterStore.
func (s *RedisWindowStore) Get(key domain.Key) domain.Limiter {
	return redisWindowLimiter{store: s, key: string(key)}
}

func (s *RedisWindowStore) allow(ctx context.Context, key string) bool {
	now := s.now().UnixMilli()
	res, err := windowScript.Run(ctx, s.rdb,
		[]string{s.prefix + ":" + key},
		now, now-s.window.Milliseconds(), s.window.Milliseconds(), s.max, uuid.NewString(),
	).Int()
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis window check failed; allowing request")
		return true
	}
	return res == 1
}

type redisWindowLimiter struct {
	store *RedisWindowStore
	key   string
}

func (l redisWindowLimiter) Allow(ctx context.Context) bool { return l.store.allow(ctx, l.key) }

package infra

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Incrementa somente se ainda houver cota; a chave é por dia, então a virada é
// implícita (o contador do dia novo começa em zero).
var quotaScript = redis.NewScript(`
local n = tonumber(redis.call('GET', KEYS[1]) or '0')
if n >= tonumber(ARGV[1]) then
  return 0
end
redis.call('INCR', KEYS[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// RedisQuotaCounter é a cota diária compartilhada entre réplicas.
type RedisQuotaCounter struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisQuotaOption func(*RedisQuotaCounter)

func WithQuotaPrefix(prefix string) RedisQuotaOption {
	return func(c *RedisQuotaCounter) { c.prefix = strings.Trim(prefix, ":") }
}

func WithQuotaTTL(d time.Duration) RedisQuotaOption {
	return func(c *RedisQuotaCounter) { c.ttl = d }
}

func NewRedisQuotaCounter(rdb *redis.Client, opts ...RedisQuotaOption) *RedisQuotaCounter {
	c := &RedisQuotaCounter{
		rdb:    rdb,
		prefix: "izakaya:quota",
		// dois dias: cobre o fuso de quem lê o contador perto da virada
		ttl: 48 * time.Hour,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisQuotaCounter) key(day string) string { return c.prefix + ":" + day }

func (c *RedisQuotaCounter) Take(ctx context.Context, day string, limit int) (bool, error) {
	res, err := quotaScript.Run(ctx, c.rdb, []string{c.key(day)}, limit, c.ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}

func (c *RedisQuotaCounter) Used(ctx context.Context, day string) (int, error) {
	n, err := c.rdb.Get(ctx, c.key(day)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

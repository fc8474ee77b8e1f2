package infra

import (
	"context"
	"strconv"
	"strings"
	"time"

	"izakaya/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// StatsReader é o lado de leitura exposto em GET /api/stats.
type StatsReader interface {
	Read(ctx context.Context) (StatsSnapshot, error)
}

// layouts dos buckets de série temporal; a chave fica prefix:<bucket>:<hora UTC>.
var bucketLayouts = map[string]string{
	"minute": "200601021504",
	"hour":   "2006010215",
}

// RedisStatsStore grava as estatísticas em hashes do Redis, compartilhadas
// entre réplicas:
//
//	prefix:total    allowed/denied
//	prefix:route    "<METHOD> <path>:allowed|denied"
//	prefix:outcome  um campo por desfecho (model, fallback, ...)
//	prefix:<bucket>:<t>  decisões e desfechos do período, expira em ttl
//	prefix:key:<k>  por cliente (trackKeys), expira em ttl
type RedisStatsStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	// bucket é "minute", "hour" ou "" (sem série temporal)
	bucket    string
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket aceita "minute" ou "hour"; qualquer outro valor desliga a
// série temporal.
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		b := strings.ToLower(strings.TrimSpace(bucket))
		if _, ok := bucketLayouts[b]; !ok {
			b = ""
		}
		s.bucket = b
	}
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "izakaya:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) key(parts ...string) string {
	return s.prefix + ":" + strings.Join(parts, ":")
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	pipe := s.rdb.Pipeline()
	field := ev.Outcome
	if field != "" {
		// desfecho de pergunta: não é decisão de rate limit
		pipe.HIncrBy(ctx, s.key("outcome"), field, 1)
	} else {
		field = "denied"
		if ev.Allowed {
			field = "allowed"
		}
		pipe.HIncrBy(ctx, s.key("total"), field, 1)
		if route := routeOf(ev); route != "" {
			pipe.HIncrBy(ctx, s.key("route"), route+":"+field, 1)
		}
		if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
			s.incrExpiring(ctx, pipe, s.key("key", k), field)
		}
	}

	if layout, ok := bucketLayouts[s.bucket]; ok {
		s.incrExpiring(ctx, pipe, s.key(s.bucket, at.UTC().Format(layout)), field)
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) incrExpiring(ctx context.Context, pipe redis.Pipeliner, key, field string) {
	pipe.HIncrBy(ctx, key, field, 1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
}

func routeOf(ev domain.StatsEvent) string {
	return strings.TrimSpace(strings.TrimSpace(ev.Method) + " " + strings.TrimSpace(ev.Path))
}

// Read monta o mesmo StatsSnapshot do store em memória a partir dos hashes
// cumulativos.
func (s *RedisStatsStore) Read(ctx context.Context) (StatsSnapshot, error) {
	pipe := s.rdb.Pipeline()
	total := pipe.HGetAll(ctx, s.key("total"))
	routes := pipe.HGetAll(ctx, s.key("route"))
	outcomes := pipe.HGetAll(ctx, s.key("outcome"))
	if _, err := pipe.Exec(ctx); err != nil {
		return StatsSnapshot{}, err
	}

	snap := StatsSnapshot{
		ByRoute:  make(map[string]Counters),
		Outcomes: make(map[string]int64),
	}
	addCounter(&snap.Total, "allowed", total.Val()["allowed"])
	addCounter(&snap.Total, "denied", total.Val()["denied"])

	for f, v := range routes.Val() {
		i := strings.LastIndexByte(f, ':')
		if i < 0 {
			continue
		}
		c := snap.ByRoute[f[:i]]
		addCounter(&c, f[i+1:], v)
		snap.ByRoute[f[:i]] = c
	}
	for f, v := range outcomes.Val() {
		n, _ := strconv.ParseInt(v, 10, 64)
		snap.Outcomes[f] = n
	}
	return snap, nil
}

func addCounter(c *Counters, field, v string) {
	n, _ := strconv.ParseInt(v, 10, 64)
	switch field {
	case "allowed":
		c.Allowed += n
	case "denied":
		c.Denied += n
	}
}

package infra

import (
	"context"
	"testing"
	"time"

	"izakaya/middleware/ratelimit/domain"
)

func TestStore_GetSameKeyReusesBucket(t *testing.T) {
	s := NewStore(0.02, 1)

	if !s.Get(domain.Key("k")).Allow(context.Background()) {
		t.Fatalf("expected first Allow to be true")
	}
	// segunda busca pela mesma chave usa o mesmo bucket, já vazio
	if s.Get(domain.Key("k")).Allow(context.Background()) {
		t.Fatalf("expected second immediate Allow to be false (burst=1)")
	}
	if !s.Get(domain.Key("other")).Allow(context.Background()) {
		t.Fatalf("expected a different key to have its own bucket")
	}
}

func TestStore_CleanupRemovesIdleEntries(t *testing.T) {
	s := NewStore(0.02, 1, WithIdleTTL(2*time.Millisecond), WithCleanupEvery(0))

	if !s.Get(domain.Key("k")).Allow(context.Background()) {
		t.Fatalf("expected first Allow to be true")
	}
	time.Sleep(4 * time.Millisecond)

	s.Cleanup()

	if !s.Get(domain.Key("k")).Allow(context.Background()) {
		t.Fatalf("expected bucket to be recreated after cleanup")
	}
}

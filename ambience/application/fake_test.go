package application

import (
	"errors"
	"sync"
	"testing"
	"time"

	"izakaya/ambience/domain"
)

type fakeTrack struct {
	mu      sync.Mutex
	uri     string
	volume  float64
	playing bool
	closed  bool
	plays   int
	pos     time.Duration
	dur     time.Duration
	playErr error
}

func (t *fakeTrack) Play() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.plays++
	if t.playErr != nil {
		return t.playErr
	}
	t.playing = true
	return nil
}

func (t *fakeTrack) Pause() {
	t.mu.Lock()
	t.playing = false
	t.mu.Unlock()
}

func (t *fakeTrack) SetVolume(v float64) {
	t.mu.Lock()
	t.volume = v
	t.mu.Unlock()
}

func (t *fakeTrack) Volume() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

func (t *fakeTrack) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pos
}

func (t *fakeTrack) Duration() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dur
}

func (t *fakeTrack) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}

func (t *fakeTrack) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTrack) playCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.plays
}

func (t *fakeTrack) isPlaying() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.playing
}

type fakePlayback struct {
	mu      sync.Mutex
	opened  []*fakeTrack
	shots   []string
	failURI string
	// prepare ajusta a trilha antes de ela ser entregue ao motor.
	prepare func(*fakeTrack)
	// hold segura a abertura (decodificação lenta), fora do lock do fake.
	hold func(uri string)
}

func (p *fakePlayback) Open(uri string) (domain.Track, error) {
	if p.hold != nil {
		p.hold(uri)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if uri == p.failURI {
		return nil, errors.New("asset not found")
	}
	t := &fakeTrack{uri: uri}
	if p.prepare != nil {
		p.prepare(t)
	}
	p.opened = append(p.opened, t)
	return t, nil
}

func (p *fakePlayback) PlayOnce(uri string, _ float64) error {
	p.mu.Lock()
	p.shots = append(p.shots, uri)
	p.mu.Unlock()
	return nil
}

func (p *fakePlayback) tracks() []*fakeTrack {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*fakeTrack(nil), p.opened...)
}

func (p *fakePlayback) shotCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.shots)
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout esperando: %s", what)
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SceneFade = 40 * time.Millisecond
	cfg.ToggleFade = 20 * time.Millisecond
	cfg.FadeSteps = 10
	cfg.LoopMaskPoll = 2 * time.Millisecond
	return cfg
}

package infra

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"izakaya/ambience/domain"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// OtoPlayback implementa domain.Playback sobre um único oto.Context.
//
// URIs no formato "/sounds/<nome>" são resolvidas dentro de root.
type OtoPlayback struct {
	ctx  *oto.Context
	root string
	log  zerolog.Logger

	mu    sync.Mutex
	cache map[string]*clip
}

// NewOtoPlayback abre o dispositivo de saída e espera ele ficar pronto.
func NewOtoPlayback(root string, log zerolog.Logger) (*OtoPlayback, error) {
	ctx, ready, err := oto.NewContext(SampleRate, ChannelCount, oto.FormatSignedInt16LE)
	if err != nil {
		return nil, fmt.Errorf("audio: open device: %w", err)
	}
	<-ready

	return &OtoPlayback{
		ctx:   ctx,
		root:  root,
		log:   log.With().Str("component", "oto").Logger(),
		cache: make(map[string]*clip),
	}, nil
}

// Preload decodifica as URIs em paralelo para que Open não pague a
// decodificação com o motor travado.
func (p *OtoPlayback) Preload(ctx context.Context, uris ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, uri := range uris {
		if uri == "" {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			_, err := p.load(uri)
			return err
		})
	}
	return g.Wait()
}

func (p *OtoPlayback) Open(uri string) (domain.Track, error) {
	c, err := p.load(uri)
	if err != nil {
		return nil, err
	}
	lr := &loopReader{pcm: c.pcm}
	player := p.ctx.NewPlayer(lr)
	player.SetVolume(0)
	return &otoTrack{player: player, reader: lr, dur: c.duration()}, nil
}

// PlayOnce toca o clip uma vez e fecha o player quando ele termina.
func (p *OtoPlayback) PlayOnce(uri string, volume float64) error {
	c, err := p.load(uri)
	if err != nil {
		return err
	}
	player := p.ctx.NewPlayer(bytes.NewReader(c.pcm))
	player.SetVolume(domain.Clamp01(volume))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			p.log.Debug().Err(err).Str("uri", uri).Msg("close one-shot failed")
		}
	}()
	return nil
}

func (p *OtoPlayback) load(uri string) (*clip, error) {
	p.mu.Lock()
	c, ok := p.cache[uri]
	p.mu.Unlock()
	if ok {
		return c, nil
	}

	file := p.resolve(uri)
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", uri, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("audio: stat %s: %w", uri, err)
	}

	start := time.Now()
	pcm, err := decode(f, info.Size(), strings.ToLower(filepath.Ext(file)))
	if err != nil {
		return nil, fmt.Errorf("audio: decode %s: %w", uri, err)
	}
	c = &clip{pcm: pcm}

	p.mu.Lock()
	p.cache[uri] = c
	p.mu.Unlock()

	p.log.Debug().Str("uri", uri).Dur("length", c.duration()).Dur("took", time.Since(start)).Msg("clip decoded")
	return c, nil
}

// resolve mapeia a URI para dentro de root; ".." não escapa de root.
func (p *OtoPlayback) resolve(uri string) string {
	clean := path.Clean("/" + uri)
	clean = strings.TrimPrefix(clean, "/sounds")
	return filepath.Join(p.root, filepath.FromSlash(clean))
}

type otoTrack struct {
	player oto.Player
	reader *loopReader
	dur    time.Duration
}

func (t *otoTrack) Play() error {
	t.player.Play()
	return t.player.Err()
}

func (t *otoTrack) Pause()                  { t.player.Pause() }
func (t *otoTrack) SetVolume(v float64)     { t.player.SetVolume(domain.Clamp01(v)) }
func (t *otoTrack) Volume() float64         { return t.player.Volume() }
func (t *otoTrack) Duration() time.Duration { return t.dur }

func (t *otoTrack) Position() time.Duration {
	return bytesToDuration(t.reader.position(t.player.UnplayedBufferSize()))
}

func (t *otoTrack) Close() error { return t.player.Close() }

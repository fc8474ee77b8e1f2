package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"izakaya/ambience/domain"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// SlotState é a visão de um slot ocupado.
type SlotState struct {
	URI    string  `json:"uri"`
	Volume float64 `json:"volume"`
	Target float64 `json:"target"`
}

type State struct {
	GloballyPlaying bool            `json:"globally_playing"`
	HasInteracted   bool            `json:"has_interacted"`
	CurrentBase     string          `json:"current_base"`
	CurrentLayer    string          `json:"current_layer"`
	Pending         *domain.Request `json:"pending,omitempty"`
	Base            *SlotState      `json:"base,omitempty"`
	Layer           *SlotState      `json:"layer,omitempty"`
	Retiring        int             `json:"retiring"`
}

type voice struct {
	slot   domain.Slot
	uri    string
	track  domain.Track
	target float64

	// level é o nível do fade; mask é o ganho da emenda do loop. O volume
	// efetivo é level*mask.
	level float64
	mask  float64

	fade     context.CancelFunc
	stopMask context.CancelFunc
}

type Engine struct {
	cfg      Config
	playback domain.Playback
	log      zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	closed bool

	playing    bool
	interacted bool
	pending    *domain.Request
	display    domain.Request

	slots [2]*voice
	// want é a URI pedida por slot (aberta ou abrindo); gen invalida aberturas
	// que terminam depois de um pedido mais novo.
	want     [2]string
	gen      [2]uint64
	retiring map[*voice]struct{}
	cues     map[string]*rate.Limiter
}

func NewEngine(playback domain.Playback, cfg Config, log zerolog.Logger) *Engine {
	cfg = cfg.sanitize()
	ctx, cancel := context.WithCancel(context.Background())
	return &Engine{
		cfg:      cfg,
		playback: playback,
		log:      log.With().Str("component", "ambience").Logger(),
		ctx:      ctx,
		cancel:   cancel,
		playing:  true,
		display:  domain.Request{Base: cfg.InitialBase},
		retiring: make(map[*voice]struct{}),
		cues:     make(map[string]*rate.Limiter),
	}
}

// SetLayers pede o par (base, layer). O estado exibido muda na hora; o áudio
// só muda depois do primeiro gesto.
func (e *Engine) SetLayers(base, layer string) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	req := domain.Request{Base: base, Layer: layer}
	e.display = req
	if !e.interacted {
		// só o último pedido sobrevive
		e.pending = &req
		e.mu.Unlock()
		e.log.Debug().Str("base", base).Str("layer", layer).Msg("waiting for first interaction")
		return
	}
	opens := e.apply(req)
	e.mu.Unlock()

	e.open(opens)
}

// Interact registra o primeiro gesto do usuário e aplica o pedido pendente.
// Retorna false nas chamadas seguintes.
func (e *Engine) Interact() bool {
	e.mu.Lock()
	if e.closed || e.interacted {
		e.mu.Unlock()
		return false
	}
	e.interacted = true
	var opens []opening
	if e.pending != nil {
		req := *e.pending
		e.pending = nil
		opens = e.apply(req)
	}
	e.mu.Unlock()

	e.open(opens)
	return true
}

// ToggleGlobalPlayback liga/desliga o som. As trilhas continuam nos slots;
// religar retoma as mesmas instâncias. O retorno é o estado pedido, mesmo que
// o backend recuse tocar.
func (e *Engine) ToggleGlobalPlayback() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return e.playing
	}

	e.playing = !e.playing
	for _, v := range e.slots {
		if v == nil {
			continue
		}
		if e.playing {
			e.play(v)
			e.startFade(v, v.target, e.cfg.ToggleFade, nil)
		} else {
			e.startFade(v, 0, e.cfg.ToggleFade, nil)
		}
	}
	return e.playing
}

// Pause força o estado desligado com fade-out (saída de cena, teardown).
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.playing = false
	for _, v := range e.slots {
		if v != nil {
			e.startFade(v, 0, e.cfg.ToggleFade, nil)
		}
	}
}

// PlayOneShot toca um efeito curto sem fade e sem esperar o primeiro gesto.
// Disparos repetidos do mesmo efeito dentro de CueMinGap são descartados.
func (e *Engine) PlayOneShot(uri string, volume float64) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	if e.cfg.CueMinGap > 0 {
		lim, ok := e.cues[uri]
		if !ok {
			lim = rate.NewLimiter(rate.Every(e.cfg.CueMinGap), 1)
			e.cues[uri] = lim
		}
		if !lim.Allow() {
			e.mu.Unlock()
			return
		}
	}
	e.mu.Unlock()

	if err := e.playback.PlayOnce(uri, domain.Clamp01(volume)); err != nil {
		e.log.Warn().Err(err).Str("uri", uri).Msg("one-shot failed")
	}
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := State{
		GloballyPlaying: e.playing,
		HasInteracted:   e.interacted,
		CurrentBase:     e.display.Base,
		CurrentLayer:    e.display.Layer,
		Base:            slotState(e.slots[domain.SlotBase]),
		Layer:           slotState(e.slots[domain.SlotLayer]),
		Retiring:        len(e.retiring),
	}
	if e.pending != nil {
		p := *e.pending
		st.Pending = &p
	}
	return st
}

func slotState(v *voice) *SlotState {
	if v == nil {
		return nil
	}
	return &SlotState{URI: v.uri, Volume: v.track.Volume(), Target: v.target}
}

// Close cancela todos os fades e fecha todas as instâncias.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.cancel()

	var tracks []domain.Track
	for i, v := range e.slots {
		if v != nil {
			tracks = append(tracks, v.track)
			e.slots[i] = nil
		}
	}
	for v := range e.retiring {
		tracks = append(tracks, v.track)
		delete(e.retiring, v)
	}
	e.mu.Unlock()

	e.wg.Wait()

	var errs []error
	for _, t := range tracks {
		t.Pause()
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type opening struct {
	slot domain.Slot
	uri  string
	gen  uint64
}

// apply roda com e.mu travado. Devolve as trilhas a abrir fora do lock.
func (e *Engine) apply(req domain.Request) []opening {
	var opens []opening
	if o, ok := e.applySlot(domain.SlotBase, req.Base); ok {
		opens = append(opens, o)
	}
	if o, ok := e.applySlot(domain.SlotLayer, req.Layer); ok {
		opens = append(opens, o)
	}
	return opens
}

func (e *Engine) applySlot(slot domain.Slot, uri string) (opening, bool) {
	if e.want[slot] == uri {
		return opening{}, false
	}
	e.want[slot] = uri
	e.gen[slot]++

	if cur := e.slots[slot]; cur != nil {
		e.slots[slot] = nil
		e.retire(cur)
	}
	if uri == "" {
		return opening{}, false
	}
	return opening{slot: slot, uri: uri, gen: e.gen[slot]}, true
}

// open abre as trilhas sem e.mu: decodificar pode demorar e os fades em
// andamento não esperam por isso.
func (e *Engine) open(opens []opening) {
	for _, o := range opens {
		track, err := e.playback.Open(o.uri)

		e.mu.Lock()
		e.install(o, track, err)
		e.mu.Unlock()
	}
}

// install roda com e.mu travado. Aberturas vencidas (motor fechado ou pedido
// mais novo no slot) fecham a trilha e saem.
func (e *Engine) install(o opening, track domain.Track, err error) {
	stale := e.closed || e.gen[o.slot] != o.gen
	if err != nil {
		if !stale {
			e.want[o.slot] = ""
		}
		e.log.Warn().Err(err).Str("slot", o.slot.String()).Str("uri", o.uri).Msg("open track failed")
		return
	}
	if stale {
		if err := track.Close(); err != nil {
			e.log.Debug().Err(err).Str("uri", o.uri).Msg("close stale track failed")
		}
		return
	}
	track.SetVolume(0)

	v := &voice{
		slot:   o.slot,
		uri:    o.uri,
		track:  track,
		target: e.cfg.Volumes.Target(o.slot, o.uri),
		mask:   1,
	}
	e.slots[o.slot] = v
	e.log.Debug().Str("slot", o.slot.String()).Str("uri", o.uri).Float64("target", v.target).Msg("track opened")

	if e.masked(o.uri) {
		e.startMask(v)
	}
	if e.playing {
		e.play(v)
		e.startFade(v, v.target, e.cfg.SceneFade, nil)
	}
}

// retire tira a instância do slot: fade até 0 e fecha.
func (e *Engine) retire(v *voice) {
	if v.stopMask != nil {
		v.stopMask()
		v.stopMask = nil
	}
	e.retiring[v] = struct{}{}
	e.startFade(v, 0, e.cfg.SceneFade, func() {
		delete(e.retiring, v)
		if err := v.track.Close(); err != nil {
			e.log.Debug().Err(err).Str("uri", v.uri).Msg("close track failed")
		}
	})
}

func (e *Engine) play(v *voice) {
	if err := v.track.Play(); err != nil {
		e.log.Warn().Err(err).Str("uri", v.uri).Msg("playback rejected")
	}
}

func (e *Engine) applyVolume(v *voice) {
	v.track.SetVolume(domain.Clamp01(v.level * v.mask))
}

// startFade substitui o fade da instância por um novo, de level até to, em
// FadeSteps passos lineares. Roda com e.mu travado; done também é chamado com
// e.mu travado, só se o fade chegar ao fim.
func (e *Engine) startFade(v *voice, to float64, d time.Duration, done func()) {
	if v.fade != nil {
		v.fade()
	}
	ctx, cancel := context.WithCancel(e.ctx)
	v.fade = cancel

	from := v.level
	to = domain.Clamp01(to)
	steps := e.cfg.FadeSteps
	interval := d / time.Duration(steps)
	if interval <= 0 {
		interval = time.Millisecond
	}

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for i := 1; i <= steps; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			e.mu.Lock()
			// cancelado enquanto esperava o lock
			if ctx.Err() != nil {
				e.mu.Unlock()
				return
			}
			if i == steps {
				v.level = to
			} else {
				v.level = domain.Clamp01(from + (to-from)*float64(i)/float64(steps))
			}
			e.applyVolume(v)
			if i == steps {
				if to == 0 {
					v.track.Pause()
				}
				v.fade = nil
				if done != nil {
					done()
				}
			}
			e.mu.Unlock()
		}
	}()
}

func (e *Engine) masked(uri string) bool {
	p := e.cfg.LoopMaskPattern
	return p != "" && strings.Contains(strings.ToLower(uri), strings.ToLower(p))
}

// startMask consulta a posição da trilha periodicamente e atenua o volume
// perto da emenda do loop.
func (e *Engine) startMask(v *voice) {
	ctx, cancel := context.WithCancel(e.ctx)
	v.stopMask = cancel
	window := e.cfg.LoopMaskWindow

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		defer cancel()

		ticker := time.NewTicker(e.cfg.LoopMaskPoll)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			gain := loopMaskGain(v.track.Position(), v.track.Duration(), window)

			e.mu.Lock()
			if ctx.Err() != nil {
				e.mu.Unlock()
				return
			}
			if gain != v.mask {
				v.mask = gain
				e.applyVolume(v)
			}
			e.mu.Unlock()
		}
	}()
}

// loopMaskGain é 0 na emenda e sobe linearmente até 1 ao se afastar dela por
// window, tanto no começo quanto no fim do loop. Sem duração conhecida é 1.
func loopMaskGain(pos, dur, window time.Duration) float64 {
	if dur <= 0 || window <= 0 {
		return 1
	}
	gain := 1.0
	if pos < window {
		gain = float64(pos) / float64(window)
	}
	if rem := dur - pos; rem < window {
		gain = min(gain, float64(rem)/float64(window))
	}
	return domain.Clamp01(gain)
}

package domain

import "time"

// Slot identifica uma das duas trilhas simultâneas do motor.
type Slot int

const (
	SlotBase Slot = iota
	SlotLayer
)

func (s Slot) String() string {
	if s == SlotLayer {
		return "layer"
	}
	return "base"
}

// Track é uma instância em loop aberta pelo backend de áudio.
//
// Volume fica em [0,1]. Position/Duration podem ser zero quando o backend não
// conhece a duração (a máscara de emenda fica desligada nesse caso).
type Track interface {
	Play() error
	Pause()
	SetVolume(v float64)
	Volume() float64
	Position() time.Duration
	Duration() time.Duration
	Close() error
}

// Playback abre trilhas e toca efeitos curtos.
type Playback interface {
	Open(uri string) (Track, error)
	PlayOnce(uri string, volume float64) error
}

// Request é o par (base, layer) pedido pela UI. Layer vazio limpa a camada.
type Request struct {
	Base  string
	Layer string
}

package application

import (
	"time"

	"izakaya/ambience/domain"
)

type Config struct {
	SceneFade  time.Duration
	ToggleFade time.Duration
	FadeSteps  int

	// LoopMaskPattern marca as trilhas com emenda audível no loop. Vazio desliga.
	LoopMaskPattern string
	LoopMaskWindow  time.Duration
	LoopMaskPoll    time.Duration

	// CueMinGap é o intervalo mínimo entre dois disparos do mesmo efeito curto.
	CueMinGap time.Duration

	Volumes     domain.VolumeTable
	InitialBase string
}

func DefaultConfig() Config {
	return Config{
		SceneFade:       2 * time.Second,
		ToggleFade:      1 * time.Second,
		FadeSteps:       50,
		LoopMaskPattern: "cyberpunk",
		LoopMaskWindow:  2 * time.Second,
		LoopMaskPoll:    100 * time.Millisecond,
		CueMinGap:       40 * time.Millisecond,
		Volumes:         domain.DefaultVolumeTable(),
		InitialBase:     "/sounds/RainHeavyOnPlantsG_BT051501_2.wav",
	}
}

// sanitize devolve valores padrão no lugar dos inválidos.
func (c Config) sanitize() Config {
	d := DefaultConfig()
	if c.SceneFade <= 0 {
		c.SceneFade = d.SceneFade
	}
	if c.ToggleFade <= 0 {
		c.ToggleFade = d.ToggleFade
	}
	if c.FadeSteps <= 0 {
		c.FadeSteps = d.FadeSteps
	}
	if c.LoopMaskWindow <= 0 {
		c.LoopMaskWindow = d.LoopMaskWindow
	}
	if c.LoopMaskPoll <= 0 {
		c.LoopMaskPoll = d.LoopMaskPoll
	}
	if c.CueMinGap < 0 {
		c.CueMinGap = 0
	}
	return c
}

package ambience

import (
	"fmt"

	"izakaya/ambience/application"

	"github.com/rs/zerolog"
)

// Mixer é o que o Director usa do motor. Implementado por *application.Engine.
type Mixer interface {
	SetLayers(base, layer string)
	Interact() bool
	ToggleGlobalPlayback() bool
	Pause()
	PlayOneShot(uri string, volume float64)
	State() application.State
}

var _ Mixer = (*application.Engine)(nil)

type Director struct {
	mixer   Mixer
	catalog Catalog
	log     zerolog.Logger
}

func NewDirector(mixer Mixer, catalog Catalog, log zerolog.Logger) *Director {
	return &Director{
		mixer:   mixer,
		catalog: catalog,
		log:     log.With().Str("component", "director").Logger(),
	}
}

func (d *Director) Catalog() Catalog { return d.catalog }

func (d *Director) EnterScene(name string) error {
	s, ok := d.catalog.Scenes[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScene, name)
	}
	d.log.Info().Str("scene", name).Msg("entering scene")
	d.mixer.SetLayers(s.Base, s.Layer)
	return nil
}

func (d *Director) Cue(name string) error {
	c, ok := d.catalog.Cues[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCue, name)
	}
	d.mixer.PlayOneShot(c.URI, c.Volume)
	return nil
}

func (d *Director) Interact() bool           { return d.mixer.Interact() }
func (d *Director) Toggle() bool             { return d.mixer.ToggleGlobalPlayback() }
func (d *Director) Leave()                   { d.mixer.Pause() }
func (d *Director) State() application.State { return d.mixer.State() }

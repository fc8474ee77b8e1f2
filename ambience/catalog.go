// Package ambience liga as cenas da casa ao motor de áudio: o catálogo (YAML)
// diz qual par base/layer toca em cada cena e quais efeitos curtos existem; o
// Director traduz nomes de cena e de efeito em chamadas ao Engine.
package ambience

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"izakaya/ambience/application"
	"izakaya/ambience/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	ErrUnknownScene = errors.New("ambience: unknown scene")
	ErrUnknownCue   = errors.New("ambience: unknown cue")
)

type Scene struct {
	Base  string `yaml:"base"`
	Layer string `yaml:"layer"`
}

type Cue struct {
	URI    string  `yaml:"uri"`
	Volume float64 `yaml:"volume"`
}

type Catalog struct {
	InitialBase string             `yaml:"initial_base"`
	Scenes      map[string]Scene   `yaml:"scenes"`
	Cues        map[string]Cue     `yaml:"cues"`
	Volumes     domain.VolumeTable `yaml:"volumes"`
}

// DefaultCatalog é o catálogo embutido no binário.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic("ambience: embedded catalog: " + err.Error())
	}
	return c
}

// LoadCatalog lê o catálogo de path; path vazio usa o embutido.
func LoadCatalog(path string) (Catalog, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("ambience: read catalog: %w", err)
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("ambience: parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) Validate() error {
	if len(c.Scenes) == 0 {
		return errors.New("ambience: catalog has no scenes")
	}
	for name, s := range c.Scenes {
		if s.Base == "" {
			return fmt.Errorf("ambience: scene %q has no base track", name)
		}
	}
	for name, cue := range c.Cues {
		if cue.URI == "" {
			return fmt.Errorf("ambience: cue %q has no uri", name)
		}
		if cue.Volume < 0 || cue.Volume > 1 {
			return fmt.Errorf("ambience: cue %q volume %.2f outside [0,1]", name, cue.Volume)
		}
	}
	for _, r := range append(append([]domain.VolumeRule{}, c.Volumes.Base...), c.Volumes.Layer...) {
		if r.Volume < 0 || r.Volume > 1 {
			return fmt.Errorf("ambience: volume rule %q %.2f outside [0,1]", r.Match, r.Volume)
		}
	}
	return nil
}

// EngineConfig aplica a tabela de volumes e a base inicial do catálogo.
func (c Catalog) EngineConfig(cfg application.Config) application.Config {
	if len(c.Volumes.Base) > 0 || len(c.Volumes.Layer) > 0 {
		cfg.Volumes = c.Volumes
	}
	if c.InitialBase != "" {
		cfg.InitialBase = c.InitialBase
	}
	return cfg
}

func (c Catalog) SceneNames() []string {
	names := make([]string, 0, len(c.Scenes))
	for n := range c.Scenes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func (c Catalog) CueNames() []string {
	names := make([]string, 0, len(c.Cues))
	for n := range c.Cues {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// URIs lista, sem repetição, todo arquivo citado pelo catálogo.
func (c Catalog) URIs() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(u string) {
		if u != "" && !seen[u] {
			seen[u] = true
			out = append(out, u)
		}
	}
	for _, n := range c.SceneNames() {
		add(c.Scenes[n].Base)
		add(c.Scenes[n].Layer)
	}
	for _, n := range c.CueNames() {
		add(c.Cues[n].URI)
	}
	return out
}

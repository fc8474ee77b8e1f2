package domain

import "strings"

// VolumeRule associa um trecho da URI a um volume alvo.
type VolumeRule struct {
	Match  string  `yaml:"match"`
	Volume float64 `yaml:"volume"`
}

// VolumeTable resolve o volume alvo de uma trilha. A primeira regra cujo Match
// aparece na URI (sem diferenciar maiúsculas) vence.
type VolumeTable struct {
	Base         []VolumeRule `yaml:"base"`
	Layer        []VolumeRule `yaml:"layer"`
	BaseDefault  float64      `yaml:"base_default"`
	LayerDefault float64      `yaml:"layer_default"`
}

func DefaultVolumeTable() VolumeTable {
	return VolumeTable{
		Base: []VolumeRule{
			{Match: "RainHeavyOnPlantsG", Volume: 0.6},
			{Match: "cyberpunk", Volume: 0.15},
		},
		Layer: []VolumeRule{
			{Match: "Restaurant_Ambience", Volume: 0.3},
			{Match: "restaurant", Volume: 0.3},
			{Match: "cooking", Volume: 0.5},
			{Match: "RainHeavyOnPlantsG", Volume: 0.7},
		},
		BaseDefault:  0.4,
		LayerDefault: 0.3,
	}
}

func (t VolumeTable) Target(slot Slot, uri string) float64 {
	rules, def := t.Base, t.BaseDefault
	if slot == SlotLayer {
		rules, def = t.Layer, t.LayerDefault
	}
	lower := strings.ToLower(uri)
	for _, r := range rules {
		if r.Match != "" && strings.Contains(lower, strings.ToLower(r.Match)) {
			return Clamp01(r.Volume)
		}
	}
	return Clamp01(def)
}

func Clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

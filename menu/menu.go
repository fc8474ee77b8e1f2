// Package menu guarda os pratos da casa e escolhe um ao acaso para cada
// resposta.
package menu

import (
	"errors"
	"math/rand/v2"
)

var ErrEmptyMenu = errors.New("menu: no dishes")

// Attributes vão de 1 a 5.
type Attributes struct {
	Taste       int `json:"taste"`
	Temperature int `json:"temperature"`
	Rarity      int `json:"rarity"`
}

type Dish struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Origin      string     `json:"type"`
	VideoPath   string     `json:"videoPath"`
	Description string     `json:"description"`
	Attributes  Attributes `json:"attributes"`
}

var Dishes = []Dish{
	{
		ID:          "crimson-coil",
		Name:        "Crimson Coil Drink",
		Origin:      "Hydra Moon Planet",
		VideoPath:   "/videos/pinkdrink.mp4",
		Description: "💥 A red glowing drink with soft tentacles inside, chilled from deep space. It's strong, a bit bitter, and cool.",
		Attributes:  Attributes{Taste: 2, Temperature: 3, Rarity: 1},
	},
	{
		ID:          "blue-tangler",
		Name:        "Blue Tangler Juice",
		Origin:      "Gas Giant Planet",
		VideoPath:   "/videos/bluedrink.mp4",
		Description: "🧊 A bright blue drink with a floating space octopus. Cold, fizzy, with a strange sweet-bitter twist.",
		Attributes:  Attributes{Taste: 3, Temperature: 4, Rarity: 2},
	},
	{
		ID:          "frosted-aurora",
		Name:        "Frosted Aurora Cauldron",
		Origin:      "Triton Mist Planet",
		VideoPath:   "/videos/blueplate.mp4",
		Description: "❄️ A glowing, icy mist swirling in a black dish, like a frozen portal to another world. Airy taste that feels like catching snowflakes on your tongue.",
		Attributes:  Attributes{Taste: 1, Temperature: 1, Rarity: 5},
	},
	{
		ID:          "emberstorm",
		Name:        "Emberstorm Skillet",
		Origin:      "Oblivion Reef Planet",
		VideoPath:   "/videos/food.mp4",
		Description: "🔥 Spicy, bold, and tangy, every bite sparks heat and delivers a warmth that hits you straight in the soul.",
		Attributes:  Attributes{Taste: 2, Temperature: 5, Rarity: 3},
	},
}

// Picker sorteia pratos de forma uniforme.
type Picker struct {
	Dishes []Dish
	// Pick escolhe um índice em [0, n). Padrão: math/rand/v2.
	Pick func(n int) int
}

func NewPicker() Picker { return Picker{Dishes: Dishes} }

func (p Picker) Random() (Dish, error) {
	if len(p.Dishes) == 0 {
		return Dish{}, ErrEmptyMenu
	}
	pick := p.Pick
	if pick == nil {
		pick = rand.IntN
	}
	return p.Dishes[pick(len(p.Dishes))], nil
}

func (p Picker) ByID(id string) (Dish, bool) {
	for _, d := range p.Dishes {
		if d.ID == id {
			return d, true
		}
	}
	return Dish{}, false
}

package physics

import (
	"errors"
	"fmt"
)

// ErrUnknownPlanet возвращается при выборе несуществующей планеты
var ErrUnknownPlanet = errors.New("unknown planet")

// DefaultPlanetKey ключ планеты по умолчанию
const DefaultPlanetKey = "earth"

// Planet параметры окружения. Значения неизменяемы
type Planet struct {
	Key         string  `json:"key"`
	DisplayName string  `json:"name"`
	Gravity     float64 `json:"gravity"`     // м/с², отрицательное значение направлено вниз
	AirDensity  float64 `json:"air_density"` // относительная плотность воздуха, 0 = вакуум
}

var planets = []Planet{
	{Key: "earth", DisplayName: "Bumi", Gravity: -9.8, AirDensity: 1},
	{Key: "moon", DisplayName: "Bulan", Gravity: -1.6, AirDensity: 0},
	{Key: "mars", DisplayName: "Mars", Gravity: -3.7, AirDensity: 0.02},
}

// Planets возвращает фиксированный набор планет в стабильном порядке
func Planets() []Planet {
	out := make([]Planet, len(planets))
	copy(out, planets)
	return out
}

// LookupPlanet ищет планету по ключу
func LookupPlanet(key string) (Planet, error) {
	for _, p := range planets {
		if p.Key == key {
			return p, nil
		}
	}
	return Planet{}, fmt.Errorf("%w: %q", ErrUnknownPlanet, key)
}

// DefaultPlanet возвращает Землю
func DefaultPlanet() Planet {
	return planets[0]
}

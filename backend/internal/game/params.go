package game

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"penalty-kick/backend/internal/physics"
)

var (
	ErrInvalidParameter = errors.New("invalid parameter value")
	ErrUnknownParameter = errors.New("unknown parameter")
)

// Имена параметров управления
const (
	ParamSpeed     = "speed"
	ParamSpin      = "spin"
	ParamWindSpeed = "windSpeed"
	ParamWindDir   = "windDir"
	ParamTargetX   = "targetX"
	ParamTargetY   = "targetY"
)

// Parameters текущие значения органов управления
type Parameters struct {
	Speed     float64 `json:"speed" mapstructure:"speed"`
	Spin      float64 `json:"spin" mapstructure:"spin"`
	WindSpeed float64 `json:"wind_speed" mapstructure:"wind_speed"`
	WindDir   float64 `json:"wind_dir" mapstructure:"wind_dir"`
	TargetX   float64 `json:"target_x" mapstructure:"target_x"`
	TargetY   float64 `json:"target_y" mapstructure:"target_y"`
	Planet    string  `json:"planet" mapstructure:"planet"`
}

// DefaultParameters значения при старте
func DefaultParameters() Parameters {
	return Parameters{
		Speed:     25,
		Spin:      0,
		WindSpeed: 0,
		WindDir:   0,
		TargetX:   0,
		TargetY:   2,
		Planet:    physics.DefaultPlanetKey,
	}
}

// Wind вектор ветра для текущих параметров
func (p Parameters) Wind() mgl64.Vec3 {
	return physics.WindVector(p.WindSpeed, p.WindDir)
}

// Target точка прицеливания на плоскости ворот
func (p Parameters) Target(goalZ float64) mgl64.Vec3 {
	return mgl64.Vec3{p.TargetX, p.TargetY, goalZ}
}

// ParameterProvider источник входных параметров. Физика читает его сама (pull)
type ParameterProvider interface {
	Parameters() Parameters
}

// ParameterSetter принимает сырые значения с границы системы
type ParameterSetter interface {
	Set(name, raw string) error
	SetPlanet(key string) error
}

type paramRange struct {
	min, max float64
}

var paramRanges = map[string]paramRange{
	ParamSpeed:     {5, 60},
	ParamSpin:      {-20, 20},
	ParamWindSpeed: {0, 20},
	ParamWindDir:   {0, 360},
	ParamTargetX:   {-7, 7},
	ParamTargetY:   {0, 5},
}

// Controls хранит параметры и проверяет ввод.
// Вызывается только из игрового цикла, блокировки не нужны.
type Controls struct {
	values   Parameters
	defaults Parameters
}

// NewControls создает органы управления с начальными значениями
func NewControls(defaults Parameters) *Controls {
	if _, err := physics.LookupPlanet(defaults.Planet); err != nil {
		defaults.Planet = physics.DefaultPlanetKey
	}
	for name, r := range paramRanges {
		v := field(&defaults, name)
		*v = clampValue(*v, r, *field(ptrTo(DefaultParameters()), name))
	}
	return &Controls{values: defaults, defaults: defaults}
}

// Parameters снимок текущих значений
func (c *Controls) Parameters() Parameters {
	return c.values
}

// Set разбирает текстовое значение. Нечисловое значение заменяется значением
// по умолчанию и возвращает ErrInvalidParameter, выход за диапазон обрезается.
func (c *Controls) Set(name, raw string) error {
	r, ok := paramRanges[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}

	dst := field(&c.values, name)
	def := *field(&c.defaults, name)

	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		*dst = def
		return fmt.Errorf("%w: %s=%q", ErrInvalidParameter, name, raw)
	}

	*dst = clampValue(v, r, def)
	return nil
}

// SetPlanet выбирает планету по ключу
func (c *Controls) SetPlanet(key string) error {
	p, err := physics.LookupPlanet(key)
	if err != nil {
		return err
	}
	c.values.Planet = p.Key
	return nil
}

func clampValue(v float64, r paramRange, def float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return def
	}
	return mgl64.Clamp(v, r.min, r.max)
}

func ptrTo(p Parameters) *Parameters {
	return &p
}

func field(p *Parameters, name string) *float64 {
	switch name {
	case ParamSpeed:
		return &p.Speed
	case ParamSpin:
		return &p.Spin
	case ParamWindSpeed:
		return &p.WindSpeed
	case ParamWindDir:
		return &p.WindDir
	case ParamTargetX:
		return &p.TargetX
	case ParamTargetY:
		return &p.TargetY
	}
	return nil
}

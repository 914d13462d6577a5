package physics

import (
	"errors"
	"fmt"
)

const (
	// BallRadius радиус мяча
	BallRadius = 0.35
	// BallMass масса мяча (регламентный мяч)
	BallMass = 0.45
	// GoalZ глубина линии ворот
	GoalZ = -30.0
)

// ErrInvalidConfig возвращается при некорректной настройке физики
var ErrInvalidConfig = errors.New("invalid physics config")

// Config содержит настройки физики удара
type Config struct {
	// BallRadius - радиус мяча, он же высота центра мяча на земле
	BallRadius float64 `mapstructure:"ball_radius"`

	// Mass - масса мяча
	Mass float64 `mapstructure:"mass"`

	// BaseAirDensity - плотность воздуха при коэффициенте планеты 1
	BaseAirDensity float64 `mapstructure:"base_air_density"`

	// WindCoefficient - множитель силы ветра
	WindCoefficient float64 `mapstructure:"wind_coefficient"`

	// LateralSpin - постоянная x-компонента угловой скорости при ударе
	LateralSpin float64 `mapstructure:"lateral_spin"`

	// HardBounceSpeed - вертикальная скорость, ниже которой касание земли считается отскоком
	HardBounceSpeed float64 `mapstructure:"hard_bounce_speed"`

	// Restitution - коэффициент восстановления при отскоке
	Restitution float64 `mapstructure:"restitution"`

	// ImpactDamping - гашение горизонтальной скорости при отскоке
	ImpactDamping float64 `mapstructure:"impact_damping"`

	// StopSpeed - горизонтальная скорость, ниже которой мяч останавливается
	StopSpeed float64 `mapstructure:"stop_speed"`

	// LiveFriction - трение качения для живого мяча
	LiveFriction float64 `mapstructure:"live_friction"`

	// PredictFriction - трение качения в предсказателе траектории
	PredictFriction float64 `mapstructure:"predict_friction"`

	// PredictStep - фиксированный шаг предсказателя, секунды
	PredictStep float64 `mapstructure:"predict_step"`

	// PredictSamples - максимум точек предсказанной траектории
	PredictSamples int `mapstructure:"predict_samples"`

	// TrailCap - максимум точек следа мяча
	TrailCap int `mapstructure:"trail_cap"`

	// GoalZ - глубина линии ворот
	GoalZ float64 `mapstructure:"goal_z"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() Config {
	return Config{
		BallRadius:      BallRadius,
		Mass:            BallMass,
		BaseAirDensity:  0.002,
		WindCoefficient: 0.05,
		LateralSpin:     10,
		HardBounceSpeed: 0.6,
		Restitution:     0.6,
		ImpactDamping:   0.9,
		StopSpeed:       0.1,
		LiveFriction:    0.35,
		PredictFriction: 2.5,
		PredictStep:     0.05,
		PredictSamples:  50,
		TrailCap:        200,
		GoalZ:           GoalZ,
	}
}

// Validate проверяет конфигурацию
func (c Config) Validate() error {
	switch {
	case c.Mass <= 0:
		return fmt.Errorf("%w: mass must be positive, got %v", ErrInvalidConfig, c.Mass)
	case c.BallRadius <= 0:
		return fmt.Errorf("%w: ball radius must be positive, got %v", ErrInvalidConfig, c.BallRadius)
	case c.PredictStep <= 0:
		return fmt.Errorf("%w: predict step must be positive, got %v", ErrInvalidConfig, c.PredictStep)
	case c.PredictSamples <= 0:
		return fmt.Errorf("%w: predict samples must be positive, got %d", ErrInvalidConfig, c.PredictSamples)
	case c.TrailCap <= 0:
		return fmt.Errorf("%w: trail cap must be positive, got %d", ErrInvalidConfig, c.TrailCap)
	}
	return nil
}

// ForceModel собирает из конфигурации модель сил
func (c Config) ForceModel() ForceModel {
	return ForceModel{
		Mass:            c.Mass,
		BaseAirDensity:  c.BaseAirDensity,
		WindCoefficient: c.WindCoefficient,
	}
}

// LiveGround правила касания земли для живого мяча
func (c Config) LiveGround() GroundModel {
	return c.ground(c.LiveFriction)
}

// PredictorConfig настройки предсказателя траектории
func (c Config) PredictorConfig() PredictorConfig {
	return PredictorConfig{
		Step:    c.PredictStep,
		Samples: c.PredictSamples,
		Ground:  c.ground(c.PredictFriction),
	}
}

func (c Config) ground(friction float64) GroundModel {
	return GroundModel{
		Radius:          c.BallRadius,
		HardBounceSpeed: c.HardBounceSpeed,
		Restitution:     c.Restitution,
		ImpactDamping:   c.ImpactDamping,
		Friction:        friction,
		StopSpeed:       c.StopSpeed,
	}
}

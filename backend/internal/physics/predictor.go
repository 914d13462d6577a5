package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateShot точка старта совпадает с целью, направление не определено
var ErrDegenerateShot = errors.New("degenerate shot: start equals target")

// Launch параметры удара
type Launch struct {
	Start  mgl64.Vec3
	Speed  float64
	Spin   float64
	Target mgl64.Vec3
}

// Direction единичный вектор от старта к цели
func (l Launch) Direction() (mgl64.Vec3, error) {
	d := l.Target.Sub(l.Start)
	if d.Len() == 0 {
		return mgl64.Vec3{}, ErrDegenerateShot
	}
	return d.Normalize(), nil
}

// Velocity начальная скорость
func (l Launch) Velocity() (mgl64.Vec3, error) {
	dir, err := l.Direction()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return dir.Mul(l.Speed), nil
}

// AngularVelocity начальная угловая скорость: постоянная боковая компонента и -spin по y
func (l Launch) AngularVelocity(lateral float64) mgl64.Vec3 {
	return mgl64.Vec3{lateral, -l.Spin, 0}
}

// PredictorConfig настройки предсказателя
type PredictorConfig struct {
	Step    float64
	Samples int
	Ground  GroundModel
}

// Stats сводка для панели статистики
type Stats struct {
	Planet        string  `json:"planet"`
	InitialSpeed  float64 `json:"initial_speed"`
	SpinY         float64 `json:"spin_y"`
	WindSpeed     float64 `json:"wind_speed"`
	InitialMagnus float64 `json:"initial_magnus"`
}

// Prediction предсказанная траектория
type Prediction struct {
	Points []mgl64.Vec3
	Stats  Stats
}

// Predictor прогоняет ту же модель сил и тот же шаг, что и живой мяч,
// на независимой копии состояния
type Predictor struct {
	Model       ForceModel
	Config      PredictorConfig
	LateralSpin float64
}

// NewPredictor создает предсказатель из настроек физики
func NewPredictor(cfg Config) Predictor {
	return Predictor{
		Model:       cfg.ForceModel(),
		Config:      cfg.PredictorConfig(),
		LateralSpin: cfg.LateralSpin,
	}
}

// Predict строит траекторию. Детерминирован: одинаковые входы дают одинаковые точки.
// Касание земли обрабатывается как в полете, с жестким отскоком: в браузерной игре
// предсказание всегда обнуляло вертикальную скорость и мяч не отскакивал.
func (p Predictor) Predict(launch Launch, env Environment) (Prediction, error) {
	vel, err := launch.Velocity()
	if err != nil {
		return Prediction{}, err
	}

	k := Kinematics{
		Position:        launch.Start,
		Velocity:        vel,
		AngularVelocity: launch.AngularVelocity(p.LateralSpin),
	}

	stats := Stats{
		Planet:        env.Planet.DisplayName,
		InitialSpeed:  vel.Len(),
		SpinY:         k.AngularVelocity[1],
		WindSpeed:     env.Wind.Len(),
		InitialMagnus: p.Model.MagnusMagnitude(k.Velocity, k.AngularVelocity, env),
	}

	points := make([]mgl64.Vec3, 0, p.Config.Samples)
	for i := 0; i < p.Config.Samples; i++ {
		points = append(points, k.Position)

		step := Advance(p.Model, k, env, p.Config.Step, p.Config.Ground)
		k.Velocity = step.Velocity
		k.Position = step.Next

		if step.Stopped || k.Position[1] <= 0 {
			break
		}
	}

	return Prediction{Points: points, Stats: stats}, nil
}

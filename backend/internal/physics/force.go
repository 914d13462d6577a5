package physics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidMass возвращается для неположительной массы
var ErrInvalidMass = errors.New("mass must be positive")

// ForceModel считает силы, действующие на мяч в полете.
// Методы не имеют побочных эффектов и безопасны для параллельного вызова.
type ForceModel struct {
	Mass            float64
	BaseAirDensity  float64
	WindCoefficient float64
}

// ForceBreakdown силы по отдельности
type ForceBreakdown struct {
	Gravity mgl64.Vec3
	Magnus  mgl64.Vec3
	Wind    mgl64.Vec3
}

// Net сумма сил
func (f ForceBreakdown) Net() mgl64.Vec3 {
	return f.Gravity.Add(f.Magnus).Add(f.Wind)
}

// Environment окружение, в котором летит мяч
type Environment struct {
	Planet Planet
	Wind   mgl64.Vec3
}

// NewForceModel создает модель сил с проверкой массы
func NewForceModel(mass, baseAirDensity, windCoefficient float64) (ForceModel, error) {
	if mass <= 0 || math.IsNaN(mass) {
		return ForceModel{}, ErrInvalidMass
	}
	return ForceModel{Mass: mass, BaseAirDensity: baseAirDensity, WindCoefficient: windCoefficient}, nil
}

// Forces раскладывает силы на гравитацию, эффект Магнуса и ветер
func (m ForceModel) Forces(velocity, angularVelocity mgl64.Vec3, env Environment) ForceBreakdown {
	return ForceBreakdown{
		Gravity: mgl64.Vec3{0, env.Planet.Gravity * m.Mass, 0},
		Magnus:  angularVelocity.Cross(velocity).Mul(m.BaseAirDensity * env.Planet.AirDensity),
		Wind:    env.Wind.Mul(m.WindCoefficient * env.Planet.AirDensity),
	}
}

// Acceleration итоговое ускорение мяча
func (m ForceModel) Acceleration(velocity, angularVelocity mgl64.Vec3, env Environment) mgl64.Vec3 {
	net := m.Forces(velocity, angularVelocity, env).Net()
	return mgl64.Vec3{net[0] / m.Mass, net[1] / m.Mass, net[2] / m.Mass}
}

// MagnusMagnitude модуль силы Магнуса для статистики
func (m ForceModel) MagnusMagnitude(velocity, angularVelocity mgl64.Vec3, env Environment) float64 {
	return m.Forces(velocity, angularVelocity, env).Magnus.Len()
}

// WindVector строит вектор ветра. Направление 0° дует в сторону ворот (-z)
func WindVector(speed, dirDeg float64) mgl64.Vec3 {
	rad := mgl64.DegToRad(dirDeg)
	return mgl64.Vec3{math.Sin(rad), 0, -math.Cos(rad)}.Mul(speed)
}

package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BallState состояние мяча
type BallState struct {
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
	Orientation     mgl64.Quat
	IsFlying        bool
	IsRoundEnded    bool
}

// RestingBall мяч, лежащий в точке start
func RestingBall(start mgl64.Vec3) BallState {
	return BallState{
		Position:    start,
		Orientation: mgl64.QuatIdent(),
	}
}

// GroundModel правила касания земли
type GroundModel struct {
	Radius          float64 // высота центра мяча на земле
	HardBounceSpeed float64 // порог вертикальной скорости для отскока
	Restitution     float64 // доля вертикальной скорости после отскока
	ImpactDamping   float64 // гашение горизонтальной скорости при отскоке
	Friction        float64 // коэффициент трения качения
	StopSpeed       float64 // скорость остановки
}

// Kinematics минимальное состояние для шага интегрирования
type Kinematics struct {
	Position        mgl64.Vec3
	Velocity        mgl64.Vec3
	AngularVelocity mgl64.Vec3
}

// StepResult результат одного шага. Позиция не фиксируется: столкновения
// проверяются по Next до того, как вызывающий код примет ее.
type StepResult struct {
	Velocity mgl64.Vec3
	Next     mgl64.Vec3
	Grounded bool
	Bounced  bool
	Stopped  bool
}

// Advance выполняет один шаг полуявного Эйлера с учетом земли.
// Общая функция для живого мяча и предсказателя.
func Advance(model ForceModel, k Kinematics, env Environment, dt float64, ground GroundModel) StepResult {
	acc := model.Acceleration(k.Velocity, k.AngularVelocity, env)
	vel := k.Velocity.Add(acc.Mul(dt))
	next := k.Position.Add(vel.Mul(dt))

	res := StepResult{}
	if next[1] <= ground.Radius {
		next[1] = ground.Radius
		res.Grounded = true

		if vel[1] < -ground.HardBounceSpeed {
			vel[1] *= -ground.Restitution
			vel[0] *= ground.ImpactDamping
			vel[2] *= ground.ImpactDamping
			res.Bounced = true
		} else {
			vel[1] = 0
			friction := 1 - ground.Friction*dt
			vel[0] *= friction
			vel[2] *= friction

			if HorizontalSpeed(vel) < ground.StopSpeed {
				vel = mgl64.Vec3{}
				res.Stopped = true
			}
		}
	}

	res.Velocity = vel
	res.Next = next
	return res
}

// HorizontalSpeed модуль скорости в плоскости xz
func HorizontalSpeed(v mgl64.Vec3) float64 {
	return math.Hypot(v[0], v[2])
}

// Spin поворачивает мяч как катящийся без проскальзывания: v = rω.
// Ось вращения перпендикулярна горизонтальной скорости.
func Spin(orientation mgl64.Quat, velocity mgl64.Vec3, radius, dt float64) mgl64.Quat {
	speed := velocity.Len()
	if speed <= 0 {
		return orientation
	}

	axis := mgl64.Vec3{0, 1, 0}.Cross(mgl64.Vec3{velocity[0], 0, velocity[2]})
	if axis.Len() == 0 {
		// чисто вертикальное движение: горизонтальной оси нет
		return orientation
	}

	angle := speed / radius * dt
	return orientation.Mul(mgl64.QuatRotate(angle, axis.Normalize()))
}

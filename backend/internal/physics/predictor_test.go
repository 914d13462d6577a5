package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func centerLaunch(speed, spin, tx, ty float64) Launch {
	return Launch{
		Start:  mgl64.Vec3{0, BallRadius, 25},
		Speed:  speed,
		Spin:   spin,
		Target: mgl64.Vec3{tx, ty, GoalZ},
	}
}

func TestPredict_Deterministic(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	env := Environment{Planet: DefaultPlanet(), Wind: WindVector(7, 33)}
	launch := centerLaunch(28, 12, -3, 2.5)

	first, err := p.Predict(launch, env)
	require.NoError(t, err)
	second, err := p.Predict(launch, env)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPredict_Degenerate(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	same := mgl64.Vec3{0, 2, GoalZ}

	_, err := p.Predict(Launch{Start: same, Target: same, Speed: 20}, Environment{Planet: DefaultPlanet()})
	assert.ErrorIs(t, err, ErrDegenerateShot)
}

func TestPredict_SampleCap(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPredictor(cfg)

	pred, err := p.Predict(centerLaunch(30, 0, 0, 4), Environment{Planet: mustPlanet(t, "moon")})
	require.NoError(t, err)

	require.Len(t, pred.Points, cfg.PredictSamples)
	assert.Equal(t, mgl64.Vec3{0, BallRadius, 25}, pred.Points[0], "первая точка - старт")
	for _, pt := range pred.Points {
		assert.GreaterOrEqual(t, pt[1], cfg.BallRadius)
	}
}

func TestPredict_GroundShotStopsEarly(t *testing.T) {
	cfg := DefaultConfig()
	p := NewPredictor(cfg)

	pred, err := p.Predict(centerLaunch(5, 0, 0, BallRadius), Environment{Planet: DefaultPlanet()})
	require.NoError(t, err)

	assert.Less(t, len(pred.Points), cfg.PredictSamples)
	for _, pt := range pred.Points {
		assert.Equal(t, 0.0, pt[0], "без спина нет бокового увода")
		assert.GreaterOrEqual(t, pt[1], cfg.BallRadius)
	}
}

func TestPredict_Stats(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	env := Environment{Planet: DefaultPlanet(), Wind: WindVector(5, 90)}
	launch := centerLaunch(20, 8, 0, 2)

	pred, err := p.Predict(launch, env)
	require.NoError(t, err)

	vel, err := launch.Velocity()
	require.NoError(t, err)
	magnus := mgl64.Vec3{10, -8, 0}.Cross(vel).Mul(0.002).Len()

	assert.Equal(t, "Bumi", pred.Stats.Planet)
	assert.InDelta(t, 20, pred.Stats.InitialSpeed, 1e-9)
	assert.Equal(t, -8.0, pred.Stats.SpinY)
	assert.InDelta(t, 5, pred.Stats.WindSpeed, 1e-9)
	assert.InDelta(t, magnus, pred.Stats.InitialMagnus, 1e-12)
}

func TestPredict_SpinCurvesOnlyWithAir(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	launch := centerLaunch(25, 15, 0, 3)

	onEarth, err := p.Predict(launch, Environment{Planet: DefaultPlanet()})
	require.NoError(t, err)
	onMoon, err := p.Predict(launch, Environment{Planet: mustPlanet(t, "moon")})
	require.NoError(t, err)

	lastEarth := onEarth.Points[len(onEarth.Points)-1]
	assert.NotEqual(t, 0.0, lastEarth[0], "на Земле спин уводит мяч вбок")
	for _, pt := range onMoon.Points {
		assert.Equal(t, 0.0, pt[0], "в вакууме траектория прямая")
	}
}

func TestPredict_HardBounceLeavesGround(t *testing.T) {
	p := NewPredictor(DefaultConfig())
	launch := Launch{
		Start:  mgl64.Vec3{0, 10, 25},
		Speed:  20,
		Target: mgl64.Vec3{0, BallRadius, 15},
	}

	pred, err := p.Predict(launch, Environment{Planet: DefaultPlanet()})
	require.NoError(t, err)

	contact := -1
	for i, pt := range pred.Points {
		if pt[1] <= BallRadius+1e-9 {
			contact = i
			break
		}
	}
	require.GreaterOrEqual(t, contact, 0, "мяч должен коснуться земли")

	peak := 0.0
	for _, pt := range pred.Points[contact:] {
		peak = max(peak, pt[1])
	}
	assert.Greater(t, peak, BallRadius+1, "после жесткого касания мяч отскакивает")
}

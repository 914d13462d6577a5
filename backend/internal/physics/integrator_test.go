package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func earthEnv() Environment {
	return Environment{Planet: DefaultPlanet()}
}

func TestAdvance_FreeFlight(t *testing.T) {
	cfg := DefaultConfig()
	model := cfg.ForceModel()
	k := Kinematics{Position: mgl64.Vec3{0, 5, 0}, Velocity: mgl64.Vec3{0, 0, -10}}

	res := Advance(model, k, earthEnv(), 0.1, cfg.LiveGround())

	// скорость обновляется раньше позиции
	assert.InDelta(t, -0.98, res.Velocity[1], 1e-12)
	assert.InDelta(t, 5-0.098, res.Next[1], 1e-12)
	assert.InDelta(t, -1, res.Next[2], 1e-12)
	assert.False(t, res.Grounded)
	assert.False(t, res.Stopped)
}

func TestAdvance_HardBounce(t *testing.T) {
	cfg := DefaultConfig()
	k := Kinematics{Position: mgl64.Vec3{0, 0.4, 0}, Velocity: mgl64.Vec3{2, -5, -4}}

	res := Advance(cfg.ForceModel(), k, Environment{Planet: mustPlanet(t, "moon")}, 0.1, cfg.LiveGround())

	require.True(t, res.Grounded)
	require.True(t, res.Bounced)
	assert.Equal(t, cfg.BallRadius, res.Next[1])
	assert.InDelta(t, (-5-0.16)*-0.6, res.Velocity[1], 1e-12)
	assert.InDelta(t, 2*0.9, res.Velocity[0], 1e-12)
	assert.InDelta(t, -4*0.9, res.Velocity[2], 1e-12)
}

func TestAdvance_RollingFriction(t *testing.T) {
	cfg := DefaultConfig()
	k := Kinematics{Position: mgl64.Vec3{0, cfg.BallRadius, 0}, Velocity: mgl64.Vec3{3, 0, -4}}
	dt := 1.0 / 60

	res := Advance(cfg.ForceModel(), k, Environment{Planet: mustPlanet(t, "moon")}, dt, cfg.LiveGround())

	require.True(t, res.Grounded)
	assert.False(t, res.Bounced)
	assert.Equal(t, 0.0, res.Velocity[1])
	f := 1 - cfg.LiveFriction*dt
	assert.InDelta(t, 3*f, res.Velocity[0], 1e-12)
	assert.InDelta(t, -4*f, res.Velocity[2], 1e-12)
}

func TestAdvance_StopsBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	k := Kinematics{Position: mgl64.Vec3{0, cfg.BallRadius, 0}, Velocity: mgl64.Vec3{0.05, 0, 0.05}}

	res := Advance(cfg.ForceModel(), k, earthEnv(), 1.0/60, cfg.LiveGround())

	assert.True(t, res.Stopped)
	assert.Equal(t, mgl64.Vec3{}, res.Velocity)
}

func TestAdvance_GroundInvariant(t *testing.T) {
	cfg := DefaultConfig()
	model := cfg.ForceModel()
	rng := rand.New(rand.NewSource(7))

	for shot := 0; shot < 200; shot++ {
		p := Planets()[rng.Intn(3)]
		env := Environment{Planet: p, Wind: WindVector(rng.Float64()*20, rng.Float64()*360)}
		k := Kinematics{
			Position:        mgl64.Vec3{rng.Float64()*30 - 15, cfg.BallRadius + rng.Float64()*5, 25},
			Velocity:        mgl64.Vec3{rng.Float64()*20 - 10, rng.Float64()*30 - 10, -rng.Float64() * 60},
			AngularVelocity: mgl64.Vec3{10, rng.Float64()*40 - 20, 0},
		}
		dt := 0.005 + rng.Float64()*0.05

		for i := 0; i < 600; i++ {
			res := Advance(model, k, env, dt, cfg.LiveGround())
			require.GreaterOrEqual(t, res.Next[1], cfg.BallRadius, "shot %d step %d", shot, i)
			k.Position, k.Velocity = res.Next, res.Velocity
			if res.Stopped {
				break
			}
		}
	}
}

func TestSpin(t *testing.T) {
	q := mgl64.QuatIdent()

	t.Run("покой", func(t *testing.T) {
		assert.Equal(t, q, Spin(q, mgl64.Vec3{}, BallRadius, 0.1))
	})

	t.Run("вертикальное движение", func(t *testing.T) {
		assert.Equal(t, q, Spin(q, mgl64.Vec3{0, -3, 0}, BallRadius, 0.1))
	})

	t.Run("качение вперед", func(t *testing.T) {
		v := mgl64.Vec3{0, 0, -BallRadius * 10}
		got := Spin(q, v, BallRadius, 0.1)

		// ось = (0,1,0)×(0,0,-1) = (-1,0,0), угол = v/r*dt = 1 рад
		want := mgl64.QuatRotate(1, mgl64.Vec3{-1, 0, 0})
		assert.True(t, got.ApproxEqualThreshold(want, 1e-12), "got %v want %v", got, want)
		assert.InDelta(t, 1, got.Len(), 1e-12)
	})
}

func TestTrail_Cap(t *testing.T) {
	trail := NewTrail(200)
	for i := 0; i < 250; i++ {
		trail.Push(mgl64.Vec3{float64(i), 0, 0})
	}

	require.Equal(t, 200, trail.Len())
	points := trail.Points()
	assert.Equal(t, 50.0, points[0][0])
	assert.Equal(t, 249.0, points[199][0])
	assert.Len(t, FlattenPoints(trail.Points()), 600)

	trail.Clear()
	assert.Equal(t, 0, trail.Len())
	assert.Empty(t, FlattenPoints(trail.Points()))
}

func mustPlanet(t *testing.T, key string) Planet {
	t.Helper()
	p, err := LookupPlanet(key)
	require.NoError(t, err)
	return p
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	cfg := DefaultConfig()
	cfg.Mass = 0
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

	cfg = DefaultConfig()
	cfg.PredictStep = math.Inf(-1)
	assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
}

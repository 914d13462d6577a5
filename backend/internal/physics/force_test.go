package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForces_VacuumHasNoMagnusOrWind(t *testing.T) {
	moon, err := LookupPlanet("moon")
	require.NoError(t, err)

	model := DefaultConfig().ForceModel()
	velocities := []mgl64.Vec3{{0, 0, 0}, {3, 4, -20}, {-50, 12, 7}, {1e4, -1e4, 1e4}}
	spins := []mgl64.Vec3{{10, 0, 0}, {10, -15, 0}, {-3, 99, 42}}
	winds := []mgl64.Vec3{{}, WindVector(20, 45), WindVector(5, 270)}

	for _, v := range velocities {
		for _, w := range spins {
			for _, wind := range winds {
				f := model.Forces(v, w, Environment{Planet: moon, Wind: wind})
				assert.Equal(t, mgl64.Vec3{}, f.Magnus, "магнус в вакууме: v=%v w=%v", v, w)
				assert.Equal(t, mgl64.Vec3{}, f.Wind, "ветер в вакууме: wind=%v", wind)

				acc := model.Acceleration(v, w, Environment{Planet: moon, Wind: wind})
				assert.InDelta(t, 0, acc[0], 1e-12)
				assert.InDelta(t, moon.Gravity, acc[1], 1e-12)
				assert.InDelta(t, 0, acc[2], 1e-12)
			}
		}
	}
}

func TestForces_NoSingularities(t *testing.T) {
	model := DefaultConfig().ForceModel()
	for _, p := range Planets() {
		for _, v := range []mgl64.Vec3{{}, {0, 0, -1e-300}, {1e6, 1e6, 1e6}} {
			acc := model.Acceleration(v, mgl64.Vec3{10, -20, 0}, Environment{Planet: p, Wind: WindVector(10, 30)})
			for i := 0; i < 3; i++ {
				assert.False(t, math.IsNaN(acc[i]) || math.IsInf(acc[i], 0), "planet=%s v=%v acc=%v", p.Key, v, acc)
			}
		}
	}
}

func TestForces_MagnusWithZeroSpinInput(t *testing.T) {
	// при spin=0 остается боковая компонента (10,0,0): подъем без бокового увода
	earth := DefaultPlanet()
	model := DefaultConfig().ForceModel()
	v := mgl64.Vec3{0, 2, -20}

	f := model.Forces(v, mgl64.Vec3{10, 0, 0}, Environment{Planet: earth})

	assert.Equal(t, 0.0, f.Magnus[0])
	assert.InDelta(t, -10*-20*0.002, f.Magnus[1], 1e-12)
	assert.InDelta(t, 10*2*0.002, f.Magnus[2], 1e-12)
	assert.InDelta(t, -9.8*0.45, f.Gravity[1], 1e-12)
}

func TestForces_WindScalesWithDensity(t *testing.T) {
	mars, err := LookupPlanet("mars")
	require.NoError(t, err)

	model := DefaultConfig().ForceModel()
	wind := WindVector(10, 0)
	f := model.Forces(mgl64.Vec3{}, mgl64.Vec3{}, Environment{Planet: mars, Wind: wind})

	assert.InDelta(t, -10*0.05*0.02, f.Wind[2], 1e-12)
}

func TestWindVector(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		dir   float64
		want  mgl64.Vec3
	}{
		{"к воротам", 1, 0, mgl64.Vec3{0, 0, -1}},
		{"вправо", 2, 90, mgl64.Vec3{2, 0, 0}},
		{"от ворот", 3, 180, mgl64.Vec3{0, 0, 3}},
		{"штиль", 0, 123, mgl64.Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WindVector(tt.speed, tt.dir)
			assert.True(t, got.ApproxEqualThreshold(tt.want, 1e-9), "got %v want %v", got, tt.want)
		})
	}
}

func TestNewForceModel(t *testing.T) {
	_, err := NewForceModel(0, 0.002, 0.05)
	assert.True(t, errors.Is(err, ErrInvalidMass))

	_, err = NewForceModel(math.NaN(), 0.002, 0.05)
	assert.ErrorIs(t, err, ErrInvalidMass)

	m, err := NewForceModel(0.45, 0.002, 0.05)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().ForceModel(), m)
}

func TestLookupPlanet(t *testing.T) {
	p, err := LookupPlanet("mars")
	require.NoError(t, err)
	assert.Equal(t, -3.7, p.Gravity)
	assert.Equal(t, "Mars", p.DisplayName)

	_, err = LookupPlanet("pluto")
	assert.ErrorIs(t, err, ErrUnknownPlanet)

	list := Planets()
	require.Len(t, list, 3)
	assert.Equal(t, []string{"earth", "moon", "mars"}, []string{list[0].Key, list[1].Key, list[2].Key})

	// копия не влияет на набор планет
	list[0].Gravity = 0
	assert.Equal(t, -9.8, DefaultPlanet().Gravity)
}

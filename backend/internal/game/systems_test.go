package game

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"penalty-kick/backend/internal/physics"
)

// MockBroadcaster для тестирования
type MockBroadcaster struct {
	Frames      []Frame
	Predictions []physics.Prediction
	Visible     []bool
}

func (mb *MockBroadcaster) BroadcastFrame(frame Frame) error {
	mb.Frames = append(mb.Frames, frame)
	return nil
}

func (mb *MockBroadcaster) BroadcastPrediction(pred physics.Prediction, visible bool) error {
	mb.Predictions = append(mb.Predictions, pred)
	mb.Visible = append(mb.Visible, visible)
	return nil
}

type collectingObserver struct {
	events []Event
}

func (c *collectingObserver) Observe(e Event) {
	c.events = append(c.events, e)
}

func TestSimulationSystem_Update(t *testing.T) {
	s, _ := newTestSession(t)
	sys := NewSimulationSystem(s)
	require.NoError(t, s.Shoot())

	start := s.Ball().Position
	require.NoError(t, sys.Update(time.Second/60))

	assert.NotEqual(t, start, s.Ball().Position)
	assert.Equal(t, uint64(1), s.Tick())
	assert.Equal(t, "SimulationSystem", sys.GetName())
}

func TestTelemetrySystem_FansOutEvents(t *testing.T) {
	s, _ := newTestSession(t)
	a, b := &collectingObserver{}, &collectingObserver{}
	sys := NewTelemetrySystem(s, a, b)

	require.NoError(t, s.Shoot())
	require.NoError(t, sys.Update(time.Millisecond))

	require.NotEmpty(t, a.events)
	assert.Equal(t, a.events, b.events)
	assert.Equal(t, EventShot, a.events[len(a.events)-1].Kind)
	assert.Empty(t, s.DrainEvents())
}

func TestNetworkSyncSystem(t *testing.T) {
	s, _ := newTestSession(t)
	mb := &MockBroadcaster{}
	sys := NewNetworkSyncSystem(s, mb, time.Hour, zerolog.Nop())

	require.NoError(t, sys.Update(time.Millisecond))
	require.Len(t, mb.Frames, 1)
	require.Len(t, mb.Predictions, 1)
	assert.True(t, mb.Visible[0])

	// интервал не прошел, предсказание не менялось
	require.NoError(t, sys.Update(time.Millisecond))
	assert.Len(t, mb.Frames, 1)
	assert.Len(t, mb.Predictions, 1)

	s.SetAimAssist(false)
	require.NoError(t, sys.Update(time.Millisecond))
	require.Len(t, mb.Predictions, 2)
	assert.False(t, mb.Visible[1])
}

func TestGameMetricsSystem(t *testing.T) {
	s, _ := newTestSession(t)
	gt := NewGameTicker(60, zerolog.Nop())
	sys := NewGameMetricsSystem(gt, s, time.Nanosecond, zerolog.Nop())

	time.Sleep(time.Millisecond)
	assert.NoError(t, sys.Update(time.Millisecond))
	assert.Equal(t, 200, sys.GetPriority())
}

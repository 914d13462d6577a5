package game

import "github.com/go-gl/mathgl/mgl64"

// EventKind тип игрового события
type EventKind string

const (
	EventShot       EventKind = "shot"
	EventPostHit    EventKind = "post_hit"
	EventBlocked    EventKind = "blocked"
	EventGoal       EventKind = "goal"
	EventStopped    EventKind = "stopped"
	EventReset      EventKind = "reset"
	EventPrediction EventKind = "prediction"
)

// Terminal завершает ли событие раунд
func (k EventKind) Terminal() bool {
	return k == EventBlocked || k == EventGoal
}

// Event событие раунда. Копируется наблюдателям, не изменяется после создания
type Event struct {
	Kind     EventKind
	Tick     uint64
	Planet   string
	Collider string
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Speed    float64
	Spin     float64
}

// EventObserver получает события из игрового цикла
type EventObserver interface {
	Observe(Event)
}

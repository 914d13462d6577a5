package physics

import "github.com/go-gl/mathgl/mgl64"

// Trail след мяча с ограниченной длиной, старые точки вытесняются первыми
type Trail struct {
	points []mgl64.Vec3
	limit  int
}

// NewTrail создает след вместимостью capacity точек
func NewTrail(capacity int) *Trail {
	if capacity <= 0 {
		capacity = DefaultConfig().TrailCap
	}
	return &Trail{
		points: make([]mgl64.Vec3, 0, capacity),
		limit:  capacity,
	}
}

// Push добавляет точку
func (t *Trail) Push(p mgl64.Vec3) {
	t.points = append(t.points, p)
	if len(t.points) > t.limit {
		t.points = t.points[len(t.points)-t.limit:]
	}
}

// Clear очищает след
func (t *Trail) Clear() {
	t.points = t.points[:0]
}

// Len количество точек
func (t *Trail) Len() int {
	return len(t.points)
}

// Points копия точек от старых к новым
func (t *Trail) Points() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(t.points))
	copy(out, t.points)
	return out
}

// FlattenPoints переводит точки в проводной вид x,y,z,x,y,z...
func FlattenPoints(points []mgl64.Vec3) []float64 {
	out := make([]float64, 0, len(points)*3)
	for _, p := range points {
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

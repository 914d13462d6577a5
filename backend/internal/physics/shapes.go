package physics

import "github.com/go-gl/mathgl/mgl64"

// AABB ориентированный по осям параллелепипед
type AABB struct {
	Min mgl64.Vec3 `json:"min"`
	Max mgl64.Vec3 `json:"max"`
}

// Sphere сфера столкновения мяча
type Sphere struct {
	Center mgl64.Vec3
	Radius float64
}

// NewAABB строит бокс по двум углам
func NewAABB(min, max mgl64.Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// AABBFromCenter строит бокс по центру и полуразмерам
func AABBFromCenter(center, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// ContainsPoint проверяет попадание точки, границы включительно
func (b AABB) ContainsPoint(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// ClampPoint ближайшая к p точка бокса
func (b AABB) ClampPoint(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{
		mgl64.Clamp(p[0], b.Min[0], b.Max[0]),
		mgl64.Clamp(p[1], b.Min[1], b.Max[1]),
		mgl64.Clamp(p[2], b.Min[2], b.Max[2]),
	}
}

// IntersectsSphere пересечение со сферой, касание считается пересечением
func (b AABB) IntersectsSphere(s Sphere) bool {
	d := b.ClampPoint(s.Center).Sub(s.Center)
	return d.Dot(d) <= s.Radius*s.Radius
}

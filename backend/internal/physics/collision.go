package physics

import "github.com/go-gl/mathgl/mgl64"

// ContactKind тип столкновения
type ContactKind string

const (
	ContactPost   ContactKind = "post_hit"
	ContactKeeper ContactKind = "blocked"
	ContactGoal   ContactKind = "goal"
)

// Terminal завершает ли столкновение раунд
func (k ContactKind) Terminal() bool {
	return k == ContactKeeper || k == ContactGoal
}

// Contact одно столкновение за шаг
type Contact struct {
	Kind     ContactKind
	Collider string
}

// Collider статичный элемент ворот
type Collider struct {
	Name string
	Box  AABB
}

// Goal геометрия ворот
type Goal struct {
	Z         float64
	Colliders []Collider // стойки и перекладина, порядок проверки важен
	Mouth     AABB       // область за линией ворот
}

// хитбокс вратаря: x ±1, y от ступней до +4, z ±0.5
const (
	keeperHalfWidth = 1.0
	keeperHeight    = 4.0
	keeperHalfDepth = 0.5
)

// NewGoal строит ворота с линией на глубине goalZ
func NewGoal(goalZ float64) Goal {
	back := goalZ - 4
	return Goal{
		Z: goalZ,
		Colliders: []Collider{
			{Name: "left_post", Box: NewAABB(mgl64.Vec3{-7.2, 0, back}, mgl64.Vec3{-7, 5, goalZ})},
			{Name: "right_post", Box: NewAABB(mgl64.Vec3{7, 0, back}, mgl64.Vec3{7.2, 5, goalZ})},
			{Name: "crossbar", Box: NewAABB(mgl64.Vec3{-6.5, 4.6, back}, mgl64.Vec3{6, 4.8, goalZ})},
		},
		Mouth: NewAABB(mgl64.Vec3{-6.5, 0, back}, mgl64.Vec3{6.5, 4, goalZ - 2.5}),
	}
}

// KeeperHitbox бокс вратаря, center - точка между ступнями
func KeeperHitbox(center mgl64.Vec3) AABB {
	half := mgl64.Vec3{keeperHalfWidth, keeperHeight / 2, keeperHalfDepth}
	return AABBFromCenter(center.Add(mgl64.Vec3{0, half[1], 0}), half)
}

// Resolve проверяет предполагаемую позицию мяча против всех коллайдеров.
// Проверки идут в фиксированном порядке и не исключают друг друга:
// изменения скорости накапливаются в пределах шага.
func (g Goal) Resolve(next mgl64.Vec3, radius float64, velocity mgl64.Vec3, keeper AABB) ([]Contact, mgl64.Vec3) {
	ball := Sphere{Center: next, Radius: radius}
	var contacts []Contact

	for _, c := range g.Colliders {
		if c.Box.IntersectsSphere(ball) {
			velocity[2] *= -0.5
			velocity[0] *= 0.5
			contacts = append(contacts, Contact{Kind: ContactPost, Collider: c.Name})
		}
	}

	if keeper.IntersectsSphere(ball) {
		velocity[2] *= -0.5
		velocity[1] *= 0.8
		contacts = append(contacts, Contact{Kind: ContactKeeper, Collider: "keeper"})
	}

	if g.Mouth.ContainsPoint(next) {
		contacts = append(contacts, Contact{Kind: ContactGoal, Collider: "goal_mouth"})
	}

	return contacts, velocity
}

package game

import (
	"github.com/go-gl/mathgl/mgl64"

	"penalty-kick/backend/internal/physics"
)

// Keeper вратарь патрулирует линию ворот по x
type Keeper struct {
	X     float64
	Dir   float64
	Speed float64
	Limit float64
	Y     float64
	Z     float64
}

// KeeperConfig настройки вратаря
type KeeperConfig struct {
	Speed float64 `mapstructure:"speed"`
	Limit float64 `mapstructure:"limit"`
	// Offset расстояние от линии ворот в сторону поля
	Offset float64 `mapstructure:"offset"`
}

// DefaultKeeperConfig настройки по умолчанию
func DefaultKeeperConfig() KeeperConfig {
	return KeeperConfig{Speed: 4, Limit: 5.5, Offset: 1.5}
}

// NewKeeper ставит вратаря в центр ворот, первый шаг вправо
func NewKeeper(cfg KeeperConfig, goalZ float64) Keeper {
	return Keeper{
		Dir:   1,
		Speed: cfg.Speed,
		Limit: cfg.Limit,
		Z:     goalZ + cfg.Offset,
	}
}

// Update сдвигает вратаря и разворачивает у края
func (k *Keeper) Update(dt float64) {
	k.X += k.Speed * k.Dir * dt
	if k.X > k.Limit {
		k.X = k.Limit
		k.Dir = -1
	} else if k.X < -k.Limit {
		k.X = -k.Limit
		k.Dir = 1
	}
}

// Position точка между ступнями
func (k Keeper) Position() mgl64.Vec3 {
	return mgl64.Vec3{k.X, k.Y, k.Z}
}

// Hitbox текущий бокс столкновения
func (k Keeper) Hitbox() physics.AABB {
	return physics.KeeperHitbox(k.Position())
}

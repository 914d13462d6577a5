package telemetry

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/game"
)

// DefaultMaxEntries сколько последних событий хранит менеджер
const DefaultMaxEntries = 200

// Vector3 структура для 3D вектора
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// EventRecord запись о событии раунда
type EventRecord struct {
	Timestamp int64   `json:"timestamp"`          // Время в миллисекундах
	Tick      uint64  `json:"tick"`               // Тик игрового цикла
	Kind      string  `json:"kind"`               // Тип события
	Planet    string  `json:"planet"`             // Ключ планеты
	Collider  string  `json:"collider,omitempty"` // Штанга, перекладина, вратарь
	Position  Vector3 `json:"position"`           // Позиция мяча
	Velocity  Vector3 `json:"velocity"`           // Скорость мяча
	Speed     float64 `json:"speed"`              // Скорость удара
	Spin      float64 `json:"spin"`               // Подкрутка удара
}

// Summary сводка телеметрии
type Summary struct {
	Total    int            `json:"total"`
	Counters map[string]int `json:"counters"`
	Recent   []EventRecord  `json:"recent"`
}

// Manager управляет сбором телеметрии событий
type Manager struct {
	enabled    bool
	data       []EventRecord
	mutex      sync.RWMutex
	maxEntries int
	logger     zerolog.Logger

	// Счетчики с момента запуска или последней очистки
	counters map[string]int
	total    int
}

// NewManager создает новый менеджер телеметрии
func NewManager(maxEntries int, logger zerolog.Logger) *Manager {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Manager{
		enabled:    true,
		data:       make([]EventRecord, 0, maxEntries),
		maxEntries: maxEntries,
		logger:     logger.With().Str("component", "telemetry").Logger(),
		counters:   make(map[string]int),
	}
}

// Observe записывает событие
func (tm *Manager) Observe(event game.Event) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	if !tm.enabled {
		return
	}

	tm.data = append(tm.data, EventRecord{
		Timestamp: time.Now().UnixMilli(),
		Tick:      event.Tick,
		Kind:      string(event.Kind),
		Planet:    event.Planet,
		Collider:  event.Collider,
		Position:  Vector3{X: event.Position[0], Y: event.Position[1], Z: event.Position[2]},
		Velocity:  Vector3{X: event.Velocity[0], Y: event.Velocity[1], Z: event.Velocity[2]},
		Speed:     event.Speed,
		Spin:      event.Spin,
	})

	// Ограничиваем размер буфера
	if len(tm.data) > tm.maxEntries {
		tm.data = tm.data[len(tm.data)-tm.maxEntries:]
	}

	tm.counters[string(event.Kind)]++
	tm.total++

	if event.Kind.Terminal() || event.Kind == game.EventPostHit {
		tm.logger.Info().
			Str("kind", string(event.Kind)).
			Str("planet", event.Planet).
			Str("collider", event.Collider).
			Uint64("tick", event.Tick).
			Msg("Исход удара")
	}
}

// Summary возвращает копию сводки
func (tm *Manager) Summary() Summary {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	counters := make(map[string]int, len(tm.counters))
	for k, v := range tm.counters {
		counters[k] = v
	}
	recent := make([]EventRecord, len(tm.data))
	copy(recent, tm.data)

	return Summary{
		Total:    tm.total,
		Counters: counters,
		Recent:   recent,
	}
}

// LogSummary выводит сводку телеметрии в лог
func (tm *Manager) LogSummary() {
	summary := tm.Summary()
	dict := zerolog.Dict()
	for kind, count := range summary.Counters {
		dict = dict.Int(kind, count)
	}
	tm.logger.Info().
		Int("total", summary.Total).
		Int("buffered", len(summary.Recent)).
		Dict("counters", dict).
		Msg("Сводка телеметрии")
}

// GetTelemetryJSON возвращает телеметрию в JSON формате
func (tm *Manager) GetTelemetryJSON() (string, error) {
	jsonData, err := json.MarshalIndent(tm.Summary(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

// SetEnabled включает/выключает телеметрию
func (tm *Manager) SetEnabled(enabled bool) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.enabled = enabled
	tm.logger.Info().Bool("enabled", enabled).Msg("Телеметрия переключена")
}

// Clear очищает все данные телеметрии
func (tm *Manager) Clear() {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	tm.data = make([]EventRecord, 0, tm.maxEntries)
	tm.counters = make(map[string]int)
	tm.total = 0
	tm.logger.Debug().Msg("Данные телеметрии очищены")
}

var _ game.EventObserver = (*Manager)(nil)

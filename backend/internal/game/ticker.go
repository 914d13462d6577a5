package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrTickerRunning тикер уже запущен
var ErrTickerRunning = errors.New("game ticker is already running")

// DefaultTPS частота симуляции по умолчанию, один шаг на кадр анимации
const DefaultTPS = 60

// TickSystem интерфейс для всех игровых систем
type TickSystem interface {
	Update(deltaTime time.Duration) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// GameTicker основной менеджер игрового цикла
type GameTicker struct {
	// Конфигурация
	targetTPS    int           // Целевая частота тиков в секунду
	tickDuration time.Duration // Длительность одного тика
	maxTickTime  time.Duration // Максимальное время на один тик, он же предел dt

	// Состояние
	mu           sync.RWMutex
	isRunning    bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time

	// Системы
	systems      []TickSystem
	systemsMutex sync.RWMutex

	// Мониторинг производительности
	perfMonitor *PerformanceMonitor

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	skippedTicks    uint64

	logger           zerolog.Logger
	warningThreshold time.Duration
}

// PerformanceMonitor отслеживает производительность каждой системы
type PerformanceMonitor struct {
	systemMetrics map[string]*SystemMetrics
	mutex         sync.RWMutex

	// Настройки мониторинга
	metricsWindow     int           // Количество последних тиков для усреднения
	warningThreshold  time.Duration // Порог предупреждения для системы
	criticalThreshold time.Duration // Критический порог
}

// SystemMetrics метрики производительности системы
type SystemMetrics struct {
	Name              string
	LastExecutionTime time.Duration
	AverageTime       time.Duration
	MaxTime           time.Duration
	TotalExecutions   uint64
	Errors            uint64

	// Скользящее окно для вычисления среднего
	recentTimes  []time.Duration
	recentIndex  int
	windowFilled bool
}

// NewGameTicker создает новый игровой тикер
func NewGameTicker(targetTPS int, logger zerolog.Logger) *GameTicker {
	if targetTPS <= 0 {
		targetTPS = DefaultTPS
	}

	tickDuration := time.Second / time.Duration(targetTPS)

	return &GameTicker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2, // Максимум в 2 раза больше целевого времени
		systems:          make([]TickSystem, 0),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4), // Предупреждение при 25% от тика
		logger:           logger.With().Str("component", "ticker").Logger(),
		warningThreshold: tickDuration / 2, // Предупреждение при 50% от времени тика
	}
}

// NewPerformanceMonitor создает новый монитор производительности
func NewPerformanceMonitor(windowSize int, warningThreshold time.Duration) *PerformanceMonitor {
	return &PerformanceMonitor{
		systemMetrics:     make(map[string]*SystemMetrics),
		metricsWindow:     windowSize,
		warningThreshold:  warningThreshold,
		criticalThreshold: warningThreshold * 2,
	}
}

// Run выполняет игровой цикл до отмены контекста
func (gt *GameTicker) Run(ctx context.Context) error {
	gt.mu.Lock()
	if gt.isRunning {
		gt.mu.Unlock()
		return ErrTickerRunning
	}
	gt.isRunning = true
	gt.startTime = time.Now()
	gt.lastTickTime = gt.startTime
	gt.mu.Unlock()

	gt.logger.Info().
		Int("tps", gt.targetTPS).
		Dur("tick", gt.tickDuration).
		Msg("Запуск игрового цикла")

	ticker := time.NewTicker(gt.tickDuration)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			gt.mu.Lock()
			gt.isRunning = false
			ticks := gt.tickCount
			gt.mu.Unlock()

			gt.logger.Info().Uint64("ticks", ticks).Msg("Остановка игрового цикла")
			return nil

		case tickTime := <-ticker.C:
			gt.executeTick(tickTime)
		}
	}
}

// RegisterSystem добавляет систему в игровой цикл
func (gt *GameTicker) RegisterSystem(system TickSystem) {
	gt.systemsMutex.Lock()
	defer gt.systemsMutex.Unlock()

	gt.systems = append(gt.systems, system)

	// Сортируем по приоритету (меньше = выше приоритет)
	for i := len(gt.systems) - 1; i > 0; i-- {
		if gt.systems[i].GetPriority() < gt.systems[i-1].GetPriority() {
			gt.systems[i], gt.systems[i-1] = gt.systems[i-1], gt.systems[i]
		} else {
			break
		}
	}

	gt.perfMonitor.initSystemMetrics(system.GetName())

	gt.logger.Debug().
		Str("system", system.GetName()).
		Int("priority", system.GetPriority()).
		Msg("Зарегистрирована система")
}

// executeTick выполняет один игровой тик
func (gt *GameTicker) executeTick(tickTime time.Time) {
	tickStart := time.Now()

	gt.mu.Lock()
	deltaTime := tickTime.Sub(gt.lastTickTime)
	// Большую задержку не пропускаем в физику целиком
	if deltaTime > gt.maxTickTime {
		gt.skippedTicks++
		gt.logger.Warn().
			Dur("delta", deltaTime).
			Dur("expected", gt.tickDuration).
			Msg("Большая задержка между тиками")
		deltaTime = gt.maxTickTime
	}
	gt.tickCount++
	gt.lastTickTime = tickTime
	gt.mu.Unlock()

	gt.executeAllSystems(deltaTime)

	totalTickTime := time.Since(tickStart)
	gt.updateTickMetrics(totalTickTime)
	gt.checkPerformance(totalTickTime)
}

// Step выполняет один тик с заданным dt. Используется в тестах и при ручном управлении
func (gt *GameTicker) Step(deltaTime time.Duration) {
	gt.mu.Lock()
	gt.tickCount++
	gt.mu.Unlock()

	gt.executeAllSystems(deltaTime)
}

// executeAllSystems выполняет все зарегистрированные системы
func (gt *GameTicker) executeAllSystems(deltaTime time.Duration) {
	gt.systemsMutex.RLock()
	systems := make([]TickSystem, len(gt.systems))
	copy(systems, gt.systems)
	gt.systemsMutex.RUnlock()

	for _, system := range systems {
		gt.executeSystem(system, deltaTime)
	}
}

// executeSystem выполняет одну систему с замером времени
func (gt *GameTicker) executeSystem(system TickSystem, deltaTime time.Duration) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			gt.logger.Error().
				Str("system", systemName).
				Interface("panic", r).
				Msg("Критическая ошибка в системе")
			gt.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(deltaTime)

	gt.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		gt.logger.Error().Err(err).Str("system", systemName).Msg("Ошибка в системе")
		gt.perfMonitor.recordError(systemName)
	}
}

// GetStats возвращает статистику игрового цикла
func (gt *GameTicker) GetStats() map[string]interface{} {
	gt.mu.RLock()
	defer gt.mu.RUnlock()

	gt.systemsMutex.RLock()
	systemsCount := len(gt.systems)
	gt.systemsMutex.RUnlock()

	var uptime time.Duration
	var actualTPS float64
	if !gt.startTime.IsZero() {
		uptime = time.Since(gt.startTime)
		actualTPS = float64(gt.tickCount) / uptime.Seconds()
	}

	return map[string]interface{}{
		"target_tps":        gt.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        gt.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": gt.averageTickTime,
		"max_observed_tick": gt.maxObservedTick,
		"skipped_ticks":     gt.skippedTicks,
		"is_running":        gt.isRunning,
		"systems_count":     systemsCount,
		"systems":           gt.perfMonitor.GetSystemsStats(),
	}
}

// GetTickCount возвращает текущее количество тиков
func (gt *GameTicker) GetTickCount() uint64 {
	gt.mu.RLock()
	defer gt.mu.RUnlock()
	return gt.tickCount
}

// Вспомогательные методы для мониторинга производительности
func (pm *PerformanceMonitor) initSystemMetrics(systemName string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.systemMetrics[systemName] = &SystemMetrics{
		Name:        systemName,
		recentTimes: make([]time.Duration, pm.metricsWindow),
	}
}

func (pm *PerformanceMonitor) recordExecution(systemName string, executionTime time.Duration) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	metrics, exists := pm.systemMetrics[systemName]
	if !exists {
		return
	}

	metrics.LastExecutionTime = executionTime
	metrics.TotalExecutions++

	if executionTime > metrics.MaxTime {
		metrics.MaxTime = executionTime
	}

	// Добавляем в скользящее окно
	metrics.recentTimes[metrics.recentIndex] = executionTime
	metrics.recentIndex = (metrics.recentIndex + 1) % pm.metricsWindow

	if !metrics.windowFilled && metrics.recentIndex == 0 {
		metrics.windowFilled = true
	}

	pm.recalculateAverage(metrics)
}

func (pm *PerformanceMonitor) recordError(systemName string) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if metrics, exists := pm.systemMetrics[systemName]; exists {
		metrics.Errors++
	}
}

func (pm *PerformanceMonitor) recalculateAverage(metrics *SystemMetrics) {
	var total time.Duration
	var count int

	limit := pm.metricsWindow
	if !metrics.windowFilled {
		limit = metrics.recentIndex
	}

	for i := 0; i < limit; i++ {
		total += metrics.recentTimes[i]
		count++
	}

	if count > 0 {
		metrics.AverageTime = total / time.Duration(count)
	}
}

// SystemMetrics копия метрик системы
func (pm *PerformanceMonitor) SystemMetrics(name string) (SystemMetrics, bool) {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	m, ok := pm.systemMetrics[name]
	if !ok {
		return SystemMetrics{}, false
	}
	out := *m
	out.recentTimes = nil
	return out, true
}

func (pm *PerformanceMonitor) GetSystemsStats() map[string]interface{} {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	systemsStats := make(map[string]interface{})

	for name, metrics := range pm.systemMetrics {
		systemsStats[name] = map[string]interface{}{
			"last_execution_time": metrics.LastExecutionTime,
			"average_time":        metrics.AverageTime,
			"max_time":            metrics.MaxTime,
			"total_executions":    metrics.TotalExecutions,
			"errors":              metrics.Errors,
		}
	}

	return systemsStats
}

func (gt *GameTicker) updateTickMetrics(tickTime time.Duration) {
	gt.mu.Lock()
	defer gt.mu.Unlock()

	if tickTime > gt.maxObservedTick {
		gt.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if gt.averageTickTime == 0 {
		gt.averageTickTime = tickTime
	} else {
		gt.averageTickTime = (gt.averageTickTime*9 + tickTime) / 10
	}
}

func (gt *GameTicker) checkPerformance(tickTime time.Duration) {
	if tickTime > gt.maxTickTime {
		gt.logger.Warn().
			Dur("tick", tickTime).
			Dur("max", gt.maxTickTime).
			Dur("target", gt.tickDuration).
			Msg("Тик превысил максимальное время")
	} else if tickTime > gt.warningThreshold {
		gt.logger.Debug().
			Dur("tick", tickTime).
			Dur("target", gt.tickDuration).
			Msg("Медленный тик")
	}
}

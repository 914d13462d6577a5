package game

import (
	"errors"
	"time"

	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/physics"
)

// SimulationSystem двигает вратаря и мяч
type SimulationSystem struct {
	name     string
	priority int
	session  *Session
}

// NewSimulationSystem создает систему симуляции
func NewSimulationSystem(session *Session) *SimulationSystem {
	return &SimulationSystem{
		name:     "SimulationSystem",
		priority: 10, // После команд
		session:  session,
	}
}

// Update выполняет один кадр физики
func (ss *SimulationSystem) Update(deltaTime time.Duration) error {
	ss.session.Update(deltaTime.Seconds())
	return nil
}

// GetName возвращает имя системы
func (ss *SimulationSystem) GetName() string {
	return ss.name
}

// GetPriority возвращает приоритет системы
func (ss *SimulationSystem) GetPriority() int {
	return ss.priority
}

// TelemetrySystem раздает события раунда наблюдателям
type TelemetrySystem struct {
	name      string
	priority  int
	session   *Session
	observers []EventObserver
}

// NewTelemetrySystem создает систему раздачи событий
func NewTelemetrySystem(session *Session, observers ...EventObserver) *TelemetrySystem {
	return &TelemetrySystem{
		name:      "TelemetrySystem",
		priority:  50,
		session:   session,
		observers: observers,
	}
}

// Update забирает события сессии
func (ts *TelemetrySystem) Update(deltaTime time.Duration) error {
	for _, ev := range ts.session.DrainEvents() {
		for _, o := range ts.observers {
			o.Observe(ev)
		}
	}
	return nil
}

// GetName возвращает имя системы
func (ts *TelemetrySystem) GetName() string {
	return ts.name
}

// GetPriority возвращает приоритет системы
func (ts *TelemetrySystem) GetPriority() int {
	return ts.priority
}

// FrameBroadcaster интерфейс для отправки состояния клиентам
type FrameBroadcaster interface {
	BroadcastFrame(frame Frame) error
	BroadcastPrediction(pred physics.Prediction, visible bool) error
}

// NetworkSyncSystem система синхронизации состояния с клиентами
type NetworkSyncSystem struct {
	name          string
	priority      int
	session       *Session
	broadcaster   FrameBroadcaster
	logger        zerolog.Logger
	lastBroadcast time.Time

	// Буфер для оптимизации отправки
	broadcastInterval time.Duration

	sentPrediction uint64
}

// NewNetworkSyncSystem создает новую систему сетевой синхронизации
func NewNetworkSyncSystem(session *Session, broadcaster FrameBroadcaster, interval time.Duration, logger zerolog.Logger) *NetworkSyncSystem {
	if interval <= 0 {
		interval = 50 * time.Millisecond // 20 FPS для клиентов
	}
	return &NetworkSyncSystem{
		name:              "NetworkSyncSystem",
		priority:          100, // Отправляем в конце тика
		session:           session,
		broadcaster:       broadcaster,
		logger:            logger.With().Str("component", "network_sync").Logger(),
		broadcastInterval: interval,
	}
}

// Update отправляет кадр и новое предсказание
func (nss *NetworkSyncSystem) Update(deltaTime time.Duration) error {
	var errs []error

	if v := nss.session.PredictionVersion(); v != nss.sentPrediction {
		pred, _, visible := nss.session.Prediction()
		if err := nss.broadcaster.BroadcastPrediction(pred, visible); err != nil {
			errs = append(errs, err)
		}
		nss.sentPrediction = v
	}

	now := time.Now()
	if now.Sub(nss.lastBroadcast) < nss.broadcastInterval {
		return errors.Join(errs...)
	}
	nss.lastBroadcast = now

	// Вратарь двигается и между ударами, кадр шлем всегда
	if err := nss.broadcaster.BroadcastFrame(nss.session.Frame()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// GetName возвращает имя системы
func (nss *NetworkSyncSystem) GetName() string {
	return nss.name
}

// GetPriority возвращает приоритет системы
func (nss *NetworkSyncSystem) GetPriority() int {
	return nss.priority
}

// GameMetricsSystem периодически пишет в лог состояние цикла
type GameMetricsSystem struct {
	name       string
	priority   int
	gameTicker *GameTicker
	session    *Session
	logger     zerolog.Logger

	lastMetricsLog  time.Time
	metricsInterval time.Duration
}

// NewGameMetricsSystem создает новую систему сбора метрик
func NewGameMetricsSystem(gameTicker *GameTicker, session *Session, interval time.Duration, logger zerolog.Logger) *GameMetricsSystem {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &GameMetricsSystem{
		name:            "GameMetricsSystem",
		priority:        200, // Метрики в самом конце
		gameTicker:      gameTicker,
		session:         session,
		logger:          logger.With().Str("component", "metrics").Logger(),
		lastMetricsLog:  time.Now(),
		metricsInterval: interval,
	}
}

// Update собирает и логирует метрики цикла
func (gms *GameMetricsSystem) Update(deltaTime time.Duration) error {
	now := time.Now()
	if now.Sub(gms.lastMetricsLog) < gms.metricsInterval {
		return nil
	}
	gms.lastMetricsLog = now

	stats := gms.gameTicker.GetStats()
	actualTPS, _ := stats["actual_tps"].(float64)
	targetTPS, _ := stats["target_tps"].(int)
	ball := gms.session.Ball()

	gms.logger.Info().
		Float64("tps", actualTPS).
		Int("target_tps", targetTPS).
		Interface("ticks", stats["tick_count"]).
		Interface("avg_tick", stats["average_tick_time"]).
		Bool("flying", ball.IsFlying).
		Str("status", string(gms.session.Status().Kind)).
		Msg("Метрики игрового цикла")

	if actualTPS < float64(targetTPS)*0.9 {
		gms.logger.Warn().Float64("tps", actualTPS).Msg("TPS снижен")
	}

	return nil
}

// GetName возвращает имя системы
func (gms *GameMetricsSystem) GetName() string {
	return gms.name
}

// GetPriority возвращает приоритет системы
func (gms *GameMetricsSystem) GetPriority() int {
	return gms.priority
}

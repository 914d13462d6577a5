package game

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/physics"
)

var (
	ErrBallInFlight  = errors.New("ball is already in flight")
	ErrUnknownPreset = errors.New("unknown start preset")
	ErrReadOnlyInput = errors.New("parameter provider does not accept input")
)

// StartPreset точка установки мяча
type StartPreset string

const (
	PresetLeft   StartPreset = "left"
	PresetCenter StartPreset = "center"
	PresetRight  StartPreset = "right"
)

var presetX = map[StartPreset]float64{
	PresetLeft:   -15,
	PresetCenter: 0,
	PresetRight:  15,
}

// maxPendingEvents предел событий, если их никто не забирает
const maxPendingEvents = 1024

// startDistance расстояние от центра поля до точки удара по z
const startDistance = 25.0

// Frame снимок состояния для клиентов
type Frame struct {
	Tick      uint64
	Ball      physics.BallState
	Trail     []mgl64.Vec3
	Keeper    mgl64.Vec3
	Status    Status
	Start     mgl64.Vec3
	Preset    StartPreset
	AimAssist bool
	Planet    physics.Planet
	Params    Parameters
}

// Session состояние одного пенальти: мяч, след, вратарь, статус и предсказание.
// Не потокобезопасна, владеет ею только игровой цикл.
type Session struct {
	cfg       physics.Config
	model     physics.ForceModel
	ground    physics.GroundModel
	predictor physics.Predictor
	goal      physics.Goal
	params    ParameterProvider

	ball   physics.BallState
	launch physics.Launch
	start  mgl64.Vec3
	preset StartPreset
	trail  *physics.Trail
	keeper Keeper
	status Status

	aimAssist         bool
	prediction        *physics.Prediction
	predictionErr     error
	predictionVersion uint64

	tick   uint64
	events []Event

	logger zerolog.Logger
}

// NewSession создает сессию с мячом в центральной точке
func NewSession(cfg physics.Config, keeperCfg KeeperConfig, params ParameterProvider, logger zerolog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	if params == nil {
		params = NewControls(DefaultParameters())
	}

	s := &Session{
		cfg:       cfg,
		model:     cfg.ForceModel(),
		ground:    cfg.LiveGround(),
		predictor: physics.NewPredictor(cfg),
		goal:      physics.NewGoal(cfg.GoalZ),
		params:    params,
		trail:     physics.NewTrail(cfg.TrailCap),
		keeper:    NewKeeper(keeperCfg, cfg.GoalZ),
		aimAssist: true,
		logger:    logger.With().Str("component", "session").Logger(),
	}
	s.placeAt(PresetCenter)
	s.resetBall()

	return s, nil
}

// Shoot бьет по мячу с текущими параметрами. Пока мяч летит, удар не выполняется
func (s *Session) Shoot() error {
	if s.ball.IsFlying {
		return ErrBallInFlight
	}
	s.resetBall()

	params := s.params.Parameters()
	launch := physics.Launch{
		Start:  s.start,
		Speed:  params.Speed,
		Spin:   params.Spin,
		Target: params.Target(s.goal.Z),
	}

	vel, err := launch.Velocity()
	if err != nil {
		return fmt.Errorf("shoot: %w", err)
	}

	s.launch = launch
	s.ball.Velocity = vel
	s.ball.AngularVelocity = launch.AngularVelocity(s.cfg.LateralSpin)
	s.ball.IsFlying = true
	s.ball.IsRoundEnded = false
	s.status = StatusFor(StatusInFlight)
	s.emit(EventShot, "")

	s.logger.Info().
		Float64("speed", launch.Speed).
		Float64("spin", launch.Spin).
		Floats64("target", launch.Target[:]).
		Str("planet", params.Planet).
		Msg("Удар")

	return nil
}

// Reset возвращает мяч в точку удара и пересчитывает предсказание
func (s *Session) Reset() {
	s.resetBall()
	s.emit(EventReset, "")
}

func (s *Session) resetBall() {
	s.ball = physics.RestingBall(s.start)
	s.trail.Clear()
	s.status = StatusFor(StatusReady)
	s.refreshPrediction()
}

// Update один кадр: сначала вратарь, затем мяч
func (s *Session) Update(dt float64) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	s.tick++

	if !s.ball.IsRoundEnded {
		s.keeper.Update(dt)
	}
	s.stepBall(dt)
}

func (s *Session) stepBall(dt float64) {
	if !s.ball.IsFlying || s.ball.IsRoundEnded {
		return
	}

	params := s.params.Parameters()
	env := physics.Environment{Planet: s.planet(params), Wind: params.Wind()}

	res := physics.Advance(s.model, physics.Kinematics{
		Position:        s.ball.Position,
		Velocity:        s.ball.Velocity,
		AngularVelocity: s.ball.AngularVelocity,
	}, env, dt, s.ground)

	s.ball.Velocity = res.Velocity
	if res.Stopped {
		s.ball.IsFlying = false
		s.emit(EventStopped, "")
	}

	contacts, vel := s.goal.Resolve(res.Next, s.cfg.BallRadius, s.ball.Velocity, s.keeper.Hitbox())
	s.ball.Velocity = vel
	for _, c := range contacts {
		s.onCollision(c, res.Next)
	}

	s.ball.Position = res.Next
	s.ball.Orientation = physics.Spin(s.ball.Orientation, s.ball.Velocity, s.cfg.BallRadius, dt)
	s.trail.Push(s.ball.Position)
}

func (s *Session) onCollision(c physics.Contact, at mgl64.Vec3) {
	switch c.Kind {
	case physics.ContactPost:
		s.status = StatusFor(StatusPostHit)
		s.emitAt(EventPostHit, c.Collider, at)
	case physics.ContactKeeper:
		s.ball.IsRoundEnded = true
		s.status = StatusFor(StatusBlocked)
		s.emitAt(EventBlocked, c.Collider, at)
	case physics.ContactGoal:
		s.ball.IsRoundEnded = true
		s.status = StatusFor(StatusGoal)
		s.emitAt(EventGoal, c.Collider, at)
	}

	s.logger.Debug().
		Str("contact", string(c.Kind)).
		Str("collider", c.Collider).
		Floats64("at", at[:]).
		Msg("Столкновение")
}

// SetParam меняет параметр по сырому значению с клиента
func (s *Session) SetParam(name, raw string) error {
	setter, ok := s.params.(ParameterSetter)
	if !ok {
		return ErrReadOnlyInput
	}
	err := setter.Set(name, raw)
	if errors.Is(err, ErrUnknownParameter) {
		return err
	}
	// некорректное значение уже заменено значением по умолчанию
	s.refreshPrediction()
	return err
}

// SelectPlanet выбирает планету
func (s *Session) SelectPlanet(key string) error {
	setter, ok := s.params.(ParameterSetter)
	if !ok {
		return ErrReadOnlyInput
	}
	if err := setter.SetPlanet(key); err != nil {
		return err
	}
	s.refreshPrediction()
	return nil
}

// SetStartPosition переставляет мяч на одну из точек удара
func (s *Session) SetStartPosition(preset StartPreset) error {
	if _, ok := presetX[preset]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	s.placeAt(preset)
	s.Reset()
	return nil
}

func (s *Session) placeAt(preset StartPreset) {
	s.preset = preset
	s.start = mgl64.Vec3{presetX[preset], s.cfg.BallRadius, startDistance}
}

// SetAimAssist включает или выключает предсказание траектории
func (s *Session) SetAimAssist(enabled bool) {
	s.aimAssist = enabled
	if enabled {
		s.refreshPrediction()
		return
	}
	s.predictionVersion++
}

func (s *Session) refreshPrediction() {
	if !s.aimAssist || s.ball.IsFlying {
		return
	}

	params := s.params.Parameters()
	launch := physics.Launch{
		Start:  s.start,
		Speed:  params.Speed,
		Spin:   params.Spin,
		Target: params.Target(s.goal.Z),
	}
	env := physics.Environment{Planet: s.planet(params), Wind: params.Wind()}

	s.predictionVersion++
	pred, err := s.predictor.Predict(launch, env)
	if err != nil {
		s.prediction = nil
		s.predictionErr = err
		s.logger.Warn().Err(err).Msg("Предсказание траектории невозможно")
		return
	}

	s.prediction = &pred
	s.predictionErr = nil
	s.emit(EventPrediction, "")
}

// Prediction последнее предсказание. visible=false, если подсказка выключена,
// мяч в полете или удар вырожден.
func (s *Session) Prediction() (pred physics.Prediction, version uint64, visible bool) {
	if s.prediction == nil {
		return physics.Prediction{}, s.predictionVersion, false
	}
	return *s.prediction, s.predictionVersion, s.aimAssist && !s.ball.IsFlying
}

// PredictionError ошибка последнего предсказания
func (s *Session) PredictionError() error {
	return s.predictionErr
}

// PredictionVersion растет при каждом изменении предсказания
func (s *Session) PredictionVersion() uint64 {
	return s.predictionVersion
}

// Ball текущее состояние мяча
func (s *Session) Ball() physics.BallState {
	return s.ball
}

// Status текущий статус
func (s *Session) Status() Status {
	return s.status
}

// Keeper текущее положение вратаря
func (s *Session) Keeper() Keeper {
	return s.keeper
}

// Tick номер кадра
func (s *Session) Tick() uint64 {
	return s.tick
}

// Frame снимок для отправки клиентам
func (s *Session) Frame() Frame {
	params := s.params.Parameters()
	return Frame{
		Tick:      s.tick,
		Ball:      s.ball,
		Trail:     s.trail.Points(),
		Keeper:    s.keeper.Position(),
		Status:    s.status,
		Start:     s.start,
		Preset:    s.preset,
		AimAssist: s.aimAssist,
		Planet:    s.planet(params),
		Params:    params,
	}
}

// DrainEvents забирает накопленные события
func (s *Session) DrainEvents() []Event {
	if len(s.events) == 0 {
		return nil
	}
	out := s.events
	s.events = nil
	return out
}

func (s *Session) planet(params Parameters) physics.Planet {
	p, err := physics.LookupPlanet(params.Planet)
	if err != nil {
		return physics.DefaultPlanet()
	}
	return p
}

func (s *Session) emit(kind EventKind, collider string) {
	s.emitAt(kind, collider, s.ball.Position)
}

func (s *Session) emitAt(kind EventKind, collider string, at mgl64.Vec3) {
	if len(s.events) >= maxPendingEvents {
		s.events = s.events[1:]
	}
	s.events = append(s.events, Event{
		Kind:     kind,
		Tick:     s.tick,
		Planet:   s.params.Parameters().Planet,
		Collider: collider,
		Position: at,
		Velocity: s.ball.Velocity,
		Speed:    s.launch.Speed,
		Spin:     s.launch.Spin,
	})
}

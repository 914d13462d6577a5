package game

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/physics"
)

// ErrQueueFull очередь команд переполнена
var ErrQueueFull = errors.New("command queue is full")

// DefaultQueueSize размер очереди команд по умолчанию
const DefaultQueueSize = 64

// commandResult ответ игрового цикла
type commandResult struct {
	Frame Frame
	Err   error
}

// commandRequest запрос на выполнение команды внутри игрового цикла
type commandRequest struct {
	ctx      context.Context
	Name     string
	Apply    func(*Session) error
	Response chan commandResult
}

// CommandQueue единственный путь к Session из других горутин.
// Обработчики соединений ставят команды в очередь, игровой цикл выполняет их в начале тика.
type CommandQueue struct {
	name     string
	priority int
	session  *Session
	queue    chan *commandRequest
	logger   zerolog.Logger
}

// NewCommandQueue создает очередь команд для сессии
func NewCommandQueue(session *Session, size int, logger zerolog.Logger) *CommandQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &CommandQueue{
		name:     "CommandQueue",
		priority: 1, // Команды применяются до симуляции
		session:  session,
		queue:    make(chan *commandRequest, size),
		logger:   logger.With().Str("component", "commands").Logger(),
	}
}

// Update выполняет накопленные команды. Новые команды, пришедшие во время
// обработки, ждут следующего тика.
func (cq *CommandQueue) Update(deltaTime time.Duration) error {
	pending := len(cq.queue)
	for i := 0; i < pending; i++ {
		req := <-cq.queue
		// Отправитель уже ушел, команду не применяем
		if err := req.ctx.Err(); err != nil {
			req.Response <- commandResult{Frame: cq.session.Frame(), Err: err}
			continue
		}
		err := req.Apply(cq.session)
		if err != nil {
			cq.logger.Debug().Err(err).Str("command", req.Name).Msg("Команда отклонена")
		}
		req.Response <- commandResult{Frame: cq.session.Frame(), Err: err}
	}
	return nil
}

// GetName возвращает имя системы
func (cq *CommandQueue) GetName() string {
	return cq.name
}

// GetPriority возвращает приоритет системы
func (cq *CommandQueue) GetPriority() int {
	return cq.priority
}

// Submit ставит команду в очередь и ждет ее выполнения
func (cq *CommandQueue) Submit(ctx context.Context, name string, apply func(*Session) error) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	req := &commandRequest{
		ctx:      ctx,
		Name:     name,
		Apply:    apply,
		Response: make(chan commandResult, 1),
	}

	select {
	case cq.queue <- req:
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	default:
		return Frame{}, fmt.Errorf("%s: %w", name, ErrQueueFull)
	}

	select {
	case res := <-req.Response:
		return res.Frame, res.Err
	case <-ctx.Done():
		return Frame{}, ctx.Err()
	}
}

// Shoot удар текущими параметрами
func (cq *CommandQueue) Shoot(ctx context.Context) (Frame, error) {
	return cq.Submit(ctx, "shoot", (*Session).Shoot)
}

// Reset возврат мяча
func (cq *CommandQueue) Reset(ctx context.Context) (Frame, error) {
	return cq.Submit(ctx, "reset", func(s *Session) error {
		s.Reset()
		return nil
	})
}

// SetParam изменение параметра управления
func (cq *CommandQueue) SetParam(ctx context.Context, name, raw string) (Frame, error) {
	return cq.Submit(ctx, "set_param", func(s *Session) error {
		return s.SetParam(name, raw)
	})
}

// SelectPlanet выбор планеты
func (cq *CommandQueue) SelectPlanet(ctx context.Context, key string) (Frame, error) {
	return cq.Submit(ctx, "planet", func(s *Session) error {
		return s.SelectPlanet(key)
	})
}

// SetStartPosition выбор точки удара
func (cq *CommandQueue) SetStartPosition(ctx context.Context, preset string) (Frame, error) {
	return cq.Submit(ctx, "start_position", func(s *Session) error {
		return s.SetStartPosition(StartPreset(preset))
	})
}

// SetAimAssist включение подсказки траектории
func (cq *CommandQueue) SetAimAssist(ctx context.Context, enabled bool) (Frame, error) {
	return cq.Submit(ctx, "aim_assist", func(s *Session) error {
		s.SetAimAssist(enabled)
		return nil
	})
}

// Snapshot текущий кадр
func (cq *CommandQueue) Snapshot(ctx context.Context) (Frame, error) {
	return cq.Submit(ctx, "snapshot", func(*Session) error { return nil })
}

// Prediction последнее предсказание траектории и его видимость
func (cq *CommandQueue) Prediction(ctx context.Context) (physics.Prediction, bool, error) {
	var (
		pred    physics.Prediction
		visible bool
	)
	_, err := cq.Submit(ctx, "prediction", func(s *Session) error {
		pred, _, visible = s.Prediction()
		return nil
	})
	return pred, visible, err
}

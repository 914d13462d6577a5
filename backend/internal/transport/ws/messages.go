package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/physics"
)

var (
	ErrInvalidMessage     = errors.New("invalid message")
	ErrUnknownMessageType = errors.New("unknown message type")
)

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	var msg interface{}
	switch baseMessage.Type {
	case MessageTypeShoot, MessageTypeReset:
		msg = &CommandMessage{}
	case MessageTypeSetParam:
		msg = &SetParamMessage{}
	case MessageTypePlanet:
		msg = &PlanetMessage{}
	case MessageTypeStartPosition:
		msg = &StartPositionMessage{}
	case MessageTypeAimAssist:
		msg = &AimAssistMessage{}
	case MessageTypePing:
		msg = &PingMessage{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessageType, baseMessage.Type)
	}

	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, baseMessage.Type, err)
	}
	return msg, nil
}

// MessageType тип разобранного сообщения
func MessageType(msg interface{}) string {
	switch m := msg.(type) {
	case *CommandMessage:
		return m.Type
	case *SetParamMessage:
		return m.Type
	case *PlanetMessage:
		return m.Type
	case *StartPositionMessage:
		return m.Type
	case *AimAssistMessage:
		return m.Type
	case *PingMessage:
		return m.Type
	}
	return ""
}

// GetCurrentServerTime возвращает текущее время сервера в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixMilli()
}

// NewPongMessage создает ответ на пинг
func NewPongMessage(clientTime int64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewAckMessage создает подтверждение команды. err != nil означает отказ
func NewAckMessage(cmd string, clientTime int64, err error) *AckMessage {
	ack := &AckMessage{
		Type:       MessageTypeAck,
		Cmd:        cmd,
		OK:         err == nil,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
	if err != nil {
		ack.Error = err.Error()
	}
	return ack
}

// NewInfoMessage создает новое информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}

// NewFrameMessage переводит кадр игры в сообщение
func NewFrameMessage(frame game.Frame) *FrameMessage {
	q := frame.Ball.Orientation
	trail := finiteAll(physics.FlattenPoints(frame.Trail))

	return &FrameMessage{
		Type: MessageTypeFrame,
		Tick: frame.Tick,
		Ball: BallMessage{
			X:  finite(frame.Ball.Position[0]),
			Y:  finite(frame.Ball.Position[1]),
			Z:  finite(frame.Ball.Position[2]),
			QX: finite(q.V[0]),
			QY: finite(q.V[1]),
			QZ: finite(q.V[2]),
			QW: finite(q.W),
		},
		Trail:   trail,
		KeeperX: finite(frame.Keeper[0]),
		Status: StatusMessage{
			Kind:  string(frame.Status.Kind),
			Text:  frame.Status.Text,
			Color: frame.Status.Color,
		},
		Flying:     frame.Ball.IsFlying,
		Ended:      frame.Ball.IsRoundEnded,
		Planet:     frame.Planet.Key,
		Preset:     string(frame.Preset),
		AimAssist:  frame.AimAssist,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewPredictionMessage переводит предсказание в сообщение.
// Скрытое предсказание уходит без точек, чтобы клиент убрал линию.
func NewPredictionMessage(pred physics.Prediction, visible bool) *PredictionMessage {
	msg := &PredictionMessage{
		Type:    MessageTypePrediction,
		Visible: visible,
		Points:  []float64{},
	}
	if !visible {
		return msg
	}

	msg.Points = finiteAll(physics.FlattenPoints(pred.Points))
	stats := pred.Stats
	stats.InitialSpeed = finite(stats.InitialSpeed)
	stats.SpinY = finite(stats.SpinY)
	stats.WindSpeed = finite(stats.WindSpeed)
	stats.InitialMagnus = finite(stats.InitialMagnus)
	msg.Stats = &stats
	return msg
}

// NewPlanetsMessage список планет
func NewPlanetsMessage(current string) *PlanetsMessage {
	return &PlanetsMessage{
		Type:    MessageTypePlanets,
		Planets: physics.Planets(),
		Current: current,
	}
}

// finite заменяет NaN и бесконечность нулем: JSON их не поддерживает
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// finiteAll чистит срез на месте
func finiteAll(values []float64) []float64 {
	for i, v := range values {
		values[i] = finite(v)
	}
	return values
}

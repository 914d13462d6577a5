package ws

import (
	"context"

	"penalty-kick/backend/internal/game"
)

// reply отправляет подтверждение и, если команда прошла через игровой цикл, актуальный кадр.
// Ошибка команды уходит клиенту в подтверждении, соединение остается открытым.
func reply(conn *SafeWriter, cmd string, clientTime int64, frame game.Frame, cmdErr error) error {
	if err := conn.WriteJSON(NewAckMessage(cmd, clientTime, cmdErr)); err != nil {
		return err
	}
	if frame.Status.Kind == "" {
		// Команда не дошла до цикла, кадра нет
		return nil
	}
	return conn.WriteJSON(NewFrameMessage(frame))
}

// handlePing обрабатывает сообщения ping
func (s *WSServer) handlePing(_ context.Context, conn *SafeWriter, message interface{}) error {
	pingMsg, ok := message.(*PingMessage)
	if !ok {
		return ErrInvalidMessage
	}
	return conn.WriteJSON(NewPongMessage(pingMsg.ClientTime))
}

func (s *WSServer) handleShoot(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*CommandMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.Shoot(ctx)
	return reply(conn, MessageTypeShoot, msg.ClientTime, frame, err)
}

func (s *WSServer) handleReset(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*CommandMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.Reset(ctx)
	return reply(conn, MessageTypeReset, msg.ClientTime, frame, err)
}

func (s *WSServer) handleSetParam(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*SetParamMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.SetParam(ctx, msg.Name, string(msg.Value))
	return reply(conn, MessageTypeSetParam, msg.ClientTime, frame, err)
}

func (s *WSServer) handlePlanet(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*PlanetMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.SelectPlanet(ctx, msg.Key)
	return reply(conn, MessageTypePlanet, msg.ClientTime, frame, err)
}

func (s *WSServer) handleStartPosition(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*StartPositionMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.SetStartPosition(ctx, msg.Preset)
	return reply(conn, MessageTypeStartPosition, msg.ClientTime, frame, err)
}

func (s *WSServer) handleAimAssist(ctx context.Context, conn *SafeWriter, message interface{}) error {
	msg, ok := message.(*AimAssistMessage)
	if !ok {
		return ErrInvalidMessage
	}
	frame, err := s.controller.SetAimAssist(ctx, msg.Enabled)
	return reply(conn, MessageTypeAimAssist, msg.ClientTime, frame, err)
}

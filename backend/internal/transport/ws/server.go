package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/physics"
)

const (
	DefaultCommandTimeout = time.Second      // Ожидание ответа игрового цикла
	DefaultPingInterval   = 10 * time.Second // Интервал отправки пингов
	DefaultSendBuffer     = 16               // Очередь исходящих рассылок на клиента
	maxMessageSize        = 4096             // Команды клиента короткие
	pongWaitFactor        = 3                // Клиент молчит дольше трех пингов
)

// GameController команды игре. Реализуется game.CommandQueue
type GameController interface {
	Shoot(ctx context.Context) (game.Frame, error)
	Reset(ctx context.Context) (game.Frame, error)
	SetParam(ctx context.Context, name, raw string) (game.Frame, error)
	SelectPlanet(ctx context.Context, key string) (game.Frame, error)
	SetStartPosition(ctx context.Context, preset string) (game.Frame, error)
	SetAimAssist(ctx context.Context, enabled bool) (game.Frame, error)
	Snapshot(ctx context.Context) (game.Frame, error)
	Prediction(ctx context.Context) (physics.Prediction, bool, error)
}

// MessageHandler - тип функции обработчика сообщений
type MessageHandler func(ctx context.Context, conn *SafeWriter, message interface{}) error

// client подключенный зритель. Рассылки идут через send, ответы на команды пишутся напрямую
type client struct {
	conn *SafeWriter
	send chan *websocket.PreparedMessage
	done chan struct{}
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.done) })
}

// WSServer представляет WebSocket сервер с поддержкой потокобезопасной записи
type WSServer struct {
	upgrader       websocket.Upgrader
	controller     GameController
	handlers       map[string]MessageHandler
	commandTimeout time.Duration
	pingInterval   time.Duration
	logger         zerolog.Logger

	clients map[*SafeWriter]*client
	mu      sync.RWMutex

	dropped uint64
}

// NewWSServer создает новый экземпляр WebSocket сервера
func NewWSServer(controller GameController, logger zerolog.Logger) *WSServer {
	server := &WSServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		controller:     controller,
		handlers:       make(map[string]MessageHandler),
		commandTimeout: DefaultCommandTimeout,
		pingInterval:   DefaultPingInterval,
		logger:         logger.With().Str("component", "ws").Logger(),
		clients:        make(map[*SafeWriter]*client),
	}

	// Регистрируем стандартные обработчики
	server.RegisterHandler(MessageTypePing, server.handlePing)
	server.RegisterHandler(MessageTypeShoot, server.handleShoot)
	server.RegisterHandler(MessageTypeReset, server.handleReset)
	server.RegisterHandler(MessageTypeSetParam, server.handleSetParam)
	server.RegisterHandler(MessageTypePlanet, server.handlePlanet)
	server.RegisterHandler(MessageTypeStartPosition, server.handleStartPosition)
	server.RegisterHandler(MessageTypeAimAssist, server.handleAimAssist)

	return server
}

// RegisterHandler регистрирует обработчик для конкретного типа сообщений
func (s *WSServer) RegisterHandler(messageType string, handler MessageHandler) {
	s.handlers[messageType] = handler
}

// SetCommandTimeout устанавливает время ожидания ответа игрового цикла
func (s *WSServer) SetCommandTimeout(timeout time.Duration) {
	if timeout > 0 {
		s.commandTimeout = timeout
	}
}

// SetPingInterval устанавливает интервал отправки пингов
func (s *WSServer) SetPingInterval(interval time.Duration) {
	if interval > 0 {
		s.pingInterval = interval
	}
}

func (s *WSServer) pongWait() time.Duration {
	return pongWaitFactor * s.pingInterval
}

// HandleWS обрабатывает входящие WebSocket соединения
func (s *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("ошибка апгрейда websocket")
		return
	}

	safeConn := NewSafeWriter(conn)
	c := &client{
		conn: safeConn,
		send: make(chan *websocket.PreparedMessage, DefaultSendBuffer),
		done: make(chan struct{}),
	}
	log := s.logger.With().Str("remote", safeConn.RemoteAddr()).Logger()
	log.Info().Msg("новое websocket соединение")

	defer func() {
		s.removeClient(safeConn)
		c.close()
		_ = safeConn.Close()
		log.Info().Msg("соединение закрыто")
	}()

	if err := s.sendInitialState(r.Context(), safeConn); err != nil {
		log.Warn().Err(err).Msg("не удалось отправить начальное состояние")
		return
	}

	// Добавляем в рассылку только после начального состояния
	s.mu.Lock()
	s.clients[safeConn] = c
	s.mu.Unlock()

	go s.writePump(c, log)

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(s.pongWait()))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(s.pongWait()))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("ошибка чтения")
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(s.pongWait()))

		if err := s.dispatch(r.Context(), safeConn, data); err != nil {
			log.Warn().Err(err).Msg("ошибка обработки сообщения")
			if errors.Is(err, websocket.ErrCloseSent) {
				return
			}
		}
	}
}

// dispatch разбирает сообщение и вызывает обработчик
func (s *WSServer) dispatch(ctx context.Context, conn *SafeWriter, data []byte) error {
	msg, err := ParseMessage(data)
	if err != nil {
		// Ответ нужен и на мусор, иначе клиент ждет подтверждения вечно
		if writeErr := conn.WriteJSON(NewAckMessage("", 0, err)); writeErr != nil {
			return writeErr
		}
		return err
	}

	msgType := MessageType(msg)
	handler, ok := s.handlers[msgType]
	if !ok {
		return conn.WriteJSON(NewAckMessage(msgType, 0, ErrUnknownMessageType))
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	defer cancel()
	return handler(cmdCtx, conn, msg)
}

// sendInitialState приветствие, список планет, текущий кадр и предсказание
func (s *WSServer) sendInitialState(ctx context.Context, conn *SafeWriter) error {
	if err := conn.WriteJSON(NewInfoMessage("Подключено к серверу пенальти")); err != nil {
		return err
	}

	cmdCtx, cancel := context.WithTimeout(ctx, s.commandTimeout)
	defer cancel()

	frame, err := s.controller.Snapshot(cmdCtx)
	if err != nil {
		return err
	}
	if err := conn.WriteJSON(NewPlanetsMessage(frame.Planet.Key)); err != nil {
		return err
	}
	if err := conn.WriteJSON(NewFrameMessage(frame)); err != nil {
		return err
	}

	pred, visible, err := s.controller.Prediction(cmdCtx)
	if err != nil {
		return err
	}
	return conn.WriteJSON(NewPredictionMessage(pred, visible))
}

// writePump отправляет рассылки и пинги одного клиента
func (s *WSServer) writePump(c *client, log zerolog.Logger) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case pm := <-c.send:
			if err := c.conn.WritePrepared(pm); err != nil {
				log.Debug().Err(err).Msg("ошибка отправки рассылки")
				s.removeClient(c.conn)
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Msg("ошибка отправки пинга")
				s.removeClient(c.conn)
				_ = c.conn.Close()
				return
			}
		}
	}
}

// BroadcastFrame рассылает кадр всем клиентам
func (s *WSServer) BroadcastFrame(frame game.Frame) error {
	return s.broadcast(NewFrameMessage(frame))
}

// BroadcastPrediction рассылает предсказание всем клиентам
func (s *WSServer) BroadcastPrediction(pred physics.Prediction, visible bool) error {
	return s.broadcast(NewPredictionMessage(pred, visible))
}

// broadcast сериализует сообщение один раз и ставит его в очередь каждого клиента.
// Игровой цикл не ждет медленных клиентов: при полной очереди сообщение пропускается.
func (s *WSServer) broadcast(msg interface{}) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	pm, err := websocket.NewPreparedMessage(websocket.TextMessage, data)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- pm:
		default:
			s.dropped++
		}
	}
	return nil
}

func (s *WSServer) removeClient(conn *SafeWriter) {
	s.mu.Lock()
	if c, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		c.close()
	}
	s.mu.Unlock()
}

// ClientCount количество подключенных клиентов
func (s *WSServer) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// DroppedMessages количество пропущенных рассылок
func (s *WSServer) DroppedMessages() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

var _ game.FrameBroadcaster = (*WSServer)(nil)

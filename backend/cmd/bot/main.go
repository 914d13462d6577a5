package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/logging"
	"penalty-kick/backend/internal/transport/ws"
)

// Исходы раунда, которые считает бот
const (
	outcomeGoal    = "goal"
	outcomeBlocked = "blocked"
	outcomeMissed  = "missed"
	outcomeTimeout = "timeout"
)

var errRejected = errors.New("команда отклонена")

// Bot бьет серию пенальти со случайными или перебираемыми параметрами
type Bot struct {
	ID           string
	ServerURL    string
	Conn         *websocket.Conn
	Stats        BotStats
	Pattern      string
	Rounds       int
	RoundTimeout time.Duration

	writeMu  sync.Mutex // Мьютекс для синхронизации записи в WebSocket
	logger   zerolog.Logger
	outcomes chan string
	acks     chan ws.AckMessage
	round    int
}

// BotStats содержит статистику работы бота
type BotStats struct {
	CommandsSent int
	Outcomes     map[string]int
	PostHits     int
	Errors       int
	StartTime    time.Time
	mu           sync.RWMutex
}

// NewBot создает нового бота
func NewBot(id, serverURL, pattern string, rounds int, roundTimeout time.Duration, logger zerolog.Logger) *Bot {
	return &Bot{
		ID:           id,
		ServerURL:    serverURL,
		Pattern:      pattern,
		Rounds:       rounds,
		RoundTimeout: roundTimeout,
		Stats: BotStats{
			Outcomes:  make(map[string]int),
			StartTime: time.Now(),
		},
		logger:   logger.With().Str("bot", id).Logger(),
		outcomes: make(chan string, 1),
		acks:     make(chan ws.AckMessage, 16),
	}
}

// Connect подключается к серверу
func (b *Bot) Connect() error {
	u, err := url.Parse(b.ServerURL)
	if err != nil {
		return fmt.Errorf("неверный URL: %w", err)
	}

	b.logger.Info().Str("url", u.String()).Msg("Подключение")

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}

	b.Conn = conn
	b.logger.Info().Msg("Успешно подключен")
	return nil
}

// Disconnect отключается от сервера
func (b *Bot) Disconnect() {
	if b.Conn != nil {
		b.writeMu.Lock()
		_ = b.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		b.writeMu.Unlock()
		b.Conn.Close()
		b.logger.Info().Msg("Отключен")
	}
}

// nextShot параметры очередного удара
func (b *Bot) nextShot() map[string]float64 {
	switch b.Pattern {
	case "sweep":
		// Проходим ворота слева направо на постоянной скорости
		step := 14.0 / float64(max(b.Rounds-1, 1))
		return map[string]float64{
			game.ParamSpeed:     30,
			game.ParamSpin:      0,
			game.ParamWindSpeed: 0,
			game.ParamTargetX:   -7 + step*float64(b.round),
			game.ParamTargetY:   2,
		}
	default: // "random"
		return map[string]float64{
			game.ParamSpeed:     15 + rand.Float64()*35,
			game.ParamSpin:      rand.Float64()*40 - 20,
			game.ParamWindSpeed: rand.Float64() * 10,
			game.ParamWindDir:   rand.Float64() * 360,
			game.ParamTargetX:   rand.Float64()*14 - 7,
			game.ParamTargetY:   rand.Float64() * 5,
		}
	}
}

func (b *Bot) send(msg interface{}) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.Conn.WriteJSON(msg); err != nil {
		b.Stats.mu.Lock()
		b.Stats.Errors++
		b.Stats.mu.Unlock()
		return fmt.Errorf("ошибка отправки команды: %w", err)
	}

	b.Stats.mu.Lock()
	b.Stats.CommandsSent++
	b.Stats.mu.Unlock()
	return nil
}

// command отправляет команду и ждет подтверждения
func (b *Bot) command(msg interface{}, cmd string) error {
	if err := b.send(msg); err != nil {
		return err
	}
	timeout := time.After(b.RoundTimeout)
	for {
		select {
		case ack := <-b.acks:
			if ack.Cmd != cmd {
				continue
			}
			if !ack.OK {
				return fmt.Errorf("%w: %s: %s", errRejected, cmd, ack.Error)
			}
			return nil
		case <-timeout:
			return fmt.Errorf("нет подтверждения %s", cmd)
		}
	}
}

// playRound один удар от сброса до исхода
func (b *Bot) playRound() (string, error) {
	now := time.Now().UnixMilli()
	if err := b.command(ws.CommandMessage{Type: ws.MessageTypeReset, ClientTime: now}, ws.MessageTypeReset); err != nil {
		return "", err
	}

	shot := b.nextShot()
	for name, value := range shot {
		msg := ws.SetParamMessage{
			Type:       ws.MessageTypeSetParam,
			Name:       name,
			Value:      ws.RawValue(strconv.FormatFloat(value, 'f', 3, 64)),
			ClientTime: now,
		}
		if err := b.command(msg, ws.MessageTypeSetParam); err != nil {
			return "", err
		}
	}

	// Сбрасываем исход предыдущего раунда, если он пришел с опозданием
	select {
	case <-b.outcomes:
	default:
	}

	if err := b.command(ws.CommandMessage{Type: ws.MessageTypeShoot, ClientTime: now}, ws.MessageTypeShoot); err != nil {
		return "", err
	}

	select {
	case outcome := <-b.outcomes:
		b.logger.Info().
			Int("round", b.round+1).
			Float64("speed", shot[game.ParamSpeed]).
			Float64("spin", shot[game.ParamSpin]).
			Float64("target_x", shot[game.ParamTargetX]).
			Float64("target_y", shot[game.ParamTargetY]).
			Str("outcome", outcome).
			Msg("Раунд завершен")
		return outcome, nil
	case <-time.After(b.RoundTimeout):
		return outcomeTimeout, nil
	}
}

// handleMessage обрабатывает входящие сообщения
func (b *Bot) handleMessage(data []byte, flying *bool) {
	var base struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &base); err != nil {
		b.logger.Warn().Err(err).Msg("Ошибка разбора сообщения")
		return
	}

	switch base.Type {
	case ws.MessageTypeAck:
		var ack ws.AckMessage
		if err := json.Unmarshal(data, &ack); err != nil {
			return
		}
		select {
		case b.acks <- ack:
		default:
			b.logger.Debug().Str("cmd", ack.Cmd).Msg("Подтверждение никто не ждет")
		}

	case ws.MessageTypeFrame:
		var frame ws.FrameMessage
		if err := json.Unmarshal(data, &frame); err != nil {
			return
		}
		switch {
		case frame.Ended && frame.Status.Kind == string(game.StatusGoal):
			b.report(outcomeGoal)
		case frame.Ended && frame.Status.Kind == string(game.StatusBlocked):
			b.report(outcomeBlocked)
		case *flying && !frame.Flying && !frame.Ended:
			b.report(outcomeMissed)
		}
		if frame.Status.Kind == string(game.StatusPostHit) && frame.Flying {
			b.Stats.mu.Lock()
			b.Stats.PostHits++
			b.Stats.mu.Unlock()
		}
		*flying = frame.Flying && !frame.Ended

	case ws.MessageTypeInfo:
		var info ws.InfoMessage
		if err := json.Unmarshal(data, &info); err == nil {
			b.logger.Info().Str("message", info.Message).Msg("Информация")
		}

	case ws.MessageTypePrediction, ws.MessageTypePlanets, ws.MessageTypePong:
		// Не нужны боту

	default:
		b.logger.Warn().Str("type", base.Type).Msg("Неизвестный тип сообщения")
	}
}

// report отдает исход, если его еще ждут
func (b *Bot) report(outcome string) {
	select {
	case b.outcomes <- outcome:
	default:
	}
}

// Run запускает бота
func (b *Bot) Run() error {
	if err := b.Connect(); err != nil {
		return err
	}
	defer b.Disconnect()

	// Запускаем горутину для чтения сообщений
	readErr := make(chan error, 1)
	go func() {
		flying := false
		for {
			_, data, err := b.Conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			b.handleMessage(data, &flying)
		}
	}()

	for b.round = 0; b.round < b.Rounds; b.round++ {
		select {
		case err := <-readErr:
			return fmt.Errorf("соединение потеряно: %w", err)
		default:
		}

		outcome, err := b.playRound()
		if err != nil {
			b.logger.Warn().Err(err).Int("round", b.round+1).Msg("Ошибка раунда")
			b.Stats.mu.Lock()
			b.Stats.Errors++
			b.Stats.mu.Unlock()
			continue
		}

		b.Stats.mu.Lock()
		b.Stats.Outcomes[outcome]++
		b.Stats.mu.Unlock()
	}

	b.logger.Info().Msg("Завершение работы")
	return nil
}

// PrintStats выводит статистику бота
func (b *Bot) PrintStats() {
	b.Stats.mu.RLock()
	defer b.Stats.mu.RUnlock()

	b.logger.Info().
		Dur("uptime", time.Since(b.Stats.StartTime)).
		Int("commands", b.Stats.CommandsSent).
		Int("goals", b.Stats.Outcomes[outcomeGoal]).
		Int("blocked", b.Stats.Outcomes[outcomeBlocked]).
		Int("missed", b.Stats.Outcomes[outcomeMissed]).
		Int("timeouts", b.Stats.Outcomes[outcomeTimeout]).
		Int("post_hits", b.Stats.PostHits).
		Int("errors", b.Stats.Errors).
		Msg("Статистика")
}

func main() {
	// Флаги командной строки
	var (
		serverURL    = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		botID        = flag.String("id", "bot1", "ID бота")
		pattern      = flag.String("pattern", "random", "Выбор удара (random, sweep)")
		rounds       = flag.Int("rounds", 10, "Количество ударов")
		roundTimeout = flag.Duration("round-timeout", 20*time.Second, "Ожидание исхода одного удара")
		logLevel     = flag.String("log-level", "info", "Уровень логирования")
	)
	flag.Parse()

	logger, err := logging.New(logging.Options{Level: *logLevel, Format: logging.FormatConsole})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	bot := NewBot(*botID, *serverURL, *pattern, *rounds, *roundTimeout, logger)

	// Обработка сигналов для корректного завершения
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)

	go func() {
		<-c
		logger.Info().Str("bot", bot.ID).Msg("Получен сигнал прерывания, завершение работы")
		bot.Disconnect()
		bot.PrintStats()
		os.Exit(0)
	}()

	if err := bot.Run(); err != nil {
		logger.Error().Err(err).Str("bot", bot.ID).Msg("Бот остановлен с ошибкой")
		os.Exit(1)
	}

	bot.PrintStats()
}

package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/logging"
	"penalty-kick/backend/internal/transport/ws"
)

// shot параметры удара из флагов
type shot struct {
	planet    string
	preset    string
	speed     float64
	spin      float64
	windSpeed float64
	windDir   float64
	targetX   float64
	targetY   float64
	aimAssist bool
}

func main() {
	var (
		serverURL = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		timeout   = flag.Duration("timeout", 15*time.Second, "Сколько ждать исхода удара")
		logLevel  = flag.String("log-level", "info", "Уровень логирования")
		s         shot
	)
	flag.StringVar(&s.planet, "planet", "earth", "Планета (earth, moon, mars)")
	flag.StringVar(&s.preset, "preset", "center", "Точка удара (left, center, right)")
	flag.Float64Var(&s.speed, "speed", 25, "Скорость удара")
	flag.Float64Var(&s.spin, "spin", 0, "Подкрутка")
	flag.Float64Var(&s.windSpeed, "wind", 0, "Скорость ветра")
	flag.Float64Var(&s.windDir, "wind-dir", 0, "Направление ветра, градусы")
	flag.Float64Var(&s.targetX, "target-x", 0, "Цель по X")
	flag.Float64Var(&s.targetY, "target-y", 2, "Цель по Y")
	flag.BoolVar(&s.aimAssist, "aim", true, "Показывать предсказание")
	flag.Parse()

	logger, err := logging.New(logging.Options{Level: *logLevel, Format: logging.FormatConsole})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	u, err := url.Parse(*serverURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Неверный URL")
	}
	logger.Info().Str("url", u.String()).Msg("Подключение")

	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Ошибка подключения")
	}
	defer conn.Close()
	logger.Info().Msg("Успешно подключен")

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	result := make(chan error, 1)
	go func() { result <- watch(conn, logger) }()

	if err := send(conn, s); err != nil {
		logger.Fatal().Err(err).Msg("Ошибка отправки команд")
	}

	select {
	case err := <-result:
		if err != nil {
			logger.Error().Err(err).Msg("Удар не состоялся")
		}
	case <-time.After(*timeout):
		logger.Warn().Dur("timeout", *timeout).Msg("Исход не получен")
	case <-interrupt:
		logger.Info().Msg("Прервано")
	}

	_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	logger.Info().Msg("Тест завершен")
}

// send настраивает удар и бьет
func send(conn *websocket.Conn, s shot) error {
	now := time.Now().UnixMilli()
	messages := []interface{}{
		ws.CommandMessage{Type: ws.MessageTypeReset, ClientTime: now},
		ws.PlanetMessage{Type: ws.MessageTypePlanet, Key: s.planet, ClientTime: now},
		ws.StartPositionMessage{Type: ws.MessageTypeStartPosition, Preset: s.preset, ClientTime: now},
		ws.AimAssistMessage{Type: ws.MessageTypeAimAssist, Enabled: s.aimAssist, ClientTime: now},
		param(game.ParamSpeed, s.speed, now),
		param(game.ParamSpin, s.spin, now),
		param(game.ParamWindSpeed, s.windSpeed, now),
		param(game.ParamWindDir, s.windDir, now),
		param(game.ParamTargetX, s.targetX, now),
		param(game.ParamTargetY, s.targetY, now),
		ws.CommandMessage{Type: ws.MessageTypeShoot, ClientTime: now},
	}
	for _, msg := range messages {
		if err := conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func param(name string, value float64, clientTime int64) ws.SetParamMessage {
	return ws.SetParamMessage{
		Type:       ws.MessageTypeSetParam,
		Name:       name,
		Value:      ws.RawValue(strconv.FormatFloat(value, 'f', -1, 64)),
		ClientTime: clientTime,
	}
}

// watch печатает поток сообщений, пока раунд не закончится или мяч не остановится
func watch(conn *websocket.Conn, logger zerolog.Logger) error {
	var (
		lastStatus string
		shotAcked  bool
		wasFlying  bool
	)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var base struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(data, &base); err != nil {
			logger.Warn().Err(err).Msg("Ошибка разбора сообщения")
			continue
		}

		switch base.Type {
		case ws.MessageTypeInfo:
			var msg ws.InfoMessage
			if err := json.Unmarshal(data, &msg); err == nil {
				logger.Info().Str("message", msg.Message).Msg("Информация")
			}

		case ws.MessageTypeAck:
			var msg ws.AckMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if !msg.OK {
				logger.Warn().Str("cmd", msg.Cmd).Str("error", msg.Error).Msg("Команда отклонена")
				if msg.Cmd == ws.MessageTypeShoot {
					return errors.New("удар отклонен: " + msg.Error)
				}
				continue
			}
			shotAcked = shotAcked || msg.Cmd == ws.MessageTypeShoot

		case ws.MessageTypePrediction:
			var msg ws.PredictionMessage
			if err := json.Unmarshal(data, &msg); err != nil || !msg.Visible || msg.Stats == nil {
				continue
			}
			logger.Info().
				Int("points", len(msg.Points)/3).
				Str("planet", msg.Stats.Planet).
				Float64("speed", msg.Stats.InitialSpeed).
				Float64("spin", msg.Stats.SpinY).
				Float64("wind", msg.Stats.WindSpeed).
				Float64("magnus", msg.Stats.InitialMagnus).
				Msg("Предсказание")

		case ws.MessageTypeFrame:
			var msg ws.FrameMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			if msg.Status.Text != lastStatus && shotAcked {
				lastStatus = msg.Status.Text
				logger.Info().
					Uint64("tick", msg.Tick).
					Str("status", msg.Status.Text).
					Floats64("ball", []float64{msg.Ball.X, msg.Ball.Y, msg.Ball.Z}).
					Float64("keeper_x", msg.KeeperX).
					Msg("Кадр")
			}
			if !shotAcked {
				continue
			}
			if msg.Ended {
				logger.Info().Str("status", msg.Status.Text).Msg("Исход")
				return nil
			}
			if wasFlying && !msg.Flying {
				logger.Info().Floats64("ball", []float64{msg.Ball.X, msg.Ball.Y, msg.Ball.Z}).Msg("Мяч остановился")
				return nil
			}
			wasFlying = wasFlying || msg.Flying

		case ws.MessageTypePlanets, ws.MessageTypePong:

		default:
			return errors.New("неизвестный тип сообщения: " + base.Type)
		}
	}
}

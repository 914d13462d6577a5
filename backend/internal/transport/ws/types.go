package ws

import (
	"encoding/json"
	"strconv"
	"strings"

	"penalty-kick/backend/internal/physics"
)

// Константы для WebSocket сообщений
const (
	// От клиента
	MessageTypeShoot         = "shoot"          // Удар
	MessageTypeReset         = "reset"          // Вернуть мяч
	MessageTypeSetParam      = "set_param"      // Изменить параметр удара или ветра
	MessageTypePlanet        = "planet"         // Выбрать планету
	MessageTypeStartPosition = "start_position" // Выбрать точку удара
	MessageTypeAimAssist     = "aim_assist"     // Включить подсказку траектории
	MessageTypePing          = "ping"           // Пинг для измерения задержки

	// От сервера
	MessageTypePong       = "pong"       // Ответ на пинг
	MessageTypeAck        = "cmd_ack"    // Подтверждение команды
	MessageTypeInfo       = "info"       // Информационное сообщение
	MessageTypeFrame      = "frame"      // Состояние мяча, вратаря и статус
	MessageTypePrediction = "prediction" // Предсказанная траектория
	MessageTypePlanets    = "planets"    // Список планет
)

// CommandMessage команда без аргументов (shoot, reset)
type CommandMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time,omitempty"`
}

// RawValue значение параметра как его прислал клиент: строкой или числом
type RawValue string

// UnmarshalJSON принимает и "12.5", и 12.5
func (v *RawValue) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if strings.HasPrefix(text, `"`) {
		s, err := strconv.Unquote(text)
		if err != nil {
			return err
		}
		*v = RawValue(s)
		return nil
	}
	if text == "null" {
		*v = ""
		return nil
	}
	*v = RawValue(text)
	return nil
}

// SetParamMessage изменение параметра
type SetParamMessage struct {
	Type       string   `json:"type"`
	Name       string   `json:"name"`
	Value      RawValue `json:"value"`
	ClientTime int64    `json:"client_time,omitempty"`
}

// PlanetMessage выбор планеты
type PlanetMessage struct {
	Type       string `json:"type"`
	Key        string `json:"key"`
	ClientTime int64  `json:"client_time,omitempty"`
}

// StartPositionMessage выбор точки удара
type StartPositionMessage struct {
	Type       string `json:"type"`
	Preset     string `json:"preset"`
	ClientTime int64  `json:"client_time,omitempty"`
}

// AimAssistMessage включение подсказки
type AimAssistMessage struct {
	Type       string `json:"type"`
	Enabled    bool   `json:"enabled"`
	ClientTime int64  `json:"client_time,omitempty"`
}

// AckMessage представляет подтверждение команды сервером
type AckMessage struct {
	Type       string `json:"type"`
	Cmd        string `json:"cmd"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// PingMessage представляет пинг от клиента
type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
}

// PongMessage представляет ответ на пинг от сервера
type PongMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// InfoMessage представляет информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// BallMessage положение и ориентация мяча
type BallMessage struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	Z  float64 `json:"z"`
	QX float64 `json:"qx"`
	QY float64 `json:"qy"`
	QZ float64 `json:"qz"`
	QW float64 `json:"qw"`
}

// StatusMessage текст и цвет статуса
type StatusMessage struct {
	Kind  string `json:"kind"`
	Text  string `json:"text"`
	Color string `json:"color"`
}

// FrameMessage кадр игры
type FrameMessage struct {
	Type       string        `json:"type"`
	Tick       uint64        `json:"tick"`
	Ball       BallMessage   `json:"ball"`
	Trail      []float64     `json:"trail"`
	KeeperX    float64       `json:"keeper_x"`
	Status     StatusMessage `json:"status"`
	Flying     bool          `json:"flying"`
	Ended      bool          `json:"ended"`
	Planet     string        `json:"planet"`
	Preset     string        `json:"preset"`
	AimAssist  bool          `json:"aim_assist"`
	ServerTime int64         `json:"server_time"`
}

// PredictionMessage предсказанная траектория и статистика
type PredictionMessage struct {
	Type    string         `json:"type"`
	Visible bool           `json:"visible"`
	Points  []float64      `json:"points"`
	Stats   *physics.Stats `json:"stats,omitempty"`
}

// PlanetsMessage список планет для выбора
type PlanetsMessage struct {
	Type    string           `json:"type"`
	Planets []physics.Planet `json:"planets"`
	Current string           `json:"current"`
}

var _ json.Unmarshaler = (*RawValue)(nil)

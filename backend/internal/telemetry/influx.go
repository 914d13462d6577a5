package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"

	"penalty-kick/backend/internal/game"
)

// ErrInfluxUnavailable сервер InfluxDB не ответил на ping
var ErrInfluxUnavailable = errors.New("influxdb is unavailable")

// MeasurementShotEvent имя измерения для событий удара
const MeasurementShotEvent = "shot_event"

// InfluxConfig настройки выгрузки событий в InfluxDB
type InfluxConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	URL           string `mapstructure:"url"`
	Token         string `mapstructure:"token"`
	Org           string `mapstructure:"org"`
	Bucket        string `mapstructure:"bucket"`
	BatchSize     uint   `mapstructure:"batch_size"`
	FlushInterval uint   `mapstructure:"flush_interval"` // миллисекунды
}

// DefaultInfluxConfig выключенная выгрузка с локальными адресами
func DefaultInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:       false,
		URL:           "http://localhost:8086",
		Org:           "penalty",
		Bucket:        "shots",
		BatchSize:     100,
		FlushInterval: 1000,
	}
}

// InfluxSink пишет исходы ударов в InfluxDB
type InfluxSink struct {
	client influxdb2.Client
	writer influxdb2_api.WriteAPI
	logger zerolog.Logger
	done   chan struct{}
}

// NewInfluxSink подключается к InfluxDB и проверяет доступность
func NewInfluxSink(ctx context.Context, cfg InfluxConfig, logger zerolog.Logger) (*InfluxSink, error) {
	client := influxdb2.NewClientWithOptions(
		cfg.URL,
		cfg.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(cfg.BatchSize).
			SetFlushInterval(cfg.FlushInterval),
	)

	running, err := client.Ping(ctx)
	if err != nil || !running {
		client.Close()
		if err == nil {
			err = ErrInfluxUnavailable
		}
		return nil, fmt.Errorf("influx ping %s: %w", cfg.URL, err)
	}

	sink := &InfluxSink{
		client: client,
		writer: client.WriteAPI(cfg.Org, cfg.Bucket),
		logger: logger.With().Str("component", "influx").Str("bucket", cfg.Bucket).Logger(),
		done:   make(chan struct{}),
	}

	errorsCh := sink.writer.Errors()
	go func() {
		defer close(sink.done)
		for writeErr := range errorsCh {
			sink.logger.Error().Err(writeErr).Msg("Ошибка отправки данных в InfluxDB")
		}
	}()

	sink.logger.Info().Msg("InfluxDB клиент инициализирован")
	return sink, nil
}

// Observe пишет удар и его исход. Предсказания и сбросы не пишутся
func (s *InfluxSink) Observe(event game.Event) {
	if event.Kind == game.EventPrediction || event.Kind == game.EventReset {
		return
	}
	s.writer.WritePoint(EventPoint(event, time.Now()))
}

// Flush отправляет накопленные точки
func (s *InfluxSink) Flush() {
	s.writer.Flush()
}

// Close отправляет остаток и закрывает клиент
func (s *InfluxSink) Close() {
	s.writer.Flush()
	s.client.Close()
	select {
	case <-s.done:
	case <-time.After(time.Second):
		s.logger.Warn().Msg("Канал ошибок InfluxDB не закрыт")
	}
}

// EventPoint точка измерения shot_event для события
func EventPoint(event game.Event, at time.Time) *influxdb2_write.Point {
	tags := map[string]string{
		"kind":   string(event.Kind),
		"planet": event.Planet,
	}
	if event.Collider != "" {
		tags["collider"] = event.Collider
	}

	return influxdb2.NewPoint(
		MeasurementShotEvent,
		tags,
		map[string]interface{}{
			"x":     event.Position[0],
			"y":     event.Position[1],
			"z":     event.Position[2],
			"speed": event.Speed,
			"spin":  event.Spin,
			"tick":  int64(event.Tick),
		},
		at,
	)
}

var _ game.EventObserver = (*InfluxSink)(nil)

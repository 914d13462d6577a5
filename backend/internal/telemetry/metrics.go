package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"penalty-kick/backend/internal/game"
)

const instrumentationName = "penalty-kick/backend/internal/telemetry"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// Metrics счетчики OpenTelemetry по событиям раунда
type Metrics struct {
	events    metric.Int64Counter
	shots     metric.Int64Counter
	shotSpeed metric.Float64Histogram
}

// NewMetrics регистрирует инструменты. nil означает глобальный провайдер
func NewMetrics(m metric.Meter) (*Metrics, error) {
	if m == nil {
		m = meter()
	}

	events, err := m.Int64Counter("penalty.events",
		metric.WithDescription("Events emitted by the penalty session"),
		metric.WithUnit("{event}"))
	if err != nil {
		return nil, err
	}
	shots, err := m.Int64Counter("penalty.shots",
		metric.WithDescription("Shots taken, by planet"),
		metric.WithUnit("{shot}"))
	if err != nil {
		return nil, err
	}
	shotSpeed, err := m.Float64Histogram("penalty.shot.speed",
		metric.WithDescription("Launch speed of shots"),
		metric.WithUnit("m/s"))
	if err != nil {
		return nil, err
	}

	return &Metrics{events: events, shots: shots, shotSpeed: shotSpeed}, nil
}

// Observe учитывает событие
func (m *Metrics) Observe(event game.Event) {
	ctx := context.Background()
	m.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(event.Kind)),
		attribute.String("planet", event.Planet),
	))

	if event.Kind != game.EventShot {
		return
	}
	planet := metric.WithAttributes(attribute.String("planet", event.Planet))
	m.shots.Add(ctx, 1, planet)
	m.shotSpeed.Record(ctx, event.Speed, planet)
}

var _ game.EventObserver = (*Metrics)(nil)

package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"penalty-kick/backend/internal/config"
	"penalty-kick/backend/internal/game"
	"penalty-kick/backend/internal/logging"
	"penalty-kick/backend/internal/telemetry"
	"penalty-kick/backend/internal/transport/ws"
)

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", os.Getenv("PENALTY_CONFIG"), "Путь к файлу конфигурации (yaml, json, toml)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	logger.Info().Str("addr", cfg.Server.Addr).Int("tps", cfg.Game.TPS).Msg("Запуск сервера пенальти")

	// Телеметрия
	tm := telemetry.NewManager(cfg.Telemetry.MaxEntries, logger)
	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("creating metrics: %w", err)
	}
	observers := []game.EventObserver{tm, metrics}

	if cfg.Influx.Enabled {
		sink, err := telemetry.NewInfluxSink(ctx, cfg.Influx, logger)
		if err != nil {
			// Игра работает и без InfluxDB
			logger.Warn().Err(err).Msg("InfluxDB недоступен, выгрузка событий отключена")
		} else {
			defer sink.Close()
			observers = append(observers, sink)
		}
	}

	// Игровая сессия и цикл
	controls := game.NewControls(cfg.Game.Defaults)
	session, err := game.NewSession(cfg.Physics, cfg.Game.Keeper, controls, logger)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	queue := game.NewCommandQueue(session, cfg.Game.QueueSize, logger)
	wsServer := ws.NewWSServer(queue, logger)
	wsServer.SetCommandTimeout(cfg.Server.CommandTimeout)
	wsServer.SetPingInterval(cfg.Server.PingInterval)

	ticker := game.NewGameTicker(cfg.Game.TPS, logger)
	ticker.RegisterSystem(queue)
	ticker.RegisterSystem(game.NewSimulationSystem(session))
	ticker.RegisterSystem(game.NewTelemetrySystem(session, observers...))
	ticker.RegisterSystem(game.NewNetworkSyncSystem(session, wsServer, cfg.Game.BroadcastInterval, logger))
	ticker.RegisterSystem(game.NewGameMetricsSystem(ticker, session, cfg.Game.StatsInterval, logger))

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           newMux(wsServer, tm, ticker, cfg.Server.StaticDir, logger),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := ticker.Run(gctx); err != nil {
			return fmt.Errorf("game ticker: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info().Str("addr", httpServer.Addr).Str("static", cfg.Server.StaticDir).Msg("HTTP сервер слушает")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	tm.LogSummary()
	logger.Info().Msg("Сервер остановлен")
	return err
}

// statsProvider статистика игрового цикла
type statsProvider interface {
	GetStats() map[string]interface{}
}

// telemetrySource сводка событий
type telemetrySource interface {
	GetTelemetryJSON() (string, error)
}

func newMux(wsServer *ws.WSServer, tm telemetrySource, stats statsProvider, staticDir string, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", wsServer.HandleWS)

	mux.HandleFunc("/telemetry", func(w http.ResponseWriter, r *http.Request) {
		data, err := tm.GetTelemetryJSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(data))
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		body := stats.GetStats()
		body["clients"] = wsServer.ClientCount()
		body["dropped_messages"] = wsServer.DroppedMessages()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Warn().Err(err).Msg("Ошибка отправки статистики")
		}
	})

	if _, err := os.Stat(staticDir); os.IsNotExist(err) {
		logger.Warn().Str("dir", staticDir).Msg("Каталог статики не найден")
	}
	mux.Handle("/", http.FileServer(http.Dir(staticDir)))

	return mux
}

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/battleship3d/internal/board"
	"github.com/annel0/battleship3d/internal/config"
	"github.com/annel0/battleship3d/internal/eventbus"
	"github.com/annel0/battleship3d/internal/game"
	"github.com/annel0/battleship3d/internal/logging"
	"github.com/annel0/battleship3d/internal/metrics"
	"github.com/annel0/battleship3d/internal/observability"
	"github.com/annel0/battleship3d/internal/storage"
	"github.com/annel0/battleship3d/internal/vec"
	"github.com/google/uuid"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config (or BATTLESHIP_CONFIG)")
		salvoPath  = flag.String("salvo", "", "Path to YAML salvo script; empty: sweep along X")
		quiet      = flag.Bool("quiet", false, "Do not print boards")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Ошибка загрузки конфигурации: %v", err)
	}

	logOpts := logging.Options{
		Dir:             cfg.Logging.Dir,
		MinConsoleLevel: logging.ParseLevel(cfg.Logging.Level),
		MinFileLevel:    logging.TRACE,
	}
	if err := logging.InitDefaultLoggerWithOptions("sim", logOpts); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()
	logging.GetLoggerManager().Configure(logOpts)
	defer logging.GetLoggerManager().CloseAll()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *salvoPath, *quiet); err != nil {
		logging.Error("❌ %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, salvoPath string, quiet bool) error {
	logging.Info("🎮 Запуск симуляции: поле %dx%dx%d, флот %v", cfg.Board.X, cfg.Board.Y, cfg.Board.Z, cfg.Fleet.Sizes)

	shutdown, err := observability.InitTelemetry(ctx, observability.Options{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer shutdown(context.Background())

	collector, err := metrics.NewCollector(nil)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	if cfg.Metrics.Addr != "" {
		srv := metrics.Serve(cfg.Metrics.Addr, nil)
		defer srv.Close()
	}

	bus, err := newBus(cfg)
	if err != nil {
		return err
	}
	defer bus.Close()
	eventbus.Init(bus)
	if _, err := eventbus.NewMetricsExporter(bus, nil); err != nil {
		return fmt.Errorf("eventbus metrics: %w", err)
	}
	if _, err := eventbus.StartLoggingListener(bus); err != nil {
		return fmt.Errorf("eventbus listener: %w", err)
	}

	repo, err := newRepo(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	svc := game.NewService(game.Options{Bus: bus, Metrics: collector, Repo: repo})
	dims := vec.Vec3{X: cfg.Board.X, Y: cfg.Board.Y, Z: cfg.Board.Z}

	var boards [2]uuid.UUID
	for i, name := range []string{"north", "south"} {
		owner := board.NewOwner(name, cfg.Fleet.MaxShips)
		id, err := svc.CreateBoard(ctx, owner, dims)
		if err != nil {
			return err
		}
		if _, err := svc.Deploy(ctx, id, owner.ID, cfg.Fleet.Sizes, cfg.Fleet.Seed+int64(i)); err != nil {
			return fmt.Errorf("deploy %s: %w", name, err)
		}
		boards[i] = id
	}

	salvo := SweepSalvo(cfg.Board.X)
	if salvoPath != "" {
		if salvo, err = LoadSalvo(salvoPath); err != nil {
			return err
		}
	}

	for i, shot := range salvo.Shots {
		if ctx.Err() != nil {
			logging.Warn("⏹ Симуляция прервана на выстреле %d", i)
			break
		}
		id := boards[shot.Target]
		res, err := svc.Fire(ctx, id, shot.Tag, shot.A, shot.B, shot.Vertical)
		if err != nil {
			logging.Warn("⚠️ Выстрел %d (%s %d,%d) отклонён: %v", i, shot.Tag, shot.A, shot.B, err)
			continue
		}
		logging.Debug("🎯 Выстрел %d по %d: %s (%d,%d) hit=%v sunk=%v", i, shot.Target, shot.Tag, shot.A, shot.B, res.Hit(), res.Sunk())

		if b, _ := svc.Board(id); b.Defeated() {
			logging.Info("🏁 Флот игрока %d уничтожен после выстрела %d", shot.Target, i)
			break
		}
	}

	for i, id := range boards {
		b, _ := svc.Board(id)
		if !quiet {
			fmt.Printf("=== %s (%s) осталось кораблей: %d ===\n%s\n", b.Owner().Name, id, b.Remaining(), b)
		}
		if err := svc.Save(ctx, id); err != nil {
			return fmt.Errorf("save board %d: %w", i, err)
		}
	}

	stats := bus.Metrics()
	logging.Info("📊 События: опубликовано=%d доставлено=%d отброшено=%d", stats.Published, stats.Consumed, stats.Dropped)
	return nil
}

func newBus(cfg *config.Config) (eventbus.EventBus, error) {
	if cfg.EventBus.URL == "" {
		return eventbus.NewMemoryBus(cfg.EventBus.Buffer), nil
	}
	bus, err := eventbus.NewJetStreamBus(cfg.EventBus.URL, cfg.EventBus.Stream, time.Duration(cfg.EventBus.Retention)*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("eventbus: %w", err)
	}
	logging.Info("📨 JetStream подключён: %s stream=%s", cfg.EventBus.URL, cfg.EventBus.Stream)
	return bus, nil
}

func newRepo(ctx context.Context, cfg *config.Config) (storage.BoardRepo, error) {
	switch cfg.Storage.Backend {
	case "badger":
		return storage.NewBadgerBoardRepo(cfg.Storage.BadgerPath)
	case "redis":
		return storage.NewRedisBoardRepo(ctx, &storage.RedisConfig{
			Addr:      cfg.Storage.RedisAddr,
			Password:  cfg.Storage.RedisPass,
			DB:        cfg.Storage.RedisDB,
			KeyPrefix: cfg.Storage.KeyPrefix,
			TTL:       time.Duration(cfg.Storage.TTLSeconds) * time.Second,
		})
	default:
		return storage.NewMemoryBoardRepo(), nil
	}
}

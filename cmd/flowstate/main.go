package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/joho/godotenv"

	"flowstate/internal/config"
	"flowstate/internal/planner"
	"flowstate/internal/service"
	"flowstate/internal/storage"
	"flowstate/pkg/logx"
)

const usage = `usage: flowstate [-config path] <command>

commands:
  plan              run a placement pass over the stored tasks
  resolve           right-shift overlapping scheduled tasks
  move <id> <start> cascade-move a task to a new RFC3339 start
  drift             print current schedule drift in minutes
  watch             run the drift poller until interrupted
`

func main() {
	// Optional .env for FLOWSTATE_* overrides; absence is fine.
	_ = godotenv.Load()

	defaultCfg := os.Getenv("FLOWSTATE_CONFIG")
	if defaultCfg == "" {
		defaultCfg = "./config.json"
	}

	var cfgPath string
	flag.StringVar(&cfgPath, "config", defaultCfg, "path to config file (json or yaml)")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, flag.Args()); err != nil {
		fmt.Fprintln(os.Stderr, "fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("missing command")
	}

	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if errors.Is(err, os.ErrNotExist) {
		cfg = &config.Config{Logging: config.LoggingConfig{Level: "info", Console: true}}
		mgr.Commit(cfg)
	} else if err != nil {
		return fmt.Errorf("loading config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
	})
	defer logSvc.Close()
	mgr.SetLogger(log)

	store, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	switch args[0] {
	case "plan":
		return cmdPlan(ctx, cfg, store, log)
	case "resolve":
		return cmdResolve(ctx, store, log)
	case "move":
		if len(args) != 3 {
			return errors.New("usage: flowstate move <task-id> <RFC3339 start>")
		}
		return cmdMove(ctx, store, log, args[1], args[2])
	case "drift":
		return cmdDrift(ctx, store)
	case "watch":
		return cmdWatch(ctx, mgr, cfg, store, logSvc, log)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func openStore(cfg *config.Config, log logx.Logger) (storage.Store, error) {
	if cfg.Storage == nil {
		return nil, nil
	}
	busy, err := config.ParseDurationField("storage.busy_timeout", cfg.Storage.BusyTimeout)
	if err != nil {
		return nil, err
	}
	return storage.Open(storage.Config{
		Driver:      cfg.Storage.Driver,
		Path:        cfg.Storage.Path,
		BusyTimeout: busy,
	}, log)
}

func requireStore(store storage.Store) error {
	if store == nil {
		return errors.New("this command needs storage; set the storage block in the config")
	}
	return nil
}

// effectiveSettings prefers the user's persisted settings blob over the
// config file's planner block.
func effectiveSettings(ctx context.Context, cfg *config.Config, store storage.Store) (planner.Settings, error) {
	if store != nil {
		if _, ok, err := store.Get(ctx, storage.KeySettings); err == nil && ok {
			return storage.LoadSettings(ctx, store)
		} else if err != nil {
			return planner.Settings{}, err
		}
	}
	return cfg.Planner.Settings(), nil
}

func cmdPlan(ctx context.Context, cfg *config.Config, store storage.Store, log logx.Logger) error {
	if err := requireStore(store); err != nil {
		return err
	}
	tasks, err := storage.LoadTasks(ctx, store)
	if err != nil {
		return err
	}
	settings, err := effectiveSettings(ctx, cfg, store)
	if err != nil {
		return err
	}

	now := time.Now()
	plan, err := planner.Plan(tasks, now, settings)
	if err != nil {
		return err
	}

	for _, t := range plan.Scheduled {
		fmt.Printf("%s  %s - %s  %s\n",
			t.Start.Format("Mon 2006-01-02"), t.Start.Format("15:04"), t.End.Format("15:04"), t.Title)
	}
	for _, u := range plan.Unscheduled {
		fmt.Printf("unscheduled: %s (%s)\n", u.Task.Title, u.Reason)
	}
	for _, w := range plan.Warnings {
		fmt.Println("warning:", w)
	}

	if err := storage.SavePlan(ctx, store, plan); err != nil {
		return err
	}
	if err := storage.SaveTasks(ctx, store, service.ApplyPlan(tasks, plan)); err != nil {
		return err
	}
	log.Info("plan complete",
		logx.Int("scheduled", len(plan.Scheduled)),
		logx.Int("breaks", len(plan.Breaks)),
		logx.Int("unscheduled", len(plan.Unscheduled)))
	return nil
}

func cmdResolve(ctx context.Context, store storage.Store, log logx.Logger) error {
	if err := requireStore(store); err != nil {
		return err
	}
	tasks, err := storage.LoadTasks(ctx, store)
	if err != nil {
		return err
	}
	out := planner.ResolveConflicts(tasks)
	if err := storage.SaveTasks(ctx, store, out); err != nil {
		return err
	}
	log.Info("conflicts resolved", logx.Int("tasks", len(out)))
	return nil
}

func cmdMove(ctx context.Context, store storage.Store, log logx.Logger, id, startRaw string) error {
	if err := requireStore(store); err != nil {
		return err
	}
	start, err := time.Parse(time.RFC3339, startRaw)
	if err != nil {
		return fmt.Errorf("invalid start %q: %w", startRaw, err)
	}
	tasks, err := storage.LoadTasks(ctx, store)
	if err != nil {
		return err
	}
	out := planner.CascadeMove(tasks, id, start)
	if err := storage.SaveTasks(ctx, store, out); err != nil {
		return err
	}
	log.Info("task moved", logx.String("id", id), logx.Time("start", start))
	return nil
}

func cmdDrift(ctx context.Context, store storage.Store) error {
	if err := requireStore(store); err != nil {
		return err
	}
	tasks, err := storage.LoadTasks(ctx, store)
	if err != nil {
		return err
	}
	fmt.Println(planner.Drift(tasks, time.Now()))
	return nil
}

func cmdWatch(ctx context.Context, mgr *config.Manager, cfg *config.Config, store storage.Store, logSvc *logx.Service, log logx.Logger) error {
	if err := requireStore(store); err != nil {
		return err
	}
	settings, err := effectiveSettings(ctx, cfg, store)
	if err != nil {
		return err
	}

	svc := service.New(driftConfig(cfg, settings), store, log)
	if err := svc.Start(ctx); err != nil {
		return err
	}

	// The store stays open for the process lifetime; reject reloads that
	// would point it somewhere else.
	mgr.SetValidator(func(_ context.Context, next *config.Config) error {
		if err := next.Validate(); err != nil {
			return err
		}
		if storageChanged(mgr.Get().Storage, next.Storage) {
			return errors.New("storage driver/path cannot change at runtime")
		}
		return nil
	})

	go func() {
		if err := mgr.Watch(ctx); err != nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()
	updates := mgr.Subscribe(1)
	defer mgr.Unsubscribe(updates)

	// Running under a systemd unit: report readiness. A no-op elsewhere.
	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	for {
		select {
		case <-ctx.Done():
			_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
			svc.Stop(context.Background())
			return nil
		case next := <-updates:
			if next == nil {
				continue
			}
			logSvc.Apply(logx.Config{
				Level:   next.Logging.Level,
				Console: next.Logging.Console,
				File:    logx.FileConfig{Enabled: next.Logging.File.Enabled, Path: next.Logging.File.Path},
			})
			svc.Apply(ctx, driftConfig(next, next.Planner.Settings()))
			log.Info("configuration applied")
		}
	}
}

func storageChanged(cur, next *config.StorageConfig) bool {
	if cur == nil || next == nil {
		return cur != next
	}
	return cur.Driver != next.Driver || cur.Path != next.Path
}

func driftConfig(cfg *config.Config, settings planner.Settings) service.Config {
	out := service.Config{Enabled: true, Interval: time.Minute, Settings: settings}
	if cfg.Drift != nil {
		out.Enabled = cfg.Drift.Enabled
		out.ReplanPerHour = cfg.Drift.ReplanPerHour
		if d, err := config.ParseDurationOrDefault("drift.interval", cfg.Drift.Interval, time.Minute); err == nil {
			out.Interval = d
		}
	}
	return out
}

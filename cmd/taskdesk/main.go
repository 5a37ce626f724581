package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/sandeepkv93/taskdesk/internal/config"
	"github.com/sandeepkv93/taskdesk/internal/logging"
	"github.com/sandeepkv93/taskdesk/internal/nlp"
	"github.com/sandeepkv93/taskdesk/internal/notify"
	"github.com/sandeepkv93/taskdesk/internal/pomodoro"
	"github.com/sandeepkv93/taskdesk/internal/query"
	"github.com/sandeepkv93/taskdesk/internal/scheduler"
	"github.com/sandeepkv93/taskdesk/internal/storage"
	"github.com/sandeepkv93/taskdesk/internal/store"
	"github.com/sandeepkv93/taskdesk/internal/update"
	"github.com/sandeepkv93/taskdesk/internal/web"
)

func main() {
	configPath := flag.String("config", "", "config file path")
	dbPath := flag.String("db", "", "sqlite db path")
	webFlag := flag.Bool("web", false, "serve the HTTP API alongside the terminal UI")
	webOnly := flag.Bool("web-only", false, "serve the HTTP API without the terminal UI")
	flag.Parse()

	if err := run(*configPath, *dbPath, *webFlag, *webOnly); err != nil {
		fmt.Fprintf(os.Stderr, "taskdesk failed: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath string, webFlag, webOnly bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if dbPath != "" {
		cfg.App.DBPath = dbPath
	}
	if webFlag || webOnly {
		cfg.Web.Enabled = true
	}

	if err := os.MkdirAll(cfg.App.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	logger, err := logging.New(cfg.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.App.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	repo, err := storage.OpenSQLite(cfg.App.DBPath)
	if err != nil {
		return err
	}
	defer repo.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st := store.New(store.WithLogger(logger))
	if res := st.Hydrate(ctx, repo, cfg.App.User); !res.OK {
		logger.Warn("starting with empty data", zap.String("reason", string(res.Reason)), zap.Error(res.Err))
	}
	persist := func() error {
		res := st.Persist(context.Background(), repo, cfg.App.User)
		if !res.OK {
			return fmt.Errorf("save failed (%s): %w", res.Reason, res.Err)
		}
		return nil
	}

	cache := query.NewCache(cfg.Query.CacheSize, cfg.Query.CacheTTL)
	parser := nlp.NewParser(nlp.WithClock(st.Now))

	lead := time.Duration(cfg.Notify.LeadMinutes) * time.Minute
	var desktop notify.DesktopNotifier = notify.NoopDesktopNotifier{}
	if cfg.Notify.Desktop {
		desktop = notify.ExecDesktopNotifier{}
	}
	monitor := notify.NewMonitor(notify.WithLead(lead), notify.WithDesktop(desktop), notify.WithLogger(logger))

	if cfg.Web.Enabled {
		handler := web.NewHandler(st, cache, parser, logger, web.WithMonitor(monitor))
		srv := web.NewServer(cfg.Web.Addr, web.NewRouter(handler), cfg.Web.ShutdownTimeout, logger)
		if webOnly {
			err := srv.Run(ctx)
			if perr := persist(); perr != nil {
				logger.Error("persist on shutdown", zap.Error(perr))
			}
			return err
		}
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Error("web server stopped", zap.Error(err))
			}
		}()
	}

	engine := scheduler.NewEngine(cfg.Scheduler.Buffer, scheduler.WithLogger(logger))
	engine.Start()
	defer engine.Stop()

	model := update.NewModel(update.Options{
		Store:   st,
		Cache:   cache,
		Parser:  parser,
		Monitor: monitor,
		Engine:  engine,
		Planner: notify.NewPlanner(engine, lead),
		Pomodoro: pomodoro.Durations{
			Work:           time.Duration(cfg.Pomodoro.WorkMinutes) * time.Minute,
			ShortBreak:     time.Duration(cfg.Pomodoro.ShortBreakMinutes) * time.Minute,
			LongBreak:      time.Duration(cfg.Pomodoro.LongBreakMinutes) * time.Minute,
			LongBreakEvery: cfg.Pomodoro.LongBreakEvery,
		},
		SnoozeFor: time.Duration(cfg.Notify.SnoozeMinutes) * time.Minute,
		Persist:   persist,
		Logger:    logger,
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		_ = persist()
		return err
	}
	logger.Info("taskdesk stopped")
	return nil
}

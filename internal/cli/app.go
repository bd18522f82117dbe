package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"sprout/internal/config"
	"sprout/internal/focus"
	"sprout/internal/logging"
	"sprout/internal/notify"
	"sprout/internal/seed"
	"sprout/internal/storage"
	"sprout/internal/task"
	"sprout/internal/view"
)

const (
	keyConfig = "config"
	keyStore  = "store"
	keyDB     = "db"
)

// app is a loaded tracker: config, open store and the state read from it.
type app struct {
	cfg      config.Config
	kv       storage.KV
	repo     *storage.Repository
	view     *view.Coordinator
	pomodoro focus.Config
	logger   *log.Logger
	closers  []io.Closer
}

// loadConfig resolves the config file and applies flag and env overrides.
func loadConfig(v *viper.Viper) (config.Config, error) {
	path, err := config.ResolveConfigPath(v.GetString(keyConfig))
	if err != nil {
		return config.Config{}, err
	}
	cfg, err := config.LoadOrCreate(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if s := v.GetString(keyStore); s != "" {
		cfg.Store = s
	}
	if db := v.GetString(keyDB); db != "" {
		switch cfg.Store {
		case storage.BackendDiskv:
			cfg.DiskvPath = db
		default:
			cfg.DBPath = db
		}
	}
	return cfg, nil
}

// open loads config, opens the store and reads the tracker state, seeding an
// empty or unreadable store. logTo nil means log to the configured file.
func open(v *viper.Viper, logTo io.Writer) (*app, error) {
	cfg, err := loadConfig(v)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if logTo != nil {
		a.logger = logging.New(logTo, cfg.LogLevel)
	} else {
		logger, closer, err := logging.OpenFile(cfg.LogFile, cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		a.logger = logger
		a.closers = append(a.closers, closer)
	}

	a.kv, err = storage.Open(cfg.Store, cfg.DBPath, cfg.DiskvPath)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	a.closers = append(a.closers, a.kv)
	a.logger.Debug("store opened", "backend", cfg.Store, "db", cfg.DBPath, "diskv", cfg.DiskvPath)
	a.repo = storage.NewRepository(a.kv)

	st, err := a.repo.LoadOrSeed(seed.Func(time.Now), a.logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.view = view.New(st.Tree, task.NewStore(st.Tasks),
		view.WithPersister(a.repo), view.WithLogger(a.logger))
	a.pomodoro = a.resolvePomodoro()
	return a, nil
}

// resolvePomodoro prefers settings saved from the UI over the config file.
func (a *app) resolvePomodoro() focus.Config {
	p := a.cfg.Pomodoro
	saved, ok, err := a.repo.Settings()
	switch {
	case err != nil:
		a.logger.Warn("saved settings unreadable, using config", "err", err)
	case ok:
		candidate := config.Pomodoro{FocusMinutes: saved.FocusMinutes, BreakMinutes: saved.BreakMinutes}
		if err := candidate.Validate(); err != nil {
			a.logger.Warn("saved settings out of range, using config", "err", err)
		} else {
			p = candidate
		}
	}
	return focus.FromMinutes(p.FocusMinutes, p.BreakMinutes)
}

// notifier logs every completion and also posts to Telegram when configured.
func (a *app) notifier() notify.Notifier {
	n := notify.Multi{notify.Log{Logger: a.logger}}
	if !a.cfg.Telegram.Enabled() {
		return n
	}
	tg, err := notify.NewTelegram(a.cfg.Telegram.Token, a.cfg.Telegram.ChatID, a.logger)
	if err != nil {
		a.logger.Error("telegram disabled", "err", err)
		return n
	}
	a.closers = append([]io.Closer{tg}, a.closers...)
	return append(n, tg)
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}

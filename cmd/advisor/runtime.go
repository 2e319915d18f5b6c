package main

import (
	"errors"
	"io/fs"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/pario-ai/advisor/pkg/advisor"
	"github.com/pario-ai/advisor/pkg/cache"
	"github.com/pario-ai/advisor/pkg/cache/memory"
	"github.com/pario-ai/advisor/pkg/cache/sqlite"
	"github.com/pario-ai/advisor/pkg/cascade"
	"github.com/pario-ai/advisor/pkg/config"
	"github.com/pario-ai/advisor/pkg/journal"
	"github.com/pario-ai/advisor/pkg/session"
)

const defaultConfigPath = "advisor.yaml"

// loadConfig reads the config file and installs the logger. A missing
// default config file falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path != defaultConfigPath || !errors.Is(err, fs.ErrNotExist) {
			return nil, eris.Wrap(err, "load config")
		}
		cfg = config.Default()
	}
	if err := config.InitLogger(cfg.Log); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runtime is the wired advisor stack shared by every command.
type runtime struct {
	cfg      *config.Config
	cache    *cache.Cache
	journal  *journal.Journal
	cascade  *cascade.Cascade
	advisor  *advisor.Advisor
	sessions *session.Manager
}

func newRuntime(cfg *config.Config) (*runtime, error) {
	rt := &runtime{cfg: cfg}

	casc, err := cascade.FromConfig(cfg)
	if err != nil {
		return nil, err
	}
	rt.cascade = casc

	var opts []advisor.Option
	if cfg.Cache.Enabled {
		store, err := openStore(cfg)
		if err != nil {
			return nil, err
		}
		rt.cache = cache.New(store, cfg.TTLPolicy())
		opts = append(opts, advisor.WithCache(rt.cache))
	}

	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.DBPath, cfg.Journal.Retention)
		if err != nil {
			rt.Close()
			return nil, err
		}
		rt.journal = j
		opts = append(opts, advisor.WithJournal(j))
	}

	rt.advisor = advisor.New(casc, opts...)
	rt.sessions = session.NewManager(cfg.Locale, cfg.Conversation.Retention, cfg.Conversation.Display)

	zap.L().Debug("runtime ready",
		zap.Strings("backends", casc.Backends()),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.String("store", cfg.Cache.Store),
		zap.Bool("journal", cfg.Journal.Enabled),
	)
	return rt, nil
}

func openStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Store {
	case config.StoreSQLite:
		return sqlite.New(cfg.DBPath)
	default:
		return memory.New(cfg.Cache.JanitorInterval), nil
	}
}

// Close stops background work and releases storage.
func (rt *runtime) Close() {
	if rt.sessions != nil {
		rt.sessions.Close()
	}
	if rt.cache != nil {
		if err := rt.cache.Close(); err != nil {
			zap.L().Warn("close cache", zap.Error(err))
		}
	}
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			zap.L().Warn("close journal", zap.Error(err))
		}
	}
}

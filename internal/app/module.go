// Package app composes one account session out of the building blocks
// (logger, bus, lock, session store, adapter, engine, interface loop)
// and runs sessions back to back until the user quits.
package app

import (
	"context"
	"errors"
	"strings"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/subhdotsol/vimgram/internal/accounts"
	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/chat"
	"github.com/subhdotsol/vimgram/internal/config"
	"github.com/subhdotsol/vimgram/internal/engine"
	"github.com/subhdotsol/vimgram/internal/lock"
	"github.com/subhdotsol/vimgram/internal/logging"
	"github.com/subhdotsol/vimgram/internal/sessionstore"
	"github.com/subhdotsol/vimgram/internal/status"
	"github.com/subhdotsol/vimgram/internal/telegram"
	"github.com/subhdotsol/vimgram/internal/ui"
)

// Params holds everything one account session needs to come up.
type Params struct {
	Base    string
	Account accounts.Account
	Config  *config.Config
	Entries []ui.AccountEntry
	UseQR   bool

	// Screen overrides the terminal screen for tests; nil means the
	// loop allocates a real one.
	Screen tcell.Screen
}

// Module returns the fx module for one account session, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	return fx.Module("session",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideSessionStore,
			provideAdapter,
			provideEngine,
			provideChatStore,
			provideState,
			provideLoop,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	return logging.New(accounts.LogPath(p.Base, p.Account.ID), p.Account.ID, p.Config.Log.Level)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := accounts.EnsureDir(p.Base, p.Account.ID); err != nil {
		return nil, err
	}
	logger.Info("acquiring account lock", zap.String("account", p.Account.ID))
	l, err := lock.Acquire(accounts.Dir(p.Base, p.Account.ID))
	if err != nil {
		return nil, err
	}
	logger.Info("account lock acquired")
	return l, nil
}

// provideSessionStore opens the SQLite session database. It depends on
// the lock so a second process never touches the file.
func provideSessionStore(p Params, _ *lock.Lock, logger *zap.Logger) (*sessionstore.Store, error) {
	dbPath := accounts.SessionDBPath(p.Base, p.Account.ID)
	store, err := sessionstore.Open(dbPath, p.Account.ID)
	if err != nil {
		return nil, err
	}
	result, err := store.Migrate()
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("session store initialized", zap.String("path", dbPath))
	return store, nil
}

func provideAdapter(p Params, store *sessionstore.Store, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *telegram.Adapter {
	// Only a real phone number prefills the login prompt; registry
	// placeholders like "Migrated" must not.
	phone := ""
	if strings.HasPrefix(p.Account.Phone, "+") {
		phone = p.Account.Phone
	}
	return telegram.New(telegram.Options{
		APIID:   p.Config.Telegram.APIID,
		APIHash: p.Config.Telegram.APIHash,
		Phone:   phone,
		UseQR:   p.UseQR,
	}, store, b, machine, logger.Named("telegram"))
}

func provideEngine(adapter *telegram.Adapter, b *bus.Bus, p Params, logger *zap.Logger) *engine.Engine {
	return engine.New(adapter, b, logger.Named("engine"), p.Config.UI.DialogLimit, p.Config.UI.HistoryLimit)
}

func provideChatStore() *chat.Store {
	return chat.NewStore()
}

func provideState(p Params) *ui.State {
	return ui.NewState(p.Entries, p.Account.ID)
}

func provideLoop(p Params, store *chat.Store, st *ui.State, eng *engine.Engine, machine *status.Machine, logger *zap.Logger) *ui.Loop {
	return ui.NewLoop(p.Screen, store, st, eng, machine, logger.Named("ui"), p.Account.DisplayName())
}

func registerLifecycle(lc fx.Lifecycle, lk *lock.Lock, adapter *telegram.Adapter, eng *engine.Engine, store *sessionstore.Store, logger *zap.Logger) {
	var cancel context.CancelFunc
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// The session outlives the start hook's context.
			runCtx, c := context.WithCancel(context.Background())
			cancel = c

			eng.Start(runCtx)
			go func() {
				if err := adapter.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
					logger.Error("telegram connection ended", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			eng.Stop()
			if err := store.Close(); err != nil {
				logger.Warn("error closing session store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("session stopped")
			_ = logger.Sync()
			return nil
		},
	})
}

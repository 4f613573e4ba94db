package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/subhdotsol/vimgram/internal/accounts"
	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/config"
	"github.com/subhdotsol/vimgram/internal/sessionstore"
	"github.com/subhdotsol/vimgram/internal/status"
	"github.com/subhdotsol/vimgram/internal/telegram"
	"github.com/subhdotsol/vimgram/internal/ui"
)

// Options configure the outer account loop.
type Options struct {
	Base      string
	Config    *config.Config
	Registry  *accounts.Registry
	AccountID string
	UseQR     bool

	// Screen, In and Out exist for tests; nil means the real terminal
	// and standard streams.
	Screen tcell.Screen
	In     io.Reader
	Out    io.Writer
}

// Run drives account sessions until a terminal outcome. Switching and
// adding accounts loop back into a fresh session; quit and logging out
// end the process.
func Run(ctx context.Context, opts Options) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	id := opts.AccountID
	for {
		out, err := runSession(ctx, opts, id)
		if err != nil {
			return err
		}

		switch out.Kind {
		case ui.OutcomeQuit:
			fmt.Fprintln(opts.Out, "Goodbye.")
			return nil

		case ui.OutcomeSwitch:
			if err := opts.Registry.SetActive(out.SwitchTo); err != nil {
				return err
			}
			if err := opts.Registry.Save(opts.Base); err != nil {
				return err
			}
			id = out.SwitchTo

		case ui.OutcomeAddAccount:
			acc, err := PromptNewAccount(opts.In, opts.Out, opts.Registry)
			if err != nil {
				return err
			}
			if err := opts.Registry.SetActive(acc.ID); err != nil {
				return err
			}
			if err := opts.Registry.Save(opts.Base); err != nil {
				return err
			}
			id = acc.ID

		case ui.OutcomeDisconnect:
			if err := removeAccount(ctx, opts, id); err != nil {
				return err
			}
			fmt.Fprintln(opts.Out, "Logged out.")
			return nil

		default:
			return fmt.Errorf("unhandled outcome %v", out.Kind)
		}
	}
}

// runSession builds the fx graph for one account, runs the interface
// loop behind the adapter's ready gate and tears everything down again.
func runSession(ctx context.Context, opts Options, id string) (ui.Outcome, error) {
	acc, ok := opts.Registry.Get(id)
	if !ok {
		return ui.Outcome{}, fmt.Errorf("unknown account %q", id)
	}

	entries := make([]ui.AccountEntry, 0, len(opts.Registry.Accounts))
	for _, a := range opts.Registry.Accounts {
		entries = append(entries, ui.AccountEntry{ID: a.ID, Label: a.DisplayName()})
	}

	var (
		loop    *ui.Loop
		adapter *telegram.Adapter
		b       *bus.Bus
		logger  *zap.Logger
	)
	fxApp := fx.New(
		Module(Params{
			Base:    opts.Base,
			Account: acc,
			Config:  opts.Config,
			Entries: entries,
			UseQR:   opts.UseQR,
			Screen:  opts.Screen,
		}),
		fx.Populate(&loop, &adapter, &b, &logger),
		fx.WithLogger(func(l *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: l.Named("fx")}
		}),
	)

	startCtx, cancelStart := context.WithTimeout(ctx, 30*time.Second)
	err := fxApp.Start(startCtx)
	cancelStart()
	if err != nil {
		return ui.Outcome{}, fmt.Errorf("start session %q: %w", id, err)
	}

	out, runErr := interact(ctx, opts, loop, adapter, b)

	// Server-side logout needs the live connection, so it happens
	// before the teardown that follows.
	if runErr == nil && out.Kind == ui.OutcomeDisconnect {
		logoutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := adapter.Logout(logoutCtx); err != nil {
			logger.Warn("server-side logout failed", zap.Error(err))
		}
		cancel()
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStop()
	if err := fxApp.Stop(stopCtx); err != nil && runErr == nil {
		runErr = fmt.Errorf("stop session %q: %w", id, err)
	}
	return out, runErr
}

// interact waits out the plain-terminal auth phase, then hands the
// screen to the interface loop.
func interact(ctx context.Context, opts Options, loop *ui.Loop, adapter *telegram.Adapter, b *bus.Bus) (ui.Outcome, error) {
	changes, unsub := b.Subscribe("session.", 32)
	defer unsub()

	fmt.Fprintln(opts.Out, "Connecting to Telegram...")
	for {
		select {
		case <-adapter.Ready():
			if name := adapter.SelfName(); name != "" {
				fmt.Fprintf(opts.Out, "Logged in as %s\n", name)
			}
			return loop.Run(ctx)
		case evt := <-changes:
			if ch, ok := evt.Payload.(status.Change); ok && ch.To == status.Error {
				return ui.Outcome{}, errors.New("connection failed, see the account log for details")
			}
		case <-ctx.Done():
			return ui.Outcome{Kind: ui.OutcomeQuit}, nil
		}
	}
}

// removeAccount wipes the local session blob and drops the registry
// entry. Logs stay on disk.
func removeAccount(ctx context.Context, opts Options, id string) error {
	store, err := sessionstore.Open(accounts.SessionDBPath(opts.Base, id), id)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	wipeErr := store.Wipe(ctx)
	if err := store.Close(); err != nil && wipeErr == nil {
		wipeErr = err
	}
	if wipeErr != nil {
		return fmt.Errorf("wipe session: %w", wipeErr)
	}

	opts.Registry.Remove(id)
	return opts.Registry.Save(opts.Base)
}

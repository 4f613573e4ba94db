// Package telegram wraps the gotd MTProto client behind the narrow
// surface the rest of the program needs: a managed connection with
// interactive auth, bounded listing and history calls, sends, username
// lookups, and live updates republished on the bus.
package telegram

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"go.uber.org/zap"

	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/status"
)

// Options configure one adapter instance.
type Options struct {
	APIID   int
	APIHash string

	// Phone prefills the interactive auth prompt. Optional.
	Phone string

	// UseQR switches interactive auth to QR login.
	UseQR bool
}

// Adapter owns the gotd client for one account session.
type Adapter struct {
	opts       Options
	client     *telegram.Client
	api        *tg.Client
	dispatcher tg.UpdateDispatcher
	peers      *peerCache
	bus        *bus.Bus
	machine    *status.Machine
	logger     *zap.Logger

	ready     chan struct{}
	readyOnce sync.Once

	selfMu sync.RWMutex
	self   *tg.User
}

// New creates an adapter over the given session storage. Nothing
// connects until Run.
func New(opts Options, storage session.Storage, b *bus.Bus, machine *status.Machine, logger *zap.Logger) *Adapter {
	a := &Adapter{
		opts:       opts,
		dispatcher: tg.NewUpdateDispatcher(),
		peers:      newPeerCache(),
		bus:        b,
		machine:    machine,
		logger:     logger,
		ready:      make(chan struct{}),
	}
	a.registerHandlers()

	a.client = telegram.NewClient(opts.APIID, opts.APIHash, telegram.Options{
		SessionStorage: storage,
		UpdateHandler:  a.dispatcher,
		Logger:         logger.Named("td"),
		Device: telegram.DeviceConfig{
			DeviceModel:    "vimgram",
			SystemVersion:  runtime.GOOS,
			AppVersion:     "0.1.0",
			SystemLangCode: "en",
			LangCode:       "en",
		},
	})
	a.api = a.client.API()
	return a
}

// Ready is closed once the first connection is authorized and usable.
// The caller gates the interface on it so auth prompts finish while the
// terminal is still in line mode.
func (a *Adapter) Ready() <-chan struct{} { return a.ready }

// SelfName returns the logged-in user's display name, if known yet.
func (a *Adapter) SelfName() string {
	a.selfMu.RLock()
	defer a.selfMu.RUnlock()
	if a.self == nil {
		return ""
	}
	return displayUserName(a.self)
}

// Run drives the connection until the context ends, redialing with
// exponential backoff after drops. Fatal credential errors abort
// instead of retrying.
func (a *Adapter) Run(ctx context.Context) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = time.Minute
	bo.MaxElapsedTime = 0

	for {
		err := a.runOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if fatalRun(err) {
			a.transition(status.Error)
			return err
		}
		a.logger.Warn("connection lost", zap.Error(err))
		a.transition(status.Reconnecting)

		wait := bo.NextBackOff()
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (a *Adapter) runOnce(ctx context.Context) error {
	a.transition(status.Connecting)
	return a.client.Run(ctx, func(ctx context.Context) error {
		st, err := a.client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("auth status: %w", err)
		}
		if !st.Authorized {
			a.transition(status.AuthRequired)
			if err := a.authorize(ctx); err != nil {
				return fmt.Errorf("authorize: %w", err)
			}
			a.bus.Emit(bus.KindAuthorized, nil)
		}

		self, err := a.client.Self(ctx)
		if err != nil {
			return fmt.Errorf("who am i: %w", err)
		}
		a.setSelf(self)
		a.transition(status.Ready)
		a.signalReady()
		a.logger.Info("connected", zap.Int64("user_id", self.ID))

		<-ctx.Done()
		return ctx.Err()
	})
}

// authorize completes interactive login on the plain terminal.
func (a *Adapter) authorize(ctx context.Context) error {
	if a.opts.UseQR {
		return a.qrAuth(ctx)
	}
	flow := auth.NewFlow(newTerminalAuth(a.opts.Phone), auth.SendCodeOptions{})
	return a.client.Auth().IfNecessary(ctx, flow)
}

func (a *Adapter) setSelf(u *tg.User) {
	a.selfMu.Lock()
	a.self = u
	a.selfMu.Unlock()
}

func (a *Adapter) signalReady() {
	a.readyOnce.Do(func() { close(a.ready) })
}

// transition moves the status machine, logging rejected moves instead of
// failing; the machine's table is the authority on what is reachable.
func (a *Adapter) transition(to status.State) {
	if err := a.machine.Transition(to); err != nil {
		a.logger.Debug("status transition rejected", zap.Error(err))
	}
}

// fatalRun reports errors that retrying cannot fix.
func fatalRun(err error) bool {
	if err == nil {
		return false
	}
	return tgerr.Is(err, "API_ID_INVALID", "API_ID_PUBLISHED_FLOOD", "PHONE_NUMBER_BANNED")
}

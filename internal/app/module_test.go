package app

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/fx"

	"github.com/subhdotsol/vimgram/internal/accounts"
	"github.com/subhdotsol/vimgram/internal/bus"
	"github.com/subhdotsol/vimgram/internal/config"
	"github.com/subhdotsol/vimgram/internal/sessionstore"
	"github.com/subhdotsol/vimgram/internal/telegram"
	"github.com/subhdotsol/vimgram/internal/ui"
	"go.uber.org/zap"
)

func testParams(t *testing.T) Params {
	t.Helper()
	cfg := config.Default()
	cfg.Telegram.APIID = 1
	cfg.Telegram.APIHash = "test-hash"
	return Params{
		Base:    t.TempDir(),
		Account: accounts.Account{ID: "test", Phone: "+15550000000", Name: "Test"},
		Config:  cfg,
		Entries: []ui.AccountEntry{{ID: "test", Label: "Test"}},
		Screen:  tcell.NewSimulationScreen("UTF-8"),
	}
}

// TestSessionProvidersCompose builds the session components by hand the
// way the fx module does, without connecting anywhere.
func TestSessionProvidersCompose(t *testing.T) {
	p := testParams(t)

	logger, err := provideLogger(p)
	if err != nil {
		t.Fatalf("provideLogger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	b := provideBus()
	machine := provideStateMachine(b)

	lk, err := provideLock(p, logger)
	if err != nil {
		t.Fatalf("provideLock: %v", err)
	}
	defer func() { _ = lk.Release() }()

	store, err := provideSessionStore(p, lk, logger)
	if err != nil {
		t.Fatalf("provideSessionStore: %v", err)
	}
	defer func() { _ = store.Close() }()

	adapter := provideAdapter(p, store, b, machine, logger)
	if adapter == nil {
		t.Fatal("adapter is nil")
	}
	eng := provideEngine(adapter, b, p, logger)
	chats := provideChatStore()
	st := provideState(p)
	loop := provideLoop(p, chats, st, eng, machine, logger)
	if loop == nil {
		t.Fatal("loop is nil")
	}

	if st.ActiveAccount != "test" {
		t.Errorf("active account = %q", st.ActiveAccount)
	}
	if _, err := os.Stat(accounts.LogPath(p.Base, "test")); err != nil {
		t.Errorf("log file missing: %v", err)
	}
}

// TestSessionGraphResolves validates the fx dependency graph without
// executing constructors.
func TestSessionGraphResolves(t *testing.T) {
	var (
		loop    *ui.Loop
		adapter *telegram.Adapter
		b       *bus.Bus
		logger  *zap.Logger
	)
	err := fx.ValidateApp(
		Module(testParams(t)),
		fx.Populate(&loop, &adapter, &b, &logger),
	)
	if err != nil {
		t.Fatalf("fx graph does not resolve: %v", err)
	}
}

func TestSecondLockHolderRejected(t *testing.T) {
	p := testParams(t)
	logger := zap.NewNop()

	first, err := provideLock(p, logger)
	if err != nil {
		t.Fatalf("provideLock: %v", err)
	}
	defer func() { _ = first.Release() }()

	if _, err := provideLock(p, logger); err == nil {
		t.Error("second lock on the same account should fail")
	}
}

func TestRunSessionUnknownAccount(t *testing.T) {
	opts := Options{
		Base:     t.TempDir(),
		Config:   config.Default(),
		Registry: &accounts.Registry{},
	}
	if _, err := runSession(context.Background(), opts, "ghost"); err == nil {
		t.Error("unknown account should fail before composing anything")
	}
}

func TestRemoveAccountWipesAndDeregisters(t *testing.T) {
	base := t.TempDir()
	reg := &accounts.Registry{}
	acc := reg.Add("+1555", "doomed")
	if err := accounts.EnsureDir(base, acc.ID); err != nil {
		t.Fatal(err)
	}

	store, err := sessionstore.Open(accounts.SessionDBPath(base, acc.ID), acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Migrate(); err != nil {
		t.Fatal(err)
	}
	if err := store.StoreSession(context.Background(), []byte("auth-key")); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	opts := Options{Base: base, Registry: reg}
	if err := removeAccount(context.Background(), opts, acc.ID); err != nil {
		t.Fatalf("removeAccount: %v", err)
	}

	if _, ok := reg.Get(acc.ID); ok {
		t.Error("account still registered")
	}
	if reg.Active != "" {
		t.Errorf("active = %q, want cleared", reg.Active)
	}

	// The session row is gone even though the database file remains.
	again, err := sessionstore.Open(accounts.SessionDBPath(base, acc.ID), acc.ID)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = again.Close() }()
	if _, err := again.LoadSession(context.Background()); err == nil {
		t.Error("session blob survived the wipe")
	}

	// The registry change was persisted.
	loaded, err := accounts.Load(base)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Accounts) != 0 {
		t.Errorf("persisted accounts = %d, want 0", len(loaded.Accounts))
	}
}

// TestRunDeadlineQuits drives the whole composition offline: the
// session starts without a network, the context deadline fires while
// the ready gate is still waiting, and teardown leaves no lock behind.
func TestRunDeadlineQuits(t *testing.T) {
	base := t.TempDir()
	reg := &accounts.Registry{}
	acc := reg.Add("+1555", "offline")
	if err := reg.Save(base); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	cfg.Telegram.APIID = 1
	cfg.Telegram.APIHash = "test-hash"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var out bytes.Buffer
	err := Run(ctx, Options{
		Base:      base,
		Config:    cfg,
		Registry:  reg,
		AccountID: acc.ID,
		Screen:    tcell.NewSimulationScreen("UTF-8"),
		In:        strings.NewReader(""),
		Out:       &out,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(out.String(), "Goodbye.") {
		t.Errorf("output = %q, want the quit farewell", out.String())
	}

	// The lock must be gone so the next run can start.
	done := make(chan struct{})
	go func() {
		defer close(done)
		lk, err := provideLock(Params{Base: base, Account: acc, Config: cfg}, zap.NewNop())
		if err != nil {
			t.Errorf("lock still held after teardown: %v", err)
			return
		}
		_ = lk.Release()
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("relock attempt hung")
	}
}

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subhdotsol/vimgram/internal/accounts"
	"github.com/subhdotsol/vimgram/internal/app"
	"github.com/subhdotsol/vimgram/internal/config"
)

const version = "0.1.0"

func main() {
	accountFlag := flag.String("account", "", "account id to run (overrides the registry's active marker)")
	qrFlag := flag.Bool("qr", false, "log in by scanning a QR code instead of typing an SMS code")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("vimgram " + version)
		return
	}

	if err := run(*accountFlag, *qrFlag); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(accountFlag string, useQR bool) error {
	base := accounts.BaseDir()

	cfg, err := loadConfig(base)
	if err != nil {
		return err
	}

	reg, err := accounts.Load(base)
	if err != nil {
		return err
	}

	if accountFlag != "" {
		if err := accounts.ValidateID(accountFlag); err != nil {
			return err
		}
		if _, ok := reg.Get(accountFlag); !ok {
			return fmt.Errorf("unknown account %q", accountFlag)
		}
	}

	id := accounts.Resolve(accountFlag, reg)
	if id == "" {
		// First run: register an account before anything connects.
		acc, err := app.PromptNewAccount(os.Stdin, os.Stdout, reg)
		if err != nil {
			return err
		}
		if err := reg.Save(base); err != nil {
			return err
		}
		id = acc.ID
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.Run(ctx, app.Options{
		Base:      base,
		Config:    cfg,
		Registry:  reg,
		AccountID: id,
		UseQR:     useQR,
	})
}

// loadConfig reads the global config, fills credentials from the
// environment and falls back to a one-time interactive prompt that is
// persisted for the next run.
func loadConfig(base string) (*config.Config, error) {
	path := accounts.ConfigPath(base)

	cfg, err := config.Load(path)
	if os.IsNotExist(err) {
		cfg = config.Default()
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.ApplyEnv()
	if cfg.HasCredentials() {
		return cfg, nil
	}

	id, hash, err := app.PromptCredentials(os.Stdin, os.Stdout)
	if err != nil {
		return nil, err
	}
	cfg.Telegram.APIID = id
	cfg.Telegram.APIHash = hash
	if err := config.Save(path, cfg); err != nil {
		return nil, fmt.Errorf("save config: %w", err)
	}
	return cfg, nil
}

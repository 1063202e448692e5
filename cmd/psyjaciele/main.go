package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"psyjaciele/internal/adapters/storage/memory"
	"psyjaciele/internal/adapters/storage/sqlite"
	"psyjaciele/internal/client"
	"psyjaciele/internal/config"
	"psyjaciele/internal/platform/httpclient"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/ports/localstore"

	"github.com/spf13/cobra"
)

const tokenKey = "session_token"

// app es el estado compartido por los subcomandos.
type app struct {
	cfg   *config.ClientConfig
	log   logger.Logger
	kv    localstore.Store
	api   *client.API
	cache *client.Cache
	close func()
}

var (
	rootCtx context.Context
	cli     *app
)

var rootCmd = &cobra.Command{
	Use:           "psyjaciele",
	Short:         "Reportes de envenenamiento de perros desde la terminal",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(rootCtx)
		if err != nil {
			return err
		}
		cli = a
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cli != nil && cli.close != nil {
			cli.close()
		}
	},
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadClient()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.Log.Level),
		Format: logger.ParseFormat(cfg.Log.Format),
		App:    "psyjaciele-cli",
		Output: os.Stderr,
	})

	a := &app{cfg: cfg, log: log, close: func() {}}

	// sin archivo local el cliente sigue andando, pero no recuerda nada
	if err := os.MkdirAll(cfg.Home, 0o700); err != nil {
		log.Warn("cannot create home dir, using in-memory storage", map[string]any{"error": err, "home": cfg.Home})
		a.kv = memory.NewKVStore()
	} else if store, err := sqlite.Open(ctx, filepath.Join(cfg.Home, "psyjaciele.db")); err != nil {
		log.Warn("cannot open local db, using in-memory storage", map[string]any{"error": err})
		a.kv = memory.NewKVStore()
	} else {
		a.kv = store
		a.close = func() { _ = store.Close() }
	}

	hc, err := httpclient.New(cfg.APIURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	a.api = client.NewAPI(hc)
	a.cache = client.NewCache(a.api, client.NewLocalStore(a.kv, log), log)

	token := ""
	if raw, ok, err := a.kv.Get(ctx, tokenKey); err != nil {
		log.Warn("cannot read saved session", map[string]any{"error": err})
	} else if ok {
		token = string(raw)
	}
	a.cache.SetToken(ctx, token)
	return a, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCtx = ctx

	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

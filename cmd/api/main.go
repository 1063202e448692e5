package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"psyjaciele/internal/adapters/attachments/minio"
	"psyjaciele/internal/adapters/auth/jwtauth"
	"psyjaciele/internal/adapters/messaging/rabbitmq"
	mem "psyjaciele/internal/adapters/storage/memory"
	mgo "psyjaciele/internal/adapters/storage/mongo"
	pg "psyjaciele/internal/adapters/storage/postgres"
	"psyjaciele/internal/config"
	"psyjaciele/internal/jobs"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/platform/metrics"
	"psyjaciele/internal/ports/attachments"
	"psyjaciele/internal/router"

	"go.mongodb.org/mongo-driver/mongo"
)

// @title psyjaciele API
// @version 1.0
// @description Reportes de envenenamiento de perros: alta, moderación y consulta de incidentes.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.FromStrings("error", "text", "psyjaciele").Error("config load failed", map[string]any{"error": err})
		os.Exit(1)
	}
	log := logger.FromStrings(cfg.Log.Level, cfg.Log.Format, cfg.Log.App)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := router.Options{
		Logger:  log,
		Metrics: metrics.New(),
		Admin: &router.AdminSeed{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		},
	}

	// Auth: JWT salvo en modo dev (headers X-Debug-*).
	// Load ya garantiza secreto fuera de dev mode; en dev sin secreto
	// el router firma con su clave de desarrollo.
	if cfg.Auth.DevMode {
		log.Warn("auth dev mode enabled: debug headers accepted, tokens not verified", nil)
		if cfg.Auth.JWTSecret != "" {
			opts.Tokens = jwtauth.NewManager(jwtauth.Config{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.TokenTTL})
		}
	} else {
		jwt := jwtauth.NewManager(jwtauth.Config{Secret: cfg.Auth.JWTSecret, TTL: cfg.Auth.TokenTTL})
		opts.Tokens = jwt
		opts.AuthVerifier = jwt
	}

	// Storage: Mongo, Postgres o memoria
	switch {
	case cfg.Mongo.URI != "":
		db, err := mgo.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			fatal(log, "mongo connect failed", err)
		}
		defer disconnectMongo(db)
		if err := mgo.EnsureIndexes(ctx, db); err != nil {
			fatal(log, "mongo indexes failed", err)
		}
		opts.Mongo = db
	case cfg.Postgres.DSN != "":
		db, err := pg.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			fatal(log, "postgres open failed", err)
		}
		defer closeDB(db)
		if cfg.Postgres.Migrate {
			if err := pg.Migrate(ctx, db); err != nil {
				fatal(log, "postgres migrate failed", err)
			}
		}
		opts.DB = db
	}

	// Eventos hacia RabbitMQ (opcional)
	if cfg.AMQP.URL != "" {
		pub, err := rabbitmq.Dial(cfg.AMQP.URL, cfg.AMQP.Queue)
		if err != nil {
			fatal(log, "rabbitmq dial failed", err)
		}
		defer pub.Close()
		opts.Publisher = pub
	}

	opts.Attachments = attachmentStore(ctx, cfg, log)

	svcs, err := router.NewServices(ctx, opts)
	if err != nil {
		fatal(log, "services init failed", err)
	}

	if cfg.Stats.Enabled {
		job := jobs.NewStatsJob(svcs.Incidents, opts.Metrics, log)
		c, err := job.Start(ctx, cfg.Stats.Cron)
		if err != nil {
			fatal(log, "stats job failed", err)
		}
		defer c.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.NewRouter(opts, svcs),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", map[string]any{"error": err})
		}
	}()

	log.Info("starting server", map[string]any{"addr": srv.Addr})
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		fatal(log, "server error", err)
	}
	log.Info("server stopped", nil)
}

func attachmentStore(ctx context.Context, cfg *config.AppConfig, log logger.Logger) attachments.Store {
	if cfg.MinIO.Endpoint == "" {
		log.Warn("minio not configured, images kept in memory", nil)
		return mem.NewAttachmentStore()
	}
	store, err := minio.New(ctx, minio.Config{
		Endpoint:  cfg.MinIO.Endpoint,
		AccessKey: cfg.MinIO.AccessKey,
		SecretKey: cfg.MinIO.SecretKey,
		Bucket:    cfg.MinIO.Bucket,
		UseSSL:    cfg.MinIO.UseSSL,
	})
	if err != nil {
		fatal(log, "minio init failed", err)
	}
	return store
}

func disconnectMongo(db *mongo.Database) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = db.Client().Disconnect(ctx)
}

func closeDB(db *sql.DB) { _ = db.Close() }

func fatal(log logger.Logger, msg string, err error) {
	log.Error(msg, map[string]any{"error": err})
	os.Exit(1)
}

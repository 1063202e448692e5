package router

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"psyjaciele/internal/adapters/auth/jwtauth"
	"psyjaciele/internal/adapters/authz/casbinrbac"
	mem "psyjaciele/internal/adapters/storage/memory"
	mgo "psyjaciele/internal/adapters/storage/mongo"
	pg "psyjaciele/internal/adapters/storage/postgres"
	"psyjaciele/internal/domain/events"
	"psyjaciele/internal/domain/incidents"
	"psyjaciele/internal/domain/users"
	"psyjaciele/internal/middleware"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/platform/metrics"
	"psyjaciele/internal/ports/attachments"
	"psyjaciele/internal/ports/auth"

	_ "psyjaciele/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.mongodb.org/mongo-driver/mongo"
)

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Tokens       auth.TokenIssuer  // si es nil se usa un firmante de desarrollo

	// Backend: Mongo si viene, si no Postgres, si no in-memory.
	DB    *sql.DB
	Mongo *mongo.Database

	Publisher   events.Publisher  // opcional (RabbitMQ)
	Attachments attachments.Store // nil => upload de imágenes deshabilitado
	Logger      logger.Logger
	Metrics     *metrics.Metrics

	// Admin se crea al armar los servicios si todavía no existe ninguno.
	Admin *AdminSeed
}

// Services son los servicios de dominio ya cableados al backend elegido.
// cmd/api los usa también para el job de estadísticas.
type Services struct {
	Incidents *incidents.Service
	Events    *events.Service
	Users     *users.Service

	// Verifier relee el usuario de cada token; nil en modo dev.
	Verifier auth.AuthVerifier
}

func NewServices(ctx context.Context, opts Options) (*Services, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	var (
		incidentRepo incidents.Repository
		eventRepo    events.Repository
		userRepo     users.Repository
		backend      string
	)

	switch {
	case opts.Mongo != nil:
		backend = "mongo"
		incidentRepo = mgo.NewIncidentsRepo(opts.Mongo)
		eventRepo = mgo.NewEventsRepo(opts.Mongo)
		userRepo = mgo.NewUsersRepo(opts.Mongo)
	case opts.DB != nil:
		backend = "postgres"
		incidentRepo = pg.NewIncidentsRepo(opts.DB)
		eventRepo = pg.NewEventsRepo(opts.DB)
		ur, err := pg.NewUsersRepo(opts.DB)
		if err != nil {
			return nil, fmt.Errorf("users repo: %w", err)
		}
		userRepo = ur
	default:
		backend = "memory"
		incidentRepo = mem.NewIncidentRepo()
		eventRepo = mem.NewEventRepo()
		userRepo = mem.NewUserRepo()
	}
	log.Info("storage backend selected", map[string]any{"backend": backend})

	authorizer, err := casbinrbac.New()
	if err != nil {
		return nil, fmt.Errorf("authorizer: %w", err)
	}

	m := opts.Metrics
	eventsSvc := events.NewService(eventRepo, authorizer)

	// cada evento va al log de actividad, al contador y al broker (si hay)
	pubs := []events.Publisher{eventsSvc}
	if m != nil {
		pubs = append(pubs, events.PublisherFunc(func(_ context.Context, e events.Event) error {
			m.IncEvent(string(e.Type))
			return nil
		}))
	}
	if opts.Publisher != nil {
		pubs = append(pubs, opts.Publisher)
	}

	incOpts := []incidents.Option{
		incidents.WithPublisher(events.Multi(pubs...)),
		incidents.WithLogger(log.With(map[string]any{"component": "incidents"})),
	}
	if opts.Attachments != nil {
		incOpts = append(incOpts, incidents.WithAttachments(opts.Attachments))
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = jwtauth.NewManager(jwtauth.Config{Secret: "dev-insecure-secret"})
	}

	svcs := &Services{
		Incidents: incidents.NewService(incidentRepo, authorizer, incOpts...),
		Events:    eventsSvc,
		Users:     users.NewService(userRepo, tokens),
	}
	if opts.AuthVerifier != nil {
		svcs.Verifier = users.NewVerifier(opts.AuthVerifier, userRepo)
	}

	if seed := opts.Admin; seed != nil {
		created, err := svcs.Users.EnsureAdmin(ctx, seed.Username, seed.Email, seed.Password)
		if err != nil {
			return nil, fmt.Errorf("seed admin: %w", err)
		}
		if created {
			log.Info("admin user created", map[string]any{"email": seed.Email})
		}
	}

	return svcs, nil
}

func NewRouter(opts Options, svcs *Services) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.AuthContext(svcs.Verifier))

	// después de AuthContext: el log lleva el user_id
	r.Use(middleware.RequestLog(log))
	r.Use(m.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", m.Handler())
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	// Rutas por módulo
	users.RegisterRoutes(r, svcs.Users)
	r.Route("/incidents", func(ir chi.Router) {
		incidents.RegisterRoutes(ir, svcs.Incidents)
		events.RegisterRoutes(ir, svcs.Events)
	})

	return r
}

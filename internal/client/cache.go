package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"psyjaciele/internal/domain/incidents"
	"psyjaciele/internal/platform/logger"
)

// Remote es lo que el cache necesita del server. *API lo implementa.
type Remote interface {
	List(ctx context.Context) ([]Incident, error)
	Create(ctx context.Context, in CreateInput) (Incident, error)
	MarkHelpful(ctx context.Context, id string) (Incident, error)
	SetToken(token string)
}

// Cache es el dueño de la lista que ve la capa de presentación.
// Con sesión las mutaciones van al server; sin sesión (o sin server) se
// hacen localmente y se guardan en el momento. Las operaciones se
// ejecutan de a una: el mutex se mantiene durante la llamada remota.
type Cache struct {
	remote Remote
	local  *LocalStore
	log    logger.Logger

	now   func() time.Time
	newID func(time.Time) string

	mu     sync.Mutex
	token  string
	list   []Incident
	source Source
}

func NewCache(remote Remote, local *LocalStore, log logger.Logger) *Cache {
	if log == nil {
		log = logger.Nop()
	}
	return &Cache{
		remote: remote,
		local:  local,
		log:    log.With(map[string]any{"component": "incident_cache"}),
		now:    time.Now,
		newID:  newLocalID,
	}
}

// Load reemplaza la lista: la del server si responde, si no la local.
// Nunca mezcla las dos en memoria y nunca devuelve error. Los registros
// locales siguen guardados y vuelven a verse cuando el server no responde.
func (c *Cache) Load(ctx context.Context) Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *Cache) load(ctx context.Context) Source {
	list, err := c.remote.List(ctx)
	if err == nil {
		c.list = list
		c.source = SourceRemote
		c.persist(ctx)
		return c.source
	}

	c.log.Warn("remote list failed, using local data", map[string]any{"error": err})
	c.list = c.local.Load(ctx)
	c.source = SourceLocal
	return c.source
}

// SetToken cambia la sesión. Política de descarte: la lista en memoria se
// tira y se vuelve a cargar; los registros locales no se suben al server
// (quedan en el almacenamiento local).
func (c *Cache) SetToken(ctx context.Context, token string) Source {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.token = strings.TrimSpace(token)
	c.remote.SetToken(c.token)
	c.list = nil
	c.source = SourceNone
	return c.load(ctx)
}

func (c *Cache) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token != ""
}

func (c *Cache) Source() Source {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.source
}

// Incidents devuelve una copia de la lista actual.
func (c *Cache) Incidents() []Incident {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Incident, len(c.list))
	for i, inc := range c.list {
		out[i] = inc.clone()
	}
	return out
}

// Create con sesión delega al server y antepone lo que devuelve.
// Errores de validación o de sesión se devuelven; si el server no está,
// cae al camino local.
func (c *Cache) Create(ctx context.Context, in CreateInput) (Incident, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		inc, err := c.remote.Create(ctx, in)
		switch {
		case err == nil:
			c.list = append([]Incident{inc}, c.list...)
			c.persist(ctx)
			return inc.clone(), nil
		case errors.Is(err, ErrUnavailable):
			c.log.Warn("remote create failed, storing locally", map[string]any{"error": err})
		default:
			return Incident{}, err
		}
	}
	return c.createLocal(ctx, in)
}

func (c *Cache) createLocal(ctx context.Context, in CreateInput) (Incident, error) {
	d := in.domain()
	if err := d.Validate(); err != nil {
		return Incident{}, localValidationErr(err)
	}
	d = d.Normalize()

	now := c.now().UTC()
	inc := Incident{
		ID:          c.newID(now),
		Description: d.Description,
		Location: Location{
			Address:   d.Location.Address,
			Latitude:  d.Location.Latitude,
			Longitude: d.Location.Longitude,
		},
		Date:         d.Date,
		Time:         d.Time,
		DogName:      d.DogName,
		ReporterName: d.ReporterName,
		Status:       string(incidents.StatusPending),
		HelpfulCount: 0,
		ReportedBy:   incidents.AnonymousReporter,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	c.list = append([]Incident{inc}, c.list...)
	c.persist(ctx)
	c.log.Info("incident stored locally", map[string]any{"incident_id": inc.ID, "count": len(c.list)})
	return inc.clone(), nil
}

// MarkHelpful con sesión toma el contador que devuelve el server (nunca
// suma localmente). Sin sesión incrementa el registro local y guarda.
func (c *Cache) MarkHelpful(ctx context.Context, id string) (Incident, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		inc, err := c.remote.MarkHelpful(ctx, id)
		switch {
		case err == nil:
			idx := c.indexOf(id)
			if idx < 0 {
				return inc.clone(), nil
			}
			c.list[idx].HelpfulCount = inc.HelpfulCount
			c.list[idx].UpdatedAt = inc.UpdatedAt
			c.persist(ctx)
			return c.list[idx].clone(), nil
		case errors.Is(err, ErrUnavailable):
			c.log.Warn("remote helpful failed, counting locally", map[string]any{"error": err, "incident_id": id})
		default:
			return Incident{}, err
		}
	}

	idx := c.indexOf(id)
	if idx < 0 {
		return Incident{}, fmt.Errorf("%w: incident %s", ErrNotFound, id)
	}
	c.list[idx].HelpfulCount++
	c.list[idx].UpdatedAt = c.now().UTC()
	c.persist(ctx)
	return c.list[idx].clone(), nil
}

// persist guarda la lista en memoria. Si salió del blob local se pisa
// entera; si no, es vista del server y se guarda como mirror, sin borrar
// los registros locales que esa vista no trae.
func (c *Cache) persist(ctx context.Context) {
	if c.source == SourceLocal {
		c.local.Save(ctx, c.list)
		return
	}
	c.local.SaveMirror(ctx, c.list)
}

// Stats calcula total / 7 días / 30 días sobre la lista actual.
func (c *Cache) Stats() incidents.Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	list := make([]incidents.Incident, len(c.list))
	for i, inc := range c.list {
		list[i] = incidents.Incident{ID: inc.ID, CreatedAt: inc.CreatedAt, Status: incidents.Status(inc.Status)}
	}
	return incidents.ComputeStats(list, c.now(), false)
}

func (c *Cache) indexOf(id string) int {
	for i := range c.list {
		if c.list[i].ID == id {
			return i
		}
	}
	return -1
}

package incidents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"psyjaciele/internal/domain/events"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/ports/attachments"
	"psyjaciele/internal/ports/auth"
	"psyjaciele/internal/ports/authz"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrForbidden         = errors.New("forbidden")
	ErrNotFound          = errors.New("incident not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// MaxImageSize limita cada adjunto.
const MaxImageSize = 10 << 20

type Service struct {
	repo        Repository
	authz       authz.Authorizer
	publisher   events.Publisher
	attachments attachments.Store
	log         logger.Logger

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithAttachments habilita AttachImage. Sin store, AttachImage responde
// ErrStoreUnavailable.
func WithAttachments(store attachments.Store) Option {
	return func(s *Service) { s.attachments = store }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func NewService(repo Repository, authorizer authz.Authorizer, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		authz:     authorizer,
		publisher: events.NopPublisher{},
		log:       logger.Nop(),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List: admin ve todos los estados (filtrables); el resto solo aprobados.
func (s *Service) List(ctx context.Context, caller auth.Principal, filter ListFilter) ([]Incident, error) {
	if err := s.authorize(caller, authz.ActionReadPublic); err != nil {
		return nil, err
	}
	for _, st := range filter.Statuses {
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, st)
		}
	}

	if !s.authz.Can(caller.EffectiveRole(), authz.ActionReadAll) {
		filter = ListFilter{Statuses: []Status{StatusApproved}}
	}

	list, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, storeErr(err)
	}
	return list, nil
}

func (s *Service) Get(ctx context.Context, id string) (Incident, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Incident{}, ErrNotFound
	}
	inc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Incident{}, storeErr(err)
	}
	return inc, nil
}

func (s *Service) Create(ctx context.Context, caller auth.Principal, in CreateInput) (Incident, error) {
	if err := s.authorize(caller, authz.ActionCreate); err != nil {
		return Incident{}, err
	}
	if err := in.Validate(); err != nil {
		return Incident{}, err
	}
	in = in.Normalize()

	status := StatusPending
	if caller.IsAdmin() {
		status = StatusApproved
	}

	now := s.now()
	inc := Incident{
		ID:           s.newID(),
		Description:  in.Description,
		Location:     in.Location,
		Date:         in.Date,
		Time:         in.Time,
		DogName:      in.DogName,
		ReporterName: in.ReporterName,
		Status:       status,
		HelpfulCount: 0,
		ReportedBy:   caller.UserID,
		Images:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, inc); err != nil {
		return Incident{}, storeErr(err)
	}

	s.publish(ctx, caller, events.TypeIncidentCreated, inc, "")
	return inc, nil
}

// MarkHelpful suma 1 sin deduplicar por usuario; cualquiera puede llamarlo.
func (s *Service) MarkHelpful(ctx context.Context, caller auth.Principal, id string) (Incident, error) {
	if err := s.authorize(caller, authz.ActionMarkHelpful); err != nil {
		return Incident{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return Incident{}, ErrNotFound
	}

	inc, err := s.repo.IncrementHelpful(ctx, id, s.now())
	if err != nil {
		return Incident{}, storeErr(err)
	}

	s.publish(ctx, caller, events.TypeIncidentHelpfulMarked, inc, "")
	return inc, nil
}

// ChangeStatus modera un incidente pendiente. Repetir el mismo estado es
// un no-op exitoso; salir de un estado terminal es ErrInvalidTransition.
func (s *Service) ChangeStatus(ctx context.Context, caller auth.Principal, id string, to Status) (Incident, error) {
	if err := s.authorize(caller, authz.ActionModerate); err != nil {
		return Incident{}, err
	}
	if to != StatusApproved && to != StatusRejected {
		return Incident{}, fmt.Errorf("%w: status must be approved or rejected", ErrInvalidInput)
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return Incident{}, err
	}
	if current.Status == to {
		return current, nil
	}
	if current.Status != StatusPending {
		return Incident{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, to)
	}

	inc, err := s.repo.TransitionStatus(ctx, current.ID, StatusPending, to, s.now())
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			// otro admin ganó la carrera; si dejó el mismo estado es no-op
			if again, gerr := s.Get(ctx, current.ID); gerr == nil && again.Status == to {
				return again, nil
			}
		}
		return Incident{}, storeErr(err)
	}

	s.publish(ctx, caller, events.TypeIncidentStatusChanged, inc, "")
	return inc, nil
}

func (s *Service) Delete(ctx context.Context, caller auth.Principal, id string) error {
	if err := s.authorize(caller, authz.ActionDelete); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}

	s.publish(ctx, caller, events.TypeIncidentDeleted, Incident{ID: id}, "")
	return nil
}

type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// AttachImage guarda la imagen en el store de adjuntos y agrega la referencia.
// Un usuario común solo puede adjuntar a incidentes que reportó él.
func (s *Service) AttachImage(ctx context.Context, caller auth.Principal, id string, up ImageUpload) (Incident, error) {
	if err := s.authorize(caller, authz.ActionAttach); err != nil {
		return Incident{}, err
	}
	if s.attachments == nil {
		return Incident{}, fmt.Errorf("%w: attachments disabled", ErrStoreUnavailable)
	}

	inc, err := s.Get(ctx, id)
	if err != nil {
		return Incident{}, err
	}
	if !caller.IsAdmin() && inc.ReportedBy != caller.UserID {
		return Incident{}, ErrForbidden
	}

	if up.Body == nil || up.Size <= 0 {
		return Incident{}, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if up.Size > MaxImageSize {
		return Incident{}, fmt.Errorf("%w: image larger than %d bytes", ErrInvalidInput, MaxImageSize)
	}
	if !strings.HasPrefix(strings.ToLower(up.ContentType), "image/") {
		return Incident{}, fmt.Errorf("%w: content type must be image/*", ErrInvalidInput)
	}

	key := fmt.Sprintf("incidents/%s/%s%s", inc.ID, s.newID(), strings.ToLower(filepath.Ext(up.Filename)))
	ref, err := s.attachments.Put(ctx, key, up.ContentType, up.Body, up.Size)
	if err != nil {
		return Incident{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	updated, err := s.repo.AddImage(ctx, inc.ID, ref, s.now())
	if err != nil {
		return Incident{}, storeErr(err)
	}

	s.publish(ctx, caller, events.TypeIncidentImageAttached, updated, ref)
	return updated, nil
}

// Stats calcula las métricas sobre lo que el caller puede ver.
func (s *Service) Stats(ctx context.Context, caller auth.Principal) (Stats, error) {
	list, err := s.List(ctx, caller, ListFilter{})
	if err != nil {
		return Stats{}, err
	}
	withStatus := s.authz.Can(caller.EffectiveRole(), authz.ActionReadAll)
	return ComputeStats(list, s.now(), withStatus), nil
}

func (s *Service) authorize(caller auth.Principal, action authz.Action) error {
	if s.authz != nil && s.authz.Can(caller.EffectiveRole(), action) {
		return nil
	}
	if !caller.IsAuthenticated() {
		return ErrUnauthenticated
	}
	return ErrForbidden
}

// publish es best-effort: la mutación ya quedó hecha.
func (s *Service) publish(ctx context.Context, caller auth.Principal, t events.Type, inc Incident, imageRef string) {
	e := events.Event{
		ID:         uuid.NewString(),
		Type:       t,
		IncidentID: inc.ID,
		Actor: events.Actor{
			ID:   caller.UserID,
			Role: string(caller.EffectiveRole()),
		},
		OccurredAt:   s.now(),
		Status:       string(inc.Status),
		HelpfulCount: inc.HelpfulCount,
		ImageRef:     imageRef,
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.log.Warn("incident event publish failed", map[string]any{
			"event":       string(t),
			"incident_id": inc.ID,
			"error":       err,
		})
	}
}

func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

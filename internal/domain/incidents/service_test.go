package incidents

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"psyjaciele/internal/adapters/authz/casbinrbac"
	"psyjaciele/internal/domain/events"
	"psyjaciele/internal/ports/auth"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	mu   sync.Mutex
	byID map[string]Incident
	err  error
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Incident{}}
}

func (r *testRepo) Create(_ context.Context, inc Incident) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[inc.ID] = inc.Clone()
	return nil
}

func (r *testRepo) GetByID(_ context.Context, id string) (Incident, error) {
	if r.err != nil {
		return Incident{}, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.byID[id]
	if !ok {
		return Incident{}, ErrNotFound
	}
	return inc.Clone(), nil
}

func (r *testRepo) List(_ context.Context, filter ListFilter) ([]Incident, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Incident, 0, len(r.byID))
	for _, inc := range r.byID {
		if filter.Matches(inc.Status) {
			out = append(out, inc.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *testRepo) TransitionStatus(_ context.Context, id string, from, to Status, at time.Time) (Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.byID[id]
	if !ok {
		return Incident{}, ErrNotFound
	}
	if inc.Status != from {
		return Incident{}, ErrInvalidTransition
	}
	inc.Status = to
	inc.UpdatedAt = at
	r.byID[id] = inc
	return inc.Clone(), nil
}

func (r *testRepo) IncrementHelpful(_ context.Context, id string, at time.Time) (Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.byID[id]
	if !ok {
		return Incident{}, ErrNotFound
	}
	inc.HelpfulCount++
	inc.UpdatedAt = at
	r.byID[id] = inc
	return inc.Clone(), nil
}

func (r *testRepo) AddImage(_ context.Context, id, ref string, at time.Time) (Incident, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inc, ok := r.byID[id]
	if !ok {
		return Incident{}, ErrNotFound
	}
	inc.Images = append(inc.Images, ref)
	inc.UpdatedAt = at
	r.byID[id] = inc
	return inc.Clone(), nil
}

func (r *testRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeAttachments struct {
	keys []string
	err  error
}

func (f *fakeAttachments) Put(_ context.Context, key, _ string, body io.Reader, _ int64) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	if _, err := io.ReadAll(body); err != nil {
		return "", err
	}
	f.keys = append(f.keys, key)
	return key, nil
}

// -------------------------
// Helpers
// -------------------------

var (
	admin = auth.Principal{UserID: "admin-1", Role: auth.RoleAdmin}
	alice = auth.Principal{UserID: "user-alice", Role: auth.RoleUser}
	bob   = auth.Principal{UserID: "user-bob", Role: auth.RoleUser}
	anon  = auth.Anonymous()
)

func newTestService(t *testing.T, opts ...Option) (*Service, *testRepo, *time.Time) {
	t.Helper()
	repo := newTestRepo()
	svc := NewService(repo, casbinrbac.MustNew(), opts...)

	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	seq := 0
	svc.newID = func() string {
		seq++
		return "id-" + string(rune('a'+seq-1))
	}
	return svc, repo, &now
}

func validInput() CreateInput {
	return CreateInput{
		Description: "Poisoned bait near the park entrance",
		Location:    Location{Address: "Main Park, North Gate"},
		Date:        "2025-03-09",
		Time:        "18:30",
		DogName:     "Rex",
	}
}

// -------------------------
// Tests
// -------------------------

func TestCreate_UserGetsPendingAdminGetsApproved(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	inc, err := svc.Create(ctx, alice, validInput())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if inc.Status != StatusPending || inc.HelpfulCount != 0 || inc.ReportedBy != alice.UserID {
		t.Fatalf("unexpected incident %+v", inc)
	}
	if inc.ReporterName != AnonymousReporter {
		t.Fatalf("expected default reporter name, got %q", inc.ReporterName)
	}
	if !inc.CreatedAt.Equal(inc.UpdatedAt) {
		t.Fatalf("expected created_at == updated_at on create")
	}

	adm, err := svc.Create(ctx, admin, validInput())
	if err != nil {
		t.Fatalf("Create (admin) returned error: %v", err)
	}
	if adm.Status != StatusApproved {
		t.Fatalf("expected approved for admin, got %q", adm.Status)
	}
}

func TestCreate_AnonymousIsUnauthenticated(t *testing.T) {
	svc, repo, _ := newTestService(t)

	_, err := svc.Create(context.Background(), anon, validInput())
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("expected nothing stored")
	}
}

func TestCreate_ValidationNamesField(t *testing.T) {
	svc, _, _ := newTestService(t)
	lat := 10.0

	cases := map[string]func(in *CreateInput){
		"description": func(in *CreateInput) { in.Description = "   " },
		"address":     func(in *CreateInput) { in.Location.Address = "" },
		"latitude":    func(in *CreateInput) { in.Location.Latitude = &lat },
		"date":        func(in *CreateInput) { in.Date = "09/03/2025" },
		"time":        func(in *CreateInput) { in.Time = "25:99" },
	}
	for name, mutate := range cases {
		in := validInput()
		mutate(&in)
		_, err := svc.Create(context.Background(), alice, in)
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("%s: expected field named in %q", name, err.Error())
		}
	}
}

func TestList_VisibilityByRole(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()

	pending, _ := svc.Create(ctx, alice, validInput())
	*now = now.Add(time.Minute)
	approved, _ := svc.Create(ctx, admin, validInput())
	*now = now.Add(time.Minute)
	rejected, _ := svc.Create(ctx, bob, validInput())
	if _, err := svc.ChangeStatus(ctx, admin, rejected.ID, StatusRejected); err != nil {
		t.Fatalf("ChangeStatus: %v", err)
	}

	for _, caller := range []auth.Principal{anon, alice} {
		list, err := svc.List(ctx, caller, ListFilter{})
		if err != nil {
			t.Fatalf("List returned error: %v", err)
		}
		if len(list) != 1 || list[0].ID != approved.ID {
			t.Fatalf("expected only approved for %q, got %+v", caller.Role, list)
		}
	}

	// aunque pida pending, un usuario común sigue viendo solo aprobados
	list, _ := svc.List(ctx, alice, ListFilter{Statuses: []Status{StatusPending}})
	if len(list) != 1 || list[0].Status != StatusApproved {
		t.Fatalf("status filter must not widen visibility, got %+v", list)
	}

	all, err := svc.List(ctx, admin, ListFilter{})
	if err != nil {
		t.Fatalf("List (admin) returned error: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 for admin, got %d", len(all))
	}
	if all[0].ID != rejected.ID || all[2].ID != pending.ID {
		t.Fatalf("expected newest first, got %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	onlyPending, _ := svc.List(ctx, admin, ListFilter{Statuses: []Status{StatusPending}})
	if len(onlyPending) != 1 || onlyPending[0].ID != pending.ID {
		t.Fatalf("unexpected admin filter result %+v", onlyPending)
	}

	if _, err := svc.List(ctx, admin, ListFilter{Statuses: []Status{"archived"}}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown status, got %v", err)
	}
}

func TestList_StoreFailureIsUnavailable(t *testing.T) {
	svc, repo, _ := newTestService(t)
	repo.err = errors.New("connection refused")

	_, err := svc.List(context.Background(), anon, ListFilter{})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestMarkHelpful_IncrementsByOneForAnyone(t *testing.T) {
	svc, _, now := newTestService(t)
	ctx := context.Background()
	inc, _ := svc.Create(ctx, admin, validInput())

	*now = now.Add(time.Hour)
	first, err := svc.MarkHelpful(ctx, anon, inc.ID)
	if err != nil {
		t.Fatalf("MarkHelpful returned error: %v", err)
	}
	second, err := svc.MarkHelpful(ctx, alice, inc.ID)
	if err != nil {
		t.Fatalf("MarkHelpful returned error: %v", err)
	}
	if first.HelpfulCount != 1 || second.HelpfulCount != 2 {
		t.Fatalf("expected 1 then 2, got %d then %d", first.HelpfulCount, second.HelpfulCount)
	}
	if !second.UpdatedAt.Equal(*now) {
		t.Fatalf("expected updated_at refreshed")
	}

	if _, err := svc.MarkHelpful(ctx, anon, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMarkHelpful_ConcurrentIncrementsAreNotLost(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inc, _ := svc.Create(ctx, admin, validInput())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.MarkHelpful(ctx, anon, inc.ID)
		}()
	}
	wg.Wait()

	got, _ := svc.Get(ctx, inc.ID)
	if got.HelpfulCount != 20 {
		t.Fatalf("expected 20, got %d", got.HelpfulCount)
	}
}

func TestChangeStatus_Rules(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inc, _ := svc.Create(ctx, alice, validInput())

	if _, err := svc.ChangeStatus(ctx, anon, inc.ID, StatusApproved); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("anonymous: expected ErrUnauthenticated, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, alice, inc.ID, StatusApproved); !errors.Is(err, ErrForbidden) {
		t.Fatalf("user: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, admin, inc.ID, StatusPending); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("pending target: expected ErrInvalidInput, got %v", err)
	}
	if _, err := svc.ChangeStatus(ctx, admin, "missing", StatusApproved); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing: expected ErrNotFound, got %v", err)
	}

	approved, err := svc.ChangeStatus(ctx, admin, inc.ID, StatusApproved)
	if err != nil || approved.Status != StatusApproved {
		t.Fatalf("approve failed: %v %+v", err, approved)
	}

	again, err := svc.ChangeStatus(ctx, admin, inc.ID, StatusApproved)
	if err != nil || again.Status != StatusApproved {
		t.Fatalf("repeat approve must be a no-op success: %v", err)
	}

	if _, err := svc.ChangeStatus(ctx, admin, inc.ID, StatusRejected); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("terminal: expected ErrInvalidTransition, got %v", err)
	}
}

func TestDelete_AdminOnlyAndPermanent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()
	inc, _ := svc.Create(ctx, alice, validInput())

	if err := svc.Delete(ctx, alice, inc.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := svc.Delete(ctx, admin, inc.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(ctx, inc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, admin, inc.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMutations_PublishEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc, _, _ := newTestService(t, WithPublisher(pub))
	ctx := context.Background()

	inc, _ := svc.Create(ctx, alice, validInput())
	_, _ = svc.MarkHelpful(ctx, anon, inc.ID)
	_, _ = svc.ChangeStatus(ctx, admin, inc.ID, StatusApproved)
	_, _ = svc.ChangeStatus(ctx, admin, inc.ID, StatusApproved) // no-op, sin evento
	_ = svc.Delete(ctx, admin, inc.ID)

	want := []events.Type{
		events.TypeIncidentCreated,
		events.TypeIncidentHelpfulMarked,
		events.TypeIncidentStatusChanged,
		events.TypeIncidentDeleted,
	}
	got := pub.types()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, _, _ := newTestService(t, WithPublisher(pub))

	if _, err := svc.Create(context.Background(), alice, validInput()); err != nil {
		t.Fatalf("expected create to succeed despite publisher error, got %v", err)
	}
}

func TestAttachImage(t *testing.T) {
	store := &fakeAttachments{}
	svc, _, _ := newTestService(t, WithAttachments(store))
	ctx := context.Background()
	inc, _ := svc.Create(ctx, alice, validInput())

	upload := func(ct string) ImageUpload {
		return ImageUpload{Filename: "Bait.JPG", ContentType: ct, Size: 4, Body: strings.NewReader("jpeg")}
	}

	if _, err := svc.AttachImage(ctx, bob, inc.ID, upload("image/jpeg")); !errors.Is(err, ErrForbidden) {
		t.Fatalf("other user: expected ErrForbidden, got %v", err)
	}
	if _, err := svc.AttachImage(ctx, alice, inc.ID, upload("text/plain")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("non image: expected ErrInvalidInput, got %v", err)
	}

	got, err := svc.AttachImage(ctx, alice, inc.ID, upload("image/jpeg"))
	if err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}
	if len(got.Images) != 1 || !strings.HasPrefix(got.Images[0], "incidents/"+inc.ID+"/") || !strings.HasSuffix(got.Images[0], ".jpg") {
		t.Fatalf("unexpected images %v", got.Images)
	}

	if _, err := svc.AttachImage(ctx, admin, inc.ID, upload("image/png")); err != nil {
		t.Fatalf("admin should attach to any incident: %v", err)
	}
}

func TestAttachImage_WithoutStoreIsUnavailable(t *testing.T) {
	svc, _, _ := newTestService(t)
	inc, _ := svc.Create(context.Background(), alice, validInput())

	_, err := svc.AttachImage(context.Background(), alice, inc.ID, ImageUpload{
		Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x"),
	})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestStats_WindowsAndStatusCounts(t *testing.T) {
	svc, repo, now := newTestService(t)
	ctx := context.Background()

	seed := func(id string, st Status, age time.Duration) {
		_ = repo.Create(ctx, Incident{ID: id, Status: st, CreatedAt: now.Add(-age), UpdatedAt: now.Add(-age)})
	}
	seed("a", StatusApproved, 24*time.Hour)
	seed("b", StatusApproved, 10*24*time.Hour)
	seed("c", StatusApproved, 40*24*time.Hour)
	seed("d", StatusPending, time.Hour)

	pub, err := svc.Stats(ctx, anon)
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if pub.Total != 3 || pub.Last7Days != 1 || pub.Last30Days != 2 || pub.ByStatus != nil {
		t.Fatalf("unexpected public stats %+v", pub)
	}

	adm, _ := svc.Stats(ctx, admin)
	if adm.Total != 4 || adm.ByStatus[StatusPending] != 1 || adm.ByStatus[StatusApproved] != 3 || adm.ByStatus[StatusRejected] != 0 {
		t.Fatalf("unexpected admin stats %+v", adm)
	}
}

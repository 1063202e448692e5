package postgres

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	"psyjaciele/internal/domain/incidents"

	_ "modernc.org/sqlite"
)

// newTestDB levanta las mismas migraciones sobre un sqlite en un directorio
// temporal. El SQL del repo es portable salvo el dialecto de goose.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "incidents.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err := migrate(context.Background(), db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedIncident(t *testing.T, repo *IncidentsRepo, id string, status incidents.Status, createdAt time.Time) incidents.Incident {
	t.Helper()

	lat, lng := 52.2478, 21.0137
	inc := incidents.Incident{
		ID:           id,
		Description:  "poison bait near the park",
		Location:     incidents.Location{Address: "Plac Zamkowy", Latitude: &lat, Longitude: &lng},
		Date:         "2024-05-01",
		Time:         "14:30",
		ReporterName: incidents.AnonymousReporter,
		Status:       status,
		ReportedBy:   "user-1",
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	if err := repo.Create(context.Background(), inc); err != nil {
		t.Fatalf("Create %s: %v", id, err)
	}
	return inc
}

func TestIncidentsRepo_CreateGetAndList(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	seedIncident(t, repo, "old", incidents.StatusApproved, base)
	seedIncident(t, repo, "new", incidents.StatusApproved, base.Add(time.Hour))
	seedIncident(t, repo, "pend", incidents.StatusPending, base.Add(2*time.Hour))

	got, err := repo.GetByID(ctx, "old")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Location.Latitude == nil || *got.Location.Latitude != 52.2478 {
		t.Fatalf("expected coordinates back, got %+v", got.Location)
	}
	if got.Images == nil || len(got.Images) != 0 {
		t.Fatalf("expected empty images, got %#v", got.Images)
	}
	if !got.CreatedAt.Equal(base) || got.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected created_at %s in UTC, got %s", base, got.CreatedAt)
	}

	list, err := repo.List(ctx, incidents.ListFilter{Statuses: []incidents.Status{incidents.StatusApproved}})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(list) != 2 || list[0].ID != "new" || list[1].ID != "old" {
		t.Fatalf("unexpected filtered list %+v", list)
	}

	all, err := repo.List(ctx, incidents.ListFilter{})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(all) != 3 || all[0].ID != "pend" {
		t.Fatalf("expected newest first, got %+v", all)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, incidents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentsRepo_TransitionIsConditional(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedIncident(t, repo, "a", incidents.StatusPending, base)

	at := base.Add(time.Minute)
	inc, err := repo.TransitionStatus(ctx, "a", incidents.StatusPending, incidents.StatusApproved, at)
	if err != nil {
		t.Fatalf("first transition failed: %v", err)
	}
	if inc.Status != incidents.StatusApproved || !inc.UpdatedAt.Equal(at) {
		t.Fatalf("expected approved with updated_at %s, got %+v", at, inc)
	}

	// otro moderador ya lo movió: el UPDATE no matchea
	if _, err := repo.TransitionStatus(ctx, "a", incidents.StatusPending, incidents.StatusRejected, at); !errors.Is(err, incidents.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	stored, _ := repo.GetByID(ctx, "a")
	if stored.Status != incidents.StatusApproved {
		t.Fatalf("losing transition must not write, got %q", stored.Status)
	}

	if _, err := repo.TransitionStatus(ctx, "missing", incidents.StatusPending, incidents.StatusRejected, at); !errors.Is(err, incidents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentsRepo_IncrementHelpfulIsAtomic(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedIncident(t, repo, "a", incidents.StatusApproved, base)

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementHelpful(ctx, "a", base.Add(time.Hour)); err != nil {
				t.Errorf("IncrementHelpful: %v", err)
			}
		}()
	}
	wg.Wait()

	inc, err := repo.IncrementHelpful(ctx, "a", base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("IncrementHelpful returned error: %v", err)
	}
	if inc.HelpfulCount != n+1 {
		t.Fatalf("expected helpful_count=%d, got %d", n+1, inc.HelpfulCount)
	}
	if !inc.UpdatedAt.Equal(base.Add(2 * time.Hour)) {
		t.Fatalf("expected updated_at refreshed, got %s", inc.UpdatedAt)
	}

	if _, err := repo.IncrementHelpful(ctx, "missing", base); !errors.Is(err, incidents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentsRepo_AddImageAppends(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedIncident(t, repo, "a", incidents.StatusPending, base)

	if _, err := repo.AddImage(ctx, "a", "incident-images/a/1.jpg", base.Add(time.Minute)); err != nil {
		t.Fatalf("AddImage returned error: %v", err)
	}
	inc, err := repo.AddImage(ctx, "a", "incident-images/a/2.jpg", base.Add(2*time.Minute))
	if err != nil {
		t.Fatalf("AddImage returned error: %v", err)
	}

	want := []string{"incident-images/a/1.jpg", "incident-images/a/2.jpg"}
	if !reflect.DeepEqual(inc.Images, want) {
		t.Fatalf("expected %v, got %v", want, inc.Images)
	}
	stored, _ := repo.GetByID(ctx, "a")
	if !reflect.DeepEqual(stored.Images, want) || !stored.UpdatedAt.Equal(base.Add(2*time.Minute)) {
		t.Fatalf("unexpected stored incident %+v", stored)
	}

	if _, err := repo.AddImage(ctx, "missing", "x.jpg", base); !errors.Is(err, incidents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIncidentsRepo_AddImageConcurrentWritersKeepAll(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	seedIncident(t, repo, "a", incidents.StatusPending, base)

	refs := []string{"1.jpg", "2.jpg", "3.jpg"}
	var wg sync.WaitGroup
	for _, ref := range refs {
		wg.Add(1)
		go func(ref string) {
			defer wg.Done()
			if _, err := repo.AddImage(ctx, "a", ref, base); err != nil {
				t.Errorf("AddImage %s: %v", ref, err)
			}
		}(ref)
	}
	wg.Wait()

	stored, _ := repo.GetByID(ctx, "a")
	if len(stored.Images) != len(refs) {
		t.Fatalf("expected %d images, got %v", len(refs), stored.Images)
	}
}

func TestIncidentsRepo_Delete(t *testing.T) {
	repo := NewIncidentsRepo(newTestDB(t))
	ctx := context.Background()
	seedIncident(t, repo, "a", incidents.StatusPending, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))

	if err := repo.Delete(ctx, "a"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := repo.Delete(ctx, "a"); !errors.Is(err, incidents.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

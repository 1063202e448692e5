package client_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"psyjaciele/internal/adapters/auth/jwtauth"
	"psyjaciele/internal/adapters/storage/memory"
	"psyjaciele/internal/client"
	"psyjaciele/internal/platform/httpclient"
	"psyjaciele/internal/platform/logger"
	"psyjaciele/internal/router"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	jwt := jwtauth.NewManager(jwtauth.Config{Secret: "test-secret"})
	opts := router.Options{AuthVerifier: jwt, Tokens: jwt}
	svcs, err := router.NewServices(context.Background(), opts)
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}
	return httptest.NewServer(router.NewRouter(opts, svcs))
}

func TestCache_AgainstServer(t *testing.T) {
	ts := newServer(t)
	defer ts.Close()

	hc, err := httpclient.New(ts.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("httpclient.New: %v", err)
	}
	api := client.NewAPI(hc)
	kv := memory.NewKVStore()
	cache := client.NewCache(api, client.NewLocalStore(kv, logger.Nop()), logger.Nop())
	ctx := context.Background()

	if src := cache.Load(ctx); src != client.SourceRemote {
		t.Fatalf("expected remote source, got %q", src)
	}

	sess, err := api.Register(ctx, "ala", "ala@example.com", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := api.Register(ctx, "ala", "ala@example.com", "secret1"); !errors.Is(err, client.ErrConflict) {
		t.Fatalf("expected ErrConflict on duplicate register, got %v", err)
	}
	if _, err := api.Login(ctx, "ala@example.com", "nope"); !errors.Is(err, client.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated on bad login, got %v", err)
	}
	cache.SetToken(ctx, sess.Token)

	me, err := api.Profile(ctx)
	if err != nil || me.Email != "ala@example.com" || me.Role != "user" {
		t.Fatalf("unexpected profile %+v err=%v", me, err)
	}

	// validación del server se devuelve tal cual
	if _, err := cache.Create(ctx, client.CreateInput{Description: "x"}); !errors.Is(err, client.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	inc, err := cache.Create(ctx, client.CreateInput{
		Description: "Dog collapsed near park",
		Location:    client.Location{Address: "Plac Zamkowy"},
		Date:        "2024-05-01",
		Time:        "14:30",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if inc.Status != "pending" || inc.ReportedBy != me.ID {
		t.Fatalf("expected server-assigned pending record, got %+v", inc)
	}

	for i := 0; i < 2; i++ {
		if _, err := cache.MarkHelpful(ctx, inc.ID); err != nil {
			t.Fatalf("MarkHelpful: %v", err)
		}
	}
	got, err := api.Get(ctx, inc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.HelpfulCount != 2 || cache.Incidents()[0].HelpfulCount != 2 {
		t.Fatalf("expected helpful_count=2 on server and cache, got %d / %d", got.HelpfulCount, cache.Incidents()[0].HelpfulCount)
	}
	if _, err := cache.MarkHelpful(ctx, "missing"); !errors.Is(err, client.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// server caído: la próxima carga sale del mirror local
	ts.Close()
	if src := cache.Load(ctx); src != client.SourceLocal {
		t.Fatalf("expected local source with server down, got %q", src)
	}
	if list := cache.Incidents(); len(list) != 1 || list[0].ID != inc.ID {
		t.Fatalf("expected mirrored incident, got %+v", list)
	}
}

package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"psyjaciele/internal/platform/httpclient"
)

// API habla con el server HTTP. Guarda el token de la sesión actual
// y lo manda como Bearer en cada request.
type API struct {
	http *httpclient.Client

	mu    sync.RWMutex
	token string
}

func NewAPI(c *httpclient.Client) *API {
	return &API{http: c}
}

func (a *API) SetToken(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.token = strings.TrimSpace(token)
}

func (a *API) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.token
}

func (a *API) headers() map[string]string {
	return httpclient.Bearer(a.Token())
}

func (a *API) List(ctx context.Context) ([]Incident, error) {
	var out []Incident
	if err := a.http.DoJSON(ctx, http.MethodGet, "/incidents", a.headers(), nil, &out); err != nil {
		return nil, translate(err)
	}
	return out, nil
}

func (a *API) Get(ctx context.Context, id string) (Incident, error) {
	var out Incident
	if err := a.http.DoJSON(ctx, http.MethodGet, "/incidents/"+url.PathEscape(id), a.headers(), nil, &out); err != nil {
		return Incident{}, translate(err)
	}
	return out, nil
}

func (a *API) Create(ctx context.Context, in CreateInput) (Incident, error) {
	var out Incident
	if err := a.http.DoJSON(ctx, http.MethodPost, "/incidents", a.headers(), in, &out); err != nil {
		return Incident{}, translate(err)
	}
	return out, nil
}

func (a *API) MarkHelpful(ctx context.Context, id string) (Incident, error) {
	var out Incident
	if err := a.http.DoJSON(ctx, http.MethodPost, "/incidents/"+url.PathEscape(id)+"/helpful", a.headers(), nil, &out); err != nil {
		return Incident{}, translate(err)
	}
	return out, nil
}

func (a *API) Register(ctx context.Context, username, email, password string) (Session, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var out Session
	if err := a.http.DoJSON(ctx, http.MethodPost, "/users/register", nil, in, &out); err != nil {
		return Session{}, translate(err)
	}
	return out, nil
}

func (a *API) Login(ctx context.Context, email, password string) (Session, error) {
	in := map[string]string{"email": email, "password": password}
	var out Session
	if err := a.http.DoJSON(ctx, http.MethodPost, "/users/login", nil, in, &out); err != nil {
		return Session{}, translate(err)
	}
	return out, nil
}

func (a *API) Profile(ctx context.Context) (User, error) {
	var out User
	if err := a.http.DoJSON(ctx, http.MethodGet, "/users/profile", a.headers(), nil, &out); err != nil {
		return User{}, translate(err)
	}
	return out, nil
}

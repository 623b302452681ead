package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/cache"
	"github.com/chefhut/storefront/internal/identity"
	"github.com/chefhut/storefront/internal/middleware"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/service"
	"github.com/chefhut/storefront/internal/session"
	"github.com/chefhut/storefront/internal/view"
)

const cookieName = "chefhut_session"

func init() { gin.SetMode(gin.TestMode) }

// fakeBackend is an in-memory stand-in for the REST backend. It counts every
// request by "METHOD /path".
type fakeBackend struct {
	mu        sync.Mutex
	hits      map[string]int
	users     map[string]model.User
	meals     map[string]model.Meal
	favorites []model.Favorite
	orders    []model.Order

	deleteFavoriteStatus int
	lastMealsQuery       url.Values
	lastCheckout         repository.CheckoutRequest
	lastPaymentSession   string
	lastAuth             string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		hits:  map[string]int{},
		users: map[string]model.User{},
		meals: map[string]model.Meal{},
	}
}

func (b *fakeBackend) count(key string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[key]
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users/{email}", func(w http.ResponseWriter, r *http.Request) {
		u, ok := b.users[r.PathValue("email")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
			return
		}
		writeJSON(w, http.StatusOK, u)
	})
	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": "u-new"})
	})
	mux.HandleFunc("GET /meals", func(w http.ResponseWriter, r *http.Request) {
		b.lastMealsQuery = r.URL.Query()
		meals := make([]model.Meal, 0, len(b.meals))
		for _, m := range b.meals {
			meals = append(meals, m)
		}
		writeJSON(w, http.StatusOK, map[string]any{"meals": meals, "total": 40})
	})
	mux.HandleFunc("GET /meals/{id}", func(w http.ResponseWriter, r *http.Request) {
		m, ok := b.meals[r.PathValue("id")]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "meal not found"})
			return
		}
		writeJSON(w, http.StatusOK, m)
	})
	mux.HandleFunc("GET /favorites", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.favorites)
	})
	mux.HandleFunc("DELETE /favorites/{id}", func(w http.ResponseWriter, r *http.Request) {
		if b.deleteFavoriteStatus != 0 {
			writeJSON(w, b.deleteFavoriteStatus, map[string]string{"message": "delete failed"})
			return
		}
		id := r.PathValue("id")
		kept := b.favorites[:0:0]
		for _, f := range b.favorites {
			if f.ID != id {
				kept = append(kept, f)
			}
		}
		b.favorites = kept
		writeJSON(w, http.StatusOK, map[string]int{"deletedCount": 1})
	})
	mux.HandleFunc("GET /orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, b.orders)
	})
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "insertedId": "o-new"})
	})
	mux.HandleFunc("POST /create-checkout-session", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&b.lastCheckout)
		writeJSON(w, http.StatusOK, map[string]string{"url": "https://checkout.example/pay/cs_1"})
	})
	mux.HandleFunc("PATCH /payment-success", func(w http.ResponseWriter, r *http.Request) {
		b.lastPaymentSession = r.URL.Query().Get("session_id")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.hits[r.Method+" "+r.URL.Path]++
		if auth := r.Header.Get("Authorization"); auth != "" {
			b.lastAuth = auth
		}
		mux.ServeHTTP(w, r)
	})
}

type fakeProvider struct {
	mu      sync.Mutex
	created int
	signIns int
}

func (p *fakeProvider) CreateAccount(_ context.Context, req identity.SignUp) (*identity.Account, error) {
	p.mu.Lock()
	p.created++
	p.mu.Unlock()
	return account(req.Email), nil
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (*identity.Account, error) {
	p.mu.Lock()
	p.signIns++
	p.mu.Unlock()
	if password != "secret123" {
		return nil, identity.ErrInvalidCredentials
	}
	return account(email), nil
}

func (p *fakeProvider) SignOut(context.Context, string) error { return nil }
func (p *fakeProvider) UpdateProfile(context.Context, string, string, string) error { return nil }

func (p *fakeProvider) Refresh(context.Context, string) (*identity.Credentials, error) {
	return &identity.Credentials{IDToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func account(email string) *identity.Account {
	return &identity.Account{
		UID:         "uid-" + email,
		Email:       email,
		DisplayName: "Test User",
		IDToken:     "tok",
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

type harness struct {
	router   *gin.Engine
	backend  *fakeBackend
	provider *fakeProvider
	store    *session.Store
	codec    *session.CookieCodec
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	backend := newFakeBackend()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	public := apiclient.NewWithHTTPClient(apiclient.Config{BaseURL: srv.URL}, srv.Client())
	secure := public.Secure(session.Token)

	users := repository.NewUserRepository(secure)
	meals := repository.NewMealRepository(public, secure)
	reviews := repository.NewReviewRepository(public, secure)
	favorites := repository.NewFavoriteRepository(secure)
	orders := repository.NewOrderRepository(secure)
	payments := repository.NewPaymentRepository(secure)
	requests := repository.NewRoleRequestRepository(secure)
	stats := repository.NewStatsRepository(secure)

	mem := cache.NewMemory()
	ttl := time.Minute
	store := session.NewStore(session.NewMemoryBackend(), time.Hour, log)
	t.Cleanup(store.Close)
	codec := session.NewCookieCodec("test-secret", time.Hour)
	provider := &fakeProvider{}

	resolver := service.NewRoleResolver(users, mem, ttl)
	store.Subscribe(resolver.OnSessionEvent)
	authSvc := service.NewAuthService(provider, users, store, log)
	mealSvc := service.NewMealService(meals, reviews, mem, ttl)
	reviewSvc := service.NewReviewService(reviews, mem, ttl)
	favoriteSvc := service.NewFavoriteService(favorites, mem, ttl, nil)
	orderSvc := service.NewOrderService(orders, payments, mem, ttl, nil)
	profileSvc := service.NewProfileService(users, requests, mem, ttl)
	adminSvc := service.NewAdminService(users, requests, stats, resolver, mem, ttl)

	sessions := middleware.NewSessions(store, codec, authSvc, middleware.SessionConfig{CookieName: cookieName}, log)
	roles := middleware.NewRoles(resolver, log)

	menu, err := view.LoadMenu()
	require.NoError(t, err)
	tmpl, err := view.Templates()
	require.NoError(t, err)
	render := NewRenderer(menu, store, roles, themeDark, log)

	router := NewRouter(RouterDeps{
		Handlers: Handlers{
			Auth:    NewAuthHandler(authSvc, sessions, render, log),
			Meals:   NewMealHandler(mealSvc, reviewSvc, favoriteSvc, render, log),
			Orders:  NewOrderHandler(orderSvc, mealSvc, roles, render, log),
			Account: NewAccountHandler(authSvc, profileSvc, favoriteSvc, reviewSvc, render, log),
			Chef:    NewChefHandler(mealSvc, orderSvc, render, log),
			Admin:   NewAdminHandler(adminSvc, store, render, log),
			Theme:   NewThemeHandler(render),
			Session: NewSessionHandler(roles),
		},
		Render:    render,
		Sessions:  sessions,
		Roles:     roles,
		Templates: tmpl,
	})

	return &harness{router: router, backend: backend, provider: provider, store: store, codec: codec}
}

// signIn registers a backend user with role and returns a session cookie for it.
func (h *harness) signIn(t *testing.T, email string, role model.Role) *http.Cookie {
	t.Helper()
	h.backend.users[email] = model.User{ID: "id-" + email, Email: email, DisplayName: "Test User", Role: role, Status: model.StatusActive, Address: "12 Lake Road, Dhaka"}
	sess, err := h.store.Create(context.Background(), session.Identity{
		UID:         "uid-" + email,
		Email:       email,
		DisplayName: "Test User",
		IDToken:     "tok",
		TokenExpiry: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	value, err := h.codec.Encode(sess.ID)
	require.NoError(t, err)
	return &http.Cookie{Name: cookieName, Value: value}
}

func (h *harness) get(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	return h.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
}

func (h *harness) post(path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(req, cookies...)
}

func (h *harness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		if c != nil {
			req.AddCookie(c)
		}
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

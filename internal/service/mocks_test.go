package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/chefhut/storefront/internal/apiclient"
	"github.com/chefhut/storefront/internal/identity"
	"github.com/chefhut/storefront/internal/model"
	"github.com/chefhut/storefront/internal/repository"
	"github.com/chefhut/storefront/internal/session"
)

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func newTestSessions() *session.Store {
	return session.NewStore(session.NewMemoryBackend(), time.Hour, discardLogger())
}

// --- users ---

type mockUserRepo struct {
	users    map[string]*model.User
	statuses map[string]model.AccountStatus
	gets     int
	err      error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User), statuses: make(map[string]model.AccountStatus)}
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = "u-" + strconv.Itoa(len(m.users)+1)
	m.users[user.Email] = user
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, email string, upd repository.UserUpdate) error {
	u, ok := m.users[email]
	if !ok {
		return &apiclient.Error{Status: http.StatusNotFound}
	}
	if upd.DisplayName != nil {
		u.DisplayName = *upd.DisplayName
	}
	if upd.PhotoURL != nil {
		u.PhotoURL = *upd.PhotoURL
	}
	return nil
}

func (m *mockUserRepo) List(_ context.Context, _ int) ([]model.User, error) {
	var out []model.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockUserRepo) UpdateStatus(_ context.Context, id string, status model.AccountStatus) error {
	m.statuses[id] = status
	for _, u := range m.users {
		if u.ID == id {
			u.Status = status
		}
	}
	return nil
}

// --- role requests ---

type mockRequestRepo struct {
	requests map[string]*model.RoleRequest
	created  int
	err      error
	silent   bool // Resolve answers without echoing the request
}

func newMockRequestRepo() *mockRequestRepo {
	return &mockRequestRepo{requests: make(map[string]*model.RoleRequest)}
}

func (m *mockRequestRepo) ListPendingByEmail(_ context.Context, email string) ([]model.RoleRequest, error) {
	var out []model.RoleRequest
	for _, r := range m.requests {
		if r.UserEmail == email && r.RequestStatus == model.RequestPending {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *mockRequestRepo) ListPending(_ context.Context, _ int) (apiclient.List[model.RoleRequest], error) {
	var out []model.RoleRequest
	for _, r := range m.requests {
		if r.RequestStatus == model.RequestPending {
			out = append(out, *r)
		}
	}
	return apiclient.List[model.RoleRequest]{Items: out, Total: len(out)}, nil
}

func (m *mockRequestRepo) Create(_ context.Context, req *model.RoleRequest) error {
	m.created++
	if m.err != nil {
		return m.err
	}
	req.ID = "r-" + strconv.Itoa(len(m.requests)+1)
	req.RequestStatus = model.RequestPending
	m.requests[req.ID] = req
	return nil
}

func (m *mockRequestRepo) Resolve(_ context.Context, id string, action repository.RequestAction) (*model.RoleRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return nil, &apiclient.Error{Status: http.StatusNotFound, Message: "Request not found"}
	}
	if action == repository.ActionApprove {
		r.RequestStatus = model.RequestApproved
	} else {
		r.RequestStatus = model.RequestRejected
	}
	if m.silent {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

// --- meals ---

type mockMealRepo struct {
	meals     map[string]*model.Meal
	lastSkip  int
	lastQuery string
	total     int
	deleted   []string
}

func newMockMealRepo() *mockMealRepo { return &mockMealRepo{meals: make(map[string]*model.Meal)} }

func (m *mockMealRepo) List(_ context.Context, limit, skip int, search, _, _ string) (apiclient.List[model.Meal], error) {
	m.lastSkip = skip
	m.lastQuery = search
	var out []model.Meal
	for _, meal := range m.meals {
		out = append(out, *meal)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	total := m.total
	if total == 0 {
		total = len(m.meals)
	}
	return apiclient.List[model.Meal]{Items: out, Total: total}, nil
}

func (m *mockMealRepo) GetByID(_ context.Context, id string) (*model.Meal, error) {
	meal, ok := m.meals[id]
	if !ok {
		return nil, nil
	}
	cp := *meal
	return &cp, nil
}

func (m *mockMealRepo) Featured(_ context.Context) ([]model.Meal, error) { return nil, nil }

func (m *mockMealRepo) ListByChef(_ context.Context, email string) ([]model.Meal, error) {
	var out []model.Meal
	for _, meal := range m.meals {
		if meal.UserEmail == email {
			out = append(out, *meal)
		}
	}
	return out, nil
}

func (m *mockMealRepo) Create(_ context.Context, meal *model.Meal) error {
	meal.ID = "m-" + strconv.Itoa(len(m.meals)+1)
	m.meals[meal.ID] = meal
	return nil
}

func (m *mockMealRepo) Update(_ context.Context, id string, upd repository.MealUpdate) error {
	meal, ok := m.meals[id]
	if !ok {
		return &apiclient.Error{Status: http.StatusNotFound}
	}
	if upd.FoodName != nil {
		meal.FoodName = *upd.FoodName
	}
	if upd.Price != nil {
		meal.Price = *upd.Price
	}
	return nil
}

func (m *mockMealRepo) Delete(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	delete(m.meals, id)
	return nil
}

// --- reviews ---

type mockReviewRepo struct {
	reviews map[string]*model.Review
}

func newMockReviewRepo() *mockReviewRepo { return &mockReviewRepo{reviews: make(map[string]*model.Review)} }

func (m *mockReviewRepo) filter(keep func(*model.Review) bool) []model.Review {
	var out []model.Review
	for _, r := range m.reviews {
		if keep(r) {
			out = append(out, *r)
		}
	}
	return out
}

func (m *mockReviewRepo) ListByMeal(_ context.Context, foodID string) ([]model.Review, error) {
	return m.filter(func(r *model.Review) bool { return r.FoodID == foodID }), nil
}

func (m *mockReviewRepo) ListByUser(_ context.Context, email string) ([]model.Review, error) {
	return m.filter(func(r *model.Review) bool { return r.ReviewerEmail == email }), nil
}

func (m *mockReviewRepo) ListHome(_ context.Context, _ int) ([]model.Review, error) {
	return m.filter(func(*model.Review) bool { return true }), nil
}

func (m *mockReviewRepo) Create(_ context.Context, review *model.Review) error {
	review.ID = "rv-" + strconv.Itoa(len(m.reviews)+1)
	m.reviews[review.ID] = review
	return nil
}

func (m *mockReviewRepo) Update(_ context.Context, id string, rating float64, comment string) error {
	r, ok := m.reviews[id]
	if !ok {
		return &apiclient.Error{Status: http.StatusNotFound}
	}
	r.Rating, r.Comment = rating, comment
	return nil
}

func (m *mockReviewRepo) Delete(_ context.Context, id string) error {
	delete(m.reviews, id)
	return nil
}

// --- favorites ---

type mockFavoriteRepo struct {
	favorites map[string]*model.Favorite
	deleteErr error
	deletes   int
}

func newMockFavoriteRepo() *mockFavoriteRepo {
	return &mockFavoriteRepo{favorites: make(map[string]*model.Favorite)}
}

func (m *mockFavoriteRepo) ListByEmail(_ context.Context, email string) ([]model.Favorite, error) {
	var out []model.Favorite
	for _, f := range m.favorites {
		if f.UserEmail == email {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (m *mockFavoriteRepo) Create(_ context.Context, fav *model.Favorite) error {
	for _, f := range m.favorites {
		if f.UserEmail == fav.UserEmail && f.MealID == fav.MealID {
			return &apiclient.Error{Status: http.StatusConflict, Message: "Already in favorites"}
		}
	}
	fav.ID = "f-" + strconv.Itoa(len(m.favorites)+1)
	m.favorites[fav.ID] = fav
	return nil
}

func (m *mockFavoriteRepo) Delete(_ context.Context, id string) error {
	m.deletes++
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.favorites, id)
	return nil
}

// --- orders ---

type mockOrderRepo struct {
	orders  map[string]*model.Order
	updates int
}

func newMockOrderRepo() *mockOrderRepo { return &mockOrderRepo{orders: make(map[string]*model.Order)} }

func (m *mockOrderRepo) Create(_ context.Context, order *model.Order) error {
	order.ID = "o-" + strconv.Itoa(len(m.orders)+1)
	cp := *order
	m.orders[order.ID] = &cp
	return nil
}

func (m *mockOrderRepo) ListByEmail(_ context.Context, email string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.UserEmail == email {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) ListByChef(_ context.Context, chefID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range m.orders {
		if o.ChefID == chefID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	m.updates++
	if o, ok := m.orders[id]; ok {
		o.OrderStatus = status
	}
	return nil
}

// --- payments ---

type mockPaymentRepo struct {
	checkouts []repository.CheckoutRequest
	confirmed []string
}

func (m *mockPaymentRepo) CreateCheckoutSession(_ context.Context, req repository.CheckoutRequest) (string, error) {
	m.checkouts = append(m.checkouts, req)
	return "https://checkout.example/cs_" + strconv.Itoa(len(m.checkouts)), nil
}

func (m *mockPaymentRepo) ConfirmPayment(_ context.Context, sessionID string) error {
	m.confirmed = append(m.confirmed, sessionID)
	return nil
}

// --- metrics ---

type countingMetrics struct {
	mu        sync.Mutex
	checkouts int
	rollbacks map[string]int
}

func newCountingMetrics() *countingMetrics { return &countingMetrics{rollbacks: make(map[string]int)} }

func (m *countingMetrics) CheckoutRedirect(context.Context) {
	m.mu.Lock()
	m.checkouts++
	m.mu.Unlock()
}

func (m *countingMetrics) OptimisticRollback(_ context.Context, resource string) {
	m.mu.Lock()
	m.rollbacks[resource]++
	m.mu.Unlock()
}

// --- identity ---

type mockProvider struct {
	accounts  map[string]string
	creates   int
	revoked   []string
	refreshed int
	refresh   error
}

func newMockProvider() *mockProvider { return &mockProvider{accounts: make(map[string]string)} }

func (m *mockProvider) CreateAccount(_ context.Context, req identity.SignUp) (*identity.Account, error) {
	m.creates++
	if _, ok := m.accounts[req.Email]; ok {
		return nil, identity.ErrEmailTaken
	}
	m.accounts[req.Email] = req.Password
	return &identity.Account{
		UID: "uid-" + req.Email, Email: req.Email, DisplayName: req.DisplayName, PhotoURL: req.PhotoURL,
		IDToken: "tok", ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockProvider) SignIn(_ context.Context, email, password string) (*identity.Account, error) {
	if pw, ok := m.accounts[email]; !ok || pw != password {
		return nil, identity.ErrInvalidCredentials
	}
	return &identity.Account{UID: "uid-" + email, Email: email, IDToken: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *mockProvider) SignOut(_ context.Context, uid string) error {
	m.revoked = append(m.revoked, uid)
	return nil
}

func (m *mockProvider) UpdateProfile(context.Context, string, string, string) error { return nil }

func (m *mockProvider) Refresh(context.Context, string) (*identity.Credentials, error) {
	m.refreshed++
	if m.refresh != nil {
		return nil, m.refresh
	}
	return &identity.Credentials{IDToken: "fresh", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

// Package session keeps signed-in sessions and notifies subscribers about
// session lifecycle changes.
//
// One Store exists per process. It is created at startup, handed to the
// components that need it, and closed on shutdown.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chefhut/storefront/internal/dialog"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID          string          `json:"id"`
	UID         string          `json:"uid"`
	Email       string          `json:"email"`
	DisplayName string          `json:"displayName"`
	PhotoURL    string          `json:"photoURL"`
	IDToken     string          `json:"idToken"`
	TokenExpiry time.Time       `json:"tokenExpiry"`
	CreatedAt   time.Time       `json:"createdAt"`
	Notices     []dialog.Notice `json:"notices,omitempty"`
}

type EventType string

const (
	EventSignedIn       EventType = "signed_in"
	EventSignedOut      EventType = "signed_out"
	EventProfileUpdated EventType = "profile_updated"
)

type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	UID       string    `json:"uid"`
	Email     string    `json:"email"`
	Origin    string    `json:"origin"`
	At        time.Time `json:"at"`
}

type Backend interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Remove(ctx context.Context, id string) error
}

// Publisher broadcasts events to other storefront replicas.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Listener func(ctx context.Context, e Event)

type Store struct {
	backend   Backend
	ttl       time.Duration
	log       *slog.Logger
	origin    string
	publisher Publisher

	mu     sync.RWMutex
	subs   map[int]Listener
	nextID int
	closed bool
}

func NewStore(backend Backend, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		backend: backend,
		ttl:     ttl,
		log:     log,
		origin:  uuid.NewString(),
		subs:    make(map[int]Listener),
	}
}

// Origin identifies this process in published events.
func (s *Store) Origin() string { return s.origin }

func (s *Store) SetPublisher(p Publisher) { s.publisher = p }

// Subscribe registers fn for every event seen by this process and returns
// the function that removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Dispatch delivers e to the local subscribers.
func (s *Store) Dispatch(ctx context.Context, e Event) {
	s.mu.RLock()
	listeners := make([]Listener, 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(ctx, e)
	}
}

// Close drops all subscribers; later Subscribe calls are no-ops.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	s.subs = make(map[int]Listener)
	s.mu.Unlock()
}

type Identity struct {
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	IDToken     string
	TokenExpiry time.Time
}

func (s *Store) Create(ctx context.Context, id Identity) (*Session, error) {
	sess := &Session{
		ID:          uuid.NewString(),
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
		IDToken:     id.IDToken,
		TokenExpiry: id.TokenExpiry,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.backend.Save(ctx, sess, s.ttl); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.emit(ctx, EventSignedIn, sess)
	return sess, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := s.backend.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Update persists changes such as a refreshed token.
func (s *Store) Update(ctx context.Context, sess *Session) error {
	if err := s.backend.Save(ctx, sess, s.remaining(sess)); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, sess *Session, displayName, photoURL string) error {
	sess.DisplayName = displayName
	if photoURL != "" {
		sess.PhotoURL = photoURL
	}
	if err := s.Update(ctx, sess); err != nil {
		return err
	}
	s.emit(ctx, EventProfileUpdated, sess)
	return nil
}

// Touch announces a server-side change to the account (role, status) so
// subscribers drop what they cached for it.
func (s *Store) Touch(ctx context.Context, email string) {
	s.emit(ctx, EventProfileUpdated, &Session{Email: email})
}

func (s *Store) Delete(ctx context.Context, sess *Session) error {
	if err := s.backend.Remove(ctx, sess.ID); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	s.emit(ctx, EventSignedOut, sess)
	return nil
}

func (s *Store) PushNotice(ctx context.Context, sess *Session, n dialog.Notice) error {
	sess.Notices = append(sess.Notices, n)
	return s.Update(ctx, sess)
}

// PopNotices returns and clears the queued notices.
func (s *Store) PopNotices(ctx context.Context, sess *Session) []dialog.Notice {
	if len(sess.Notices) == 0 {
		return nil
	}
	notices := sess.Notices
	sess.Notices = nil
	if err := s.Update(ctx, sess); err != nil {
		s.log.Warn("clear notices", "error", err)
	}
	return notices
}

func (s *Store) remaining(sess *Session) time.Duration {
	if sess.CreatedAt.IsZero() {
		return s.ttl
	}
	left := time.Until(sess.CreatedAt.Add(s.ttl))
	if left <= 0 {
		return time.Second
	}
	return left
}

func (s *Store) emit(ctx context.Context, t EventType, sess *Session) {
	e := Event{
		ID:        uuid.NewString(),
		Type:      t,
		SessionID: sess.ID,
		UID:       sess.UID,
		Email:     sess.Email,
		Origin:    s.origin,
		At:        time.Now().UTC(),
	}
	s.Dispatch(ctx, e)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, e); err != nil {
			s.log.Error("publish session event", "type", t, "error", err)
		}
	}
}

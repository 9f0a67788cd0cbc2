package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrNoSession = errors.New("not signed in")

// Event names an auth state transition.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
)

// Listener receives auth state changes. session is nil after sign out.
type Listener func(event Event, session *Session)

// Remote is the identity provider's network surface.
type Remote interface {
	SignUp(ctx context.Context, email, password string) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

// SessionStore persists the current session between runs.
type SessionStore interface {
	LoadSession() (*Session, error)
	SaveSession(s *Session) error
	ClearSession() error
}

// Client holds the signed-in session on the client side and notifies
// subscribers whenever it changes.
type Client struct {
	remote Remote
	store  SessionStore
	now    func() time.Time

	mu        sync.Mutex
	session   *Session
	listeners map[int]Listener
	nextID    int
}

// NewClient restores a persisted session when one exists and has not expired.
func NewClient(remote Remote, store SessionStore) *Client {
	c := &Client{
		remote:    remote,
		store:     store,
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	if store != nil {
		if s, err := store.LoadSession(); err == nil && s != nil && !s.Expired(c.now()) {
			c.session = s
		}
	}
	return c
}

// Session returns the current session or nil.
func (c *Client) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session.Expired(c.now()) {
		return nil
	}
	s := *c.session
	return &s
}

// User returns the signed-in user or nil.
func (c *Client) User() *User {
	if s := c.Session(); s != nil {
		u := s.User
		return &u
	}
	return nil
}

// AccessToken implements the gateway token source.
func (c *Client) AccessToken() (string, error) {
	s := c.Session()
	if s == nil {
		return "", ErrNoSession
	}
	return s.AccessToken, nil
}

func (c *Client) SignUp(ctx context.Context, email, password string) (*Session, error) {
	s, err := c.remote.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s, c.setSession(s)
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	s, err := c.remote.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s, c.setSession(s)
}

// SignOut clears the local session even when the provider call fails; the
// provider error is still returned.
func (c *Client) SignOut(ctx context.Context) error {
	c.mu.Lock()
	current := c.session
	c.session = nil
	c.mu.Unlock()

	var remoteErr error
	if current != nil && !current.Expired(c.now()) {
		remoteErr = c.remote.SignOut(ctx, current.AccessToken)
	}
	if c.store != nil {
		if err := c.store.ClearSession(); err != nil && remoteErr == nil {
			remoteErr = err
		}
	}
	c.emit(EventSignedOut, nil)
	return remoteErr
}

// OnAuthStateChange registers fn and immediately replays the current state
// as EventInitialSession. The returned func unsubscribes.
func (c *Client) OnAuthStateChange(fn Listener) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()

	fn(EventInitialSession, c.Session())

	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Client) setSession(s *Session) error {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()

	var err error
	if c.store != nil {
		err = c.store.SaveSession(s)
	}
	c.emit(EventSignedIn, s)
	return err
}

func (c *Client) emit(event Event, s *Session) {
	c.mu.Lock()
	listeners := make([]Listener, 0, len(c.listeners))
	for _, l := range c.listeners {
		listeners = append(listeners, l)
	}
	c.mu.Unlock()

	for _, l := range listeners {
		l(event, s)
	}
}

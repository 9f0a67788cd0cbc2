package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sadopc/planner/internal/backend"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := backend.NewMemory()
	if err != nil {
		t.Fatalf("new memory backend: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db, NewIssuer("test-secret", time.Hour))
}

// ============================================================
// Tokens
// ============================================================

func TestIssueVerify(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, exp, err := iss.Issue("user-1", "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatal("expiry should be in the future")
	}
	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.Subject != "user-1" || claims.Email != "a@example.com" || claims.ID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, _, _ := iss.Issue("user-1", "a@example.com")

	other := NewIssuer("other-secret", time.Hour)
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong secret: expected ErrInvalidToken, got %v", err)
	}

	expired := NewIssuer("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	old, _, _ := expired.Issue("user-1", "a@example.com")
	if _, err := iss.Verify(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired: expected ErrInvalidToken, got %v", err)
	}

	if _, err := iss.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage: expected ErrInvalidToken, got %v", err)
	}
}

// ============================================================
// Service
// ============================================================

func TestSignUpSignIn(t *testing.T) {
	s := newTestService(t)

	sess, err := s.SignUp("me@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if sess.AccessToken == "" || sess.User.Email != "me@example.com" || sess.TokenType != "bearer" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if _, err := s.SignUp("me@example.com", "another pass"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	again, err := s.SignIn("ME@example.com", "correct horse")
	if err != nil {
		t.Fatal(err)
	}
	if again.User.ID != sess.User.ID {
		t.Fatal("sign in should resolve the same user")
	}

	if _, err := s.SignIn("me@example.com", "wrong password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := s.SignIn("nobody@example.com", "whatever1"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignUpValidation(t *testing.T) {
	s := newTestService(t)
	if _, err := s.SignUp("me@example.com", "short"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword, got %v", err)
	}
	if _, err := s.SignUp("not-an-email", "long enough"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestSignOutRevokes(t *testing.T) {
	s := newTestService(t)
	sess, _ := s.SignUp("me@example.com", "correct horse")

	u, err := s.Authenticate(sess.AccessToken)
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != sess.User.ID {
		t.Fatal("authenticate returned wrong user")
	}

	if err := s.SignOut(sess.AccessToken); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Authenticate(sess.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("revoked token should be rejected, got %v", err)
	}
}

// ============================================================
// Client
// ============================================================

type fakeRemote struct {
	session   *Session
	err       error
	signedOut []string
}

func (f *fakeRemote) SignUp(_ context.Context, _, _ string) (*Session, error) { return f.session, f.err }
func (f *fakeRemote) SignIn(_ context.Context, _, _ string) (*Session, error) { return f.session, f.err }
func (f *fakeRemote) SignOut(_ context.Context, token string) error {
	f.signedOut = append(f.signedOut, token)
	return nil
}

type memStore struct {
	s *Session
}

func (m *memStore) LoadSession() (*Session, error) { return m.s, nil }
func (m *memStore) SaveSession(s *Session) error  { m.s = s; return nil }
func (m *memStore) ClearSession() error           { m.s = nil; return nil }

func testSession(exp time.Time) *Session {
	return &Session{AccessToken: "tok", TokenType: "bearer", ExpiresAt: exp, User: User{ID: "u1", Email: "a@example.com"}}
}

func TestClientEvents(t *testing.T) {
	remote := &fakeRemote{session: testSession(time.Now().Add(time.Hour))}
	store := &memStore{}
	c := NewClient(remote, store)

	var events []Event
	unsubscribe := c.OnAuthStateChange(func(e Event, s *Session) {
		events = append(events, e)
	})

	if _, err := c.AccessToken(); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}

	if _, err := c.SignIn(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	if tok, _ := c.AccessToken(); tok != "tok" {
		t.Fatalf("unexpected token %q", tok)
	}
	if store.s == nil {
		t.Fatal("session should be persisted")
	}

	if err := c.SignOut(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Session() != nil || store.s != nil {
		t.Fatal("session should be cleared")
	}
	if len(remote.signedOut) != 1 {
		t.Fatal("provider should be told about sign out")
	}

	want := []Event{EventInitialSession, EventSignedIn, EventSignedOut}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}

	unsubscribe()
	c.SignIn(context.Background(), "a@example.com", "pw")
	if len(events) != 3 {
		t.Fatal("unsubscribed listener should not be called")
	}
}

func TestClientRestoresSession(t *testing.T) {
	live := &memStore{s: testSession(time.Now().Add(time.Hour))}
	if NewClient(&fakeRemote{}, live).User() == nil {
		t.Fatal("live session should be restored")
	}

	stale := &memStore{s: testSession(time.Now().Add(-time.Hour))}
	if NewClient(&fakeRemote{}, stale).User() != nil {
		t.Fatal("expired session should not be restored")
	}
}

func TestClientSignInFailure(t *testing.T) {
	c := NewClient(&fakeRemote{err: ErrInvalidCredentials}, nil)
	if _, err := c.SignIn(context.Background(), "a", "b"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if c.Session() != nil {
		t.Fatal("failed sign in must not set a session")
	}
}

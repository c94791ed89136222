package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskdeck/taskdeck/internal/models"
	"github.com/taskdeck/taskdeck/internal/store"
)

// credentialDoc lives in its own collection so profile documents never carry
// password material.
type credentialDoc struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

type sessionFile struct {
	UserID string `json:"userId"`
}

// Local is a Provider backed by the document store, with the active session
// persisted in the data directory so it survives restarts.
type Local struct {
	store       store.Store
	sessionPath string

	mu        sync.Mutex
	current   *Session
	loaded    bool
	listeners map[int]func(*Session)
	nextID    int
}

var _ Provider = (*Local)(nil)

// NewLocal creates a Local provider persisting its session under dataDir.
func NewLocal(st store.Store, dataDir string) *Local {
	return &Local{
		store:       st,
		sessionPath: filepath.Join(dataDir, "session.json"),
		listeners:   make(map[int]func(*Session)),
	}
}

func (l *Local) SignIn(ctx context.Context, email, password string) (*Session, error) {
	docs, err := l.store.Query(ctx, store.CollectionCredentials, store.Filter{
		Field: "email", Op: store.OpEqual, Value: email,
	})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if len(docs) == 0 {
		return nil, ErrInvalidCredentials
	}

	var cred credentialDoc
	if err := docs[0].Decode(&cred); err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := l.loadUser(ctx, cred.ID)
	if err != nil {
		return nil, err
	}

	session := &Session{User: *user}
	if err := l.saveSession(session); err != nil {
		return nil, err
	}
	l.setCurrent(session)
	return session, nil
}

func (l *Local) Register(ctx context.Context, user models.User, password string) (*Session, error) {
	existing, err := l.store.Query(ctx, store.CollectionCredentials, store.Filter{
		Field: "email", Op: store.OpEqual, Value: user.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	if len(existing) > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	user.ID = uuid.NewString()
	cred := credentialDoc{ID: user.ID, Email: user.Email, PasswordHash: string(hash)}

	// Profile and credentials are created together or not at all.
	err = l.store.Transaction(ctx, func(tx store.Tx) error {
		if err := tx.Set(store.CollectionUsers, user.ID, user); err != nil {
			return err
		}
		return tx.Set(store.CollectionCredentials, user.ID, cred)
	})
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}

	session := &Session{User: user}
	if err := l.saveSession(session); err != nil {
		return nil, err
	}
	l.setCurrent(session)
	return session, nil
}

// CurrentSession returns the restored session, or nil when nobody is
// signed in.
func (l *Local) CurrentSession(ctx context.Context) (*Session, error) {
	l.mu.Lock()
	if l.loaded {
		current := l.current
		l.mu.Unlock()
		return current, nil
	}
	l.mu.Unlock()

	data, err := os.ReadFile(l.sessionPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			l.setLoaded(nil)
			return nil, nil
		}
		return nil, fmt.Errorf("restore session: %w", err)
	}

	var sf sessionFile
	if err := json.Unmarshal(data, &sf); err != nil || sf.UserID == "" {
		// Unreadable session file is treated as signed out.
		l.setLoaded(nil)
		return nil, nil
	}

	user, err := l.loadUser(ctx, sf.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			l.setLoaded(nil)
			return nil, nil
		}
		return nil, err
	}

	session := &Session{User: *user}
	l.setLoaded(session)
	return session, nil
}

func (l *Local) UpdateProfile(ctx context.Context, user models.User) error {
	if err := l.store.Set(ctx, store.CollectionUsers, user.ID, user); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	l.mu.Lock()
	refreshed := l.current != nil && l.current.User.ID == user.ID
	l.mu.Unlock()
	if refreshed {
		l.setCurrent(&Session{User: user})
	}
	return nil
}

func (l *Local) SignOut(ctx context.Context) error {
	if err := os.Remove(l.sessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("sign out: %w", err)
	}
	l.setCurrent(nil)
	return nil
}

func (l *Local) OnSessionChange(fn func(*Session)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.listeners, id)
	}
}

func (l *Local) loadUser(ctx context.Context, id string) (*models.User, error) {
	doc, err := l.store.Get(ctx, store.CollectionUsers, id)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	var user models.User
	if err := doc.Decode(&user); err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	return &user, nil
}

func (l *Local) saveSession(s *Session) error {
	data, err := json.Marshal(sessionFile{UserID: s.User.ID})
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.sessionPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(l.sessionPath, data, 0600)
}

func (l *Local) setCurrent(s *Session) {
	l.mu.Lock()
	l.current = s
	l.loaded = true
	listeners := make([]func(*Session), 0, len(l.listeners))
	for _, fn := range l.listeners {
		listeners = append(listeners, fn)
	}
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

func (l *Local) setLoaded(s *Session) {
	l.mu.Lock()
	l.current = s
	l.loaded = true
	l.mu.Unlock()
}

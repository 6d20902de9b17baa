package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"flowforge/auth"
	"flowforge/schema"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const sessionLifetime = time.Hour

var ErrEmailAlreadyInUse = errors.New("email is already in use")

// gormAuth issues and verifies HS256 access tokens against the users table.
// The session is held client-side; the datastore only stores credentials.
type gormAuth struct {
	db  *gorm.DB
	jwt *auth.JwtManager

	mu          sync.Mutex
	session     *Session
	subscribers map[int]AuthCallback
	nextSub     int
}

func newGormAuth(db *gorm.DB, jwtSecret []byte) *gormAuth {
	return &gormAuth{
		db:          db,
		jwt:         auth.NewJwtManager(jwtSecret),
		subscribers: make(map[int]AuthCallback),
	}
}

func (a *gormAuth) sessionFor(user schema.User) (*Session, error) {
	token, err := a.jwt.CreateSessionToken(user.Id, user.Email, user.Name, sessionLifetime)
	if err != nil {
		return nil, err
	}
	return &Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(sessionLifetime).Unix(),
		Subject:     user.Id,
		Email:       user.Email,
		Name:        user.Name,
	}, nil
}

// notify invokes every subscriber synchronously. Callers must not hold a.mu.
func (a *gormAuth) notify(event AuthEvent, session *Session) {
	a.mu.Lock()
	callbacks := make([]AuthCallback, 0, len(a.subscribers))
	for _, cb := range a.subscribers {
		callbacks = append(callbacks, cb)
	}
	a.mu.Unlock()

	for _, cb := range callbacks {
		cb(event, session)
	}
}

func (a *gormAuth) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("error encrypting password: %w", err)
	}

	user := schema.User{
		Id:           uuid.NewString(),
		Name:         name,
		Email:        email,
		Role:         "user",
		PasswordHash: hash,
	}

	err = a.db.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		var existing schema.User
		result := txn.Limit(1).Find(&existing, "email = ?", email)
		if result.Error != nil {
			slog.Error("sql error checking for existing email", "error", result.Error)
			return schema.ErrStoreAccessFailed
		}
		if result.RowsAffected != 0 {
			return ErrEmailAlreadyInUse
		}

		result = txn.Create(&user)
		if result.Error != nil {
			slog.Error("sql error creating new user entry", "error", result.Error)
			return schema.ErrStoreAccessFailed
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error creating new user: %w", err)
	}

	session, err := a.sessionFor(user)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	a.notify(SignedIn, session)
	return session, nil
}

func (a *gormAuth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	var user schema.User
	result := a.db.WithContext(ctx).First(&user, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		slog.Error("sql error looking up user by email", "error", result.Error)
		return nil, schema.ErrStoreAccessFailed
	}

	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		return nil, err
	}

	session, err := a.sessionFor(user)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	a.session = session
	a.mu.Unlock()

	a.notify(SignedIn, session)
	return session, nil
}

func (a *gormAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()

	a.notify(SignedOut, nil)
	return nil
}

func (a *gormAuth) GetSession(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.session == nil {
		return nil, nil
	}
	if time.Now().Unix() >= a.session.ExpiresAt {
		a.session = nil
		return nil, nil
	}
	copied := *a.session
	return &copied, nil
}

func (a *gormAuth) OnAuthStateChange(cb AuthCallback) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = cb
	session := a.session
	a.mu.Unlock()

	// Initial notification is asynchronous, matching the remote client's
	// subscription contract.
	go func() {
		if session != nil {
			cb(SignedIn, session)
		} else {
			cb(SignedOut, nil)
		}
	}()

	return func() {
		a.mu.Lock()
		delete(a.subscribers, id)
		a.mu.Unlock()
	}
}

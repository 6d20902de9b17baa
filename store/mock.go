package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var fixtureData []byte

// MockStore replays a fixed seed dataset through the store client interface.
// It exists so the application can run with no backend configured: reads
// filter the fixtures, writes resolve successfully without persisting
// anything.
type MockStore struct {
	tables map[string][]Row
	auth   *mockAuth
}

func NewMockStore() *MockStore {
	tables, err := loadFixtures(fixtureData)
	if err != nil {
		// The dataset is compiled in; a parse failure is a build defect.
		log.Fatalf("error loading mock fixtures: %v", err)
	}
	return &MockStore{tables: tables, auth: newMockAuth()}
}

func loadFixtures(data []byte) (map[string][]Row, error) {
	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing fixture dataset: %w", err)
	}

	tables := make(map[string][]Row, len(raw))
	for table, rows := range raw {
		converted := make([]Row, 0, len(rows))
		for _, r := range rows {
			converted = append(converted, normalizeFixtureRow(r))
		}
		tables[table] = converted
	}
	return tables, nil
}

// normalizeFixtureRow flattens any structured values to serialized text, the
// same wire shape the relational evaluator produces for json columns.
func normalizeFixtureRow(raw map[string]any) Row {
	row := make(Row, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				row[k] = v
				continue
			}
			row[k] = string(encoded)
		default:
			row[k] = v
		}
	}
	return row
}

func (s *MockStore) Auth() AuthClient {
	return s.auth
}

func matches(row Row, f Filter) bool {
	value, ok := row[f.Column]
	switch f.Op {
	case OpEq:
		return ok && fmt.Sprint(value) == fmt.Sprint(f.Value)
	case OpIn:
		if !ok {
			return false
		}
		for _, candidate := range f.Values {
			if fmt.Sprint(value) == fmt.Sprint(candidate) {
				return true
			}
		}
	}
	return false
}

func (s *MockStore) Select(ctx context.Context, q Query) ([]Row, error) {
	rows := make([]Row, 0)
	for _, row := range s.tables[q.Table] {
		keep := true
		for _, f := range q.Filters {
			if !matches(row, f) {
				keep = false
				break
			}
		}
		if keep {
			copied := make(Row, len(row))
			for k, v := range row {
				copied[k] = v
			}
			rows = append(rows, copied)
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			a := fmt.Sprint(rows[i][q.OrderBy])
			b := fmt.Sprint(rows[j][q.OrderBy])
			if q.Descending {
				return a > b
			}
			return a < b
		})
	}

	return rows, nil
}

func (s *MockStore) SelectOne(ctx context.Context, q Query) (Row, error) {
	rows, err := s.Select(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// Insert echoes the rows back with ids assigned. Nothing is persisted: the
// mock has no write path, callers re-reading will see the seed dataset.
func (s *MockStore) Insert(ctx context.Context, table string, rows []Row) ([]Row, error) {
	echoed := make([]Row, 0, len(rows))
	now := FormatTime(time.Now())
	for _, row := range rows {
		copied := make(Row, len(row)+3)
		for k, v := range row {
			copied[k] = v
		}
		if id, ok := copied["id"].(string); !ok || id == "" {
			copied["id"] = uuid.NewString()
		}
		if _, ok := copied["created_at"]; !ok {
			copied["created_at"] = now
		}
		if _, ok := copied["updated_at"]; !ok {
			copied["updated_at"] = now
		}
		echoed = append(echoed, copied)
	}
	return echoed, nil
}

func (s *MockStore) Update(ctx context.Context, table string, changes Row, filters ...Filter) error {
	return nil
}

func (s *MockStore) Delete(ctx context.Context, table string, filters ...Filter) error {
	return nil
}

// mockAuth fabricates a session and tracks a single authenticated flag in
// memory. Credentials are never checked; this path is only reachable when no
// real backend is configured.
type mockAuth struct {
	mu            sync.Mutex
	authenticated bool
	subscribers   map[int]AuthCallback
	nextSub       int
}

func newMockAuth() *mockAuth {
	return &mockAuth{authenticated: true, subscribers: make(map[int]AuthCallback)}
}

func mockSession() *Session {
	return &Session{
		AccessToken: "mock-access-token",
		TokenType:   "bearer",
		ExpiresAt:   time.Now().Add(time.Hour).Unix(),
		Subject:     "user-admin",
		Email:       "admin@example.com",
		Name:        "Admin User",
	}
}

func (a *mockAuth) notify(event AuthEvent, session *Session) {
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

func (a *mockAuth) SignUp(ctx context.Context, email, password, name string) (*Session, error) {
	a.mu.Lock()
	a.authenticated = true
	a.mu.Unlock()

	session := mockSession()
	a.notify(SignedIn, session)
	return session, nil
}

func (a *mockAuth) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	a.mu.Lock()
	a.authenticated = true
	a.mu.Unlock()

	session := mockSession()
	a.notify(SignedIn, session)
	return session, nil
}

func (a *mockAuth) SignOut(ctx context.Context) error {
	a.mu.Lock()
	a.authenticated = false
	a.mu.Unlock()

	// Subscribers hear about the sign-out before the call settles.
	a.notify(SignedOut, nil)
	return nil
}

func (a *mockAuth) GetSession(ctx context.Context) (*Session, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.authenticated {
		return nil, nil
	}
	return mockSession(), nil
}

func (a *mockAuth) OnAuthStateChange(cb AuthCallback) func() {
	a.mu.Lock()
	id := a.nextSub
	a.nextSub++
	a.subscribers[id] = cb
	authenticated := a.authenticated
	a.mu.Unlock()

	go func() {
		if authenticated {
			cb(SignedIn, mockSession())
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

package state_test

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"flowforge/schema"
	"flowforge/state"
	"flowforge/store"
)

func newTestStore(t *testing.T) store.Client {
	dsn := fmt.Sprintf("file:%v?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(schema.All()...); err != nil {
		t.Fatal(err)
	}
	return store.NewGormStore(db, []byte("290zcv02ai249"))
}

func newTestProvider(t *testing.T) (*state.Provider, store.Client) {
	st := newTestStore(t)
	return state.New(st), st
}

func seedUser(t *testing.T, st store.Client, id, name, email string) {
	_, err := st.Insert(context.Background(), schema.TableUsers, []store.Row{
		{"id": id, "name": name, "email": email, "role": "user"},
	})
	if err != nil {
		t.Fatal(err)
	}
}

// brokenTables wraps a store client and fails selects on the given tables,
// simulating a backend that can serve parents but not some child collection.
type brokenTables struct {
	store.Client
	tables map[string]bool
}

func (b *brokenTables) Select(ctx context.Context, q store.Query) ([]store.Row, error) {
	if b.tables[q.Table] {
		return nil, schema.ErrStoreAccessFailed
	}
	return b.Client.Select(ctx, q)
}

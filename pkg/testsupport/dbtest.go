package testsupport

import (
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var dbSeq atomic.Uint64

// NewSQLiteMemoryDB opens a private in-memory SQLite database. Each call gets
// its own database even within one test binary.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	name = strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_fk=1", name, dbSeq.Add(1))
	return sql.Open("sqlite3", dsn)
}

// NewBunDB returns a bun handle over a private in-memory SQLite database that
// is closed when t finishes. models are created with IF NOT EXISTS.
func NewBunDB(t testing.TB, models ...any) *bun.DB {
	t.Helper()
	sqlDB, err := NewSQLiteMemoryDB(t.Name())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(t.Context()); err != nil {
			t.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

package database

import (
	"os"
	"path"
	"sync"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
)

const dbName = "checkoutd.db"

// Database is an interface which exposes a minimal amount of methods
// needed to atomically read and write to the database.
type Database interface {
	// View invokes the passed function in the context of a managed
	// read-only transaction. Any errors returned from the user-supplied
	// function are returned from this function.
	View(fn func(tx *gorm.DB) error) error

	// Update invokes the passed function in the context of a managed
	// read-write transaction. Any errors returned from the user-supplied
	// function will cause the transaction to be rolled back and are
	// returned from this function. Otherwise the transaction is committed
	// when the user-supplied function returns a nil error.
	Update(fn func(tx *gorm.DB) error) error

	// Close shuts down the database.
	Close() error
}

// SqliteDB is an implementation of the Database interface using
// the gorm ORM with sqlite.
type SqliteDB struct {
	db  *gorm.DB
	mtx sync.RWMutex
}

// NewSqliteDB instantiates a new db which satisfies the Database interface.
// Passing ":memory:" as the data directory opens an in-memory database.
func NewSqliteDB(dataDir string) (*SqliteDB, error) {
	pth := path.Join(dataDir, "datastore", dbName)
	if dataDir == ":memory:" {
		pth = dataDir
	} else if err := os.MkdirAll(path.Join(dataDir, "datastore"), os.ModePerm); err != nil {
		return nil, err
	}
	db, err := gorm.Open("sqlite3", pth)
	if err != nil {
		return nil, err
	}
	return &SqliteDB{db: db}, nil
}

// View invokes the passed function with the underlying db handle. The
// handle must only be used for queries.
func (s *SqliteDB) View(fn func(tx *gorm.DB) error) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return fn(s.db)
}

// Update invokes the passed function inside a transaction, rolling back
// on a returned error.
func (s *SqliteDB) Update(fn func(tx *gorm.DB) error) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	tx := s.db.Begin()
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}

// Close shuts down the db handle.
func (s *SqliteDB) Close() error {
	return s.db.Close()
}

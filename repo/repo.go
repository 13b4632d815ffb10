package repo

import (
	"os"
	"path"

	"github.com/harborline/checkoutd/database"
	"github.com/harborline/checkoutd/models"
	"github.com/jinzhu/gorm"
	"github.com/op/go-logging"
)

var log = logging.MustGetLogger("REPO")

// Repo is a wrapper around the data directory and database. It initializes
// the directory and runs the schema migrations on open.
type Repo struct {
	db      database.Database
	dataDir string
}

// NewRepo opens (and if necessary creates) the data directory and database.
func NewRepo(dataDir string) (*Repo, error) {
	return newRepo(dataDir, false)
}

// MockRepo builds a Repo with an in-memory database suitable for tests.
func MockRepo() (*Repo, error) {
	return newRepo(":memory:", true)
}

func newRepo(dataDir string, inMemory bool) (*Repo, error) {
	if !inMemory {
		if err := os.MkdirAll(path.Join(dataDir, "datastore"), os.ModePerm); err != nil {
			return nil, err
		}
	}

	db, err := database.NewSqliteDB(dataDir)
	if err != nil {
		return nil, err
	}

	if err := initDatabaseTables(db); err != nil {
		return nil, err
	}

	return &Repo{db: db, dataDir: dataDir}, nil
}

// DB returns the database implementation.
func (r *Repo) DB() database.Database {
	return r.db
}

// DataDir returns the data directory associated with this repo.
func (r *Repo) DataDir() string {
	return r.dataDir
}

// Close shuts down the repo.
func (r *Repo) Close() {
	if err := r.db.Close(); err != nil {
		log.Errorf("Error closing database: %s", err)
	}
}

// DestroyRepo deletes the repo's data directory. Used primarily by tests.
func (r *Repo) DestroyRepo() error {
	if err := r.db.Close(); err != nil {
		return err
	}
	if r.dataDir == ":memory:" {
		return nil
	}
	return os.RemoveAll(r.dataDir)
}

func initDatabaseTables(db database.Database) error {
	return db.Update(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&models.CheckoutSession{},
			&models.ChargeRecord{},
			&models.NotificationRecord{},
		).Error
	})
}

package database

import (
	"errors"
	"io/ioutil"
	"os"
	"path"
	"testing"

	"github.com/jinzhu/gorm"
)

type testRecord struct {
	ID    string `gorm:"primary_key"`
	Value string
}

func TestSqliteDB(t *testing.T) {
	dataDir, err := ioutil.TempDir("", "checkoutd-db-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dataDir)

	db, err := NewSqliteDB(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	if _, err := os.Stat(path.Join(dataDir, "datastore", dbName)); err != nil {
		t.Fatal(err)
	}

	err = db.Update(func(tx *gorm.DB) error {
		return tx.AutoMigrate(&testRecord{}).Error
	})
	if err != nil {
		t.Fatal(err)
	}

	err = db.Update(func(tx *gorm.DB) error {
		return tx.Save(&testRecord{ID: "a", Value: "one"}).Error
	})
	if err != nil {
		t.Fatal(err)
	}

	// A returned error rolls the transaction back.
	err = db.Update(func(tx *gorm.DB) error {
		if err := tx.Save(&testRecord{ID: "b", Value: "two"}).Error; err != nil {
			return err
		}
		return errors.New("rollback")
	})
	if err == nil {
		t.Fatal("Expected update error")
	}

	var records []testRecord
	err = db.View(func(tx *gorm.DB) error {
		return tx.Find(&records).Error
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 || records[0].ID != "a" {
		t.Errorf("Expected only the committed record, got %v", records)
	}
}

func TestSqliteDBInMemory(t *testing.T) {
	db, err := NewSqliteDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	err = db.Update(func(tx *gorm.DB) error {
		return tx.AutoMigrate(&testRecord{}).Error
	})
	if err != nil {
		t.Fatal(err)
	}
}

package cmd

import (
	"errors"
	"os"
	"path"

	"github.com/harborline/checkoutd/repo"
)

// Init initializes a new checkoutd data directory at the provided path.
type Init struct {
	DataDir string `short:"d" long:"datadir" description:"Directory to store data"`
	Force   bool   `short:"f" long:"force" description:"Force overwrite existing repo (dangerous!)"`
}

// Execute initializes the checkoutd data directory.
func (x *Init) Execute(args []string) error {
	if x.DataDir == "" {
		x.DataDir = repo.DefaultHomeDir
	}

	if _, err := os.Stat(path.Join(x.DataDir, "datastore")); err == nil && !x.Force {
		return errors.New("repo is already initialized")
	}

	if x.Force {
		if err := os.RemoveAll(x.DataDir); err != nil {
			return err
		}
	}

	r, err := repo.NewRepo(x.DataDir)
	if err != nil {
		return err
	}
	return r.DB().Close()
}

package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"

	"github.com/sugarswap/sugarswap/storage"
	"github.com/sugarswap/sugarswap/storage/model"
)

type storageConf struct {
	storage.Config `yaml:",inline"`
}

func (c *storageConf) validate() error {
	if c.DataDir == "" {
		return errors.New("error in storage conf: data_dir must be specified")
	}
	if !fileutils.FileExists(c.DataDir) {
		return errors.Errorf("storage data_dir '%s' does not exist", c.DataDir)
	}
	return nil
}

var defaultStorageConf = storageConf{
	Config: storage.Config{
		DataDir:   ".",
		UsersHash: storage.DefaultArgon2idParams(),
	},
}

// LoadStorageBackends loads and returns the storage backends for the passed Config
func LoadStorageBackends(c storageConf) (model.Backends, error) {
	backs, err := storage.LoadStorageBackends(c.Config)
	if err != nil {
		return model.Backends{}, err
	}
	log.Info("Loaded storage backend")
	return backs, nil
}

package storage

import (
	"path/filepath"

	"github.com/sugarswap/sugarswap/storage/model"
)

// defaultStoreFile is the store file name used when none is configured
const defaultStoreFile = "users.json"

// Config represents the user store configuration
type Config struct {
	// DataDir is the directory where the store file lives
	DataDir string `yaml:"data_dir"`
	// File overrides the store file path; relative paths are resolved
	// against DataDir
	File string `yaml:"file"`
	// UsersHash defines parameters for hashing user passwords
	UsersHash Argon2idParams `yaml:"password_hashing"`
}

// StorePath returns the resolved path of the user store file
func (cfg Config) StorePath() string {
	file := cfg.File
	if file == "" {
		file = defaultStoreFile
	}
	if !filepath.IsAbs(file) {
		file = filepath.Join(cfg.DataDir, file)
	}
	return file
}

// LoadStorageBackends initializes the storage layer and returns grouped backends.
func LoadStorageBackends(cfg Config) (model.Backends, error) {
	return model.Backends{
		Users: NewUserFileStorage(cfg.StorePath(), cfg.UsersHash),
	}, nil
}

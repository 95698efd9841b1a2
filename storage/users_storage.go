// Package storage implements the durable user record store.
//
// The store is a single JSON document holding all user records. It is
// always read in full and written in full; a process-wide mutex
// serializes every load-mutate-save sequence. This is a deliberate
// trade-off for the small scale of the data: concurrent writers from two
// sessions of the same user race and resolve as last-write-wins.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/sugarswap/sugarswap/storage/model"
)

// userStoreDocument is the persisted on-disk layout: {"users": {...}}
type userStoreDocument struct {
	Users map[string]model.UserRecord `json:"users"`
}

// UserFileStorage implements model.UsersStore on a whole-file JSON store
type UserFileStorage struct {
	path   string
	params Argon2idParams
	mutex  sync.Mutex
}

// NewUserFileStorage returns a UserFileStorage persisting to the given
// file path. The file does not need to exist yet.
func NewUserFileStorage(path string, params Argon2idParams) *UserFileStorage {
	if params.Time == 0 {
		params = DefaultArgon2idParams()
	}
	return &UserFileStorage{path: path, params: params}
}

// load reads the whole store from disk. A missing or corrupt file yields
// an empty store: availability wins over strictness here, a broken store
// file must not take the service down.
func (s *UserFileStorage) load() userStoreDocument {
	doc := userStoreDocument{Users: make(map[string]model.UserRecord)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.WithError(err).WithField("path", s.path).Warn("could not read user store, starting empty")
		}
		return doc
	}
	if err = json.Unmarshal(data, &doc); err != nil {
		log.WithError(err).WithField("path", s.path).Warn("user store is corrupt, starting empty")
		return userStoreDocument{Users: make(map[string]model.UserRecord)}
	}
	if doc.Users == nil {
		doc.Users = make(map[string]model.UserRecord)
	}
	return doc
}

// save serializes the whole store and replaces the store file atomically:
// write to a temp file in the same directory, then rename over the old
// one, so a concurrent reader never observes a half-written file.
func (s *UserFileStorage) save(doc userStoreDocument) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return errors.Wrap(err, "could not serialize user store")
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "could not create temp store file")
	}
	defer os.Remove(tmp.Name())
	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "could not write user store")
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "could not sync user store")
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.path), "could not replace user store")
}

// Count returns the number of registered users
func (s *UserFileStorage) Count() (int64, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return int64(len(s.load().Users)), nil
}

// Create registers a new user with a hashed password and the default
// gamification state, then persists the store
func (s *UserFileStorage) Create(username, password string) (*model.UserRecord, error) {
	if username == "" || password == "" {
		return nil, errors.Errorf("username and password are required")
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	doc := s.load()
	if _, ok := doc.Users[username]; ok {
		return nil, model.AlreadyExistsErrorFmt("username already exists: %s", username)
	}
	hash, err := hashPassword(password, s.params)
	if err != nil {
		return nil, err
	}
	record := model.UserRecord{
		PasswordHash: hash,
		Gamification: model.DefaultGamificationState(),
		ProductCache: model.ProductCache{},
	}
	doc.Users[username] = record
	if err = s.save(doc); err != nil {
		return nil, err
	}
	return &record, nil
}

// Get returns a user's record by username. Legacy records missing newer
// gamification fields are normalized to their defaults on the way out.
func (s *UserFileStorage) Get(username string) (*model.UserRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, ok := s.load().Users[username]
	if !ok {
		return nil, model.NotFoundErrorFmt("user not found: %s", username)
	}
	record.Gamification.Normalize()
	return &record, nil
}

// Authenticate validates username/password and transparently upgrades the
// stored hash if the configured parameters changed
func (s *UserFileStorage) Authenticate(username, password string) (*model.UserRecord, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	doc := s.load()
	record, ok := doc.Users[username]
	if !ok {
		return nil, model.InvalidCredentialsError{}
	}
	valid, err := verifyPassword(record.PasswordHash, password)
	if err != nil || !valid {
		return nil, model.InvalidCredentialsError{}
	}
	if stored, _, _, err := parsePasswordHash(record.PasswordHash); err == nil && !stored.equal(s.params) {
		if newHash, err := hashPassword(password, s.params); err == nil {
			record.PasswordHash = newHash
			doc.Users[username] = record
			if err = s.save(doc); err != nil {
				log.WithError(err).Warn("could not persist upgraded password hash")
			}
		}
	}
	record.Gamification.Normalize()
	return &record, nil
}

// UpdateState replaces the user's gamification state and product cache
// and persists the store. The password hash is left untouched.
func (s *UserFileStorage) UpdateState(username string, state model.GamificationState, cache model.ProductCache) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	doc := s.load()
	record, ok := doc.Users[username]
	if !ok {
		return model.NotFoundErrorFmt("user not found: %s", username)
	}
	state.Normalize()
	record.Gamification = state
	if cache == nil {
		cache = model.ProductCache{}
	}
	record.ProductCache = cache
	doc.Users[username] = record
	return s.save(doc)
}

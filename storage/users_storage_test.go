package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sugarswap/sugarswap/storage/model"
)

func newTestStore(t *testing.T) *UserFileStorage {
	t.Helper()
	return NewUserFileStorage(filepath.Join(t.TempDir(), "users.json"), fastParams)
}

func TestCreateAndConflict(t *testing.T) {
	store := newTestStore(t)

	record, err := store.Create("alice", "password123")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Gamification.Level)
	assert.NotEqual(t, "password123", record.PasswordHash)

	_, err = store.Create("alice", "other")
	require.Error(t, err)
	_, ok := err.(model.AlreadyExistsError)
	assert.True(t, ok)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateRequiresCredentials(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("", "pw")
	assert.Error(t, err)
	_, err = store.Create("user", "")
	assert.Error(t, err)
}

func TestAuthenticate(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Create("bob", "hunter2!")
	require.NoError(t, err)

	record, err := store.Authenticate("bob", "hunter2!")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Gamification.Level)

	_, err = store.Authenticate("bob", "hunter2")
	require.Error(t, err)
	_, err = store.Authenticate("nobody", "hunter2!")
	require.Error(t, err)
	// unknown user and wrong password must be indistinguishable
	assert.Equal(t, model.InvalidCredentialsError{}.Error(), err.Error())
}

func TestAuthenticateUpgradesHashParams(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	old := NewUserFileStorage(path, fastParams)
	_, err := old.Create("carol", "pw123456")
	require.NoError(t, err)

	stronger := fastParams
	stronger.Time = 2
	upgraded := NewUserFileStorage(path, stronger)
	_, err = upgraded.Authenticate("carol", "pw123456")
	require.NoError(t, err)

	// the stored hash now carries the new parameters
	record, err := upgraded.Get("carol")
	require.NoError(t, err)
	parsed, _, _, err := parsePasswordHash(record.PasswordHash)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), parsed.Time)
	_, err = upgraded.Authenticate("carol", "pw123456")
	assert.NoError(t, err)
}

func TestUpdateStatePersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	store := NewUserFileStorage(path, fastParams)
	created, err := store.Create("dave", "pw123456")
	require.NoError(t, err)

	state := created.Gamification
	state.Level = 5
	state.Lifetime.DailySugarConsumedG = 12.5
	state.Lifetime.LastConsumedDate = "2024-01-01"
	cache := model.ProductCache{"123456": json.RawMessage(`{"name":"cola"}`)}
	require.NoError(t, store.UpdateState("dave", state, cache))

	// a fresh storage instance simulates a process restart
	fresh := NewUserFileStorage(path, fastParams)
	record, err := fresh.Get("dave")
	require.NoError(t, err)
	assert.Equal(t, 5, record.Gamification.Level)
	assert.Equal(t, 12.5, record.Gamification.Lifetime.DailySugarConsumedG)
	assert.JSONEq(t, `{"name":"cola"}`, string(record.ProductCache["123456"]))
	// the password hash is byte-identical to before the update
	assert.Equal(t, created.PasswordHash, record.PasswordHash)
}

func TestUpdateStateUnknownUser(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateState("ghost", model.DefaultGamificationState(), nil)
	require.Error(t, err)
	_, ok := err.(model.NotFoundError)
	assert.True(t, ok)
}

func TestGetUnknownUser(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get("ghost")
	require.Error(t, err)
	_, ok := err.(model.NotFoundError)
	assert.True(t, ok)
}

func TestMissingFileIsEmptyStore(t *testing.T) {
	store := NewUserFileStorage(filepath.Join(t.TempDir(), "does-not-exist.json"), fastParams)
	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCorruptFileIsEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	store := NewUserFileStorage(path, fastParams)

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	// the store recovers by starting empty and stays writable
	_, err = store.Create("erin", "pw123456")
	require.NoError(t, err)
	record, err := store.Get("erin")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Gamification.Level)
}

func TestLegacyRecordGetsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `{"users": {"frank": {"password": "$argon2id$v=19$m=8,t=1,p=1$AAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAA"}}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0600))

	store := NewUserFileStorage(path, fastParams)
	record, err := store.Get("frank")
	require.NoError(t, err)
	assert.Equal(t, 1, record.Gamification.Level)
	assert.NotNil(t, record.Gamification.Badges)
}

func TestSavedDocumentLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	store := NewUserFileStorage(path, fastParams)
	_, err := store.Create("grace", "pw123456")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	_, ok := doc["users"]["grace"]
	assert.True(t, ok)
}

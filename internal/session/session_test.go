package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSetAndClear(t *testing.T) {
	c := NewMemory()
	_, ok := c.Token()
	assert.False(t, ok)

	p := Profile{ID: 1, Name: "Admin", Email: "admin@mebel.id", Role: "admin", Status: "aktif"}
	require.NoError(t, c.Set("tok", p))

	tok, ok := c.Token()
	require.True(t, ok)
	assert.Equal(t, "tok", tok)
	got, ok := c.Profile()
	require.True(t, ok)
	assert.Equal(t, p, got)

	p.Name = "Admin Baru"
	require.NoError(t, c.UpdateProfile(p))
	got, _ = c.Profile()
	assert.Equal(t, "Admin Baru", got.Name)
	tok, _ = c.Token()
	assert.Equal(t, "tok", tok)

	require.NoError(t, c.Clear())
	_, ok = c.Token()
	assert.False(t, ok)
	_, ok = c.Profile()
	assert.False(t, ok)

	assert.Error(t, c.Set("", p))
}

func TestLandingView(t *testing.T) {
	assert.Equal(t, ViewDashboard, LandingView(Profile{Role: "admin"}))
	assert.Equal(t, ViewCatalog, LandingView(Profile{Role: "user"}))
	assert.Equal(t, ViewCatalog, LandingView(Profile{}))
}

func TestFileStorePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NoError(t, New(s).Set("tok", Profile{ID: 2, Name: "Sari", Role: "user"}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	reopened, err := NewFileStore(path)
	require.NoError(t, err)
	c := New(reopened)
	tok, ok := c.Token()
	require.True(t, ok)
	assert.Equal(t, "tok", tok)
	p, _ := c.Profile()
	assert.Equal(t, "Sari", p.Name)

	require.NoError(t, c.Clear())
	again, err := NewFileStore(path)
	require.NoError(t, err)
	_, ok = New(again).Token()
	assert.False(t, ok)
}

func TestFileStoreRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))
	_, err := NewFileStore(path)
	assert.Error(t, err)
}

func TestFileStoreAcceptsNull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("null"), 0600))

	s, err := NewFileStore(path)
	require.NoError(t, err)
	require.NotPanics(t, func() {
		require.NoError(t, New(s).Set("tok", Profile{ID: 1}))
	})

	tok, ok := s.Get(KeyToken)
	require.True(t, ok)
	assert.Equal(t, "tok", tok)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(filepath.Join(dir, "session.json"))
	require.NoError(t, err)
	require.NoError(t, s.Set("a", "1"))
	require.NoError(t, s.Set("b", "2"))
	require.NoError(t, s.Delete("a"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())
}

// profileFailStore refuses to store the profile.
type profileFailStore struct {
	*MemoryStore
}

func (s profileFailStore) Set(key, value string) error {
	if key == KeyProfile {
		return errors.New("disk full")
	}
	return s.MemoryStore.Set(key, value)
}

func TestSetRollsBackTokenWhenProfileFails(t *testing.T) {
	store := profileFailStore{NewMemoryStore()}
	c := New(store)
	require.Error(t, c.Set("fresh", Profile{ID: 1}))
	_, ok := c.Token()
	assert.False(t, ok)

	require.NoError(t, store.MemoryStore.Set(KeyToken, "old"))
	require.Error(t, c.Set("fresh", Profile{ID: 1}))
	tok, ok := c.Token()
	require.True(t, ok)
	assert.Equal(t, "old", tok)
}

func TestClaims(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 7,
		"role":    "admin",
		"exp":     exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	c := NewMemory()
	require.NoError(t, c.Set(signed, Profile{ID: 7}))
	claims, err := c.Claims()
	require.NoError(t, err)
	assert.Equal(t, "7", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.True(t, exp.Equal(claims.ExpiresAt))
	assert.False(t, claims.Expired(time.Now()))

	require.NoError(t, c.Set("opaque-token", Profile{}))
	_, err = c.Claims()
	assert.Error(t, err)
}

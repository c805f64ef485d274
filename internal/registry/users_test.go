package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-hierarchy/internal/common"
)

func newTestRegistry(t *testing.T) *UserRegistry {
	t.Helper()
	r := NewUserRegistry(filepath.Join(t.TempDir(), "users.json"), 4)
	require.NoError(t, r.Load())
	return r
}

func TestUserRegistry_RegisterAndAuthenticate(t *testing.T) {
	r := newTestRegistry(t)

	user, err := r.Register("Jordan", "jordan@example.com", "password123", true)
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.True(t, user.IsAdmin)
	assert.NotEqual(t, "password123", user.PasswordHash)

	got, ok := r.Authenticate("jordan@example.com", "password123")
	require.True(t, ok)
	assert.Equal(t, user.ID, got.ID)

	_, ok = r.Authenticate("jordan@example.com", "wrong")
	assert.False(t, ok)
	_, ok = r.Authenticate("nobody@example.com", "password123")
	assert.False(t, ok)
}

func TestUserRegistry_DuplicateEmailRejected(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("Jordan", "jordan@example.com", "password123", false)
	require.NoError(t, err)

	_, err = r.Register("Other", "JORDAN@example.com", "password456", false)
	require.Error(t, err)
	assert.True(t, common.IsErrorCode(err, common.ErrAlreadyExists))
}

func TestUserRegistry_ValidatesInput(t *testing.T) {
	r := newTestRegistry(t)

	_, err := r.Register("", "a@example.com", "password123", false)
	assert.True(t, common.IsErrorCode(err, common.ErrInvalidInput))

	_, err = r.Register("Jordan", "a@example.com", "short", false)
	assert.True(t, common.IsErrorCode(err, common.ErrInvalidInput))
}

func TestUserRegistry_PersistsAcrossLoads(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "users.json")

	r := NewUserRegistry(dataFile, 4)
	require.NoError(t, r.Load())
	user, err := r.Register("Jordan", "jordan@example.com", "password123", false)
	require.NoError(t, err)

	reloaded := NewUserRegistry(dataFile, 4)
	require.NoError(t, reloaded.Load())

	got, ok := reloaded.GetByID(user.ID)
	require.True(t, ok)
	assert.Equal(t, "jordan@example.com", got.Email)
	assert.Len(t, reloaded.All(), 1)
}

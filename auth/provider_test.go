package auth

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/raghav0014/AI-Feedback/errs"
	"github.com/raghav0014/AI-Feedback/models"
)

func setupProvider(t *testing.T) *DemoProvider {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewDemoProvider(db, "test-secret")
}

func TestDemoProvider_Register(t *testing.T) {
	provider := setupProvider(t)

	user, token, err := provider.Register("Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, models.ReputationInitial, user.Reputation)
	assert.Empty(t, user.Password, "hash must not leave the provider")
	assert.NotEmpty(t, token)

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, _, err := provider.Register("Alice Again", "alice@example.com", "password456")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindConflict))
	})

	t.Run("short password rejected", func(t *testing.T) {
		_, _, err := provider.Register("Bob", "bob@example.com", "12345")
		require.Error(t, err)
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, _, err := provider.Register("", "carol@example.com", "password123")
		assert.True(t, errs.IsKind(err, errs.KindValidation))
	})
}

func TestDemoProvider_Login(t *testing.T) {
	provider := setupProvider(t)
	_, _, err := provider.Register("Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		user, token, refresh, err := provider.Login("alice@example.com", "password123")
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.Empty(t, user.Password)
		assert.NotEmpty(t, token)
		assert.NotEmpty(t, refresh)
		assert.NotEqual(t, token, refresh)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, _, err := provider.Login("alice@example.com", "wrong")
		assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, _, _, err := provider.Login("nobody@example.com", "password123")
		assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	})
}

func TestDemoProvider_Verify(t *testing.T) {
	provider := setupProvider(t)
	registered, token, err := provider.Register("Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	t.Run("valid token resolves the user", func(t *testing.T) {
		user, err := provider.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.Empty(t, user.Password)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := provider.Verify("not.a.token")
		assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		other := NewDemoProvider(provider.db, "other-secret")
		foreign, err := other.signAccessToken(registered)
		require.NoError(t, err)

		_, err = provider.Verify(foreign)
		assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	})
}

func TestDemoProvider_Refresh(t *testing.T) {
	provider := setupProvider(t)
	_, _, err := provider.Register("Alice", "alice@example.com", "password123")
	require.NoError(t, err)

	_, _, refresh, err := provider.Login("alice@example.com", "password123")
	require.NoError(t, err)

	token, err := provider.Refresh(refresh)
	require.NoError(t, err)

	user, err := provider.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	t.Run("access token semantics still apply to garbage", func(t *testing.T) {
		_, err := provider.Refresh("bogus")
		assert.True(t, errs.IsKind(err, errs.KindUnauthorized))
	})
}

func TestSelect_FallsBackToDemo(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	provider := Select("firebase", "secret", db)
	_, ok := provider.(*DemoProvider)
	assert.True(t, ok)
}

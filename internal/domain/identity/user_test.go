package identity

import (
	"testing"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	BcryptCost = bcrypt.MinCost
}

func TestNewUser(t *testing.T) {
	t.Run("creates active user with normalized email", func(t *testing.T) {
		user, err := NewUser("Alice", "  Alice@Example.COM ", "password1", RoleManager)
		require.NoError(t, err)
		assert.Equal(t, "alice@example.com", user.Email)
		assert.True(t, user.IsActive)
		assert.NotEqual(t, "password1", user.PasswordHash)
		assert.True(t, user.VerifyPassword("password1"))
		assert.False(t, user.VerifyPassword("password2"))
	})

	tests := []struct {
		name     string
		userName string
		email    string
		password string
		role     Role
		code     string
	}{
		{"empty name", "", "a@b.co", "password1", RoleBoss, "INVALID_NAME"},
		{"bad email", "Bob", "not-an-email", "password1", RoleBoss, "INVALID_EMAIL"},
		{"short password", "Bob", "bob@b.co", "short", RoleBoss, "INVALID_PASSWORD"},
		{"unknown role", "Bob", "bob@b.co", "password1", Role("Clerk"), "INVALID_ROLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.userName, tt.email, tt.password, tt.role)
			require.Error(t, err)
			var de *shared.DomainError
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.code, de.Code)
			assert.Equal(t, shared.KindValidation, de.Kind)
		})
	}
}

func TestUser_Actor(t *testing.T) {
	user, err := NewUser("Boss", "boss@shop.co", "password1", RoleBoss)
	require.NoError(t, err)

	actor := user.Actor()
	assert.Equal(t, user.ID, actor.UserID)
	assert.True(t, actor.IsBoss())
	assert.False(t, actor.IsZero())
}

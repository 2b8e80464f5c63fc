package password_test

import (
	"homestay/shared/password"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash(t *testing.T) {
	tests := []struct {
		name        string
		password    string
		expectedErr error
	}{
		{name: "regular", password: "riverside-2026"},
		{name: "at the limit", password: strings.Repeat("a", password.MaxLength)},
		{name: "empty", password: "", expectedErr: password.ErrEmptyPassword},
		{name: "too long", password: strings.Repeat("a", password.MaxLength+1), expectedErr: password.ErrTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := password.Hash(tt.password)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)
				assert.Empty(t, hash)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, tt.password, hash)
			assert.True(t, strings.HasPrefix(hash, "$2a$"))
			assert.NoError(t, password.Verify(tt.password, hash))
		})
	}
}

func TestHash_Salted(t *testing.T) {
	first, err := password.Hash("riverside-2026")
	require.NoError(t, err)

	second, err := password.Hash("riverside-2026")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestVerify(t *testing.T) {
	hash, err := password.Hash("riverside-2026")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		hash     string
		invalid  bool
	}{
		{name: "match", password: "riverside-2026", hash: hash},
		{name: "mismatch", password: "Riverside-2026", hash: hash, invalid: true},
		{name: "empty password", password: "", hash: hash, invalid: true},
		{name: "empty hash", password: "riverside-2026", hash: "", invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := password.Verify(tt.password, tt.hash)
			if tt.invalid {
				assert.ErrorIs(t, err, password.ErrInvalidPassword)

				return
			}

			assert.NoError(t, err)
		})
	}

	t.Run("malformed hash", func(t *testing.T) {
		err := password.Verify("riverside-2026", "not-a-bcrypt-hash")
		require.Error(t, err)
		assert.NotErrorIs(t, err, password.ErrInvalidPassword)
	})
}

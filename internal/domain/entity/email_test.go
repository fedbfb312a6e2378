package entity_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/auth-service/internal/domain/entity"
)

func TestParseEmail_RejectsInvalid(t *testing.T) {
	cases := []string{
		"",
		"input",
		"user@",
		"@example.com",
		"user name@example.com",
		"user@exa mple.com",
		" user@example.com",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			_, err := entity.ParseEmail(in)
			require.Error(t, err)
			assert.ErrorIs(t, err, entity.ErrInvalidEmail)

			var verr *entity.ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, "address", verr.Field)
			assert.Equal(t, "email", verr.Tag)
		})
	}
}

func TestParseEmail_AcceptsValid(t *testing.T) {
	cases := []string{
		"user@example.com",
		"new@example.com",
		"first.last+tag@mail.example.org",
	}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			email, err := entity.ParseEmail(in)
			require.NoError(t, err)
			assert.Equal(t, in, email.Address())
			assert.Equal(t, in, email.String())
		})
	}
}

func TestParseEmail_EqualInputsAreEqual(t *testing.T) {
	a, err := entity.ParseEmail("user@example.com")
	require.NoError(t, err)
	b, err := entity.ParseEmail("user@example.com")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

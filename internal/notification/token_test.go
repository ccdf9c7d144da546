package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionTokenRoundTrip(t *testing.T) {
	t.Parallel()

	issuer := NewActionTokenIssuer("test-secret", time.Hour)

	for _, action := range []Action{ActionApprove, ActionCancel} {
		token, err := issuer.Sign("draft-123", action)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		draftID, got, err := issuer.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, "draft-123", draftID)
		assert.Equal(t, action, got)
	}
}

func TestActionTokenWrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewActionTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Sign("draft-123", ActionApprove)
	require.NoError(t, err)

	other := NewActionTokenIssuer("different-secret", time.Hour)
	_, _, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidActionToken)
}

func TestActionTokenExpired(t *testing.T) {
	t.Parallel()

	issuer := NewActionTokenIssuer("test-secret", time.Millisecond)
	token, err := issuer.Sign("draft-123", ActionCancel)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	_, _, err = issuer.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidActionToken)
}

func TestActionTokenTampered(t *testing.T) {
	t.Parallel()

	issuer := NewActionTokenIssuer("test-secret", time.Hour)
	token, err := issuer.Sign("draft-123", ActionApprove)
	require.NoError(t, err)

	_, _, err = issuer.Verify(token + "x")
	assert.ErrorIs(t, err, ErrInvalidActionToken)

	_, _, err = issuer.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidActionToken)
}

func TestActionTokenDefaultTTL(t *testing.T) {
	t.Parallel()

	issuer := NewActionTokenIssuer("test-secret", 0)
	assert.Equal(t, 48*time.Hour, issuer.ttl)
}

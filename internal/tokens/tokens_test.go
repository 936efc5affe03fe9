package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIssuer(secret string) *Issuer {
	return NewIssuer(NewCodec([]byte(secret)))
}

func TestIssuer_Access_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")
	raw, err := iss.Access("user@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	claims, err := iss.Codec.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, "user@example.com", claims.Subject)
	assert.Equal(t, ScopeAccess, claims.Scope)
	assert.Empty(t, claims.Purpose)
	assert.NotEmpty(t, claims.ID)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(AccessTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_Refresh_SetsExpectedClaims(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")
	raw, err := iss.Refresh("user@example.com")
	require.NoError(t, err)

	claims, err := iss.Codec.Decode(raw)
	require.NoError(t, err)

	assert.Equal(t, ScopeRefresh, claims.Scope)
	require.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(RefreshTTL), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssuer_Action_CarriesPurpose(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")
	raw, err := iss.Action("user@example.com", PurposePasswordReset, PasswordResetDays)
	require.NoError(t, err)

	claims, err := iss.Codec.DecodeAction(raw, PurposePasswordReset)
	require.NoError(t, err)
	assert.Empty(t, claims.Scope)
	assert.Equal(t, PurposePasswordReset, claims.Purpose)

	_, err = iss.Codec.DecodeAction(raw, PurposeEmailConfirm)
	assert.ErrorIs(t, err, ErrWrongPurpose)
}

func TestCodec_DecodeScoped_RejectsMismatch(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")

	access, err := iss.Access("user@example.com")
	require.NoError(t, err)
	refresh, err := iss.Refresh("user@example.com")
	require.NoError(t, err)

	_, err = iss.Codec.DecodeScoped(access, ScopeAccess)
	require.NoError(t, err)

	_, err = iss.Codec.DecodeScoped(access, ScopeRefresh)
	assert.ErrorIs(t, err, ErrWrongScope)

	_, err = iss.Codec.DecodeScoped(refresh, ScopeAccess)
	assert.ErrorIs(t, err, ErrWrongScope)
}

func TestCodec_Decode_BadSignature(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")
	raw, err := iss.Access("user@example.com")
	require.NoError(t, err)

	other := NewCodec([]byte("another-secret"))
	_, err = other.Decode(raw)
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestCodec_Decode_Malformed(t *testing.T) {
	t.Parallel()

	codec := NewCodec([]byte("test-secret"))
	_, err := codec.Decode("not.a.token")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = codec.Decode("")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestCodec_Decode_ExpiredWinsOverOtherCauses(t *testing.T) {
	t.Parallel()

	iss := newTestIssuer("test-secret")
	iss.Now = func() time.Time { return time.Now().Add(-2 * AccessTTL) }

	raw, err := iss.Access("user@example.com")
	require.NoError(t, err)

	_, err = iss.Codec.Decode(raw)
	assert.ErrorIs(t, err, ErrExpired)
	assert.NotErrorIs(t, err, ErrMalformed)
	assert.NotErrorIs(t, err, ErrBadSignature)

	// Scope checks never run on an expired token.
	_, err = iss.Codec.DecodeScoped(raw, ScopeAccess)
	assert.ErrorIs(t, err, ErrExpired)
}

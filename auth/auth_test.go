package auth

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func hash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestNormalizeUsername(t *testing.T) {
	got, err := NormalizeUsername(" Admin ")
	require.NoError(t, err)
	assert.Equal(t, "admin@marketchoice.com", got)

	got, err = NormalizeUsername("ops@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ops@example.com", got)

	for _, bad := range []string{"", "a b", "x@", "@marketchoice.com", "Name <ops@example.com>"} {
		_, err := NormalizeUsername(bad)
		assert.True(t, errors.Is(err, ErrInvalidEmail), "input %q", bad)
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Invalid email or password.", Message(ErrInvalidCredentials))
	assert.Equal(t, "Please enter a valid email address.", Message(ErrInvalidEmail))
	assert.Equal(t, "This account has been disabled.", Message(ErrUserDisabled))
	assert.Equal(t, "Too many failed attempts. Please try again later.", Message(ErrTooManyAttempts))
}

func TestLocalAuthenticator(t *testing.T) {
	a, err := NewLocalAuthenticator("admin", hash(t, "s3cret"))
	require.NoError(t, err)
	ctx := context.Background()

	p, err := a.Authenticate(ctx, "admin", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "admin@marketchoice.com", p.Email)

	_, err = a.Authenticate(ctx, "admin@marketchoice.com", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = a.Authenticate(ctx, "someone", "s3cret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
	_, err = a.Authenticate(ctx, "bad address", "s3cret")
	assert.True(t, errors.Is(err, ErrInvalidEmail))

	_, err = NewLocalAuthenticator("admin", "not-a-hash")
	assert.Error(t, err)
}

func TestThrottled(t *testing.T) {
	inner, err := NewLocalAuthenticator("admin", hash(t, "s3cret"))
	require.NoError(t, err)
	a := NewThrottled(inner, 3, time.Hour)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := a.Authenticate(ctx, "admin", "wrong")
		assert.True(t, errors.Is(err, ErrInvalidCredentials))
	}
	_, err = a.Authenticate(ctx, "admin", "s3cret")
	assert.True(t, errors.Is(err, ErrTooManyAttempts))

	other, err := NewLocalAuthenticator("ops", hash(t, "pw"))
	require.NoError(t, err)
	b := NewThrottled(other, 3, time.Hour)
	_, err = b.Authenticate(ctx, "ops", "wrong")
	require.Error(t, err)
	_, err = b.Authenticate(ctx, "ops", "pw")
	require.NoError(t, err)
	assert.Empty(t, b.limits, "success clears the failure count")
}

type countingAuth struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingAuth) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	time.Sleep(5 * time.Millisecond)
	return nil, c.err
}

func TestThrottled_ConcurrentFailuresStayWithinBurst(t *testing.T) {
	inner := &countingAuth{err: ErrInvalidCredentials}
	a := NewThrottled(inner, 3, time.Hour)

	var wg sync.WaitGroup
	var mu sync.Mutex
	refused := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := a.Authenticate(context.Background(), "admin", "wrong")
			if errors.Is(err, ErrTooManyAttempts) {
				mu.Lock()
				refused++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, 7, refused)
}

func TestThrottled_OtherErrorsDoNotCount(t *testing.T) {
	inner := &countingAuth{err: ErrUserDisabled}
	a := NewThrottled(inner, 2, time.Hour)
	for i := 0; i < 5; i++ {
		_, err := a.Authenticate(context.Background(), "admin", "pw")
		assert.ErrorIs(t, err, ErrUserDisabled)
	}
	assert.Equal(t, 5, inner.calls)
}

func TestThrottled_EvictsIdleAccounts(t *testing.T) {
	inner := &countingAuth{err: ErrInvalidCredentials}
	a := NewThrottled(inner, 3, time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	ctx := context.Background()

	for _, u := range []string{"a", "b", "c"} {
		_, err := a.Authenticate(ctx, u, "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}
	assert.Len(t, a.limits, 3)

	now = now.Add(2 * time.Minute)
	_, err := a.Authenticate(ctx, "d", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Len(t, a.limits, 1)
	assert.Contains(t, a.limits, "d@marketchoice.com")
}

func TestTokenRoundTrip(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, exp, err := issuer.Issue(&Principal{UserID: "u1", Email: "admin@marketchoice.com"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	p, err := issuer.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "admin@marketchoice.com", p.Email)

	other, err := NewTokenIssuer("other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(token)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = issuer.Verify("garbage")
	assert.True(t, errors.Is(err, ErrInvalidToken))

	_, err = NewTokenIssuer("", time.Hour)
	assert.Error(t, err)
}

func TestTokenExpiredAndWrongAlgorithm(t *testing.T) {
	issuer, err := NewTokenIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email:            "admin@marketchoice.com",
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	})
	signed, err := expired.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = issuer.Verify(signed)
	assert.True(t, errors.Is(err, ErrInvalidToken))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, claims{Email: "x@y.z"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = issuer.Verify(unsigned)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}

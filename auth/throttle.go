package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttled limits failed sign-ins per account. Each account may fail
// burst times in a row; further attempts are refused until tokens refill
// at one per window/burst. A successful sign-in resets the account.
type Throttled struct {
	next   Authenticator
	burst  int
	window time.Duration
	every  rate.Limit
	now    func() time.Time

	mu        sync.Mutex
	limits    map[string]*accountLimit
	lastSweep time.Time
}

type accountLimit struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewThrottled(next Authenticator, burst int, window time.Duration) *Throttled {
	if burst <= 0 {
		burst = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Throttled{
		next:   next,
		burst:  burst,
		window: window,
		every:  rate.Every(window / time.Duration(burst)),
		now:    time.Now,
		limits: make(map[string]*accountLimit),
	}
}

func (t *Throttled) Authenticate(ctx context.Context, username, password string) (*Principal, error) {
	email, err := NormalizeUsername(username)
	if err != nil {
		return nil, err
	}

	// The attempt holds a token while it runs; only a wrong password keeps it.
	now := t.now()
	r := t.limiter(email, now).ReserveN(now, 1)
	if !r.OK() || r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, ErrTooManyAttempts
	}

	p, err := t.next.Authenticate(ctx, username, password)
	switch {
	case err == nil:
		t.mu.Lock()
		delete(t.limits, email)
		t.mu.Unlock()
	case !errors.Is(err, ErrInvalidCredentials):
		r.CancelAt(now)
	}
	return p, err
}

// limiter returns the account's bucket and drops buckets idle for a whole
// window, which have refilled and carry no state.
func (t *Throttled) limiter(email string, now time.Time) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	if now.Sub(t.lastSweep) >= t.window {
		for k, l := range t.limits {
			if now.Sub(l.lastSeen) >= t.window {
				delete(t.limits, k)
			}
		}
		t.lastSweep = now
	}

	l, ok := t.limits[email]
	if !ok {
		l = &accountLimit{limiter: rate.NewLimiter(t.every, t.burst)}
		t.limits[email] = l
	}
	l.lastSeen = now
	return l.limiter
}

package identity

import "time"

const (
	// DefaultMaxLoginAttempts is the failed attempt threshold that
	// triggers a lockout
	DefaultMaxLoginAttempts = 5
	// DefaultLockoutDuration is how long a locked account stays locked
	DefaultLockoutDuration = 15 * time.Minute
)

// LockoutPolicy computes lockout transitions from attempt counters and
// timestamps. It is a pure decision component: nothing else in the
// package may compute lockout arithmetic.
type LockoutPolicy struct {
	MaxAttempts     int
	LockoutDuration time.Duration
}

// DefaultLockoutPolicy returns the 5 attempts / 15 minute policy
func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{
		MaxAttempts:     DefaultMaxLoginAttempts,
		LockoutDuration: DefaultLockoutDuration,
	}
}

func (p LockoutPolicy) maxAttempts() int {
	if p.MaxAttempts <= 0 {
		return DefaultMaxLoginAttempts
	}
	return p.MaxAttempts
}

func (p LockoutPolicy) lockoutDuration() time.Duration {
	if p.LockoutDuration <= 0 {
		return DefaultLockoutDuration
	}
	return p.LockoutDuration
}

// IsLocked reports whether the account is locked at now. An elapsed
// lockout end counts as unlocked, no explicit clear is required.
func (p LockoutPolicy) IsLocked(now time.Time, lockoutEnd *time.Time) bool {
	return lockoutEnd != nil && lockoutEnd.After(now)
}

// OnFailedAttempt increments the attempt counter and, when the
// incremented count reaches the threshold, opens a lockout window
// ending at now + LockoutDuration.
func (p LockoutPolicy) OnFailedAttempt(attempts int, now time.Time) (int, *time.Time) {
	attempts++
	if attempts >= p.maxAttempts() {
		end := now.Add(p.lockoutDuration())
		return attempts, &end
	}
	return attempts, nil
}

// OnSuccess resets the counter and clears any lockout window
func (p LockoutPolicy) OnSuccess() (int, *time.Time) {
	return 0, nil
}

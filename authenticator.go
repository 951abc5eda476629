package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// LoginResult is what a successful login hands back to the caller
type LoginResult struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	User      *UserProjection `json:"user"`
}

// Auther orchestrates credential lookup, password verification, the
// lockout policy, and token issuance into a single login operation.
//
// Concurrent logins against the same account are not serialized:
// two racing failed attempts can land last-write-wins on the
// persisted counter, so the lockout threshold is a best-effort
// deterrent. The surrounding store offers no per-account lock.
type Auther struct {
	store   CredentialStore
	hasher  PasswordAuthenticator
	lockout LockoutPolicy
	tokens  TokenService
	logger  Logger
	sink    ActivitySink
	now     func() time.Time
}

// NewAuthenticator returns a new Authenticator wired from an already
// validated Config
func NewAuthenticator(store CredentialStore, cfg *Config) *Auther {
	return &Auther{
		store:   store,
		hasher:  NewBcryptHasher(cfg.PasswordCost),
		lockout: cfg.LockoutPolicy(),
		tokens: NewTokenService(
			[]byte(cfg.SigningKey),
			cfg.TokenExpiration,
			cfg.Issuer,
			cfg.Audience,
			defLogger{},
		),
		logger: defLogger{},
		sink:   noopActivitySink{},
		now:    time.Now,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.sink = normalizeActivitySink(sink)
	return s
}

// WithTokenService overrides the token service built from config.
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// WithPasswordAuthenticator overrides the default bcrypt hasher.
func (s *Auther) WithPasswordAuthenticator(hasher PasswordAuthenticator) *Auther {
	if hasher != nil {
		s.hasher = hasher
	}
	return s
}

// WithClock injects a custom clock (useful for tests).
func (s *Auther) WithClock(clock func() time.Time) *Auther {
	if clock != nil {
		s.now = clock
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// Login authenticates an email/password pair and issues a session
// token. Unknown emails, deleted accounts, and wrong passwords all
// fail with the same ErrInvalidCredentials so the endpoint cannot be
// used as an account-existence oracle. Lockout is reported separately:
// "try again later" is a deliberate, accepted trade-off.
func (s *Auther) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	now := s.now()

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) || IsUserNotFound(err) {
			s.logger.Warn("login failed: unknown email")
			s.emitAuthEvent(ctx, ActivityEventLoginFailure, "", map[string]any{
				"reason": "unknown_email",
			})
			return nil, ErrInvalidCredentials
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user during login")
	}

	if user.IsDeleted {
		s.logger.Warn("login failed: deleted account", "user_id", user.ID.String())
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"reason": "deleted",
		})
		return nil, ErrInvalidCredentials
	}

	if s.lockout.IsLocked(now, user.LockoutEnd) {
		s.logger.Warn("login failed: account locked", "user_id", user.ID.String())
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"reason": "locked",
		})
		return nil, ErrAccountLocked
	}

	user.EnsureStatus()
	if err := statusAuthError(user.Status); err != nil {
		s.logger.Warn("login failed: account not active", "user_id", user.ID.String(), "status", user.Status)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"reason": "not_active",
			"status": user.Status,
		})
		return nil, err
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !IsInvalidCredentials(err) {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "password verification failed")
		}

		// attempt counting is the sole brute force defense, the
		// counter mutation must be persisted before returning
		user.LoginAttempts, user.LockoutEnd = s.lockout.OnFailedAttempt(user.LoginAttempts, now)
		if err := s.store.SaveLoginState(ctx, user); err != nil {
			return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist login attempt")
		}

		s.logger.Warn("login failed: invalid password", "user_id", user.ID.String(), "attempts", user.LoginAttempts)
		s.emitAuthEvent(ctx, ActivityEventLoginFailure, user.ID.String(), map[string]any{
			"reason":   "invalid_password",
			"attempts": user.LoginAttempts,
		})
		return nil, ErrInvalidCredentials
	}

	user.LoginAttempts, user.LockoutEnd = s.lockout.OnSuccess()
	user.LastLoginAt = &now
	if err := s.store.SaveLoginState(ctx, user); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist successful login")
	}

	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue session token")
	}

	s.logger.Info("login successful", "user_id", user.ID.String())
	s.emitAuthEvent(ctx, ActivityEventLoginSuccess, user.ID.String(), nil)

	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      NewUserProjection(user),
	}, nil
}

// ValidateToken verifies a session token and re-resolves its subject
// against the store: a token issued for an account that was deleted or
// suspended afterwards is rejected even though the signature is still
// valid. Every failure collapses into ErrTokenInvalid, the specific
// reason is only logged.
func (s *Auther) ValidateToken(ctx context.Context, tokenString string) (*UserProjection, error) {
	claims, err := s.tokens.Validate(tokenString)
	if err != nil {
		s.logger.Warn("token rejected", "error", err)
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, "", map[string]any{
			"reason": "verification_failed",
		})
		return nil, ErrTokenInvalid
	}

	subject, err := uuid.Parse(claims.UserID())
	if err != nil {
		s.logger.Warn("token rejected: malformed subject", "error", err)
		return nil, ErrTokenInvalid
	}

	user, err := s.store.GetByID(ctx, subject)
	if err != nil {
		s.logger.Warn("token rejected: subject lookup failed", "error", err)
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, subject.String(), map[string]any{
			"reason": "subject_missing",
		})
		return nil, ErrTokenInvalid
	}

	user.EnsureStatus()
	if user.IsDeleted || user.Status != UserStatusActive {
		s.logger.Warn("token rejected: subject no longer eligible", "user_id", user.ID.String())
		s.emitAuthEvent(ctx, ActivityEventTokenRejected, user.ID.String(), map[string]any{
			"reason": "subject_ineligible",
		})
		return nil, ErrTokenInvalid
	}

	return NewUserProjection(user), nil
}

func (s *Auther) emitAuthEvent(ctx context.Context, eventType ActivityEventType, userID string, metadata map[string]any) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   metadata,
		OccurredAt: s.now(),
	}

	if event.Metadata == nil {
		event.Metadata = map[string]any{}
	}

	if err := normalizeActivitySink(s.sink).Record(ctx, event); err != nil {
		s.logger.Warn("activity sink record error", "error", err)
	}
}

var _ Authenticator = (*Auther)(nil)

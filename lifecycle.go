package identity

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UserStore is what the lifecycle core needs from persistence
type UserStore interface {
	CredentialStore
	List(ctx context.Context, opts ListUsersMessage) ([]*User, int, error)
}

// UserManager implements the account lifecycle: create, update, soft
// delete, and restore. It shares the credential store with the
// authentication core so both always agree on whether an account is
// usable.
type UserManager struct {
	store    UserStore
	hasher   PasswordAuthenticator
	notifier EventNotifier
	logger   Logger
	sink     ActivitySink
	now      func() time.Time
}

// NewUserManager wires a lifecycle core around a store and an outbound
// event notifier
func NewUserManager(store UserStore, notifier EventNotifier) *UserManager {
	return &UserManager{
		store:    store,
		hasher:   NewBcryptHasher(DefaultPasswordCost),
		notifier: normalizeEventNotifier(notifier),
		logger:   defLogger{},
		sink:     noopActivitySink{},
		now:      time.Now,
	}
}

func (m *UserManager) WithLogger(logger Logger) *UserManager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithActivitySink configures the audit sink for lifecycle events.
func (m *UserManager) WithActivitySink(sink ActivitySink) *UserManager {
	m.sink = normalizeActivitySink(sink)
	return m
}

// WithPasswordAuthenticator overrides the default bcrypt hasher.
func (m *UserManager) WithPasswordAuthenticator(hasher PasswordAuthenticator) *UserManager {
	if hasher != nil {
		m.hasher = hasher
	}
	return m
}

// WithClock injects a custom clock (useful for tests).
func (m *UserManager) WithClock(clock func() time.Time) *UserManager {
	if clock != nil {
		m.now = clock
	}
	return m
}

// Create registers a new active account. The creation notification is
// handed to the Event Notifier after the account write, its failure is
// logged and never rolls the account back.
func (m *UserManager) Create(ctx context.Context, msg CreateUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	if _, err := m.store.GetByEmail(ctx, msg.Email); err == nil {
		m.logger.Warn("create rejected: duplicate email")
		return nil, ErrDuplicateEmail
	} else if !repository.IsRecordNotFound(err) && !IsUserNotFound(err) {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	}

	hash, err := m.hasher.HashPassword(msg.Password)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	phone, err := NormalizePhone(msg.Phone)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}

	now := m.now()
	user := &User{
		ID:           uuid.New(),
		FirstName:    msg.FirstName,
		LastName:     msg.LastName,
		Email:        msg.Email,
		Phone:        phone,
		Department:   msg.Department,
		Position:     msg.Position,
		PasswordHash: hash,
		Role:         msg.Role,
		Status:       UserStatusActive,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}

	if user.Role == "" {
		user.Role = RoleViewer
	}

	if msg.UseHashid {
		if id, err := hashid.NewUUID(msg.Email); err == nil {
			user.ID = id
		}
	}

	created, err := m.store.Create(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	event := UserCreatedEvent{
		UserID:    created.ID.String(),
		Email:     created.Email,
		FirstName: created.FirstName,
		LastName:  created.LastName,
		CreatedAt: created.CreatedAt,
	}
	if err := m.notifier.Publish(ctx, UserCreatedEventName, event); err != nil {
		m.logger.Error("user created notification failed", "user_id", created.ID.String(), "error", err)
	}

	m.logger.Info("user created", "user_id", created.ID.String())
	m.emitLifecycleEvent(ctx, ActivityEventUserCreated, created.ID.String())

	return created, nil
}

// Get resolves an account by id. Soft deleted accounts are reported as
// not found to callers of the lifecycle API.
func (m *UserManager) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := m.store.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) || IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	if user.IsDeleted {
		return nil, ErrUserNotFound
	}

	return user, nil
}

// List returns a page of non deleted accounts with the total count
func (m *UserManager) List(ctx context.Context, msg ListUsersMessage) ([]*User, int, error) {
	return m.store.List(ctx, msg.Normalize())
}

// Update applies profile, role, and status changes. Email and password
// are immutable through this path.
func (m *UserManager) Update(ctx context.Context, id uuid.UUID, msg UpdateUserMessage) (*User, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload")
	}

	user, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	phone, err := NormalizePhone(msg.Phone)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid phone number")
	}

	now := m.now()
	user.FirstName = msg.FirstName
	user.LastName = msg.LastName
	user.Phone = phone
	user.Department = msg.Department
	user.Position = msg.Position
	if msg.Role != "" {
		user.Role = msg.Role
	}
	if msg.Status != "" {
		user.Status = msg.Status
	}
	user.UpdatedAt = &now

	updated, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not update user")
	}

	m.logger.Info("user updated", "user_id", id.String())

	return updated, nil
}

// SoftDelete marks an account deleted without removing the record.
// Lockout and attempt fields are left untouched, authentication
// rejects deleted accounts before they matter.
func (m *UserManager) SoftDelete(ctx context.Context, id uuid.UUID) error {
	user, err := m.Get(ctx, id)
	if err != nil {
		return err
	}

	now := m.now()
	user.IsDeleted = true
	user.DeletedAt = &now
	user.UpdatedAt = &now

	if _, err := m.store.Update(ctx, user); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not delete user")
	}

	m.logger.Info("user soft deleted", "user_id", id.String())
	m.emitLifecycleEvent(ctx, ActivityEventUserDeleted, id.String())

	return nil
}

// Restore clears the deleted flag. It deliberately does not check the
// flag first: restoring an already active account is a harmless no-op.
func (m *UserManager) Restore(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := m.store.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) || IsUserNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	now := m.now()
	user.IsDeleted = false
	user.DeletedAt = nil
	user.UpdatedAt = &now

	restored, err := m.store.Update(ctx, user)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "could not restore user")
	}

	m.logger.Info("user restored", "user_id", id.String())
	m.emitLifecycleEvent(ctx, ActivityEventUserRestored, id.String())

	return restored, nil
}

func (m *UserManager) emitLifecycleEvent(ctx context.Context, eventType ActivityEventType, userID string) {
	event := ActivityEvent{
		EventType:  eventType,
		UserID:     userID,
		Metadata:   map[string]any{},
		OccurredAt: m.now(),
	}

	if err := normalizeActivitySink(m.sink).Record(ctx, event); err != nil {
		m.logger.Warn("activity sink record error", "error", err)
	}
}

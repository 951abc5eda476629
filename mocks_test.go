package identity_test

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-identity"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// fakeStore is an in-memory UserStore. Reads hand out copies and
// writes copy the record back, so a test can tell the difference
// between mutating a fetched struct and actually persisting it.
type fakeStore struct {
	mu             sync.Mutex
	records        map[uuid.UUID]*identity.User
	saveLoginCalls int
	failSaveLogin  error
	failCreate     error
}

func newFakeStore(users ...*identity.User) *fakeStore {
	s := &fakeStore{records: map[uuid.UUID]*identity.User{}}
	for _, u := range users {
		s.put(u)
	}
	return s
}

func (s *fakeStore) put(u *identity.User) {
	clone := *u
	s.records[u.ID] = &clone
}

func (s *fakeStore) get(id uuid.UUID) *identity.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.records[id]; ok {
		clone := *u
		return &clone
	}
	return nil
}

func (s *fakeStore) GetByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	if u := s.get(id); u != nil {
		return u, nil
	}
	return nil, identity.ErrUserNotFound
}

func (s *fakeStore) GetByEmail(ctx context.Context, email string) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.records {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, identity.ErrUserNotFound
}

func (s *fakeStore) Create(ctx context.Context, user *identity.User, _ ...repository.InsertCriteria) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate != nil {
		return nil, s.failCreate
	}
	s.put(user)
	return user, nil
}

func (s *fakeStore) Update(ctx context.Context, user *identity.User) (*identity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[user.ID]; !ok {
		return nil, identity.ErrUserNotFound
	}
	s.put(user)
	return user, nil
}

func (s *fakeStore) SaveLoginState(ctx context.Context, user *identity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saveLoginCalls++
	if s.failSaveLogin != nil {
		return s.failSaveLogin
	}
	record, ok := s.records[user.ID]
	if !ok {
		return identity.ErrUserNotFound
	}
	record.LoginAttempts = user.LoginAttempts
	record.LockoutEnd = user.LockoutEnd
	record.LastLoginAt = user.LastLoginAt
	return nil
}

func (s *fakeStore) List(ctx context.Context, opts identity.ListUsersMessage) ([]*identity.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*identity.User
	for _, u := range s.records {
		if u.IsDeleted {
			continue
		}
		clone := *u
		out = append(out, &clone)
	}
	return out, len(out), nil
}

var _ identity.UserStore = (*fakeStore)(nil)

// MockEventNotifier implements identity.EventNotifier
type MockEventNotifier struct {
	mock.Mock
}

func (m *MockEventNotifier) Publish(ctx context.Context, eventName string, payload any) error {
	args := m.Called(ctx, eventName, payload)
	return args.Error(0)
}

// recordingSink captures activity events for assertions
type recordingSink struct {
	mu     sync.Mutex
	events []identity.ActivityEvent
}

func (r *recordingSink) Record(ctx context.Context, event identity.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) byType(t identity.ActivityEventType) []identity.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []identity.ActivityEvent
	for _, e := range r.events {
		if e.EventType == t {
			out = append(out, e)
		}
	}
	return out
}

// silentLogger keeps test output quiet
type silentLogger struct{}

func (silentLogger) Debug(string, ...any) {}
func (silentLogger) Info(string, ...any)  {}
func (silentLogger) Warn(string, ...any)  {}
func (silentLogger) Error(string, ...any) {}

func testConfig() *identity.Config {
	return &identity.Config{
		SigningKey:       "0123456789abcdef0123456789abcdef",
		Issuer:           "test-issuer",
		Audience:         []string{"test:audience"},
		TokenExpiration:  8,
		PasswordCost:     4,
		MaxLoginAttempts: 5,
		LockoutDuration:  15 * time.Minute,
	}
}

func activeUser(email, password string) *identity.User {
	hash, err := identity.NewBcryptHasher(4).HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return &identity.User{
		ID:           uuid.New(),
		FirstName:    "Pepe",
		LastName:     "Rone",
		Email:        email,
		PasswordHash: hash,
		Role:         identity.RoleViewer,
		Status:       identity.UserStatusActive,
		CreatedAt:    &now,
		UpdatedAt:    &now,
	}
}

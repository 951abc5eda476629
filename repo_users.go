package identity

import (
	"context"
	"strings"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// SaveLoginStateSQL persists the attempt counter, lockout window, and
// last login in one statement. A raw update is deliberate: the ORM
// update path skips zero values, and a successful login must be able
// to write login_attempts = 0 and lockout_end = NULL.
var SaveLoginStateSQL = `UPDATE "users" AS "usr"
SET
	"login_attempts" = ?,
	"lockout_end" = ?,
	"last_login_at" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?;`

// Users is the account repository. Lookups return soft deleted rows,
// the cores decide what to do with them. Ids are uuids here, so the
// generic repository surface is not re-exported, its string-keyed
// lookups stay an implementation detail.
type Users interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error)
	SaveLoginState(ctx context.Context, user *User) error
	SaveLoginStateTx(ctx context.Context, tx bun.IDB, user *User) error
	List(ctx context.Context, opts ListUsersMessage) ([]*User, int, error)
	ListTx(ctx context.Context, tx bun.IDB, opts ListUsersMessage) ([]*User, int, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users     = (*users)(nil)
	_ UserStore = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

// GetByEmailTx matches the email exactly as stored. No deleted filter
// is applied here on purpose.
func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", strings.TrimSpace(email)).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"identifier": "email"})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *users) CreateTx(ctx context.Context, tx bun.IDB, record *User, criteria ...repository.InsertCriteria) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *users) Update(ctx context.Context, record *User) (*User, error) {
	return a.UpdateTx(ctx, a.db, record)
}

// UpdateTx writes the full row so cleared fields (deleted_at after a
// restore) actually reach the database.
func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, record *User) (*User, error) {
	res, err := tx.NewUpdate().
		Model(record).
		WherePK().
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": record.ID.String()})
	}

	return record, nil
}

func (a *users) SaveLoginState(ctx context.Context, user *User) error {
	return a.SaveLoginStateTx(ctx, a.db, user)
}

func (a *users) SaveLoginStateTx(ctx context.Context, tx bun.IDB, user *User) error {
	_, err := tx.NewRaw(
		SaveLoginStateSQL,
		user.LoginAttempts,
		user.LockoutEnd,
		user.LastLoginAt,
		user.ID.String(),
	).Exec(ctx)

	return err
}

func (a *users) List(ctx context.Context, opts ListUsersMessage) ([]*User, int, error) {
	return a.ListTx(ctx, a.db, opts)
}

// ListTx pages through non deleted accounts, optionally filtered by a
// case insensitive search over name and email.
func (a *users) ListTx(ctx context.Context, tx bun.IDB, opts ListUsersMessage) ([]*User, int, error) {
	opts = opts.Normalize()

	var records []*User
	q := tx.NewSelect().
		Model(&records).
		Where("?TableAlias.is_deleted = ?", false)

	if search := strings.TrimSpace(opts.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.WhereGroup(" AND ", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				WhereOr("lower(?TableAlias.first_name) LIKE ?", pattern).
				WhereOr("lower(?TableAlias.last_name) LIKE ?", pattern).
				WhereOr("lower(?TableAlias.email) LIKE ?", pattern)
		})
	}

	total, err := q.
		Order("created_at DESC").
		Limit(opts.PageSize).
		Offset((opts.Page - 1) * opts.PageSize).
		ScanAndCount(ctx)

	if err != nil {
		return nil, 0, err
	}

	return records, total, nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleViewer
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

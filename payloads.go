package identity

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used when a phone number has no country prefix
var DefaultPhoneRegion = "US"

// NormalizePhone parses and reformats a phone number to E.164. Empty
// input passes through, profile phone is optional.
func NormalizePhone(phone string) (string, error) {
	if phone == "" {
		return "", nil
	}

	parsed, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return "", err
	}

	if !phonenumbers.IsValidNumber(parsed) {
		return "", ErrNoEmptyString
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}

func validPhone(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}
	_, err := NormalizePhone(phone)
	return err
}

// CreateUserMessage is the payload for registering a new account
type CreateUserMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone_number"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Role       string `json:"user_role"`
	Password   string `json:"password"`
	UseHashid  bool   `json:"-"`
}

func (m CreateUserMessage) Type() string { return "user.create" }

// Validate will validate the payload
func (m CreateUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&m.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&m.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&m.Phone, validation.Length(0, 20), validation.By(validPhone)),
		validation.Field(&m.Department, validation.Length(0, 100)),
		validation.Field(&m.Position, validation.Length(0, 100)),
		validation.Field(&m.Role, validation.In(RoleViewer, RoleManager, RoleAdmin)),
		validation.Field(&m.Password, validation.Required, validation.Length(10, 100)),
	)
}

// UpdateUserMessage is the payload for profile updates. Email and
// password are immutable through this path and deliberately absent.
type UpdateUserMessage struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone_number"`
	Department string `json:"department"`
	Position   string `json:"position"`
	Role       string `json:"user_role"`
	Status     string `json:"status"`
}

func (m UpdateUserMessage) Type() string { return "user.update" }

// Validate will validate the payload
func (m UpdateUserMessage) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.FirstName, validation.Required, validation.Length(1, 50)),
		validation.Field(&m.LastName, validation.Required, validation.Length(1, 50)),
		validation.Field(&m.Phone, validation.Length(0, 20), validation.By(validPhone)),
		validation.Field(&m.Department, validation.Length(0, 100)),
		validation.Field(&m.Position, validation.Length(0, 100)),
		validation.Field(&m.Role, validation.In(RoleViewer, RoleManager, RoleAdmin)),
		validation.Field(&m.Status, validation.In(UserStatusActive, UserStatusInactive, UserStatusSuspended)),
	)
}

// ListUsersMessage carries pagination and search parameters
type ListUsersMessage struct {
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Search   string `json:"search"`
}

func (m ListUsersMessage) Type() string { return "user.list" }

// Normalize clamps paging values to sane defaults
func (m ListUsersMessage) Normalize() ListUsersMessage {
	if m.Page < 1 {
		m.Page = 1
	}
	if m.PageSize < 1 || m.PageSize > 100 {
		m.PageSize = 10
	}
	return m
}

package identity

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/google/uuid"
)

// IdentityContextKey is where RequireAuth stores the caller projection
const IdentityContextKey = "identity"

// HTTPController exposes the auth and user lifecycle operations as a
// JSON API
type HTTPController struct {
	Auther  Authenticator
	Manager *UserManager
	Logger  Logger
	Debug   bool
}

// NewHTTPController builds a controller around the two cores
func NewHTTPController(auther Authenticator, manager *UserManager) *HTTPController {
	return &HTTPController{
		Auther:  auther,
		Manager: manager,
		Logger:  defLogger{},
	}
}

func (h *HTTPController) WithLogger(logger Logger) *HTTPController {
	if logger != nil {
		h.Logger = logger
	}
	return h
}

// RegisterRoutes mounts the API on the given fiber app
func (h *HTTPController) RegisterRoutes(app *fiber.App) {
	app.Post("/auth/login", h.LoginPost)
	app.Get("/auth/me", h.RequireAuth(), h.MeGet)

	users := app.Group("/users", h.RequireAuth())
	users.Post("/", h.UserCreate)
	users.Get("/", h.UserList)
	users.Get("/:id", h.UserGet)
	users.Put("/:id", h.UserUpdate)
	users.Delete("/:id", h.UserDelete)
	users.Post("/:id/restore", h.UserRestore)
}

// LoginPayload is the login form body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

func (h *HTTPController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("login parse payload", "error", err)
		return h.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := payload.Validate(); err != nil {
		return h.renderError(c, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload").
			WithCode(goerrors.CodeBadRequest))
	}

	result, err := h.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(result)
}

// RequireAuth validates the bearer token and stores the resolved
// account projection on the request context
func (h *HTTPController) RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			return h.renderError(c, ErrTokenInvalid)
		}

		user, err := h.Auther.ValidateToken(c.UserContext(), token)
		if err != nil {
			return h.renderError(c, err)
		}

		c.Locals(IdentityContextKey, user)
		return c.Next()
	}
}

func (h *HTTPController) MeGet(c *fiber.Ctx) error {
	user, ok := c.Locals(IdentityContextKey).(*UserProjection)
	if !ok {
		return h.renderError(c, ErrTokenInvalid)
	}
	return c.JSON(user)
}

func (h *HTTPController) UserCreate(c *fiber.Ctx) error {
	payload := new(CreateUserMessage)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("create user parse payload", "error", err)
		return h.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	user, err := h.Manager.Create(c.UserContext(), *payload)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(NewUserProjection(user))
}

func (h *HTTPController) UserList(c *fiber.Ctx) error {
	msg := ListUsersMessage{
		Page:     c.QueryInt("page", 1),
		PageSize: c.QueryInt("page_size", 10),
		Search:   c.Query("search"),
	}.Normalize()

	records, total, err := h.Manager.List(c.UserContext(), msg)
	if err != nil {
		return h.renderError(c, err)
	}

	data := make([]*UserProjection, 0, len(records))
	for _, record := range records {
		data = append(data, NewUserProjection(record))
	}

	return c.JSON(fiber.Map{
		"data":      data,
		"total":     total,
		"page":      msg.Page,
		"page_size": msg.PageSize,
	})
}

func (h *HTTPController) UserGet(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.renderError(c, ErrUserNotFound)
	}

	user, err := h.Manager.Get(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(NewUserProjection(user))
}

func (h *HTTPController) UserUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.renderError(c, ErrUserNotFound)
	}

	payload := new(UpdateUserMessage)
	if err := c.BodyParser(payload); err != nil {
		h.Logger.Error("update user parse payload", "error", err)
		return h.renderError(c, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse body").
			WithCode(goerrors.CodeBadRequest))
	}

	user, err := h.Manager.Update(c.UserContext(), id, *payload)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(NewUserProjection(user))
}

func (h *HTTPController) UserDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.renderError(c, ErrUserNotFound)
	}

	if err := h.Manager.SoftDelete(c.UserContext(), id); err != nil {
		return h.renderError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *HTTPController) UserRestore(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.renderError(c, ErrUserNotFound)
	}

	user, err := h.Manager.Restore(c.UserContext(), id)
	if err != nil {
		return h.renderError(c, err)
	}

	return c.JSON(NewUserProjection(user))
}

func (h *HTTPController) renderError(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		richErr = goerrors.Wrap(err, goerrors.CategoryInternal, "An unexpected server error occurred").
			WithCode(goerrors.CodeInternal)
	}

	if h.Debug {
		h.Logger.Debug(
			"request error",
			"error", richErr.Message,
			"category", richErr.Category,
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	status := richErr.Code
	if status == 0 {
		status = fiber.StatusInternalServerError
	}

	return c.Status(status).JSON(fiber.Map{
		"error": fiber.Map{
			"message":   richErr.Message,
			"text_code": richErr.TextCode,
		},
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

package handler

import (
	"context"  // provides context with cancellation for store calls
	"errors"   // errors.Is comparisons
	"net/http" // HTTP status codes and primitives
	"strings"  // email normalization
	"time"     // timeouts for store calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/cinema-booking/internal/config"     // app configuration
	"github.com/iliyamo/cinema-booking/internal/model"      // user model
	"github.com/iliyamo/cinema-booking/internal/repository" // user store errors
	"github.com/iliyamo/cinema-booking/internal/utils"      // hashing and token issuing
)

// UserStore is satisfied by repository.UserRepo and
// repository.MemoryUserRepo.
type UserStore interface {
	Create(ctx context.Context, email, password string, cost int) (uint64, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.  It is the
// identity provider for the booking API: the user id in the access token
// is the booking owner.
type AuthHandler struct {
	Secret       string
	AccessTTLMin int
	BcryptCost   int
	Users        UserStore
}

func NewAuthHandler(cfg config.Config, users UserStore) *AuthHandler {
	return &AuthHandler{Secret: cfg.JWTSecret, AccessTTLMin: cfg.AccessTTLMin, BcryptCost: cfg.BcryptCost, Users: users}
}

// ----- DTOs -----

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"` // bcrypt reads at most 72 bytes
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}
type authResp struct {
	User   userPart  `json:"user"`
	Access tokenPart `json:"access"`
}

// Register: create user and return an access token immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, h.BcryptCost)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email_exists", "message": "email already exists"})
		}
		if errors.Is(err, utils.ErrPasswordTooLong) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_body", "fields": echo.Map{"password": "max"}})
		}
		return writeError(c, err)
	}
	return h.issue(c, http.StatusCreated, userPart{ID: uid, Email: strings.ToLower(req.Email)})
}

// Login: verify credentials and return a fresh access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "invalid credentials"})
		}
		return writeError(c, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid_credentials", "message": "invalid credentials"})
	}
	return h.issue(c, http.StatusOK, userPart{ID: u.ID, Email: u.Email})
}

func (h *AuthHandler) issue(c echo.Context, status int, u userPart) error {
	access, err := utils.NewAccessToken(h.Secret, u.ID, h.AccessTTLMin)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(status, authResp{User: u, Access: tokenPart{Token: access.Token, Expires: access.Exp}})
}

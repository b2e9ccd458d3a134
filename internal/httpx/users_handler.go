package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mlorenc/go-shop-api/internal/auth"
	"github.com/mlorenc/go-shop-api/internal/shop"
)

type UserStore interface {
	Create(ctx context.Context, u shop.User) error
	ByEmail(ctx context.Context, email string) (shop.User, error)
}

type UsersHandler struct {
	Users    UserStore
	Tokens   *auth.TokenIssuer
	Validate *validator.Validate
	Log      zerolog.Logger
}

func (h *UsersHandler) Register(r *chi.Mux) {
	r.Post("/accounts/register/", h.register)
	r.Post("/accounts/login/", h.login)
}

type registerReq struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

func (h *UsersHandler) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid json"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Log, validationError(err))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// New accounts always start as customers; roles are changed by admins
	// out of band, never by the user.
	u := shop.User{
		ID:           uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         shop.RoleCustomer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.Users.Create(ctx, u); err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.Log, shop.Invalid("", "invalid json"))
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, h.Log, validationError(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.ByEmail(ctx, req.Email)
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, h.Log, fmt.Errorf("%w: invalid email or password", shop.ErrAuthentication))
		return
	}

	token, err := h.Tokens.Issue(u)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}


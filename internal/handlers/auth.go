package handlers

import (
	"net/http"

	"github.com/diewo77/go-printshop/auth"
	"github.com/diewo77/go-printshop/httpx"
	"github.com/diewo77/go-printshop/internal/models"
	"github.com/diewo77/go-printshop/internal/services"
	"go.uber.org/zap"
)

type AuthHandler struct {
	Users *services.UserService
	Log   *zap.Logger
}

func NewAuthHandler(svc *services.UserService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Users: svc, Log: log}
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// Login checks the credentials, sets the session cookie and returns the same
// token for bearer use.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		badJSON(w, r)
		return
	}
	u, err := h.Users.Authenticate(r.Context(), body.Email, body.Password)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	token := auth.CreateSession(w, u.ID)
	h.Log.Info("user logged in", zap.Uint("user_id", u.ID))
	httpx.JSON(w, http.StatusOK, loginResponse{Token: token, User: u})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSession(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	u, err := h.Users.Get(r.Context(), uid)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, u)
}

// CreateUser registers an account; routed behind the admin-only policy.
func (h *AuthHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in services.UserInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		badJSON(w, r)
		return
	}
	u, err := h.Users.Create(r.Context(), in)
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, u)
}

func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeError(w, r, h.Log, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": users})
}

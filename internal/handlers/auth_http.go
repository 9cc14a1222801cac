package handlers

import (
	"net/http"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/middleware"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"
	"github.com/NotAnonymousUser/Ticket-System/internal/service"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/rs/zerolog"
)

type AuthHTTP struct {
	svc    *service.AuthService
	users  repository.UserRepository
	log    zerolog.Logger
	secure bool
}

// NewAuthHTTP builds the account endpoints. secureCookie marks the
// session cookie Secure; set it when served over HTTPS.
func NewAuthHTTP(s *service.AuthService, users repository.UserRepository, log zerolog.Logger, secureCookie bool) *AuthHTTP {
	return &AuthHTTP{svc: s, users: users, log: log, secure: secureCookie}
}

// POST /api/signup
func (h *AuthHTTP) Signup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Fullname string `json:"fullname"`
			Email    string `json:"email"`
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		u, err := h.svc.Register(r.Context(), service.SignupInput{
			Fullname: in.Fullname,
			Email:    in.Email,
			Username: in.Username,
			Password: in.Password,
		})
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}
		h.log.Info().Str("username", u.Username).Msg("user registered")
		utils.JSON(w, http.StatusCreated, map[string]any{
			"message": "User created successfully",
			"user":    u,
		})
	}
}

// POST /api/login
func (h *AuthHTTP) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decode(r, &in); err != nil {
			writeError(w, r, h.log, err)
			return
		}
		// Missing fields fail like any other bad credentials.
		token, u, err := h.svc.Login(r.Context(), in.Username, in.Password)
		if err != nil {
			writeError(w, r, h.log, err)
			return
		}

		// Issue httpOnly session cookie
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   h.secure,
			Expires:  time.Now().Add(h.svc.SessionTTL()),
		})

		utils.JSON(w, http.StatusOK, map[string]any{
			"role":  u.Role,
			"token": token,
			"user":  u,
		})
	}
}

// POST /api/logout
func (h *AuthHTTP) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middleware.SessionCookie,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   -1,              // expire immediately
			Expires:  time.Unix(0, 0), // for older browsers
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

// GET /api/me
func (h *AuthHTTP) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := utils.GetString(r.Context(), middleware.CtxUserID)
		if !ok || uid == "" {
			utils.Error(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		u, err := h.users.GetByID(r.Context(), uid)
		if err != nil {
			h.log.Error().Err(err).Msg("load profile")
			utils.ErrorDetails(w, http.StatusInternalServerError, "Database error", err.Error())
			return
		}
		if u == nil {
			utils.Error(w, http.StatusNotFound, "user not found")
			return
		}
		utils.JSON(w, http.StatusOK, u)
	}
}

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/NotAnonymousUser/Ticket-System/internal/utils"

	"github.com/rs/zerolog"
)

type ctxKey string

const (
	CtxUserID   ctxKey = "uid"
	CtxUsername ctxKey = "username"
	CtxRole     ctxKey = "role"
)

// SessionCookie is the name of the httpOnly cookie carrying the JWT.
const SessionCookie = "session"

func WithAuth(log zerolog.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Read JWT from Authorization: Bearer or cookie "session"
			var tok string
			if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
				tok = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
			} else if c, err := r.Cookie(SessionCookie); err == nil {
				tok = c.Value
			}

			if tok == "" {
				next.ServeHTTP(w, r) // anonymous; handlers decide
				return
			}

			claims, err := utils.ParseJWT(secret, tok)
			if err != nil {
				log.Debug().Err(err).Msg("rejected session token")
				// clear broken/expired cookie so it stops being sent
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    "",
					Path:     "/",
					HttpOnly: true,
					MaxAge:   -1,
				})
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), CtxUserID, claims.UserID)
			ctx = context.WithValue(ctx, CtxUsername, claims.Username)
			ctx = context.WithValue(ctx, CtxRole, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

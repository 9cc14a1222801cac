// Package seed creates the staff accounts (admin, hr) that cannot come
// from self-service signup.
package seed

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/NotAnonymousUser/Ticket-System/internal/service"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

type usersFile struct {
	Users []struct {
		Fullname string `yaml:"fullname"`
		Email    string `yaml:"email"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Role     string `yaml:"role"`
	} `yaml:"users"`
}

// Users reads a YAML users file and creates every account that does not
// exist yet. Existing usernames are left untouched.
func Users(ctx context.Context, path string, auth *service.AuthService, log zerolog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read seed file: %w", err)
	}
	return users(ctx, data, auth, log)
}

func users(ctx context.Context, data []byte, auth *service.AuthService, log zerolog.Logger) error {
	var uf usersFile
	if err := yaml.Unmarshal(data, &uf); err != nil {
		return fmt.Errorf("parse seed file: %w", err)
	}
	for _, u := range uf.Users {
		if u.Username == "" || u.Password == "" {
			continue
		}
		in := service.SignupInput{Fullname: u.Fullname, Email: u.Email, Username: u.Username, Password: u.Password}
		if in.Fullname == "" {
			in.Fullname = u.Username
		}
		role := u.Role
		if role == "" {
			role = "user"
		}
		_, err := auth.CreateWithRole(ctx, in, role)
		switch {
		case errors.Is(err, service.ErrConflict):
			continue
		case err != nil:
			return fmt.Errorf("seed %s: %w", u.Username, err)
		}
		log.Info().Str("username", u.Username).Str("role", role).Msg("seeded user")
	}
	return nil
}

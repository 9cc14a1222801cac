package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"
	"github.com/NotAnonymousUser/Ticket-System/internal/utils"
)

type AuthService struct {
	users         repository.UserRepository
	sessionSecret string
	sessionTTL    time.Duration
}

func NewAuthService(users repository.UserRepository, sessionSecret string, sessionTTL time.Duration) *AuthService {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{users: users, sessionSecret: sessionSecret, sessionTTL: sessionTTL}
}

type SignupInput struct {
	Fullname string
	Email    string
	Username string
	Password string
}

// Register creates a self-service account. Self-registration always
// yields role "user"; elevated accounts come from CreateWithRole.
func (a *AuthService) Register(ctx context.Context, in SignupInput) (*models.User, error) {
	return a.CreateWithRole(ctx, in, models.RoleUser)
}

func (a *AuthService) CreateWithRole(ctx context.Context, in SignupInput, role string) (*models.User, error) {
	in.Fullname = strings.TrimSpace(in.Fullname)
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)

	switch {
	case in.Fullname == "" || in.Email == "" || in.Username == "" || in.Password == "":
		return nil, invalid("fullname, email, username and password are required")
	case len(in.Password) < 6:
		return nil, invalid("password must be at least 6 characters")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, invalid("invalid email address")
	}
	switch role {
	case models.RoleAdmin, models.RoleHR, models.RoleUser:
	default:
		return nil, invalid("unknown role %q", role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{Fullname: in.Fullname, Email: in.Email, Username: in.Username, Role: role}
	if err := a.users.Create(ctx, u, hash); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, persistence("create user", err)
	}
	return u, nil
}

// Login checks credentials and issues a session token. Unknown users
// and wrong passwords fail identically.
func (a *AuthService) Login(ctx context.Context, username, password string) (token string, user *models.User, err error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", nil, ErrInvalidCredentials
	}
	u, hash, err := a.users.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, persistence("load user", err)
	}
	if u == nil {
		return "", nil, ErrInvalidCredentials
	}
	if !utils.CheckPassword(hash, password) {
		return "", nil, ErrInvalidCredentials
	}
	tok, err := utils.SignJWT(a.sessionSecret, u.ID, u.Username, u.Role, a.sessionTTL)
	if err != nil {
		return "", nil, err
	}
	return tok, u, nil
}

func (a *AuthService) SessionTTL() time.Duration { return a.sessionTTL }

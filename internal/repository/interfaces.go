package repository

import (
	"context"
	"errors"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate key")
)

// Lookups (Get*, Find*) return (nil, nil) when the row does not exist.
// Mutations return ErrNotFound instead.

type TicketRepository interface {
	List(ctx context.Context, f TicketFilter) ([]models.Ticket, error)
	Get(ctx context.Context, code string) (*models.Ticket, error)
	Create(ctx context.Context, t *models.Ticket) error
	Update(ctx context.Context, t *models.Ticket) error
	Delete(ctx context.Context, code string) error
	Summary(ctx context.Context, since time.Time) (TicketSummary, error)
}

type CommentRepository interface {
	List(ctx context.Context, ticketCode string) ([]models.Comment, error)
	Add(ctx context.Context, c *models.Comment) error
}

type UserRepository interface {
	Create(ctx context.Context, u *models.User, passwordHash string) error
	GetByUsername(ctx context.Context, username string) (*models.User, string /*passwordHash*/, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error)
}

type TicketSummary struct {
	Open       int `json:"open"`
	Resolved7d int `json:"resolved7d"`
	HighOpen   int `json:"highOpen"`
}

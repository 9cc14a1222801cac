package postgres

import (
	"context"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

type CommentRepo struct{ db *pgxpool.Pool }

func NewCommentRepo(db *pgxpool.Pool) *CommentRepo { return &CommentRepo{db: db} }

func (r *CommentRepo) List(ctx context.Context, ticketCode string) ([]models.Comment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, ticket_code, comment_text, commented_by, comment_date
		FROM comments
		WHERE ticket_code = $1
		ORDER BY comment_date ASC, id ASC
	`, ticketCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.TicketCode, &c.Text, &c.CommentedBy, &c.CommentDate); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Add inserts c with a server-assigned id and timestamp. A ticket code
// with no matching ticket returns repository.ErrNotFound.
func (r *CommentRepo) Add(ctx context.Context, c *models.Comment) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO comments (ticket_code, comment_text, commented_by)
		VALUES ($1,$2,$3)
		RETURNING id, comment_date
	`, c.TicketCode, c.Text, c.CommentedBy).Scan(&c.ID, &c.CommentDate)
	return commentAddErr(err)
}

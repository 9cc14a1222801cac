package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepo struct{ db *pgxpool.Pool }

func NewUserRepo(db *pgxpool.Pool) *UserRepo { return &UserRepo{db: db} }

// Create user (stores bcrypt hash in password_h). A taken username
// returns repository.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *models.User, passwordHash string) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (fullname, email, username, role, password_h)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at`,
		u.Fullname, u.Email, u.Username, u.Role, passwordHash).
		Scan(&u.ID, &u.CreatedAt)
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, string, error) {
	var u models.User
	var ph string
	err := r.db.QueryRow(ctx, `
		SELECT id, fullname, email, username, role, password_h, created_at
		FROM users WHERE username=$1`, username).
		Scan(&u.ID, &u.Fullname, &u.Email, &u.Username, &u.Role, &ph, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", err
	}
	return &u, ph, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(ctx, `
		SELECT id, fullname, email, username, role, created_at
		FROM users WHERE id::text=$1`, id).
		Scan(&u.ID, &u.Fullname, &u.Email, &u.Username, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &u, nil
}

// List returns a filtered, paginated list of users and total count.
// Filters: q (matches username, fullname or email, ILIKE), role (exact).
func (r *UserRepo) List(ctx context.Context, q, role string, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	whereSQL, args := buildUserWhere(q, role)

	// Count
	countSQL := `SELECT COUNT(*) FROM users ` + whereSQL
	var total int
	if err := r.db.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// Page
	args = append(args, limit, offset)
	listSQL := fmt.Sprintf(`
		SELECT id, fullname, email, username, role, created_at
		FROM users
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, listSQL, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Fullname, &u.Email, &u.Username, &u.Role, &u.CreatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, u)
	}
	return out, total, rows.Err()
}

// buildUserWhere composes the WHERE clause for List. q matches username,
// fullname or email (ILIKE); role is exact.
func buildUserWhere(q, role string) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(q); s != "" {
		args = append(args, "%"+s+"%")
		n := itoa(len(args))
		clauses = append(clauses, "(username ILIKE $"+n+" OR fullname ILIKE $"+n+" OR email ILIKE $"+n+")")
	}
	if s := strings.TrimSpace(role); s != "" {
		args = append(args, s)
		clauses = append(clauses, "role = $"+itoa(len(args)))
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

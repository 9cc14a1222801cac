package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TicketRepo struct{ db *pgxpool.Pool }

func NewTicketRepo(db *pgxpool.Pool) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `
	t.ticket_code, t.title, t.description, t.employee, t.priority, t.status,
	to_char(t.date, 'YYYY-MM-DD'), t.created_by, COALESCE(t.assignee, ''),
	t.created_at, t.updated_at`

func scanTicket(row pgx.Row, t *models.Ticket) error {
	return row.Scan(
		&t.Code, &t.Title, &t.Description, &t.Employee, &t.Priority, &t.Status,
		&t.Date, &t.CreatedBy, &t.Assignee, &t.CreatedAt, &t.UpdatedAt,
	)
}

// -----------------------------------------------------------------------------
// Listing with filters + pagination
// -----------------------------------------------------------------------------

// List returns tickets matching f, newest first.
// - Q:        free-text search (title/description/employee, ILIKE)
// - Status, Priority, Assignee: exact
// - Limit 0 returns every row.
func (r *TicketRepo) List(ctx context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	sql, args := buildTicketList(f.Normalize())

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Ticket{}
	for rows.Next() {
		var t models.Ticket
		if err := scanTicket(rows, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// -----------------------------------------------------------------------------
// Single ticket + create/update/delete
// -----------------------------------------------------------------------------
func (r *TicketRepo) Get(ctx context.Context, code string) (*models.Ticket, error) {
	var t models.Ticket
	err := scanTicket(r.db.QueryRow(ctx, `SELECT `+ticketColumns+`
		FROM tickets t
		WHERE t.ticket_code = $1
	`, code), &t)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts t. A clash on ticket_code returns repository.ErrDuplicate
// so the caller can retry with a fresh code.
func (r *TicketRepo) Create(ctx context.Context, t *models.Ticket) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO tickets (ticket_code, title, description, employee, priority, status, date, created_by, assignee)
		VALUES ($1,$2,$3,$4,$5,$6,$7::date,$8,$9)
		RETURNING created_at, updated_at
	`,
		t.Code, t.Title, t.Description, t.Employee, t.Priority, t.Status, t.Date, t.CreatedBy, nullIfEmpty(t.Assignee),
	).Scan(&t.CreatedAt, &t.UpdatedAt)
	return createErr(err)
}

// Update overwrites every mutable column of the row; concurrent writers
// resolve as last-write-wins.
func (r *TicketRepo) Update(ctx context.Context, t *models.Ticket) error {
	err := r.db.QueryRow(ctx, `
		UPDATE tickets SET
			title=$1, description=$2, status=$3, priority=$4, assignee=$5, updated_at=now()
		WHERE ticket_code=$6
		RETURNING updated_at
	`,
		t.Title, t.Description, t.Status, t.Priority, nullIfEmpty(t.Assignee), t.Code,
	).Scan(&t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrNotFound
	}
	return err
}

// Delete removes the ticket; its comments go with it (ON DELETE CASCADE).
func (r *TicketRepo) Delete(ctx context.Context, code string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM tickets WHERE ticket_code=$1`, code)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// -----------------------------------------------------------------------------
// Reporting (used by /api/reports/summary)
// -----------------------------------------------------------------------------

// Summary counts open tickets, tickets resolved/closed since the given
// time and open high-priority tickets in a single scan.
func (r *TicketRepo) Summary(ctx context.Context, since time.Time) (repository.TicketSummary, error) {
	var s repository.TicketSummary
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status NOT IN ('Resolved','Closed')),
			COUNT(*) FILTER (WHERE status IN ('Resolved','Closed') AND updated_at >= $1),
			COUNT(*) FILTER (WHERE status NOT IN ('Resolved','Closed') AND priority = 'High')
		FROM tickets
	`, since).Scan(&s.Open, &s.Resolved7d, &s.HighOpen)
	return s, err
}

// -----------------------------------------------------------------------------
// Helpers
// -----------------------------------------------------------------------------

// buildTicketList returns the paged list query. A zero limit binds NULL,
// which Postgres treats as LIMIT ALL.
func buildTicketList(f repository.TicketFilter) (string, []any) {
	whereSQL, args := buildTicketWhere(f)

	var limit any
	if f.Limit > 0 {
		limit = f.Limit
	}
	args = append(args, limit, f.Offset)

	return `SELECT ` + ticketColumns + `
		FROM tickets t
		` + whereSQL + `
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT $` + itoa(len(args)-1) + ` OFFSET $` + itoa(len(args)), args
}

// buildTicketWhere composes WHERE clause and args for the list filters.
func buildTicketWhere(f repository.TicketFilter) (string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if s := strings.TrimSpace(f.Q); s != "" {
		args = append(args, "%"+s+"%")
		n := itoa(len(args))
		clauses = append(clauses, "(t.title ILIKE $"+n+" OR t.description ILIKE $"+n+" OR t.employee ILIKE $"+n+")")
	}
	if s := strings.TrimSpace(f.Status); s != "" {
		args = append(args, s)
		clauses = append(clauses, "t.status = $"+itoa(len(args)))
	}
	if p := strings.TrimSpace(f.Priority); p != "" {
		args = append(args, p)
		clauses = append(clauses, "t.priority = $"+itoa(len(args)))
	}
	if a := strings.TrimSpace(f.Assignee); a != "" {
		args = append(args, a)
		clauses = append(clauses, "t.assignee = $"+itoa(len(args)))
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

// createErr maps a ticket insert failure onto the repository contract.
func createErr(err error) error {
	if isUniqueViolation(err) {
		return repository.ErrDuplicate
	}
	return err
}

// commentAddErr maps a comment insert failure onto the repository contract.
func commentAddErr(err error) error {
	if isForeignKeyViolation(err) {
		return repository.ErrNotFound
	}
	return err
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func itoa(i int) string { return strconv.Itoa(i) }

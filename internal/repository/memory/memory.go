// Package memory holds map-backed repositories with the same contracts
// as the postgres ones. Service and handler tests run against them.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/NotAnonymousUser/Ticket-System/internal/models"
	"github.com/NotAnonymousUser/Ticket-System/internal/repository"

	"github.com/google/uuid"
)

// Store backs all three repositories so comment inserts can check the
// ticket foreign key and ticket deletes can cascade.
type Store struct {
	mu       sync.Mutex
	tickets  map[string]models.Ticket
	order    []string
	comments []models.Comment
	nextID   int64
	users    map[string]userRow
	now      func() time.Time
}

type userRow struct {
	u    models.User
	hash string
}

func New() *Store {
	return &Store{
		tickets: map[string]models.Ticket{},
		users:   map[string]userRow{},
		now:     time.Now,
	}
}

func (s *Store) Tickets() *TicketRepo   { return &TicketRepo{s} }
func (s *Store) Comments() *CommentRepo { return &CommentRepo{s} }
func (s *Store) Users() *UserRepo       { return &UserRepo{s} }

// -----------------------------------------------------------------------------
// Tickets
// -----------------------------------------------------------------------------

type TicketRepo struct{ s *Store }

var _ repository.TicketRepository = (*TicketRepo)(nil)

func (r *TicketRepo) List(_ context.Context, f repository.TicketFilter) ([]models.Ticket, error) {
	f = f.Normalize()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(f.Q))
	out := []models.Ticket{}
	for i := len(r.s.order) - 1; i >= 0; i-- {
		t := r.s.tickets[r.s.order[i]]
		if q != "" && !strings.Contains(strings.ToLower(t.Title+"\x00"+t.Description+"\x00"+t.Employee), q) {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		if f.Priority != "" && t.Priority != f.Priority {
			continue
		}
		if f.Assignee != "" && t.Assignee != f.Assignee {
			continue
		}
		out = append(out, t)
	}
	if f.Offset >= len(out) {
		return []models.Ticket{}, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *TicketRepo) Get(_ context.Context, code string) (*models.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.tickets[code]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (r *TicketRepo) Create(_ context.Context, t *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[t.Code]; ok {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	r.s.tickets[t.Code] = *t
	r.s.order = append(r.s.order, t.Code)
	return nil
}

func (r *TicketRepo) Update(_ context.Context, t *models.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.tickets[t.Code]
	if !ok {
		return repository.ErrNotFound
	}
	cur.Title, cur.Description, cur.Status, cur.Priority, cur.Assignee = t.Title, t.Description, t.Status, t.Priority, t.Assignee
	cur.UpdatedAt = r.s.now()
	t.UpdatedAt = cur.UpdatedAt
	r.s.tickets[t.Code] = cur
	return nil
}

func (r *TicketRepo) Delete(_ context.Context, code string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[code]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.tickets, code)
	for i, c := range r.s.order {
		if c == code {
			r.s.order = append(r.s.order[:i], r.s.order[i+1:]...)
			break
		}
	}
	kept := r.s.comments[:0]
	for _, c := range r.s.comments {
		if c.TicketCode != code {
			kept = append(kept, c)
		}
	}
	r.s.comments = kept
	return nil
}

func (r *TicketRepo) Summary(_ context.Context, since time.Time) (repository.TicketSummary, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum repository.TicketSummary
	for _, t := range r.s.tickets {
		closed := t.Status == models.StatusResolved || t.Status == models.StatusClosed
		switch {
		case !closed:
			sum.Open++
			if t.Priority == models.PriorityHigh {
				sum.HighOpen++
			}
		case !t.UpdatedAt.Before(since):
			sum.Resolved7d++
		}
	}
	return sum, nil
}

// -----------------------------------------------------------------------------
// Comments
// -----------------------------------------------------------------------------

type CommentRepo struct{ s *Store }

var _ repository.CommentRepository = (*CommentRepo)(nil)

func (r *CommentRepo) List(_ context.Context, ticketCode string) ([]models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Comment{}
	for _, c := range r.s.comments {
		if c.TicketCode == ticketCode {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CommentDate.Equal(out[j].CommentDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].CommentDate.Before(out[j].CommentDate)
	})
	return out, nil
}

func (r *CommentRepo) Add(_ context.Context, c *models.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.tickets[c.TicketCode]; !ok {
		return repository.ErrNotFound
	}
	r.s.nextID++
	c.ID = r.s.nextID
	c.CommentDate = r.s.now()
	r.s.comments = append(r.s.comments, *c)
	return nil
}

// -----------------------------------------------------------------------------
// Users
// -----------------------------------------------------------------------------

type UserRepo struct{ s *Store }

var _ repository.UserRepository = (*UserRepo)(nil)

func (r *UserRepo) Create(_ context.Context, u *models.User, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.now()
	r.s.users[u.Username] = userRow{u: *u, hash: passwordHash}
	return nil
}

func (r *UserRepo) GetByUsername(_ context.Context, username string) (*models.User, string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	row, ok := r.s.users[username]
	if !ok {
		return nil, "", nil
	}
	u := row.u
	return &u, row.hash, nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, row := range r.s.users {
		if row.u.ID == id {
			u := row.u
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) List(_ context.Context, q, role string, limit, offset int) ([]models.User, int, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	q = strings.ToLower(strings.TrimSpace(q))
	all := []models.User{}
	for _, row := range r.s.users {
		u := row.u
		if q != "" && !strings.Contains(strings.ToLower(u.Username+"\x00"+u.Fullname+"\x00"+u.Email), q) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	total := len(all)
	if offset >= total {
		return []models.User{}, total, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, total, nil
}
